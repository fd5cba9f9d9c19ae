package networth

import (
	"bwtoolkit/api/bwapi"
	"errors"
	"fmt"

	"github.com/samber/lo"
)

var ErrUnknownItem = errors.New("item not found in catalog")

// Breakdown of an account's worth in credits.
type Report struct {
	Username  string `json:"username"`
	Equipment int    `json:"equipment"`
	Inventory int    `json:"inventory"`
	Credits   int    `json:"credits"`
	Total     int    `json:"total"`

	// Whether the user response carried each list at all.
	HasEquipment bool `json:"hasEquipment"`
	HasInventory bool `json:"hasInventory"`
}

// Worth of a single item at the given quality.
//
// The sell value is worthMultiplier * (quality + 1). Items that grant credits when consumed
// are worth the average credits gained minus the average credits lost, if that beats selling.
func ItemWorth(item bwapi.Item, quality uint8) int {
	sell := item.WorthMultiplier * (int(quality) + 1)

	effects := item.Effects()
	if effects == nil {
		return sell
	}

	gained := lo.SumBy(bwapi.EffectsOf[bwapi.AddCreditsEffect](effects), func(e bwapi.AddCreditsEffect) int {
		return e.Average()
	})

	lost := lo.SumBy(bwapi.EffectsOf[bwapi.RemoveCreditsEffect](effects), func(e bwapi.RemoveCreditsEffect) int {
		return max(e.Average(), 0)
	})

	return max(gained-lost, sell, 0)
}

func lookup(catalog bwapi.ItemCatalog, name string) (bwapi.Item, error) {
	item, ok := catalog[name]
	if !ok {
		return item, fmt.Errorf("%w: %s", ErrUnknownItem, name)
	}

	return item, nil
}

// Sums equipment (one of each) and inventory (times quantity) against the catalog, plus raw credits.
// Lists that were not requested count as zero.
func Calculate(user *bwapi.User, catalog bwapi.ItemCatalog, credits int) (Report, error) {
	report := Report{Username: user.Name, Credits: credits}

	if user.Equipment != nil {
		report.HasEquipment = true
		for _, ref := range *user.Equipment {
			item, err := lookup(catalog, ref.ItemName)
			if err != nil {
				return report, err
			}

			report.Equipment += ItemWorth(item, ref.Quality)
		}
	}

	if user.Inventory != nil {
		report.HasInventory = true
		for _, inv := range *user.Inventory {
			item, err := lookup(catalog, inv.ItemName)
			if err != nil {
				return report, err
			}

			report.Inventory += ItemWorth(item, inv.Quality) * inv.Quantity
		}
	}

	report.Total = report.Equipment + report.Inventory + report.Credits
	return report, nil
}

// Anything that can answer the three lookups needed for a report. Satisfied by *bwapi.Client.
type Source interface {
	GetUser(username string, flags bwapi.UserDataFlags) (*bwapi.User, error)
	GetItemsMap() (bwapi.ItemCatalog, error)
	GetLeaderboardUser(username string, flags bwapi.LeaderboardsFlags) (*bwapi.LeaderboardUser, error)
}

// Fetches everything needed for username and calculates their report.
func Fetch(src Source, username string) (Report, error) {
	user, err := src.GetUser(username, bwapi.UserEquipment|bwapi.UserInventory)
	if err != nil {
		return Report{}, fmt.Errorf("fetching user %s: %w", username, err)
	}

	catalog, err := src.GetItemsMap()
	if err != nil {
		return Report{}, fmt.Errorf("fetching items: %w", err)
	}

	lbUser, err := src.GetLeaderboardUser(username, bwapi.LeaderboardCredits)
	if err != nil {
		return Report{}, fmt.Errorf("fetching credits for %s: %w", username, err)
	}

	credits := 0
	if lbUser.Credits != nil {
		credits = lbUser.Credits.Value
	}

	return Calculate(user, catalog, credits)
}
