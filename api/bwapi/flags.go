package bwapi

import (
	"strings"

	"github.com/samber/lo"
)

const QUERY_DELIMITER = "&"

// Selects which optional user fields the API should include in a response.
type UserDataFlags uint8

const (
	UserBiography UserDataFlags = 1 << iota
	UserEquipment
	UserInventory
)

// Selects which leaderboard sections the API should include in a response.
type LeaderboardsFlags uint8

const (
	LeaderboardCredits LeaderboardsFlags = 1 << iota
	LeaderboardHighestLevels
	LeaderboardCombatsWon
	LeaderboardItemsCrafted
	LeaderboardJobsPerformed
	LeaderboardOverdoses
	LeaderboardMissionsCompleted
)

const AllLeaderboards = LeaderboardCredits | LeaderboardHighestLevels | LeaderboardCombatsWon |
	LeaderboardItemsCrafted | LeaderboardJobsPerformed | LeaderboardOverdoses | LeaderboardMissionsCompleted

const AllUserData = UserBiography | UserEquipment | UserInventory

type flagOption[F ~uint8] struct {
	flag F
	name string
}

// Declared order is the order tokens appear in the query.
var userDataOptions = []flagOption[UserDataFlags]{
	{UserBiography, "biography"},
	{UserEquipment, "equipment"},
	{UserInventory, "inventory"},
}

var leaderboardOptions = []flagOption[LeaderboardsFlags]{
	{LeaderboardCredits, "credits"},
	{LeaderboardHighestLevels, "highestLevels"},
	{LeaderboardCombatsWon, "combatsWon"},
	{LeaderboardItemsCrafted, "itemsCrafted"},
	{LeaderboardJobsPerformed, "jobsPerformed"},
	{LeaderboardOverdoses, "overdoses"},
	{LeaderboardMissionsCompleted, "missionsCompleted"},
}

func optionNames[F ~uint8](set F, options []flagOption[F]) []string {
	return lo.FilterMap(options, func(o flagOption[F], _ int) (string, bool) {
		return o.name, set&o.flag != 0
	})
}

// Reports whether any of the bits in flag are set.
func (f UserDataFlags) Has(flag UserDataFlags) bool {
	return f&flag != 0
}

// Names of the set options in declared order.
func (f UserDataFlags) Names() []string {
	return optionNames(f, userDataOptions)
}

// Encodes the set options as a query fragment such as "biography&inventory".
// An empty set produces an empty string.
func (f UserDataFlags) Query() string {
	return strings.Join(f.Names(), QUERY_DELIMITER)
}

func (f UserDataFlags) String() string {
	if f == 0 {
		return "none"
	}

	return strings.Join(f.Names(), "|")
}

// Reports whether any of the bits in flag are set.
func (f LeaderboardsFlags) Has(flag LeaderboardsFlags) bool {
	return f&flag != 0
}

// Names of the set sections in declared order.
func (f LeaderboardsFlags) Names() []string {
	return optionNames(f, leaderboardOptions)
}

// Encodes the set sections as a query fragment such as "credits&combatsWon".
// An empty set produces an empty string.
func (f LeaderboardsFlags) Query() string {
	return strings.Join(f.Names(), QUERY_DELIMITER)
}

func (f LeaderboardsFlags) String() string {
	if f == 0 {
		return "none"
	}

	return strings.Join(f.Names(), "|")
}

// Parses a section name (as used in the query) into its flag.
func ParseLeaderboardFlag(name string) (LeaderboardsFlags, bool) {
	opt, ok := lo.Find(leaderboardOptions, func(o flagOption[LeaderboardsFlags]) bool {
		return strings.EqualFold(o.name, name)
	})

	return opt.flag, ok
}
