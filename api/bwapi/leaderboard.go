package bwapi

import (
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// A row in one leaderboard section. The API names the value field after the section
// ("credits", "combatsWon", ...); all of them decode into Value.
type LeaderboardsEntry struct {
	Rank  int      `json:"rank"`
	Value int      `json:"value"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

func (e *LeaderboardsEntry) UnmarshalJSON(data []byte) error {
	type entry LeaderboardsEntry
	var raw struct {
		entry
		Credits           *int `json:"credits"`
		Level             *int `json:"level"`
		CombatsWon        *int `json:"combatsWon"`
		ItemsCrafted      *int `json:"itemsCrafted"`
		JobsPerformed     *int `json:"jobsPerformed"`
		Overdoses         *int `json:"overdoses"`
		MissionsCompleted *int `json:"missionsCompleted"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = LeaderboardsEntry(raw.entry)
	for _, v := range []*int{
		raw.Credits, raw.Level, raw.CombatsWon, raw.ItemsCrafted,
		raw.JobsPerformed, raw.Overdoses, raw.MissionsCompleted,
	} {
		if v != nil {
			e.Value = *v
			break
		}
	}

	return nil
}

type LeaderboardsHighestLevelEntry struct {
	Rank       int      `json:"rank"`
	Level      int      `json:"level"`
	ExpCurrent int      `json:"expCurrent"`
	Name       string   `json:"name"`
	Roles      []string `json:"roles"`
}

// Response of the leaderboards endpoint. Each section is nil unless requested.
//
// Queried globally, a section lists the top entries ordered by rank (1 = best).
// Queried by name, a present section holds the single row of that player.
type Leaderboards struct {
	Credits           *[]LeaderboardsEntry             `json:"credits,omitempty"`
	HighestLevels     *[]LeaderboardsHighestLevelEntry `json:"highestLevels,omitempty"`
	CombatsWon        *[]LeaderboardsEntry             `json:"combatsWon,omitempty"`
	ItemsCrafted      *[]LeaderboardsEntry             `json:"itemsCrafted,omitempty"`
	JobsPerformed     *[]LeaderboardsEntry             `json:"jobsPerformed,omitempty"`
	Overdoses         *[]LeaderboardsEntry             `json:"overdoses,omitempty"`
	MissionsCompleted *[]LeaderboardsEntry             `json:"missionsCompleted,omitempty"`
}

// Rank and value of a player within one section.
type Standing struct {
	Rank  int `json:"rank"`
	Value int `json:"value"`
}

type LevelStanding struct {
	Rank       int `json:"rank"`
	Level      int `json:"level"`
	ExpCurrent int `json:"expCurrent"`
}

// One player's rows across every requested leaderboard section.
//
// Name and Roles come from whichever present section was processed last,
// in the order credits, highestLevels, combatsWon, itemsCrafted, jobsPerformed,
// overdoses, missionsCompleted.
type LeaderboardUser struct {
	Name              string         `json:"name"`
	Roles             []string       `json:"roles"`
	Credits           *Standing      `json:"credits,omitempty"`
	HighestLevels     *LevelStanding `json:"highestLevels,omitempty"`
	CombatsWon        *Standing      `json:"combatsWon,omitempty"`
	ItemsCrafted      *Standing      `json:"itemsCrafted,omitempty"`
	JobsPerformed     *Standing      `json:"jobsPerformed,omitempty"`
	Overdoses         *Standing      `json:"overdoses,omitempty"`
	MissionsCompleted *Standing      `json:"missionsCompleted,omitempty"`
}

// Sections that are present on this user.
func (u *LeaderboardUser) Sections() (flags LeaderboardsFlags) {
	if u.Credits != nil {
		flags |= LeaderboardCredits
	}
	if u.HighestLevels != nil {
		flags |= LeaderboardHighestLevels
	}
	if u.CombatsWon != nil {
		flags |= LeaderboardCombatsWon
	}
	if u.ItemsCrafted != nil {
		flags |= LeaderboardItemsCrafted
	}
	if u.JobsPerformed != nil {
		flags |= LeaderboardJobsPerformed
	}
	if u.Overdoses != nil {
		flags |= LeaderboardOverdoses
	}
	if u.MissionsCompleted != nil {
		flags |= LeaderboardMissionsCompleted
	}

	return
}

// Standing for a single section. For highest levels, Value is the level.
func (u *LeaderboardUser) Standing(section LeaderboardsFlags) (Standing, bool) {
	var s *Standing
	switch section {
	case LeaderboardCredits:
		s = u.Credits
	case LeaderboardHighestLevels:
		if u.HighestLevels == nil {
			return Standing{}, false
		}
		return Standing{Rank: u.HighestLevels.Rank, Value: u.HighestLevels.Level}, true
	case LeaderboardCombatsWon:
		s = u.CombatsWon
	case LeaderboardItemsCrafted:
		s = u.ItemsCrafted
	case LeaderboardJobsPerformed:
		s = u.JobsPerformed
	case LeaderboardOverdoses:
		s = u.Overdoses
	case LeaderboardMissionsCompleted:
		s = u.MissionsCompleted
	}

	if s == nil {
		return Standing{}, false
	}

	return *s, true
}

// Folds a by-name leaderboards response into one [LeaderboardUser].
//
// A present section must hold an entry, otherwise ErrNotFound is returned.
// Every present section overwrites Name and Roles, so the last one wins. Sections that
// disagree on the player name are logged but not rejected; see [ReassembleStrict].
func Reassemble(lb *Leaderboards) (*LeaderboardUser, error) {
	return reassemble(lb, false)
}

// Like [Reassemble], but fails with [*SectionMismatchError] when two present sections
// belong to different players.
func ReassembleStrict(lb *Leaderboards) (*LeaderboardUser, error) {
	return reassemble(lb, true)
}

type reassembler struct {
	user   LeaderboardUser
	owner  string
	strict bool
}

func (r *reassembler) claim(section, name string, roles []string) error {
	if r.owner == "" {
		r.owner = name
	} else if !strings.EqualFold(r.owner, name) {
		if r.strict {
			return &SectionMismatchError{Section: section, Expected: r.owner, Got: name}
		}

		log.WithFields(log.Fields{
			"section":  section,
			"expected": r.owner,
			"got":      name,
		}).Warn("leaderboard sections disagree on player, keeping last")
	}

	r.user.Name = name
	r.user.Roles = roles
	return nil
}

func (r *reassembler) standing(section string, entries *[]LeaderboardsEntry) (*Standing, error) {
	if entries == nil {
		return nil, nil
	}

	e, err := lastEntry(section, *entries)
	if err != nil {
		return nil, err
	}

	if err := r.claim(section, e.Name, e.Roles); err != nil {
		return nil, err
	}

	return &Standing{Rank: e.Rank, Value: e.Value}, nil
}

func lastEntry[E any](section string, entries []E) (E, error) {
	if len(entries) == 0 {
		var zero E
		return zero, fmt.Errorf("leaderboard section %s is empty: %w", section, ErrNotFound)
	}

	return entries[len(entries)-1], nil
}

func reassemble(lb *Leaderboards, strict bool) (*LeaderboardUser, error) {
	if lb == nil {
		return nil, fmt.Errorf("no leaderboards to reassemble: %w", ErrNotFound)
	}

	r := &reassembler{strict: strict}

	var err error
	if r.user.Credits, err = r.standing("credits", lb.Credits); err != nil {
		return nil, err
	}

	if lb.HighestLevels != nil {
		e, err := lastEntry("highestLevels", *lb.HighestLevels)
		if err != nil {
			return nil, err
		}

		if err := r.claim("highestLevels", e.Name, e.Roles); err != nil {
			return nil, err
		}

		r.user.HighestLevels = &LevelStanding{Rank: e.Rank, Level: e.Level, ExpCurrent: e.ExpCurrent}
	}

	if r.user.CombatsWon, err = r.standing("combatsWon", lb.CombatsWon); err != nil {
		return nil, err
	}
	if r.user.ItemsCrafted, err = r.standing("itemsCrafted", lb.ItemsCrafted); err != nil {
		return nil, err
	}
	if r.user.JobsPerformed, err = r.standing("jobsPerformed", lb.JobsPerformed); err != nil {
		return nil, err
	}
	if r.user.Overdoses, err = r.standing("overdoses", lb.Overdoses); err != nil {
		return nil, err
	}
	if r.user.MissionsCompleted, err = r.standing("missionsCompleted", lb.MissionsCompleted); err != nil {
		return nil, err
	}

	return &r.user, nil
}
