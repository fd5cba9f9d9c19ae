package tracker

import (
	"bwtoolkit/api/bwapi"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrIncompleteSample = errors.New("leaderboard user is missing sections")

// A player on the tracking list. Keyed by lower-cased name in the trackers store.
type TrackedPlayer struct {
	Name    string    `json:"name"`
	AddedAt time.Time `json:"addedAt"`
}

// One timestamped snapshot of a tracked player's leaderboard values.
// Every sample taken in the same update shares a RunID.
type Sample struct {
	ID                uuid.UUID `msgpack:"id" json:"id"`
	RunID             uuid.UUID `msgpack:"runId" json:"runId"`
	Name              string    `msgpack:"name" json:"name"`
	Time              time.Time `msgpack:"time" json:"time"`
	Credits           int       `msgpack:"credits" json:"credits"`
	Level             int       `msgpack:"level" json:"level"`
	ExpCurrent        int       `msgpack:"expCurrent" json:"expCurrent"`
	CombatsWon        int       `msgpack:"combatsWon" json:"combatsWon"`
	ItemsCrafted      int       `msgpack:"itemsCrafted" json:"itemsCrafted"`
	JobsPerformed     int       `msgpack:"jobsPerformed" json:"jobsPerformed"`
	Overdoses         int       `msgpack:"overdoses" json:"overdoses"`
	MissionsCompleted int       `msgpack:"missionsCompleted" json:"missionsCompleted"`
}

// Builds a sample from a user carrying every leaderboard section.
func NewSample(user *bwapi.LeaderboardUser, runID uuid.UUID, at time.Time) (Sample, error) {
	if missing := bwapi.AllLeaderboards &^ user.Sections(); missing != 0 {
		return Sample{}, fmt.Errorf("%w: %s has no %s", ErrIncompleteSample, user.Name, missing)
	}

	return Sample{
		ID:                uuid.New(),
		RunID:             runID,
		Name:              user.Name,
		Time:              at,
		Credits:           user.Credits.Value,
		Level:             user.HighestLevels.Level,
		ExpCurrent:        user.HighestLevels.ExpCurrent,
		CombatsWon:        user.CombatsWon.Value,
		ItemsCrafted:      user.ItemsCrafted.Value,
		JobsPerformed:     user.JobsPerformed.Value,
		Overdoses:         user.Overdoses.Value,
		MissionsCompleted: user.MissionsCompleted.Value,
	}, nil
}

// The recorded value for a single leaderboard section. Highest levels reports the level.
func (s Sample) Value(section bwapi.LeaderboardsFlags) (int, bool) {
	switch section {
	case bwapi.LeaderboardCredits:
		return s.Credits, true
	case bwapi.LeaderboardHighestLevels:
		return s.Level, true
	case bwapi.LeaderboardCombatsWon:
		return s.CombatsWon, true
	case bwapi.LeaderboardItemsCrafted:
		return s.ItemsCrafted, true
	case bwapi.LeaderboardJobsPerformed:
		return s.JobsPerformed, true
	case bwapi.LeaderboardOverdoses:
		return s.Overdoses, true
	case bwapi.LeaderboardMissionsCompleted:
		return s.MissionsCompleted, true
	}

	return 0, false
}
