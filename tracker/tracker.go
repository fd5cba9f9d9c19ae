package tracker

import (
	"bwtoolkit/api/bwapi"
	"bwtoolkit/database"
	"bwtoolkit/database/store"
	"bwtoolkit/utils/sets"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	lop "github.com/samber/lo/parallel"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	RECORD_ROOT      = "records"
	RECORD_KIND      = "players"
	DEFAULT_INTERVAL = 30 * time.Minute
	DEFAULT_RATE     = 1.0 // Requests per second during an update.
)

var TRACKERS_STORE = database.StoreDefinition[TrackedPlayer]{Name: "trackers"}

var (
	ErrEmptyName      = errors.New("player name must not be empty")
	ErrAlreadyTracked = errors.New("player is already tracked")
	ErrNotTracked     = errors.New("player is not tracked")
	ErrBadInterval    = errors.New("update interval must be positive")
)

// Where leaderboard rows come from. Satisfied by *bwapi.Client.
type Source interface {
	GetUserLeaderboards(username string, flags bwapi.LeaderboardsFlags) (*bwapi.Leaderboards, error)
}

// Periodically records every tracked player's leaderboard standing.
type Tracker struct {
	src     Source
	db      *database.Database
	players *store.Store[TrackedPlayer]
	limiter *rate.Limiter
	now     func() time.Time
	log     *log.Entry
	runMu   sync.Mutex // Only one update runs at a time.
}

type Option func(*Tracker)

// Caps API requests per second during an update. Zero or less disables pacing.
func WithRate(perSecond float64) Option {
	return func(t *Tracker) {
		if perSecond <= 0 {
			t.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}

		t.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func New(src Source, db *database.Database, opts ...Option) (*Tracker, error) {
	players, err := database.AssignStore(db, TRACKERS_STORE)
	if err != nil {
		return nil, err
	}

	t := &Tracker{
		src:     src,
		db:      db,
		players: players,
		limiter: rate.NewLimiter(rate.Limit(DEFAULT_RATE), 1),
		now:     time.Now,
		log:     log.WithField("component", "tracker"),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

func playerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func recordPrefix(name string) string {
	return database.RecordPrefix(RECORD_ROOT, RECORD_KIND, playerKey(name))
}

// Adds name to the tracking list and persists the list.
func (t *Tracker) Track(name string) (TrackedPlayer, error) {
	key := playerKey(name)
	if key == "" {
		return TrackedPlayer{}, ErrEmptyName
	}

	p := TrackedPlayer{Name: strings.TrimSpace(name), AddedAt: t.now().UTC()}
	if err := t.players.Insert(key, p); err != nil {
		if errors.Is(err, store.ErrKeyExists) {
			return TrackedPlayer{}, fmt.Errorf("%w: %s", ErrAlreadyTracked, p.Name)
		}

		return TrackedPlayer{}, err
	}

	t.log.WithField("player", p.Name).Info("now tracking player")
	return p, t.players.WriteSnapshot()
}

// Removes name from the tracking list. With purge, its recorded samples are deleted too.
func (t *Tracker) Untrack(name string, purge bool) error {
	key := playerKey(name)
	if !t.players.HasKey(key) {
		return fmt.Errorf("%w: %s", ErrNotTracked, name)
	}

	// Purge before forgetting the player so a failed purge leaves nothing orphaned.
	if purge {
		if err := database.DeleteRecords(t.db.Records(), recordPrefix(key)); err != nil {
			return fmt.Errorf("error purging records for %s: %w", name, err)
		}
	}

	if !t.players.Delete(key) {
		return fmt.Errorf("%w: %s", ErrNotTracked, name)
	}

	t.log.WithFields(log.Fields{"player": name, "purged": purge}).Info("stopped tracking player")
	return t.players.WriteSnapshot()
}

func (t *Tracker) IsTracked(name string) bool {
	return t.players.HasKey(playerKey(name))
}

// Tracked players, oldest addition first.
func (t *Tracker) Tracked() []TrackedPlayer {
	return t.players.ValuesSorted(func(a, b TrackedPlayer) int {
		if c := a.AddedAt.Compare(b.AddedAt); c != 0 {
			return c
		}

		return strings.Compare(playerKey(a.Name), playerKey(b.Name))
	})
}

// Outcome of one update.
type RunSummary struct {
	RunID    uuid.UUID
	Started  time.Time
	Recorded []Sample
	Failed   map[string]error // Keyed by player name.
}

// Samples every tracked player once.
//
// A player whose request or sample fails is logged and skipped. The returned error is only
// non-nil when the update itself was cut short, e.g. by ctx being cancelled.
func (t *Tracker) UpdateRecords(ctx context.Context) (RunSummary, error) {
	return t.update(ctx, t.Tracked())
}

// Like UpdateRecords but only for the given names, which must all be tracked.
func (t *Tracker) UpdatePlayers(ctx context.Context, names ...string) (RunSummary, error) {
	requested := sets.FromSliceFunc(names, playerKey)
	tracked := sets.FromSlice(t.players.Keys())

	if unknown := requested.Difference(tracked); len(unknown) > 0 {
		return RunSummary{}, fmt.Errorf("%w: %s", ErrNotTracked, strings.Join(sets.Sorted(unknown), ", "))
	}

	return t.update(ctx, t.players.GetFromSet(requested))
}

func (t *Tracker) update(ctx context.Context, players []TrackedPlayer) (RunSummary, error) {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	summary := RunSummary{
		RunID:   uuid.New(),
		Started: t.now(),
		Failed:  make(map[string]error),
	}

	logger := t.log.WithField("run", summary.RunID)
	logger.WithField("players", len(players)).Debug("updating records")

	for _, p := range players {
		if err := t.limiter.Wait(ctx); err != nil {
			return summary, err
		}

		sample, err := t.record(p, summary.RunID)
		if err != nil {
			logger.WithField("player", p.Name).WithError(err).Warn("skipping player")
			summary.Failed[p.Name] = err
			continue
		}

		summary.Recorded = append(summary.Recorded, sample)
	}

	logger.WithFields(log.Fields{
		"recorded": len(summary.Recorded),
		"failed":   len(summary.Failed),
		"took":     t.now().Sub(summary.Started),
	}).Info("updated records")

	return summary, nil
}

func (t *Tracker) record(p TrackedPlayer, runID uuid.UUID) (Sample, error) {
	lb, err := t.src.GetUserLeaderboards(p.Name, bwapi.AllLeaderboards)
	if err != nil {
		return Sample{}, err
	}

	user, err := bwapi.ReassembleStrict(lb)
	if err != nil {
		return Sample{}, err
	}

	if !strings.EqualFold(user.Name, p.Name) {
		return Sample{}, &bwapi.SectionMismatchError{Section: "name", Expected: p.Name, Got: user.Name}
	}

	sample, err := NewSample(user, runID, t.now())
	if err != nil {
		return Sample{}, err
	}

	if err := database.PutRecord(t.db.Records(), recordPrefix(p.Name), sample.Time, sample); err != nil {
		return Sample{}, err
	}

	return sample, nil
}

// Every recorded sample for name, oldest first.
func (t *Tracker) History(name string) ([]Sample, error) {
	return database.ListRecords[Sample](t.db.Records(), recordPrefix(name))
}

// The most recent sample for name.
func (t *Tracker) Latest(name string) (*Sample, error) {
	return database.LatestRecord[Sample](t.db.Records(), recordPrefix(name))
}

// The latest sample of every tracked player that has one, keyed by tracked name.
func (t *Tracker) LatestAll() map[string]Sample {
	players := t.Tracked()
	found := lop.Map(players, func(p TrackedPlayer, _ int) *Sample {
		s, _ := t.Latest(p.Name)
		return s
	})

	latest := make(map[string]Sample, len(players))
	for i, s := range found {
		if s != nil {
			latest[players[i].Name] = *s
		}
	}

	return latest
}

// Updates once immediately, then every interval until ctx is done.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w, got %s", ErrBadInterval, interval)
	}

	task := func() {
		if _, err := t.UpdateRecords(ctx); err != nil && ctx.Err() == nil {
			t.log.WithError(err).Error("update failed")
		}
	}

	task()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			task()
		}
	}
}

// Names of every tracked player, as originally entered.
func (t *Tracker) Names() []string {
	return lo.Map(t.Tracked(), func(p TrackedPlayer, _ int) string {
		return p.Name
	})
}
