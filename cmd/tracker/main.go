package main

import (
	"bwtoolkit/api/bwapi"
	"bwtoolkit/database"
	"bwtoolkit/tracker"
	"bwtoolkit/utils"
	"bwtoolkit/utils/config"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

const DEFAULT_DATA_DIR = "appdata"

const usage = `usage: tracker <command> [args]

commands:
  add <name>...                start tracking players
  remove [-purge] <name>...    stop tracking players
  list                         show tracked players and when they were last sampled
  history [-section s] <name>  print every sample of a player
  latest <name>                print the most recent sample of a player
  update [name...]             sample now (all tracked players if none given)
  run [-interval d]            sample on a schedule until interrupted
`

type app struct {
	tracker *tracker.Tracker
	db      *database.Database
}

func open(needClient bool) (*app, error) {
	var src tracker.Source = offlineSource{}
	if needClient {
		cfg, err := config.APIConfigFromEnv()
		if err != nil {
			return nil, err
		}

		opts := []bwapi.Option{bwapi.WithTimeout(cfg.Timeout)}
		if cfg.BaseURL != "" {
			opts = append(opts, bwapi.WithBaseURL(cfg.BaseURL))
		}

		src = bwapi.NewClient(cfg.AuthID, cfg.APIKey, opts...)
	}

	dir, err := config.EnviroVarOr(config.ENV_DATA_DIR, DEFAULT_DATA_DIR)
	if err != nil {
		return nil, err
	}

	ratePerSec, err := config.EnviroVarOr(config.ENV_RATE_PER_SEC, tracker.DEFAULT_RATE)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(dir)
	if err != nil {
		return nil, err
	}

	t, err := tracker.New(src, db, tracker.WithRate(ratePerSec))
	if err != nil {
		db.Close()
		return nil, err
	}

	return &app{tracker: t, db: db}, nil
}

// Stands in for the API on commands that only read local data.
type offlineSource struct{}

func (offlineSource) GetUserLeaderboards(string, bwapi.LeaderboardsFlags) (*bwapi.Leaderboards, error) {
	return nil, fmt.Errorf("%w: no API credentials loaded", bwapi.ErrUnauthorized)
}

func printSample(s tracker.Sample) {
	fmt.Printf("%s  level %d  credits %s  combats %s  crafted %s  jobs %s  overdoses %s  missions %s\n",
		s.Time.Local().Format(time.DateTime), s.Level,
		utils.FormatNumber(s.Credits), utils.FormatNumber(s.CombatsWon), utils.FormatNumber(s.ItemsCrafted),
		utils.FormatNumber(s.JobsPerformed), utils.FormatNumber(s.Overdoses), utils.FormatNumber(s.MissionsCompleted),
	)
}

func printSummary(s tracker.RunSummary) {
	for _, sample := range s.Recorded {
		fmt.Printf("%-20s ", sample.Name)
		printSample(sample)
	}

	for name, err := range s.Failed {
		fmt.Printf("%-20s failed: %v\n", name, err)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	purge := fs.Bool("purge", false, "also delete recorded samples")
	section := fs.String("section", "", "only print this leaderboard section")

	defaultInterval, err := config.EnviroVarOr(config.ENV_INTERVAL_MINS, int(tracker.DEFAULT_INTERVAL/time.Minute))
	if err != nil {
		return err
	}
	interval := fs.Duration("interval", time.Duration(defaultInterval)*time.Minute, "time between samples")

	fs.Parse(args)

	switch cmd {
	case "add":
		for _, name := range fs.Args() {
			if _, err := a.tracker.Track(name); err != nil {
				return err
			}
		}
	case "remove":
		for _, name := range fs.Args() {
			if err := a.tracker.Untrack(name, *purge); err != nil {
				return err
			}
		}
	case "list":
		latest := a.tracker.LatestAll()
		for _, p := range a.tracker.Tracked() {
			fmt.Printf("%-20s added %s", p.Name, p.AddedAt.Local().Format(time.DateOnly))
			if s, ok := latest[p.Name]; ok {
				fmt.Printf("  last sampled %s", s.Time.Local().Format(time.DateTime))
			}
			fmt.Println()
		}
	case "history":
		history, err := a.tracker.History(fs.Arg(0))
		if err != nil {
			return err
		}

		if *section == "" {
			for _, s := range history {
				printSample(s)
			}
			break
		}

		sec, ok := bwapi.ParseLeaderboardFlag(*section)
		if !ok {
			return fmt.Errorf("unknown section %q", *section)
		}

		for _, s := range history {
			v, _ := s.Value(sec)
			fmt.Printf("%s  %s\n", s.Time.Local().Format(time.DateTime), utils.FormatNumber(v))
		}
	case "latest":
		s, err := a.tracker.Latest(fs.Arg(0))
		if err != nil {
			return err
		}

		fmt.Println(utils.Prettify(s))
	case "update":
		var summary tracker.RunSummary
		if fs.NArg() == 0 {
			summary, err = a.tracker.UpdateRecords(ctx)
		} else {
			summary, err = a.tracker.UpdatePlayers(ctx, fs.Args()...)
		}
		if err != nil {
			return err
		}

		printSummary(summary)
	case "run":
		if *interval <= 0 {
			return fmt.Errorf("%w: set -interval or %s above zero", tracker.ErrBadInterval, config.ENV_INTERVAL_MINS)
		}

		log.WithField("interval", *interval).Info("tracking until interrupted")
		if err := a.tracker.Run(ctx, *interval); err != nil && ctx.Err() == nil {
			return err
		}
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	return nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("failed to load %s: %v", config.DEFAULT_ENV_FILE, err)
	}
	config.ConfigureLogging()

	cmd := os.Args[1]
	needClient := cmd == "update" || cmd == "run"

	a, err := open(needClient)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = a.run(ctx, cmd, os.Args[2:])
	stop()

	if closeErr := a.db.Close(); closeErr != nil {
		log.WithError(closeErr).Error("failed to close database")
	}

	if err != nil {
		log.Fatal(err)
	}
}
