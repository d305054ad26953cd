package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	app "github.com/okian/surfelo/internal/app"
	"github.com/okian/surfelo/internal/config"
	"github.com/okian/surfelo/internal/domain/model"
	"github.com/okian/surfelo/internal/domain/types"
	"github.com/okian/surfelo/pkg/logger"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run is main without the process exit so it can be driven from tests.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("surfelo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file (overrides "+config.EnvConfigFile+")")
	playerID := fs.String("player", "", "print one player's ratings and ranks after the run")
	quiet := fs.Bool("quiet", false, "do not print leaderboards")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if *configPath != "" {
		if err := os.Setenv(config.EnvConfigFile, *configPath); err != nil {
			fmt.Fprintln(stderr, "failed to set config path:", err)
			return exitError
		}
	}

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		fmt.Fprintln(stderr, "failed to load config:", err)
		return exitError
	}

	logOpts := []logger.Option{logger.WithOutput(stderr)}
	if cfg.LogFile != "" {
		logOpts = append(logOpts, logger.WithFile(cfg.LogFile))
	}
	if err := logger.Init(logOpts...); err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return exitError
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := app.New(cfg, app.WithLogger(log.Named("service")))
	if err != nil {
		log.Error(ctx, "invalid configuration", logger.Error(err))
		return exitError
	}

	res, err := svc.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn(ctx, "run cancelled", logger.Int("processed", res.Processed))
		} else {
			log.Error(ctx, "rating run failed", logger.Error(err))
		}
		return exitError
	}

	if !*quiet {
		printReport(stdout, svc.Report(), cfg.Ranking.DisplaySurfaces)
	}
	if *playerID != "" {
		view, err := svc.Lookup(ctx, *playerID)
		if err != nil {
			log.Error(ctx, "player lookup failed", logger.String("player", *playerID), logger.Error(err))
			return exitError
		}
		printPlayer(stdout, view, svc.Result().Roster.Surfaces())
	}
	return exitOK
}

func printReport(w io.Writer, r app.Report, surfaces []string) {
	fmt.Fprintf(w, "Ratings as of %s (%d active players)\n", dateOrDash(r.AsOf), r.Active)
	for _, name := range surfaces {
		entries, ok := r.BySurface[model.Surface(name)]
		if !ok {
			continue
		}
		printEntries(w, "Top "+name, entries)
	}
	printEntries(w, "Overall", r.Overall)
	if len(r.Specialists) > 0 {
		fmt.Fprintln(w, "\nSurface specialists")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tPlayer\tSurface\tRating\tAdvantage")
		for _, s := range r.Specialists {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t+%.1f\n", s.Rank, s.Name, s.Surface, s.Rating, s.Advantage)
		}
		_ = tw.Flush()
	}
	if len(r.Rising) > 0 {
		printEntries(w, "Rising players", r.Rising)
	}
}

func printEntries(w io.Writer, title string, entries []types.Entry) {
	fmt.Fprintf(w, "\n%s\n", title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPlayer\tRating\tMatches\tLast match")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%d\t%s\n", e.Rank, e.Name, e.Rating, e.Matches, dateOrDash(e.LastMatchDate))
	}
	_ = tw.Flush()
}

func printPlayer(w io.Writer, v app.PlayerView, surfaces []model.Surface) {
	st := v.State
	fmt.Fprintf(w, "\n%s (%s): %d matches, last %s\n", st.Name, st.ID, st.TotalMatches, dateOrDash(st.LastMatchDate))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Surface\tRating\tMatches\tPeak\tPeak date\tRank")
	for _, s := range surfaces {
		rank := "-"
		if r, ok := v.Ranks[string(s)]; ok {
			rank = fmt.Sprint(r)
		}
		fmt.Fprintf(tw, "%s\t%.1f\t%d\t%.1f\t%s\t%s\n",
			s, st.Ratings[s], st.MatchesPlayed[s], st.PeakRating[s], dateOrDash(st.PeakRatingDate[s]), rank)
	}
	_ = tw.Flush()
	if r, ok := v.Ranks[app.BoardOverall]; ok {
		fmt.Fprintf(w, "Overall rank: %d\n", r)
	}
}

func dateOrDash(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}
