// Package service wires configuration, match sources, the rating engine,
// leaderboards and sinks into a single rating run.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/surfelo/internal/adapters/repository"
	"github.com/okian/surfelo/internal/adapters/source"
	"github.com/okian/surfelo/internal/adapters/store"
	"github.com/okian/surfelo/internal/config"
	"github.com/okian/surfelo/internal/domain/decay"
	"github.com/okian/surfelo/internal/domain/dedupe"
	"github.com/okian/surfelo/internal/domain/engine"
	"github.com/okian/surfelo/internal/domain/model"
	"github.com/okian/surfelo/internal/domain/player"
	"github.com/okian/surfelo/internal/domain/ranking"
	"github.com/okian/surfelo/internal/domain/rating"
	"github.com/okian/surfelo/internal/domain/types"
	"github.com/okian/surfelo/pkg/logger"
	"github.com/okian/surfelo/pkg/metrics"
)

// Leaderboard names used for views that are not a single surface.
const (
	BoardOverall = "overall"
)

// ErrNotRun is returned by queries made before any batch completed.
var ErrNotRun = errors.New("no rating run completed")

// Report holds the leaderboard views of a finished run.
type Report struct {
	AsOf        time.Time
	Active      int // players admitted by the active filter
	Overall     []types.Entry
	BySurface   map[model.Surface][]types.Entry
	Specialists []types.Specialist
	Rising      []types.Entry
}

// PlayerView is one player's ratings with their position on each board.
type PlayerView struct {
	State *player.State
	Ranks map[string]int // board name -> rank; missing when not on the board
}

// Service implements a rating run over configured inputs.
type Service struct {
	mu sync.RWMutex

	cfg    *config.Config
	runID  string
	logger logger.Logger
	sinks  []store.Sink

	calc   *rating.Calculator
	ranker *ranking.Ranker

	// State of the last completed run
	result engine.Result
	report Report
	boards map[string]*repository.TreapStore
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.runID = id
		}
	}
}

// WithSinks adds sinks to those built from the output configuration.
func WithSinks(sinks ...store.Sink) Option {
	return func(s *Service) {
		s.sinks = append(s.sinks, sinks...)
	}
}

// New builds a Service from cfg. The configuration is validated.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	strategy, err := rating.ParsePenaltyStrategy(cfg.Rating.Penalty.Strategy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	s := &Service{
		cfg:   cfg,
		runID: uuid.NewString(),
		calc: rating.NewCalculator(
			rating.WithKFactor(cfg.Rating.KBase, cfg.Rating.KOffset, cfg.Rating.KShape),
			rating.WithTournamentWeights(cfg.Rating.TournamentWeights),
			rating.WithPenalty(rating.PenaltyParams{
				Strategy:   strategy,
				Threshold:  cfg.Rating.Penalty.Threshold,
				Scale:      cfg.Rating.Penalty.Scale,
				MaxExtra:   cfg.Rating.Penalty.MaxExtra,
				Cap:        cfg.Rating.Penalty.Cap,
				LinearRate: cfg.Rating.Penalty.LinearRate,
			}),
		),
		ranker: ranking.New(
			ranking.WithMinMatches(cfg.Ranking.MinMatchesRanking, cfg.Ranking.MinMatchesActive),
			ranking.WithActiveMonths(cfg.Ranking.ActiveMonths),
			ranking.WithSurfaceWeights(cfg.Ranking.SurfaceWeights),
			ranking.WithSpecialist(cfg.Ranking.SpecialistMinMatches, cfg.Ranking.SpecialistAdvantage),
			ranking.WithRising(cfg.Ranking.RisingMonths, cfg.Ranking.RisingMinMatches, cfg.Ranking.RisingThreshold),
		),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s, nil
}

// RunID identifies this service's run in logs and sinks.
func (s *Service) RunID() string { return s.runID }

// Run reads the configured inputs, rates every match, builds the
// leaderboards and writes all configured outputs.
func (s *Service) Run(ctx context.Context) (engine.Result, error) {
	in := s.cfg.Input
	files, missing, err := source.Files(in.DataDir, in.Pattern, in.ExtraFiles)
	for _, p := range missing {
		s.logger.Warn(ctx, "extra match file not found", logger.String("path", p))
	}
	if err != nil {
		return engine.Result{}, err
	}
	s.logger.Info(ctx, "reading match files",
		logger.String("run_id", s.runID),
		logger.Int("files", len(files)),
	)

	events, err := source.ReadAll(ctx, files, in.SortEvents)
	if err != nil {
		return engine.Result{}, err
	}

	var active ranking.ActiveSet
	if in.RankingsFile != "" {
		active, err = source.ReadActiveIDs(ctx, in.RankingsFile)
		if err != nil {
			// Without a rankings feed every player is eligible.
			s.logger.Warn(ctx, "rankings file unavailable, not filtering by active ids",
				logger.String("path", in.RankingsFile),
				logger.Error(err),
			)
		}
	}

	res, err := s.Process(ctx, events, active)
	if err != nil {
		return res, err
	}
	if err := s.Persist(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// Process rates events into a fresh roster and builds the leaderboards.
// active restricts the surface and overall boards; nil admits everyone.
// A cancelled ctx leaves the previous run in place.
func (s *Service) Process(ctx context.Context, events []model.MatchEvent, active ranking.ActiveSet) (engine.Result, error) {
	res := s.newBatch().Run(ctx, events)
	if res.Interrupted {
		return res, ctx.Err()
	}

	asOf := ranking.LatestMatch(res.Roster)
	eligible := s.eligibleSet(res.Roster, asOf, active)
	report := s.buildReport(res.Roster, asOf, eligible)
	boards, err := s.buildBoards(ctx, res.Roster, report, eligible)
	if err != nil {
		return res, err
	}

	s.mu.Lock()
	s.result = res
	s.report = report
	s.boards = boards
	s.mu.Unlock()

	s.logger.Info(ctx, "rating run complete",
		logger.String("run_id", s.runID),
		logger.Int("players", res.Roster.Len()),
		logger.Int("processed", res.Processed),
		logger.Int("skipped", res.Skipped),
		logger.Int("active", report.Active),
		logger.Any("skip_reasons", res.SkipReasons),
	)
	return res, nil
}

func (s *Service) newBatch() *engine.Batch {
	surfaces := make([]model.Surface, 0, len(s.cfg.Rating.Surfaces))
	for _, name := range s.cfg.Rating.Surfaces {
		surfaces = append(surfaces, model.Surface(strings.TrimSpace(name)))
	}
	roster := player.NewRoster(
		player.WithSurfaces(surfaces...),
		player.WithStartingRating(s.cfg.Rating.StartingRating),
	)

	dc := s.cfg.Decay
	dm := decay.NewModel(
		decay.WithRates(dc.Rate, dc.StrongRate),
		decay.WithThresholds(dc.ThresholdDays, dc.StrongThresholdDays),
		decay.WithBaseline(dc.Baseline),
	)

	opts := []engine.BatchOption{
		engine.WithRoster(roster),
		engine.WithDecay(dm, dc.Frequency),
		engine.WithProgressFrequency(s.cfg.ProgressFrequency),
		engine.WithMaxRatingChange(s.cfg.Rating.MaxRatingChange),
		engine.WithLogger(s.logger.Named("engine")),
	}
	if size := s.cfg.Input.DedupeSize; size >= 0 {
		opts = append(opts, engine.WithDeduper(dedupe.NewDeduper(dedupe.WithMaxSize(size))))
	}
	return engine.NewBatch(engine.NewProcessor(engine.WithCalculator(s.calc)), opts...)
}

// eligibleSet is the players who played recently enough and, when a
// rankings feed was read, also appear on it.
func (s *Service) eligibleSet(roster *player.Roster, asOf time.Time, active ranking.ActiveSet) ranking.ActiveSet {
	recent := s.ranker.ActivePlayers(roster, asOf)
	if active == nil {
		return recent
	}
	both := make(ranking.ActiveSet, len(recent))
	for id := range recent {
		if active.Contains(id) {
			both[id] = struct{}{}
		}
	}
	return both
}

func (s *Service) buildReport(roster *player.Roster, asOf time.Time, eligible ranking.ActiveSet) Report {
	rc := s.cfg.Ranking
	report := Report{
		AsOf:      asOf,
		Active:    len(eligible),
		BySurface: make(map[model.Surface][]types.Entry, len(rc.DisplaySurfaces)),
	}

	display := s.displaySurfaces(roster)
	for _, surface := range display {
		report.BySurface[surface] = s.ranker.TopBySurface(roster, surface, eligible, rc.SurfaceTopN)
	}
	report.Overall = s.ranker.Overall(roster, eligible, rc.TopN)
	report.Specialists = s.ranker.Specialists(roster, display, eligible, rc.TopN)
	report.Rising = s.ranker.RisingPlayers(roster, asOf, rc.TopN)
	return report
}

// displaySurfaces returns the configured display surfaces the roster rates.
func (s *Service) displaySurfaces(roster *player.Roster) []model.Surface {
	out := make([]model.Surface, 0, len(s.cfg.Ranking.DisplaySurfaces))
	for _, name := range s.cfg.Ranking.DisplaySurfaces {
		surface := model.Surface(strings.TrimSpace(name))
		if roster.ValidSurface(surface) {
			out = append(out, surface)
		}
	}
	return out
}

// buildBoards indexes every eligible player per display surface, plus the
// overall board, so single-player lookups do not rescan the roster.
func (s *Service) buildBoards(ctx context.Context, roster *player.Roster, report Report, eligible ranking.ActiveSet) (map[string]*repository.TreapStore, error) {
	boards := make(map[string]*repository.TreapStore, len(report.BySurface)+1)
	for surface := range report.BySurface {
		entries := s.ranker.Eligible(roster, surface, eligible)
		board, err := repository.Load(ctx, entries, repository.WithName(string(surface)))
		if err != nil {
			return nil, fmt.Errorf("build %s board: %w", surface, err)
		}
		boards[string(surface)] = board
	}
	board, err := repository.Load(ctx, s.ranker.Overall(roster, eligible, 0), repository.WithName(BoardOverall))
	if err != nil {
		return nil, fmt.Errorf("build overall board: %w", err)
	}
	boards[BoardOverall] = board
	return boards, nil
}

// Persist writes the last run to every configured sink and, when set, the
// metrics textfile.
func (s *Service) Persist(ctx context.Context) error {
	s.mu.RLock()
	res, report := s.result, s.report
	s.mu.RUnlock()
	if res.Roster == nil {
		return ErrNotRun
	}

	sinks, closeSinks, err := s.buildSinks()
	defer closeSinks()
	if err != nil {
		return err
	}

	snap := store.FromRoster(s.runID, res.Roster, res.Processed, res.Skipped)
	snap.Rankings = rankingsByName(report)
	if err := store.Persist(ctx, snap, sinks...); err != nil {
		return err
	}

	if path := s.cfg.Output.MetricsTextfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			metrics.RecordErrorByComponent("service", "metrics_textfile")
			return fmt.Errorf("write metrics textfile: %w", err)
		}
	}
	return nil
}

func (s *Service) buildSinks() ([]store.Sink, func(), error) {
	out := s.cfg.Output
	var sinks []store.Sink
	closers := []func(){}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if out.JSONPath != "" {
		sink, err := store.NewJSONSink(out.JSONPath)
		if err != nil {
			return nil, closeAll, err
		}
		sinks = append(sinks, sink)
	}
	if out.RankingsPath != "" {
		sink, err := store.NewRankingsSink(out.RankingsPath)
		if err != nil {
			return nil, closeAll, err
		}
		sinks = append(sinks, sink)
	}
	if out.SQLitePath != "" {
		db, err := store.OpenSQLite(out.SQLitePath)
		if err != nil {
			return nil, closeAll, err
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { _ = sqlDB.Close() })
		}
		sinks = append(sinks, store.NewSQLiteSink(db))
	}
	if out.ParquetPath != "" {
		sink, err := store.NewParquetSink(out.ParquetPath)
		if err != nil {
			return nil, closeAll, err
		}
		sinks = append(sinks, sink)
	}
	return append(sinks, s.sinks...), closeAll, nil
}

func rankingsByName(r Report) map[string][]types.Entry {
	out := make(map[string][]types.Entry, len(r.BySurface)+2)
	for surface, entries := range r.BySurface {
		out[string(surface)] = entries
	}
	out[BoardOverall] = r.Overall
	out["rising"] = r.Rising
	return out
}

// Result returns the outcome of the last run.
func (s *Service) Result() engine.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Report returns the leaderboard views of the last run.
func (s *Service) Report() Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// TopN returns the first n entries of a board: a surface name or
// BoardOverall.
func (s *Service) TopN(ctx context.Context, board string, n int) ([]types.Entry, error) {
	b, err := s.board(board)
	if err != nil {
		return nil, err
	}
	return b.TopN(ctx, n)
}

// Lookup returns a player's state and rank on every board they appear on.
func (s *Service) Lookup(ctx context.Context, playerID string) (PlayerView, error) {
	s.mu.RLock()
	roster, boards := s.result.Roster, s.boards
	s.mu.RUnlock()
	if roster == nil {
		return PlayerView{}, ErrNotRun
	}

	st, ok := roster.Get(strings.TrimSpace(playerID))
	if !ok {
		return PlayerView{}, fmt.Errorf("player %q: %w", playerID, repository.ErrNotFound)
	}
	view := PlayerView{State: st.Clone(), Ranks: make(map[string]int, len(boards))}
	for name, b := range boards {
		e, err := b.Rank(ctx, st.ID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return PlayerView{}, err
		}
		view.Ranks[name] = e.Rank
	}
	return view, nil
}

func (s *Service) board(name string) (*repository.TreapStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.boards == nil {
		return nil, ErrNotRun
	}
	b, ok := s.boards[name]
	if !ok {
		return nil, fmt.Errorf("board %q: %w", name, repository.ErrNotFound)
	}
	return b, nil
}
