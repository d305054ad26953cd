package engine

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/okian/surfelo/internal/domain/decay"
	"github.com/okian/surfelo/internal/domain/dedupe"
	"github.com/okian/surfelo/internal/domain/model"
	"github.com/okian/surfelo/internal/domain/player"
	"github.com/okian/surfelo/pkg/logger"
	"github.com/okian/surfelo/pkg/metrics"
)

// Defaults used by NewBatch.
const (
	DefaultDecayFrequency    = 1000
	DefaultProgressFrequency = 5000
	DefaultMaxRatingChange   = 200.0
)

// Result is the outcome of a batch run.
type Result struct {
	Roster *player.Roster

	Processed   int
	Skipped     int
	SkipReasons map[string]int
	DecaySweeps int
	Suspicious  int

	// Interrupted is set when ctx was cancelled before every event was read.
	Interrupted bool
	Duration    time.Duration
}

// Batch folds ordered match events through a Processor. Events must be in
// non-decreasing date order; out-of-order input is not rejected but the
// ratings it produces are not meaningful.
type Batch struct {
	processor *Processor
	decay     *decay.Model
	deduper   dedupe.Deduper
	roster    *player.Roster

	decayFrequency    int
	progressFrequency int
	maxRatingChange   float64

	logger logger.Logger
}

// NewBatch creates a Batch around processor.
func NewBatch(processor *Processor, opts ...BatchOption) *Batch {
	b := &Batch{
		processor:         processor,
		decay:             decay.NewModel(),
		decayFrequency:    DefaultDecayFrequency,
		progressFrequency: DefaultProgressFrequency,
		maxRatingChange:   DefaultMaxRatingChange,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.processor == nil {
		b.processor = NewProcessor()
	}
	if b.roster == nil {
		b.roster = player.NewRoster()
	}
	if b.logger == nil {
		b.logger = logger.Get().Named("engine")
	}
	return b
}

// Run processes events in order into the batch roster. Every
// decayFrequency-th successful match triggers a decay sweep dated at that
// match. Invalid events are counted and skipped. Cancelling ctx stops the
// fold between events.
func (b *Batch) Run(ctx context.Context, events []model.MatchEvent) Result {
	start := time.Now()
	res := Result{
		Roster:      b.roster,
		SkipReasons: make(map[string]int),
	}

	for i, ev := range events {
		if ctx.Err() != nil {
			res.Interrupted = true
			b.logger.Warn(ctx, "batch interrupted",
				logger.Int("index", i),
				logger.Int("remaining", len(events)-i),
			)
			break
		}

		o, err := b.apply(ev)
		if err != nil {
			reason := SkipReason(err)
			res.Skipped++
			res.SkipReasons[reason]++
			metrics.RecordMatchSkipped(reason)
			b.logger.Debug(ctx, "match skipped",
				logger.Int("index", i),
				logger.String("match", ev.MatchID),
				logger.String("reason", reason),
				logger.Error(err),
			)
			continue
		}

		res.Processed++
		metrics.RecordMatchProcessed()
		metrics.RecordRatingDelta(math.Abs(o.WinnerDelta()))
		metrics.RecordRatingDelta(math.Abs(o.LoserDelta()))

		if o.Suspicious(b.maxRatingChange) {
			res.Suspicious++
			metrics.RecordSuspiciousChange()
			b.logger.Warn(ctx, "suspicious rating change",
				logger.String("match", ev.MatchID),
				logger.String("winner", o.WinnerID),
				logger.String("loser", o.LoserID),
				logger.Float64("winnerDelta", o.WinnerDelta()),
				logger.Float64("loserDelta", o.LoserDelta()),
			)
		}

		if b.decayFrequency > 0 && res.Processed%b.decayFrequency == 0 {
			n := b.decay.Apply(res.Roster, o.Date)
			res.DecaySweeps++
			metrics.RecordDecaySweep(n)
			b.logger.Debug(ctx, "decay applied",
				logger.String("date", o.Date.Format(time.DateOnly)),
				logger.Int("decayed", n),
			)
		}

		if b.progressFrequency > 0 && res.Processed%b.progressFrequency == 0 {
			b.logger.Info(ctx, "progress",
				logger.Int("processed", res.Processed),
				logger.Int("skipped", res.Skipped),
				logger.Int("players", res.Roster.Len()),
			)
		}
	}

	res.Duration = time.Since(start)
	metrics.UpdatePlayers(res.Roster.Len())
	metrics.RecordBatchDuration(float64(res.Duration.Milliseconds()))
	b.logger.Info(ctx, "batch complete",
		logger.Int("processed", res.Processed),
		logger.Int("skipped", res.Skipped),
		logger.Int("players", res.Roster.Len()),
		logger.Int("decaySweeps", res.DecaySweeps),
		logger.Duration("took", res.Duration),
	)
	return res
}

// apply runs duplicate detection around the processor. A match id is only
// remembered once its event has been accepted.
func (b *Batch) apply(ev model.MatchEvent) (Outcome, error) {
	id := strings.TrimSpace(ev.MatchID)
	if b.deduper == nil || id == "" {
		return b.processor.Apply(b.roster, ev)
	}
	if b.deduper.SeenAndRecord(id) {
		return Outcome{}, ErrDuplicateMatch
	}
	o, err := b.processor.Apply(b.roster, ev)
	if err != nil {
		b.deduper.Unrecord(id)
	}
	return o, err
}
