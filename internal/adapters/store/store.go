// Package store persists the final roster of a rating run.
//
// A run is captured once as a Snapshot and handed to every configured Sink.
// Sinks never see the live roster, so a slow writer cannot observe a
// half-updated player.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/surfelo/internal/domain/model"
	"github.com/okian/surfelo/internal/domain/player"
	"github.com/okian/surfelo/internal/domain/types"
	"github.com/okian/surfelo/pkg/logger"
	"github.com/okian/surfelo/pkg/metrics"
)

// Sink writes a snapshot somewhere durable.
type Sink interface {
	Name() string
	Write(ctx context.Context, snap Snapshot) error
}

// SurfaceRecord is one surface of a player.
type SurfaceRecord struct {
	Rating   float64
	Matches  int
	Peak     float64
	PeakDate time.Time // zero until a match or decay raised the peak
}

// PlayerRecord is the persisted view of a player.
type PlayerRecord struct {
	ID            string
	Name          string
	Surfaces      map[model.Surface]SurfaceRecord
	TotalMatches  int
	LastMatchDate time.Time // zero when the player never played
}

// Snapshot is the state of a finished run.
type Snapshot struct {
	RunID     string
	CreatedAt time.Time
	Surfaces  []model.Surface
	Processed int
	Skipped   int
	Players   []PlayerRecord // sorted by id

	// Rankings holds the named leaderboard views of the run, if any.
	Rankings map[string][]types.Entry
}

// FromRoster copies the roster into a Snapshot.
func FromRoster(runID string, roster *player.Roster, processed, skipped int) Snapshot {
	snap := Snapshot{
		RunID:     runID,
		CreatedAt: time.Now().UTC(),
		Surfaces:  roster.Surfaces(),
		Processed: processed,
		Skipped:   skipped,
		Players:   make([]PlayerRecord, 0, roster.Len()),
	}
	roster.Each(func(s *player.State) {
		rec := PlayerRecord{
			ID:            s.ID,
			Name:          s.Name,
			Surfaces:      make(map[model.Surface]SurfaceRecord, len(s.Ratings)),
			TotalMatches:  s.TotalMatches,
			LastMatchDate: s.LastMatchDate,
		}
		for surface, rating := range s.Ratings {
			rec.Surfaces[surface] = SurfaceRecord{
				Rating:   rating,
				Matches:  s.MatchesPlayed[surface],
				Peak:     s.PeakRating[surface],
				PeakDate: s.PeakRatingDate[surface],
			}
		}
		snap.Players = append(snap.Players, rec)
	})
	return snap
}

// Persist writes snap to every sink. All sinks are attempted; the first
// error is returned.
func Persist(ctx context.Context, snap Snapshot, sinks ...Sink) error {
	log := logger.Get().Named("store")
	var first error
	for _, sink := range sinks {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		err := sink.Write(ctx, snap)
		ms := float64(time.Since(start).Milliseconds())
		metrics.RecordPersist(sink.Name(), ms, err)
		if err != nil {
			log.Error(ctx, "persist failed", logger.String("sink", sink.Name()), logger.Error(err))
			if first == nil {
				first = fmt.Errorf("%s: %w", sink.Name(), err)
			}
			continue
		}
		log.Info(ctx, "persisted",
			logger.String("sink", sink.Name()),
			logger.Int("players", len(snap.Players)),
			logger.Float64("ms", ms),
		)
	}
	return first
}
