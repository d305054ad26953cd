package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/okian/surfelo/internal/domain/model"
)

const sqliteBatchSize = 500

// RunRow records one rating run.
type RunRow struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
	Processed int
	Skipped   int
	Players   int
}

// TableName implements gorm's tabler.
func (RunRow) TableName() string { return "runs" }

// PlayerRow is a player as of a run.
type PlayerRow struct {
	RunID         string `gorm:"primaryKey"`
	PlayerID      string `gorm:"primaryKey"`
	Name          string
	TotalMatches  int
	LastMatchDate *time.Time
}

// TableName implements gorm's tabler.
func (PlayerRow) TableName() string { return "players" }

// RatingRow is one surface rating of a player as of a run.
type RatingRow struct {
	RunID    string  `gorm:"primaryKey"`
	PlayerID string  `gorm:"primaryKey"`
	Surface  string  `gorm:"primaryKey"`
	Rating   float64 `gorm:"index"`
	Matches  int
	Peak     float64
	PeakDate *time.Time
}

// TableName implements gorm's tabler.
func (RatingRow) TableName() string { return "ratings" }

// OpenSQLite opens (creating if needed) a SQLite database and migrates the
// run tables.
func OpenSQLite(path string) (*gorm.DB, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&RunRow{}, &PlayerRow{}, &RatingRow{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return db, nil
}

// SQLiteSink appends each run to a SQLite database.
type SQLiteSink struct {
	db *gorm.DB
}

// NewSQLiteSink wraps an opened database.
func NewSQLiteSink(db *gorm.DB) *SQLiteSink {
	return &SQLiteSink{db: db}
}

// Name implements Sink.
func (s *SQLiteSink) Name() string { return "sqlite" }

// Write implements Sink. The run and all its rows commit together.
func (s *SQLiteSink) Write(ctx context.Context, snap Snapshot) error {
	players := make([]PlayerRow, 0, len(snap.Players))
	ratings := make([]RatingRow, 0, len(snap.Players)*len(snap.Surfaces))
	for _, p := range snap.Players {
		players = append(players, PlayerRow{
			RunID:         snap.RunID,
			PlayerID:      p.ID,
			Name:          p.Name,
			TotalMatches:  p.TotalMatches,
			LastMatchDate: timePtr(p.LastMatchDate),
		})
		for _, surface := range sortedSurfaces(p.Surfaces) {
			r := p.Surfaces[surface]
			ratings = append(ratings, RatingRow{
				RunID:    snap.RunID,
				PlayerID: p.ID,
				Surface:  string(surface),
				Rating:   r.Rating,
				Matches:  r.Matches,
				Peak:     r.Peak,
				PeakDate: timePtr(r.PeakDate),
			})
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run := RunRow{
			ID:        snap.RunID,
			CreatedAt: snap.CreatedAt,
			Processed: snap.Processed,
			Skipped:   snap.Skipped,
			Players:   len(snap.Players),
		}
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		if len(players) > 0 {
			if err := tx.CreateInBatches(players, sqliteBatchSize).Error; err != nil {
				return fmt.Errorf("insert players: %w", err)
			}
		}
		if len(ratings) > 0 {
			if err := tx.CreateInBatches(ratings, sqliteBatchSize).Error; err != nil {
				return fmt.Errorf("insert ratings: %w", err)
			}
		}
		return nil
	})
}

// LatestRun returns the most recent run.
func LatestRun(ctx context.Context, db *gorm.DB) (RunRow, error) {
	var run RunRow
	err := db.WithContext(ctx).Order("created_at DESC").First(&run).Error
	return run, err
}

// TopRatings returns the n highest ratings on surface for a run.
func TopRatings(ctx context.Context, db *gorm.DB, runID string, surface model.Surface, n int) ([]RatingRow, error) {
	var rows []RatingRow
	err := db.WithContext(ctx).
		Where("run_id = ? AND surface = ?", runID, string(surface)).
		Order("rating DESC, player_id ASC").
		Limit(n).
		Find(&rows).Error
	return rows, err
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func sortedSurfaces(m map[model.Surface]SurfaceRecord) []model.Surface {
	out := make([]model.Surface, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
