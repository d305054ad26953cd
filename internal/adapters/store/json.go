package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/okian/surfelo/internal/domain/model"
	"github.com/okian/surfelo/internal/domain/types"
)

const isoDate = "2006-01-02"

type jsonPlayer struct {
	Name            string             `json:"name"`
	Ratings         map[string]float64 `json:"ratings"`
	MatchesPlayed   map[string]int     `json:"matches_played"`
	TotalMatches    int                `json:"total_matches"`
	LastMatchDate   *string            `json:"last_match_date"`
	PeakRatings     map[string]float64 `json:"peak_ratings"`
	PeakRatingDates map[string]*string `json:"peak_rating_dates"`
}

// JSONSink writes the roster as one object keyed by player id.
type JSONSink struct {
	path string
}

// NewJSONSink returns a sink writing to path.
func NewJSONSink(path string) (*JSONSink, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	return &JSONSink{path: path}, nil
}

// Name implements Sink.
func (s *JSONSink) Name() string { return "json" }

// Write implements Sink.
func (s *JSONSink) Write(ctx context.Context, snap Snapshot) error {
	out := make(map[string]jsonPlayer, len(snap.Players))
	for _, p := range snap.Players {
		jp := jsonPlayer{
			Name:            p.Name,
			Ratings:         make(map[string]float64, len(p.Surfaces)),
			MatchesPlayed:   make(map[string]int, len(p.Surfaces)),
			TotalMatches:    p.TotalMatches,
			LastMatchDate:   formatDate(p.LastMatchDate),
			PeakRatings:     make(map[string]float64, len(p.Surfaces)),
			PeakRatingDates: make(map[string]*string, len(p.Surfaces)),
		}
		for surface, r := range p.Surfaces {
			k := string(surface)
			jp.Ratings[k] = r.Rating
			jp.MatchesPlayed[k] = r.Matches
			jp.PeakRatings[k] = r.Peak
			jp.PeakRatingDates[k] = formatDate(r.PeakDate)
		}
		out[p.ID] = jp
	}
	return writeJSONFile(s.path, out)
}

// ReadJSON loads players written by JSONSink, sorted by id.
func ReadJSON(path string) ([]PlayerRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var in map[string]jsonPlayer
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}

	out := make([]PlayerRecord, 0, len(in))
	for id, jp := range in {
		last, err := parseDate(jp.LastMatchDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: player %s: %v", ErrDecode, path, id, err)
		}
		rec := PlayerRecord{
			ID:            id,
			Name:          jp.Name,
			Surfaces:      make(map[model.Surface]SurfaceRecord, len(jp.Ratings)),
			TotalMatches:  jp.TotalMatches,
			LastMatchDate: last,
		}
		for k, rating := range jp.Ratings {
			peakDate, err := parseDate(jp.PeakRatingDates[k])
			if err != nil {
				return nil, fmt.Errorf("%w: %s: player %s: %v", ErrDecode, path, id, err)
			}
			rec.Surfaces[model.Surface(k)] = SurfaceRecord{
				Rating:   rating,
				Matches:  jp.MatchesPlayed[k],
				Peak:     jp.PeakRatings[k],
				PeakDate: peakDate,
			}
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type jsonRankings struct {
	RunID       string                   `json:"run_id"`
	GeneratedAt string                   `json:"generated_at"`
	Rankings    map[string][]types.Entry `json:"rankings"`
}

// RankingsSink writes the snapshot's leaderboard views.
type RankingsSink struct {
	path string
}

// NewRankingsSink returns a sink writing to path.
func NewRankingsSink(path string) (*RankingsSink, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	return &RankingsSink{path: path}, nil
}

// Name implements Sink.
func (s *RankingsSink) Name() string { return "rankings" }

// Write implements Sink.
func (s *RankingsSink) Write(ctx context.Context, snap Snapshot) error {
	rankings := snap.Rankings
	if rankings == nil {
		rankings = map[string][]types.Entry{}
	}
	return writeJSONFile(s.path, jsonRankings{
		RunID:       snap.RunID,
		GeneratedAt: snap.CreatedAt.UTC().Format(time.RFC3339),
		Rankings:    rankings,
	})
}

// writeJSONFile writes v through a temp file in the same directory so the
// destination is replaced whole or not at all.
func writeJSONFile(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func formatDate(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(isoDate)
	return &s
}

func parseDate(s *string) (time.Time, error) {
	if s == nil || *s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(isoDate, *s, time.UTC)
}
