// Package source reads match histories and ranking feeds from CSV files in
// the layout of the public ATP match datasets.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/okian/surfelo/internal/domain/model"
	"github.com/okian/surfelo/pkg/metrics"
)

// Match file columns.
const (
	colWinnerID   = "winner_id"
	colLoserID    = "loser_id"
	colWinnerName = "winner_name"
	colLoserName  = "loser_name"
	colSurface    = "surface"
	colDate       = "tourney_date"
	colLevel      = "tourney_level"
	colScore      = "score"
	colTourneyID  = "tourney_id"
	colMatchNum   = "match_num"

	ctxCheckRows = 1024
)

var requiredMatchColumns = []string{colWinnerID, colLoserID, colSurface, colDate}

// Files globs pattern under dataDir (sorted) and appends the extra files
// that exist. Extras that are missing are returned separately so the
// caller can report them. ErrNoInput is returned when nothing matched.
func Files(dataDir, pattern string, extra []string) (files, missing []string, err error) {
	matches, err := filepath.Glob(filepath.Join(dataDir, pattern))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: bad pattern %q: %v", ErrReadInput, pattern, err)
	}
	sort.Strings(matches)
	files = append(files, matches...)

	for _, p := range extra {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if _, statErr := os.Stat(p); statErr != nil {
			missing = append(missing, p)
			continue
		}
		files = append(files, p)
	}
	if len(files) == 0 {
		return nil, missing, fmt.Errorf("%w: %s", ErrNoInput, filepath.Join(dataDir, pattern))
	}
	return files, missing, nil
}

// ReadMatches parses one match file. Rows are returned as-is; validation is
// left to the engine so skipped rows can be counted.
func ReadMatches(ctx context.Context, path string) ([]model.MatchEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	defer f.Close()

	events, err := DecodeMatches(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	metrics.RecordInputRows(filepath.Base(path), len(events))
	return events, nil
}

// DecodeMatches parses match rows from r. The first row is the header.
func DecodeMatches(ctx context.Context, r io.Reader) ([]model.MatchEvent, error) {
	cr := newReader(r)
	idx, err := readHeader(cr, requiredMatchColumns...)
	if err != nil {
		return nil, err
	}

	var events []model.MatchEvent
	for row := 0; ; row++ {
		if row%ctxCheckRows == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrReadInput, row+2, err)
		}
		get := func(col string) string { return field(rec, idx, col) }

		ev := model.MatchEvent{
			WinnerID:    normalizeID(get(colWinnerID)),
			LoserID:     normalizeID(get(colLoserID)),
			WinnerName:  get(colWinnerName),
			LoserName:   get(colLoserName),
			Surface:     model.Surface(get(colSurface)),
			TourneyDate: get(colDate),
			TourneyLvl:  get(colLevel),
			Score:       get(colScore),
		}
		if tid, num := get(colTourneyID), get(colMatchNum); tid != "" && num != "" {
			ev.MatchID = tid + "-" + normalizeID(num)
		}
		events = append(events, ev)
	}
	return events, nil
}

// ReadAll reads every file in order. With sortByDate the combined events
// are stable-sorted by tournament date, keeping file order within a date;
// rows with unparseable dates go last.
func ReadAll(ctx context.Context, files []string, sortByDate bool) ([]model.MatchEvent, error) {
	var all []model.MatchEvent
	for _, p := range files {
		events, err := ReadMatches(ctx, p)
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
	}
	if sortByDate {
		SortByDate(all)
	}
	return all, nil
}

// SortByDate stable-sorts events by tournament date.
func SortByDate(events []model.MatchEvent) {
	keys := make([]time.Time, len(events))
	valid := make([]bool, len(events))
	for i := range events {
		keys[i], valid[i] = events[i].Date()
	}
	order := make([]int, len(events))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if valid[i] != valid[j] {
			return valid[i]
		}
		return keys[i].Before(keys[j])
	})
	sorted := make([]model.MatchEvent, len(events))
	for k, i := range order {
		sorted[k] = events[i]
	}
	copy(events, sorted)
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return cr
}

// readHeader maps column names to positions and checks required columns.
func readHeader(cr *csv.Reader, required ...string) (map[string]int, error) {
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrReadInput, err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return idx, nil
}

func field(rec []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// normalizeID drops a trailing ".0" left by spreadsheet exports of integer
// ids.
func normalizeID(id string) string {
	return strings.TrimSuffix(strings.TrimSpace(id), ".0")
}
