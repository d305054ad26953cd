package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/okian/surfelo/internal/domain/ranking"
	"github.com/okian/surfelo/pkg/metrics"
)

const colPlayer = "player"

// ReadActiveIDs reads the distinct player ids of a rankings feed.
func ReadActiveIDs(ctx context.Context, path string) (ranking.ActiveSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	defer f.Close()

	set, err := DecodeActiveIDs(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	metrics.RecordInputRows(filepath.Base(path), len(set))
	return set, nil
}

// DecodeActiveIDs reads the "player" column of a rankings feed from r.
func DecodeActiveIDs(ctx context.Context, r io.Reader) (ranking.ActiveSet, error) {
	cr := newReader(r)
	idx, err := readHeader(cr, colPlayer)
	if err != nil {
		return nil, err
	}

	set := make(ranking.ActiveSet)
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
		if id := normalizeID(field(rec, idx, colPlayer)); id != "" {
			set[id] = struct{}{}
		}
	}
	return set, nil
}
