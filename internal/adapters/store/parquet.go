package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// ParquetRow is one player-surface row of the columnar export.
type ParquetRow struct {
	RunID         string  `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	PlayerID      string  `parquet:"name=player_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Name          string  `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Surface       string  `parquet:"name=surface, type=BYTE_ARRAY, convertedtype=UTF8"`
	Rating        float64 `parquet:"name=rating, type=DOUBLE"`
	Matches       int32   `parquet:"name=matches, type=INT32"`
	PeakRating    float64 `parquet:"name=peak_rating, type=DOUBLE"`
	PeakDate      string  `parquet:"name=peak_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	TotalMatches  int32   `parquet:"name=total_matches, type=INT32"`
	LastMatchDate string  `parquet:"name=last_match_date, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// ParquetSink exports one row per player and surface.
type ParquetSink struct {
	path string
}

// NewParquetSink returns a sink writing to path.
func NewParquetSink(path string) (*ParquetSink, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	return &ParquetSink{path: path}, nil
}

// Name implements Sink.
func (s *ParquetSink) Name() string { return "parquet" }

// Write implements Sink.
func (s *ParquetSink) Write(ctx context.Context, snap Snapshot) error {
	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create parquet: %w", err)
	}
	fw := writerfile.NewWriterFile(file)
	pw, err := writer.NewParquetWriter(fw, new(ParquetRow), 1)
	if err != nil {
		file.Close()
		return fmt.Errorf("parquet schema: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, p := range snap.Players {
		if err := ctx.Err(); err != nil {
			_ = pw.WriteStop()
			file.Close()
			return err
		}
		for _, surface := range sortedSurfaces(p.Surfaces) {
			r := p.Surfaces[surface]
			row := &ParquetRow{
				RunID:         snap.RunID,
				PlayerID:      p.ID,
				Name:          p.Name,
				Surface:       string(surface),
				Rating:        r.Rating,
				Matches:       int32(r.Matches),
				PeakRating:    r.Peak,
				PeakDate:      dateText(r.PeakDate),
				TotalMatches:  int32(p.TotalMatches),
				LastMatchDate: dateText(p.LastMatchDate),
			}
			if err := pw.Write(row); err != nil {
				_ = pw.WriteStop()
				file.Close()
				return fmt.Errorf("parquet write: %w", err)
			}
		}
	}
	if err := pw.WriteStop(); err != nil {
		file.Close()
		return fmt.Errorf("parquet flush: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close parquet file: %w", err)
	}
	return nil
}

func dateText(t time.Time) string {
	if s := formatDate(t); s != nil {
		return *s
	}
	return ""
}
