package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	service "github.com/okian/surfelo/internal/app"
	"github.com/okian/surfelo/internal/adapters/source"
	"github.com/okian/surfelo/internal/adapters/store"
	. "github.com/smartystreets/goconvey/convey"
)

const matchHeader = "tourney_id,tourney_level,tourney_date,match_num,surface,winner_id,winner_name,loser_id,loser_name,score"

// writeSeason writes a file where "100" beats "200" on Hard every week and
// "300" beats "100" on Clay once.
func writeSeason(t *testing.T, dir, name string, year, weeks int) {
	t.Helper()
	var b strings.Builder
	b.WriteString(matchHeader + "\n")
	for w := 0; w < weeks; w++ {
		fmt.Fprintf(&b, "%d-%03d,A,%d%02d%02d,1,Hard,100,Alpha,200,Beta,6-3 6-4\n", year, w, year, 1+w/4, 1+(w%4)*7)
	}
	fmt.Fprintf(&b, "%d-900,M,%d1201,1,Clay,300,Gamma,100,Alpha,7-6(5) 6-4\n", year, year)
	if err := os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0o600); err != nil {
		t.Fatalf("write season: %v", err)
	}
}

func TestService_RunEndToEnd(t *testing.T) {
	Convey("Given match files, a rankings feed and all outputs configured", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		dataDir := filepath.Join(dir, "data")
		outDir := filepath.Join(dir, "out")
		So(os.MkdirAll(dataDir, 0o755), ShouldBeNil)

		writeSeason(t, dataDir, "atp_matches_2023.csv", 2023, 12)
		writeSeason(t, dataDir, "atp_matches_2024.csv", 2024, 12)
		// The current-season file overlaps the 2024 file.
		writeSeason(t, dataDir, "current.csv", 2024, 12)
		rankings := filepath.Join(dataDir, "atp_rankings_current.csv")
		So(os.WriteFile(rankings, []byte("ranking_date,rank,player,points\n20241202,1,100,5000\n20241202,2,200,4000\n"), 0o600), ShouldBeNil)

		cfg := smallConfig()
		cfg.Input.DataDir = dataDir
		cfg.Input.Pattern = "atp_matches_*.csv"
		cfg.Input.ExtraFiles = []string{filepath.Join(dataDir, "current.csv"), filepath.Join(dataDir, "missing.csv")}
		cfg.Input.RankingsFile = rankings
		cfg.Output.JSONPath = filepath.Join(outDir, "ratings.json")
		cfg.Output.RankingsPath = filepath.Join(outDir, "rankings.json")
		cfg.Output.SQLitePath = filepath.Join(outDir, "ratings.db")
		cfg.Output.ParquetPath = filepath.Join(outDir, "ratings.parquet")
		cfg.Output.MetricsTextfile = filepath.Join(outDir, "surfelo.prom")
		So(os.MkdirAll(outDir, 0o755), ShouldBeNil)

		svc, err := service.New(cfg, service.WithRunID("it-run"))
		So(err, ShouldBeNil)

		Convey("When the run completes", func() {
			res, err := svc.Run(ctx)
			So(err, ShouldBeNil)

			Convey("Overlapping rows are rated once", func() {
				So(res.Processed, ShouldEqual, 26)
				So(res.SkipReasons["duplicate"], ShouldEqual, 13)
			})

			Convey("The ratings file holds every player", func() {
				players, err := store.ReadJSON(cfg.Output.JSONPath)
				So(err, ShouldBeNil)
				So(players, ShouldHaveLength, 3)
				So(players[0].ID, ShouldEqual, "100")
				So(players[0].Name, ShouldEqual, "Alpha")
				So(players[0].TotalMatches, ShouldEqual, 26)
				So(players[0].LastMatchDate.Format("2006-01-02"), ShouldEqual, "2024-12-01")
				So(players[0].Surfaces["Hard"].Rating, ShouldBeGreaterThan, players[1].Surfaces["Hard"].Rating)
			})

			Convey("Players missing from the rankings feed are not ranked", func() {
				raw, err := os.ReadFile(cfg.Output.RankingsPath)
				So(err, ShouldBeNil)
				var doc struct {
					RunID    string `json:"run_id"`
					Rankings map[string][]struct {
						PlayerID string `json:"player_id"`
					} `json:"rankings"`
				}
				So(json.Unmarshal(raw, &doc), ShouldBeNil)
				So(doc.RunID, ShouldEqual, "it-run")
				So(doc.Rankings["Hard"], ShouldHaveLength, 2)
				for _, e := range doc.Rankings["overall"] {
					So(e.PlayerID, ShouldNotEqual, "300")
				}
			})

			Convey("The database records the run", func() {
				db, err := store.OpenSQLite(cfg.Output.SQLitePath)
				So(err, ShouldBeNil)
				run, err := store.LatestRun(ctx, db)
				So(err, ShouldBeNil)
				So(run.ID, ShouldEqual, "it-run")
				So(run.Processed, ShouldEqual, 26)
				So(run.Players, ShouldEqual, 3)
			})

			Convey("The parquet export and metrics textfile exist", func() {
				info, err := os.Stat(cfg.Output.ParquetPath)
				So(err, ShouldBeNil)
				So(info.Size(), ShouldBeGreaterThan, 0)

				prom, err := os.ReadFile(cfg.Output.MetricsTextfile)
				So(err, ShouldBeNil)
				So(string(prom), ShouldContainSubstring, "matches_processed_total")
			})
		})
	})

	Convey("Given a data directory without match files", t, func() {
		cfg := smallConfig()
		cfg.Input.DataDir = t.TempDir()
		svc, err := service.New(cfg)
		So(err, ShouldBeNil)

		_, err = svc.Run(context.Background())
		So(errors.Is(err, source.ErrNoInput), ShouldBeTrue)
	})
}
