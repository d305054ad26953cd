package testevents

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/okian/surfelo/internal/domain/rating"
	"github.com/okian/surfelo/pkg/logger"
)

// Tournament shape: consecutive matches share a tournament id, date,
// surface and level.
const (
	matchesPerTournament = 32
	firstPlayerID        = 900001
)

var matchHeader = []string{
	"tourney_id", "tourney_name", "surface", "tourney_level", "tourney_date", "match_num",
	"winner_id", "winner_name", "loser_id", "loser_name", "score",
}

// generatePlayers draws hidden strengths for cfg.Players players.
func generatePlayers(rng *rand.Rand, cfg *Config) []Player {
	players := make([]Player, cfg.Players)
	for i := range players {
		p := Player{
			ID:      strconv.Itoa(firstPlayerID + i),
			Name:    fmt.Sprintf("Player %03d", i+1),
			Skill:   skillCentre + (rng.Float64()-0.5)*cfg.SkillSpread,
			Surface: make(map[string]float64, 4),
		}
		for _, s := range []string{"Carpet", "Clay", "Grass", "Hard"} {
			p.Surface[s] = (rng.Float64() - 0.5) * surfaceShift
		}
		players[i] = p
	}
	return players
}

// strength is the player's hidden strength on surface.
func (p Player) strength(surface string) float64 {
	return p.Skill + p.Surface[surface]
}

// generateSeason draws n matches spread over year. Results follow the
// logistic expected score of the hidden strengths.
func generateSeason(rng *rand.Rand, players []Player, year, n int) [][]string {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	tournaments := (n + matchesPerTournament - 1) / matchesPerTournament

	rows := make([][]string, 0, n)
	for t := 0; t < tournaments; t++ {
		date := start.AddDate(0, 0, t*365/tournaments)
		surface := surfaceMix[rng.Intn(len(surfaceMix))]
		level := levelMix[rng.Intn(len(levelMix))]
		tid := fmt.Sprintf("%d-%04d", year, t+1)

		for m := 0; m < matchesPerTournament && len(rows) < n; m++ {
			a, b := pickPair(rng, len(players))
			pa, pb := players[a], players[b]
			winner, loser := pa, pb
			if rng.Float64() >= rating.ExpectedScore(pa.strength(surface), pb.strength(surface)) {
				winner, loser = pb, pa
			}
			rows = append(rows, []string{
				tid,
				"Synthetic " + surface + " " + strconv.Itoa(t+1),
				surface,
				level,
				date.Format("20060102"),
				strconv.Itoa(m + 1),
				winner.ID, winner.Name,
				loser.ID, loser.Name,
				randomScore(rng),
			})
		}
	}
	return rows
}

func pickPair(rng *rand.Rand, n int) (int, int) {
	a := rng.Intn(n)
	b := rng.Intn(n - 1)
	if b >= a {
		b++
	}
	return a, b
}

// randomScore returns a best-of-three score won by the first side.
func randomScore(rng *rand.Rand) string {
	set := func() string {
		switch l := rng.Intn(7); {
		case l <= 4:
			return fmt.Sprintf("6-%d", l)
		case l == 5:
			return "7-5"
		default:
			return fmt.Sprintf("7-6(%d)", rng.Intn(8))
		}
	}
	if rng.Intn(3) == 0 {
		lost := fmt.Sprintf("%d-6", rng.Intn(5))
		return set() + " " + lost + " " + set()
	}
	return set() + " " + set()
}

// generateHistory writes one file per season plus a rankings feed listing
// players by hidden Hard strength. It returns the players and file paths.
func generateHistory(ctx context.Context, cfg *Config, stats *Stats) ([]Player, []string, error) {
	log := logger.Get().Named("testevents")
	rng := rand.New(rand.NewSource(cfg.Seed))
	players := generatePlayers(rng, cfg)

	if err := os.MkdirAll(cfg.OutputDir, directoryPermission); err != nil {
		return nil, nil, fmt.Errorf("create output dir: %w", err)
	}

	var files []string
	for s := 0; s < cfg.Seasons; s++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		year := cfg.StartYear + s
		rows := generateSeason(rng, players, year, cfg.MatchesPerSeason)
		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("atp_matches_%d.csv", year))
		if err := writeCSV(path, matchHeader, rows); err != nil {
			return nil, nil, err
		}
		files = append(files, path)
		stats.Matches += len(rows)
		log.Info(ctx, "wrote season", logger.String("path", path), logger.Int("matches", len(rows)))
	}

	if err := writeRankings(cfg, players); err != nil {
		return nil, nil, err
	}
	stats.Files = len(files)
	stats.Players = len(players)
	return players, files, nil
}

func writeRankings(cfg *Config, players []Player) error {
	ranked := make([]Player, len(players))
	copy(ranked, players)
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].strength("Hard") > ranked[j].strength("Hard") })

	date := fmt.Sprintf("%d1231", cfg.StartYear+cfg.Seasons-1)
	rows := make([][]string, len(ranked))
	for i, p := range ranked {
		rows[i] = []string{date, strconv.Itoa(i + 1), p.ID, strconv.Itoa(int(p.strength("Hard")))}
	}
	return writeCSV(filepath.Join(cfg.OutputDir, RankingsFile), []string{"ranking_date", "rank", "player", "points"}, rows)
}

// RankingsFile is the name of the generated rankings feed.
const RankingsFile = "atp_rankings_current.csv"

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
