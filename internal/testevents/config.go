// Package testevents generates synthetic match histories in the dataset CSV
// layout and checks that a rating run recovers the hidden player strengths
// they were drawn from.
package testevents

import "time"

// Config holds configuration for a synthetic history.
type Config struct {
	OutputDir        string  // directory receiving atp_matches_YYYY.csv and the rankings feed
	Players          int     // number of synthetic players
	Seasons          int     // number of yearly files
	MatchesPerSeason int     // matches per yearly file
	StartYear        int     // year of the first file
	Seed             int64   // generator seed; equal seeds give byte-identical files
	SkillSpread      float64 // width of the hidden strength range, in rating points
	Verify           bool    // rate the history afterwards and report agreement
	MinCorrelation   float64 // fail verification below this rank correlation
	Verbose          bool
}

// Player is a synthetic competitor. Skill is the strength results are drawn
// from; Surface shifts it per surface.
type Player struct {
	ID      string
	Name    string
	Skill   float64
	Surface map[string]float64
}

// Stats holds run statistics.
type Stats struct {
	Files       int
	Matches     int
	Players     int
	Correlation float64 // Spearman correlation of hidden skill and Hard rating
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}
