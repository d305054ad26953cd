// Package model contains domain models passed between layers.
package model

import "time"

// UnknownPlayerName is the placeholder used when a source row has no name.
const UnknownPlayerName = "Unknown"

// Surface is a playing-court category; ratings are tracked per surface.
type Surface string

// MatchEvent is one completed match as read from a match source. It is
// immutable once handed to the engine.
type MatchEvent struct {
	MatchID     string // tourney id + match number; empty when the source has none
	WinnerID    string // stable competitor id
	LoserID     string
	WinnerName  string
	LoserName   string
	Surface     Surface
	TourneyDate string // raw YYYYMMDD text
	TourneyLvl  string // tournament level code, e.g. "G", "M", "A"
	Score       string // raw score text, e.g. "6-4 3-6 7-6(5)"
}

// Date parses the tournament date.
func (e MatchEvent) Date() (time.Time, bool) {
	return ParseTourneyDate(e.TourneyDate)
}

// Games extracts the winner's and loser's game totals from the score.
func (e MatchEvent) Games() (winner, loser int, ok bool) {
	return ParseScore(e.Score)
}
