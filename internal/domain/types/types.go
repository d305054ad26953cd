// Package types contains common types used across the application
package types

import "time"

// Entry represents a leaderboard row for one player on one view (a surface
// or the weighted overall rating).
type Entry struct {
	Rank          int       `json:"rank"`
	PlayerID      string    `json:"player_id"`
	Name          string    `json:"name"`
	Rating        float64   `json:"rating"`
	Matches       int       `json:"matches"`
	LastMatchDate time.Time `json:"last_match_date"`
}

// Specialist is a player markedly stronger on one surface than on the rest.
type Specialist struct {
	Entry
	Surface   string  `json:"surface"`
	Advantage float64 `json:"advantage"`
}
