// Package repository indexes leaderboard entries for ordered reads.
package repository

import (
	"context"

	"github.com/okian/surfelo/internal/domain/types"
)

// Store provides read/write access to one leaderboard (a surface or the
// overall view).
type Store interface {
	// Set inserts or replaces the entry for e.PlayerID. Rank is ignored.
	Set(ctx context.Context, e types.Entry) error

	// Remove drops a player. Returns ErrNotFound if the player is unknown.
	Remove(ctx context.Context, playerID string) error

	// Rank returns the current rank and rating for a player.
	// Returns ErrNotFound if the player is unknown.
	Rank(ctx context.Context, playerID string) (types.Entry, error)

	// TopN returns the top-N entries ordered by rating desc.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of players in the leaderboard.
	Count(ctx context.Context) int
}
