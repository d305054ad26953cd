package engine

import (
	"errors"
	"fmt"
)

// Sentinel kinds for rejected match events. Every validation failure wraps
// ErrMalformedEvent; duplicates are reported separately.
var (
	ErrMalformedEvent = errors.New("malformed match event")

	ErrMissingID      = fmt.Errorf("%w: missing player id", ErrMalformedEvent)
	ErrSamePlayer     = fmt.Errorf("%w: winner and loser are the same player", ErrMalformedEvent)
	ErrInvalidSurface = fmt.Errorf("%w: invalid surface", ErrMalformedEvent)
	ErrInvalidDate    = fmt.Errorf("%w: invalid tournament date", ErrMalformedEvent)

	ErrDuplicateMatch = errors.New("duplicate match")
)

// Skip reasons reported in Result.SkipReasons and the skipped-matches metric.
const (
	ReasonMissingID      = "missing_id"
	ReasonSamePlayer     = "same_player"
	ReasonInvalidSurface = "invalid_surface"
	ReasonInvalidDate    = "invalid_date"
	ReasonDuplicate      = "duplicate"
	ReasonMalformed      = "malformed"
)

// SkipReason maps a rejection error to its reason label.
func SkipReason(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateMatch):
		return ReasonDuplicate
	case errors.Is(err, ErrMissingID):
		return ReasonMissingID
	case errors.Is(err, ErrSamePlayer):
		return ReasonSamePlayer
	case errors.Is(err, ErrInvalidSurface):
		return ReasonInvalidSurface
	case errors.Is(err, ErrInvalidDate):
		return ReasonInvalidDate
	default:
		return ReasonMalformed
	}
}
