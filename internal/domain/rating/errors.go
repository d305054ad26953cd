package rating

import "errors"

// Sentinel kinds for rating configuration errors.
var (
	ErrUnknownPenaltyStrategy = errors.New("unknown penalty strategy")
)
