package engine

import "errors"

// Configuration errors. They are detected before a run's loop starts; a run
// returning one leaves its container untouched.
var (
	ErrUnknownInitHeuristic   = errors.New("unknown init sorting heuristic")
	ErrUnknownCornerHeuristic = errors.New("unknown corner sorting heuristic")
	ErrInvalidTypePermutation = errors.New("type permutation must rearrange exactly the catalog's package types")
	ErrInvalidSortKey         = errors.New("sorting heuristic produced a NaN key")
	ErrTooManyTypes           = errors.New("too many package types to enumerate permutations")
	ErrInvalidSearchConfig    = errors.New("invalid order search configuration")
)
