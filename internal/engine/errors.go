package engine

import (
	"errors"

	"eftb/internal/astar"
)

var (
	// ErrInvalidParameter is returned before any search starts when a query
	// parameter is malformed.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrNoPath means no route satisfies the query constraints.
	ErrNoPath = errors.New("no path found")
	// ErrTimeout means the search deadline passed first. It is never
	// reported as ErrNoPath.
	ErrTimeout = errors.New("path search timed out")
)

// searchError maps search engine outcomes to engine errors.
func searchError(err error) error {
	switch {
	case errors.Is(err, astar.ErrTimeout):
		return ErrTimeout
	case errors.Is(err, astar.ErrNotFound):
		return ErrNoPath
	}
	return err
}
