package coordinator

import (
	"context"

	"github.com/jonesrussell/searchkit/search"
)

// Adapter is the coordinator's sole backend dependency. Implementations
// own all transport concerns (timeouts, retries, authentication).
type Adapter interface {
	Search(ctx context.Context, q search.Query) (*search.Response, error)
}

// SuggestOptions tunes a suggestion request.
type SuggestOptions struct {
	MaxSuggestions int
	Fields         []string
	Fuzzy          bool
}

// Suggester is an optional adapter extension. An adapter that does not
// implement it disables the suggestion pipeline entirely.
type Suggester interface {
	Suggest(ctx context.Context, text string, opts SuggestOptions) ([]search.Suggestion, error)
}

// Getter is an optional adapter extension for direct document lookup.
// A missing document is reported as (nil, nil).
type Getter interface {
	GetByID(ctx context.Context, id string) (any, error)
}

// ReadinessChecker is an optional adapter extension used before first
// use.
type ReadinessChecker interface {
	IsReady(ctx context.Context) (bool, error)
}

// Destroyer is an optional adapter extension invoked exactly once when
// the coordinator is closed.
type Destroyer interface {
	Destroy()
}
