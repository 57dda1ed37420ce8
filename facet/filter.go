package facet

import (
	"strconv"

	"github.com/jonesrussell/searchkit/search"
)

// deriveFilter translates a selection set into a backend filter
// expression, per facet kind. Returns nil for an empty selection.
func deriveFilter(cfg Config, selected []string) *search.FilterSpec {
	if len(selected) == 0 {
		return nil
	}

	switch cfg.Kind {
	case KindNumber:
		// single-value only
		return &search.FilterSpec{
			Field: cfg.Field,
			Kind:  search.FilterTerm,
			Value: parseNumeric(selected[0]),
		}

	case KindNumberRange, KindRange, KindSlider:
		// selections are an ordered (lower, upper) pair; a lone value
		// collapses to a point range
		gte := parseNumeric(selected[0])
		lte := gte
		if len(selected) > 1 {
			lte = parseNumeric(selected[1])
		}
		return &search.FilterSpec{
			Field: cfg.Field,
			Kind:  search.FilterRange,
			Value: search.RangeValue{Gte: gte, Lte: lte},
		}

	default:
		// text, checkbox, radio, toggle, and any custom kind
		if len(selected) == 1 {
			return &search.FilterSpec{
				Field: cfg.Field,
				Kind:  search.FilterTerm,
				Value: selected[0],
			}
		}
		op := cfg.Operator
		if op == "" {
			op = search.OperatorOr
		}
		return &search.FilterSpec{
			Field:    cfg.Field,
			Kind:     search.FilterTerms,
			Value:    append([]string(nil), selected...),
			Operator: op,
		}
	}
}

// parseNumeric converts a selection key to a number where possible,
// keeping the raw string for keys that are not numeric.
func parseNumeric(key string) any {
	if f, err := strconv.ParseFloat(key, 64); err == nil {
		return f
	}
	return key
}
