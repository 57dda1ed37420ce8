package elastic

import (
	"encoding/json"
	"strings"

	"github.com/jonesrussell/searchkit/search"
)

// buildBody assembles the full request body for one query.
func (a *Adapter) buildBody(q search.Query) map[string]any {
	body := map[string]any{
		"query": a.buildBoolQuery(q),
		"from":  q.Offset,
		"size":  q.Size,
	}
	if sort := buildSort(q.Sort); len(sort) > 0 {
		body["sort"] = sort
	}
	if a.cfg.HighlightEnabled {
		body["highlight"] = a.buildHighlight()
	}
	if len(a.cfg.Aggregations) > 0 {
		body["aggs"] = a.cfg.Aggregations
	}
	return body
}

func (a *Adapter) buildBoolQuery(q search.Query) map[string]any {
	boolQuery := map[string]any{}

	if strings.TrimSpace(q.Text) != "" {
		boolQuery["must"] = []any{a.buildMultiMatch(q.Text)}
	} else {
		boolQuery["must"] = []any{map[string]any{"match_all": map[string]any{}}}
	}

	var filter, mustNot []any
	for _, f := range q.Filters {
		clause, negated := buildFilterClause(f)
		if clause == nil {
			continue
		}
		if negated {
			mustNot = append(mustNot, clause...)
		} else {
			filter = append(filter, clause...)
		}
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	if len(mustNot) > 0 {
		boolQuery["must_not"] = mustNot
	}

	return map[string]any{"bool": boolQuery}
}

func (a *Adapter) buildMultiMatch(text string) map[string]any {
	return map[string]any{
		"multi_match": map[string]any{
			"query":     text,
			"fields":    a.cfg.SearchFields,
			"type":      "best_fields",
			"operator":  "or",
			"fuzziness": "AUTO",
		},
	}
}

// buildFilterClause maps one FilterSpec to Elasticsearch clauses. The
// second return reports whether the clauses belong in must_not.
func buildFilterClause(f search.FilterSpec) ([]any, bool) {
	negated := f.Operator == search.OperatorNot

	switch f.Kind {
	case search.FilterTerm:
		return []any{map[string]any{
			"term": map[string]any{f.Field: f.Value},
		}}, negated

	case search.FilterTerms:
		values := toSlice(f.Value)
		if len(values) == 0 {
			return nil, false
		}
		if f.Operator == search.OperatorAnd {
			// Every value must match: one term clause per value.
			clauses := make([]any, 0, len(values))
			for _, v := range values {
				clauses = append(clauses, map[string]any{
					"term": map[string]any{f.Field: v},
				})
			}
			return clauses, false
		}
		return []any{map[string]any{
			"terms": map[string]any{f.Field: values},
		}}, negated

	case search.FilterRange:
		bounds := toRange(f.Value)
		if len(bounds) == 0 {
			return nil, false
		}
		return []any{map[string]any{
			"range": map[string]any{f.Field: bounds},
		}}, negated

	case search.FilterMatch:
		return []any{map[string]any{
			"match": map[string]any{f.Field: map[string]any{"query": f.Value}},
		}}, negated

	case search.FilterExists:
		return []any{map[string]any{
			"exists": map[string]any{"field": f.Field},
		}}, negated

	case search.FilterCustom:
		if clause, ok := f.Value.(map[string]any); ok {
			return []any{clause}, negated
		}
		return nil, false

	default:
		return nil, false
	}
}

func buildSort(specs []search.SortSpec) []any {
	var out []any
	scored := false
	for _, s := range specs {
		if s.Field == "_score" {
			scored = true
		}
		order := s.Order
		if order == "" {
			order = search.SortAsc
		}
		out = append(out, map[string]any{
			s.Field: map[string]any{"order": string(order)},
		})
	}
	// Tie-break by relevance when sorting on anything else.
	if len(out) > 0 && !scored {
		out = append(out, map[string]any{
			"_score": map[string]any{"order": "desc"},
		})
	}
	return out
}

func (a *Adapter) buildHighlight() map[string]any {
	fields := map[string]any{}
	for _, f := range a.cfg.SearchFields {
		name, _, _ := strings.Cut(f, "^")
		fields[name] = map[string]any{
			"fragment_size":       a.cfg.HighlightFragmentSize,
			"number_of_fragments": a.cfg.HighlightMaxFragments,
		}
	}
	return map[string]any{
		"fields":    fields,
		"pre_tags":  []string{"<em>"},
		"post_tags": []string{"</em>"},
	}
}

// toSlice normalizes a terms filter value to []any.
func toSlice(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case nil:
		return nil
	default:
		return []any{t}
	}
}

// toRange normalizes a range filter value to a gte/lte map. Values that
// arrive as maps (for example after a snapshot restore) are accepted
// alongside RangeValue.
func toRange(v any) map[string]any {
	out := map[string]any{}
	switch t := v.(type) {
	case search.RangeValue:
		if t.Gte != nil {
			out["gte"] = t.Gte
		}
		if t.Lte != nil {
			out["lte"] = t.Lte
		}
	case *search.RangeValue:
		if t == nil {
			return nil
		}
		return toRange(*t)
	case map[string]any:
		for _, k := range []string{"gte", "lte", "gt", "lt"} {
			if val, ok := t[k]; ok {
				out[k] = val
			}
		}
	default:
		// Last resort: round-trip through JSON.
		raw, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		var rv search.RangeValue
		if err := json.Unmarshal(raw, &rv); err != nil {
			return nil
		}
		return toRange(rv)
	}
	return out
}

// TermsAggregation builds a named terms aggregation body for Config.
func TermsAggregation(field string, size int) map[string]any {
	if size <= 0 {
		size = 20
	}
	return map[string]any{
		"terms": map[string]any{
			"field": field,
			"size":  size,
		},
	}
}

// StatsAggregation builds a stats aggregation body for Config.
func StatsAggregation(field string) map[string]any {
	return map[string]any{
		"stats": map[string]any{"field": field},
	}
}
