// Package search defines the value types shared by the searchkit state
// container, query coordinator, facet manager, and backend adapters.
package search

import (
	"encoding/json"
	"math"
)

// FilterKind identifies how a filter value is interpreted by the backend.
type FilterKind string

const (
	// FilterTerm matches a single exact value.
	FilterTerm FilterKind = "term"
	// FilterTerms matches any (or all, per Operator) of a list of values.
	FilterTerms FilterKind = "terms"
	// FilterRange matches a bounded range, value is a RangeValue.
	FilterRange FilterKind = "range"
	// FilterMatch performs a full-text match on the field.
	FilterMatch FilterKind = "match"
	// FilterExists matches documents where the field is present.
	FilterExists FilterKind = "exists"
	// FilterCustom passes the value through to the adapter untouched.
	FilterCustom FilterKind = "custom"
)

// Operator combines multiple filter values.
type Operator string

const (
	OperatorAnd Operator = "AND"
	OperatorOr  Operator = "OR"
	OperatorNot Operator = "NOT"
)

// FilterSpec describes one active filter. Filters are keyed by Field:
// at most one filter is active per field at any time.
type FilterSpec struct {
	Field    string     `json:"field"`
	Kind     FilterKind `json:"kind"`
	Value    any        `json:"value,omitempty"`
	Operator Operator   `json:"operator,omitempty"`
}

// RangeValue is the value shape for range filters. Gte and Lte are left
// untyped so callers can use numbers, strings, or formatted dates.
type RangeValue struct {
	Gte any `json:"gte,omitempty"`
	Lte any `json:"lte,omitempty"`
}

// SortOrder is the direction of a sort criterion.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortSpec describes one sort criterion.
type SortSpec struct {
	Field string    `json:"field"`
	Order SortOrder `json:"order"`
}

// Pagination holds the current page window and the total hit count
// reported by the last successful search.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// Offset returns the zero-based result offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages returns the number of pages covering Total hits.
func (p Pagination) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(p.Total) / float64(p.PageSize)))
}

// Query is the complete, backend-agnostic description of one search.
// It is derived from state container fields, never stored directly.
type Query struct {
	Text    string       `json:"text"`
	Size    int          `json:"size"`
	Offset  int          `json:"offset"`
	Sort    []SortSpec   `json:"sort,omitempty"`
	Filters []FilterSpec `json:"filters,omitempty"`
}

// Signature returns a content-equality key for the query. Two queries
// with the same signature describe the same search.
func (q Query) Signature() string {
	b, err := json.Marshal(q)
	if err != nil {
		return ""
	}
	return string(b)
}

// Result is a single search hit.
type Result struct {
	ID         string              `json:"id"`
	Data       any                 `json:"data,omitempty"`
	Score      float64             `json:"score,omitempty"`
	Highlights map[string][]string `json:"highlights,omitempty"`
	Metadata   map[string]any      `json:"metadata,omitempty"`
}

// Response is what a backend adapter returns for one executed Query.
type Response struct {
	Results      []Result                     `json:"results"`
	Total        int64                        `json:"total"`
	TookMs       int64                        `json:"took_ms,omitempty"`
	Aggregations map[string]AggregationResult `json:"aggregations,omitempty"`
	Suggestions  []Suggestion                 `json:"suggestions,omitempty"`
}

// AggregationKind identifies the shape of an aggregation result.
type AggregationKind string

const (
	AggregationTerms     AggregationKind = "terms"
	AggregationRange     AggregationKind = "range"
	AggregationHistogram AggregationKind = "histogram"
	AggregationStats     AggregationKind = "stats"
	AggregationCustom    AggregationKind = "custom"
)

// Bucket is a single bucketed count within an aggregation.
type Bucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// Stats holds the numeric summary of a stats aggregation.
type Stats struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Sum   float64 `json:"sum"`
	Count int64   `json:"count"`
}

// AggregationResult is backend-computed bucket or stats data for a field.
type AggregationResult struct {
	Kind    AggregationKind `json:"kind"`
	Buckets []Bucket        `json:"buckets,omitempty"`
	Stats   *Stats          `json:"stats,omitempty"`
}

// Suggestion is a single autocomplete candidate.
type Suggestion struct {
	ID       string         `json:"id,omitempty"`
	Text     string         `json:"text"`
	Score    float64        `json:"score,omitempty"`
	Count    int64          `json:"count,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
