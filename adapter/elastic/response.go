package elastic

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jonesrussell/searchkit/search"
)

type esHit struct {
	ID        string              `json:"_id"`
	Score     *float64            `json:"_score"`
	Source    map[string]any      `json:"_source"`
	Highlight map[string][]string `json:"highlight"`
}

type esSearchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []esHit `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

// esAggregation covers terms/range buckets and stats in one shape; the
// populated fields decide the result kind.
type esAggregation struct {
	Buckets []struct {
		Key         any    `json:"key"`
		KeyAsString string `json:"key_as_string"`
		DocCount    int64  `json:"doc_count"`
	} `json:"buckets"`
	Count *int64   `json:"count"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
	Avg   *float64 `json:"avg"`
	Sum   *float64 `json:"sum"`
}

func parseSearchResponse(r io.Reader) (*search.Response, error) {
	var es esSearchResponse
	if err := json.NewDecoder(r).Decode(&es); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	resp := &search.Response{
		Results: make([]search.Result, 0, len(es.Hits.Hits)),
		Total:   es.Hits.Total.Value,
		TookMs:  es.Took,
	}
	for _, hit := range es.Hits.Hits {
		result := search.Result{
			ID:         hit.ID,
			Data:       hit.Source,
			Highlights: hit.Highlight,
		}
		if hit.Score != nil {
			result.Score = *hit.Score
		}
		resp.Results = append(resp.Results, result)
	}

	if len(es.Aggregations) > 0 {
		resp.Aggregations = make(map[string]search.AggregationResult, len(es.Aggregations))
		for name, raw := range es.Aggregations {
			agg, err := parseAggregation(raw)
			if err != nil {
				return nil, fmt.Errorf("decode aggregation %s: %w", name, err)
			}
			resp.Aggregations[name] = agg
		}
	}
	return resp, nil
}

func parseAggregation(raw json.RawMessage) (search.AggregationResult, error) {
	var agg esAggregation
	if err := json.Unmarshal(raw, &agg); err != nil {
		return search.AggregationResult{}, err
	}

	if agg.Count != nil {
		stats := &search.Stats{Count: *agg.Count}
		if agg.Min != nil {
			stats.Min = *agg.Min
		}
		if agg.Max != nil {
			stats.Max = *agg.Max
		}
		if agg.Avg != nil {
			stats.Avg = *agg.Avg
		}
		if agg.Sum != nil {
			stats.Sum = *agg.Sum
		}
		return search.AggregationResult{Kind: search.AggregationStats, Stats: stats}, nil
	}

	result := search.AggregationResult{
		Kind:    search.AggregationTerms,
		Buckets: make([]search.Bucket, 0, len(agg.Buckets)),
	}
	for _, b := range agg.Buckets {
		key := b.KeyAsString
		if key == "" {
			key = bucketKey(b.Key)
		}
		result.Buckets = append(result.Buckets, search.Bucket{Key: key, Count: b.DocCount})
	}
	return result, nil
}

// bucketKey renders a bucket key as a string. Numeric keys keep their
// shortest representation; booleans come from keyword-less boolean
// fields.
func bucketKey(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case float64:
		return strconv.FormatFloat(k, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(k)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", k)
	}
}

func parseSuggestResponse(r io.Reader, field string) ([]search.Suggestion, error) {
	var es esSearchResponse
	if err := json.NewDecoder(r).Decode(&es); err != nil {
		return nil, fmt.Errorf("decode suggest response: %w", err)
	}

	seen := make(map[string]struct{}, len(es.Hits.Hits))
	suggestions := make([]search.Suggestion, 0, len(es.Hits.Hits))
	for _, hit := range es.Hits.Hits {
		text, ok := hit.Source[field].(string)
		if !ok || text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}

		s := search.Suggestion{ID: hit.ID, Text: text}
		if hit.Score != nil {
			s.Score = *hit.Score
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, nil
}
