package search_test

import (
	"testing"

	"github.com/jonesrussell/searchkit/search"
)

func TestPagination_Offset(t *testing.T) {
	t.Helper()

	tests := []struct {
		page, size, want int
	}{
		{1, 10, 0},
		{2, 10, 10},
		{5, 20, 80},
	}
	for _, tt := range tests {
		p := search.Pagination{Page: tt.page, PageSize: tt.size}
		if got := p.Offset(); got != tt.want {
			t.Errorf("Offset(page=%d, size=%d) = %d, want %d", tt.page, tt.size, got, tt.want)
		}
	}
}

func TestPagination_TotalPages(t *testing.T) {
	t.Helper()

	tests := []struct {
		name  string
		total int64
		size  int
		want  int
	}{
		{"exact fit", 100, 10, 10},
		{"partial last page", 35, 10, 4},
		{"no hits", 0, 10, 0},
		{"zero size", 10, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := search.Pagination{Total: tt.total, PageSize: tt.size}
			if got := p.TotalPages(); got != tt.want {
				t.Errorf("TotalPages() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestQuery_Signature(t *testing.T) {
	t.Helper()

	base := search.Query{
		Text: "rick",
		Size: 10,
		Filters: []search.FilterSpec{
			{Field: "status", Kind: search.FilterTerm, Value: "alive"},
		},
	}
	same := search.Query{
		Text: "rick",
		Size: 10,
		Filters: []search.FilterSpec{
			{Field: "status", Kind: search.FilterTerm, Value: "alive"},
		},
	}
	if base.Signature() != same.Signature() {
		t.Error("identical queries should share a signature")
	}

	changed := base
	changed.Offset = 10
	if base.Signature() == changed.Signature() {
		t.Error("changing the offset should change the signature")
	}

	refiltered := base
	refiltered.Filters = []search.FilterSpec{
		{Field: "status", Kind: search.FilterTerm, Value: "dead"},
	}
	if base.Signature() == refiltered.Signature() {
		t.Error("changing a filter value should change the signature")
	}
}
