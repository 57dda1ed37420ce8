// Package facet maintains per-facet configuration, available values,
// and current selections, and translates between backend aggregation
// data and backend filter expressions. It depends only on the search
// package's filter shapes, never on a state container instance.
package facet

import (
	"github.com/jonesrussell/searchkit/search"
)

// Well-known facet kinds. Kind is open-ended: unrecognized kinds fall
// back to term/terms derivation.
const (
	KindText        = "text"
	KindCheckbox    = "checkbox"
	KindRadio       = "radio"
	KindToggle      = "toggle"
	KindNumber      = "number"
	KindNumberRange = "number-range"
	KindRange       = "range"
	KindSlider      = "slider"
)

// SortBy controls how facet values are ordered after an aggregation
// refresh.
type SortBy string

const (
	// SortByCount orders values by descending count.
	SortByCount SortBy = "count"
	// SortByKey orders values lexically by key.
	SortByKey SortBy = "key"
	// SortByCustom keeps the backend bucket order untouched.
	SortByCustom SortBy = "custom"
)

// Config describes one registered facet.
type Config struct {
	// ID uniquely identifies the facet within a manager.
	ID string `json:"id" yaml:"id"`
	// Field is the backend field the facet filters on.
	Field string `json:"field" yaml:"field"`
	// Label is the display name; presentation only.
	Label string `json:"label" yaml:"label"`
	// Kind selects the selection-to-filter derivation, see the Kind*
	// constants. Custom kinds are allowed.
	Kind string `json:"kind" yaml:"kind"`
	// Collapsible and Collapsed are carried for the UI layer.
	Collapsible bool `json:"collapsible,omitempty" yaml:"collapsible"`
	Collapsed   bool `json:"collapsed,omitempty" yaml:"collapsed"`
	// SortBy orders refreshed values. Defaults to SortByCount.
	SortBy SortBy `json:"sort_by,omitempty" yaml:"sort_by"`
	// MaxValues truncates the value list after sorting. 0 keeps all.
	MaxValues int `json:"max_values,omitempty" yaml:"max_values"`
	// Operator joins multi-value selections. Defaults to OperatorOr.
	Operator search.Operator `json:"operator,omitempty" yaml:"operator"`
	// StaticOptions seeds the value list for facets that are not
	// aggregation driven (or only partially).
	StaticOptions []Value `json:"static_options,omitempty" yaml:"static_options"`
}

// Value is one selectable facet option.
type Value struct {
	Key      string `json:"key" yaml:"key"`
	Label    string `json:"label" yaml:"label"`
	Count    int64  `json:"count" yaml:"count"`
	Selected bool   `json:"selected"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled"`
}

// State is the full runtime state of one facet. Copies returned by the
// manager are detached from internal state.
type State struct {
	Config    Config   `json:"config"`
	Values    []Value  `json:"values"`
	Selected  []string `json:"selected"`
	Collapsed bool     `json:"collapsed"`
	Loading   bool     `json:"loading"`
}

// ChangeEvent is emitted on every selection change. The caller is
// responsible for syncing Filter into the state container's filter map
// (or removing the field's filter when Filter is nil).
type ChangeEvent struct {
	FacetID  string
	Selected []string
	Previous []string
	Config   Config
	// Filter is the derived backend filter, nil for an empty selection.
	Filter *search.FilterSpec
}
