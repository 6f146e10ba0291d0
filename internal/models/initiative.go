package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CoverageScope is the geographic reach of a monitoring initiative.
type CoverageScope int8

const (
	ScopeOther CoverageScope = iota
	ScopeGlobal
	ScopeRegional
	ScopeNational
)

// ParseCoverageScope maps the raw coverage text from the metadata catalog to a
// CoverageScope. Anything unrecognized falls back to ScopeOther rather than
// failing, matching the tolerant categorization the catalogs need.
func ParseCoverageScope(raw string) CoverageScope {
	switch {
	case strings.Contains(strings.ToLower(raw), "global"):
		return ScopeGlobal
	case strings.Contains(strings.ToLower(raw), "regional"):
		return ScopeRegional
	case strings.Contains(strings.ToLower(raw), "national"),
		strings.Contains(strings.ToLower(raw), "brazil"):
		return ScopeNational
	default:
		return ScopeOther
	}
}

// String returns the canonical display form of the scope.
func (s CoverageScope) String() string {
	switch s {
	case ScopeGlobal:
		return "Global"
	case ScopeRegional:
		return "Regional"
	case ScopeNational:
		return "National"
	default:
		return "Other"
	}
}

// MarshalJSON renders the scope as its display string.
func (s CoverageScope) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts any of the display strings, case-insensitively.
func (s *CoverageScope) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("coverage scope must be a string: %w", err)
	}
	*s = ParseCoverageScope(raw)
	return nil
}

// ProductVersion is one classification product published by an initiative.
// Initiatives may publish several parallel products from the same program,
// e.g. an open 9-class legend next to a commercial 15-class one.
type ProductVersion struct {
	Name        string   `json:"name,omitempty"`
	ClassCount  int      `json:"class_count" validate:"gt=0"`
	ClassLegend []string `json:"class_legend"`
	IsPrimary   bool     `json:"is_primary"`
}

// SensorReference is a weak reference from an initiative to an entry in the
// sensor catalog. Unresolvable keys are kept and flagged so the presentation
// layer can render a fallback instead of losing the reference.
type SensorReference struct {
	SensorKey  string `json:"sensor_key"`
	YearsUsed  []int  `json:"years_used,omitempty"`
	Unresolved bool   `json:"unresolved,omitempty"`
}

// Initiative is the canonical record for one LULC / agricultural monitoring
// program. Temporal fields (FirstYear, LastYear, Span, YearCount) are always
// derived from AvailableYears during normalization, never read from input.
type Initiative struct {
	ID               string            `json:"id" validate:"required"`
	DisplayName      string            `json:"display_name" validate:"required"`
	Acronym          string            `json:"acronym,omitempty"`
	Scope            CoverageScope     `json:"coverage_scope"`
	Methodology      string            `json:"methodology,omitempty"`
	Provider         string            `json:"provider,omitempty"`
	AccuracyPercent  float64           `json:"accuracy_percent,omitempty"`
	AccuracyKnown    bool              `json:"accuracy_known"`
	ResolutionMeters float64           `json:"resolution_meters,omitempty"`
	ResolutionKnown  bool              `json:"resolution_known"`
	AvailableYears   []int             `json:"available_years" validate:"required,min=1"`
	FirstYear        int               `json:"first_year"`
	LastYear         int               `json:"last_year"`
	Span             int               `json:"span"`
	YearCount        int               `json:"year_count"`
	Products         []ProductVersion  `json:"products" validate:"required,min=1,dive"`
	Sensors          []SensorReference `json:"sensors_referenced,omitempty"`
}

// PrimaryProduct returns the product flagged primary. Normalization guarantees
// exactly one, but a zero-value fallback keeps callers total.
func (i *Initiative) PrimaryProduct() ProductVersion {
	for _, p := range i.Products {
		if p.IsPrimary {
			return p
		}
	}
	if len(i.Products) > 0 {
		return i.Products[0]
	}
	return ProductVersion{}
}
