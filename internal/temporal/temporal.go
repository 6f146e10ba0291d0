// Package temporal normalizes heterogeneous year inputs and derives the
// coverage span and gap report used by the temporal availability views.
package temporal

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Priscasantos/landagri-b-api/internal/models"
)

// Warning records one input entry that could not be used as a year and was
// discarded. Discards are always reported, never silent: this class of dirty
// input used to surface as comparison failures deep inside sorting.
type Warning struct {
	Value  any
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("discarded year value %v: %s", w.Value, w.Reason)
}

var rangeRe = regexp.MustCompile(`^\s*(\d{4})\s*-\s*(\d{4})\s*$`)

// NormalizeYears coerces a year field into a deduplicated ascending list of
// integers. Three input shapes are accepted: a list of integers (or numeric
// strings, or any mix), a single numeric string, and a compact "YYYY-YYYY"
// range string. Entries that fit none of those are discarded with a warning.
func NormalizeYears(field any) ([]int, []Warning) {
	var warnings []Warning
	seen := make(map[int]bool)
	var years []int

	add := func(y int) {
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}

	var coerce func(v any)
	coerce = func(v any) {
		switch val := v.(type) {
		case int:
			add(val)
		case float64:
			add(int(val))
		case json.Number:
			if i, err := val.Int64(); err == nil {
				add(int(i))
			} else if f, err := val.Float64(); err == nil {
				add(int(f))
			} else {
				warnings = append(warnings, Warning{Value: val, Reason: "not an integer"})
			}
		case string:
			s := strings.TrimSpace(val)
			if m := rangeRe.FindStringSubmatch(s); m != nil {
				start, _ := strconv.Atoi(m[1])
				end, _ := strconv.Atoi(m[2])
				if end < start {
					start, end = end, start
				}
				for y := start; y <= end; y++ {
					add(y)
				}
				return
			}
			// comma or whitespace separated year lists also appear upstream
			if strings.ContainsAny(s, ", \t") {
				for _, part := range strings.FieldsFunc(s, func(r rune) bool {
					return r == ',' || r == ' ' || r == '\t'
				}) {
					coerce(part)
				}
				return
			}
			if y, err := strconv.Atoi(s); err == nil {
				add(y)
			} else if s != "" {
				warnings = append(warnings, Warning{Value: val, Reason: "not numeric and not a YYYY-YYYY range"})
			}
		case []any:
			for _, item := range val {
				coerce(item)
			}
		case []int:
			for _, item := range val {
				add(item)
			}
		case []string:
			for _, item := range val {
				coerce(item)
			}
		case nil:
			// absent field, nothing to report
		default:
			warnings = append(warnings, Warning{Value: v, Reason: fmt.Sprintf("unsupported type %T", v)})
		}
	}
	coerce(field)

	sort.Ints(years)
	return years, warnings
}

// Analyze derives the coverage span and gap report from an already-normalized
// ascending year list. A gap is a maximal run of consecutive missing years
// strictly between the first and last year. Identical year sets produce
// identical reports regardless of original ordering or duplicates.
func Analyze(years []int) models.TemporalCoverage {
	if len(years) == 0 {
		return models.TemporalCoverage{GapYears: []int{}}
	}

	present := make(map[int]bool, len(years))
	for _, y := range years {
		present[y] = true
	}

	first := years[0]
	last := years[len(years)-1]

	cov := models.TemporalCoverage{
		FirstYear: first,
		LastYear:  last,
		Span:      last - first + 1,
		YearCount: len(present),
		GapYears:  []int{},
	}

	run := 0
	for y := first + 1; y < last; y++ {
		if present[y] {
			if run > 0 {
				cov.GapCount++
				if run > cov.LargestGap {
					cov.LargestGap = run
				}
				run = 0
			}
			continue
		}
		cov.GapYears = append(cov.GapYears, y)
		run++
	}
	if run > 0 {
		cov.GapCount++
		if run > cov.LargestGap {
			cov.LargestGap = run
		}
	}

	return cov
}
