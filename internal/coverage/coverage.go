// Package coverage computes the weighted multi-factor coverage score per
// state or region from crop-calendar entries. The score replaces an older
// crop-count-only metric that reported identical percentages for states with
// equal crop counts but very different activity density.
package coverage

import (
	"sort"

	"github.com/Priscasantos/landagri-b-api/internal/models"
)

// Fixed factor weights. The three factors sum to at most 100.
const (
	activityWeight = 60.0
	cropWeight     = 30.0
	densityWeight  = 10.0
)

// Level selects the aggregation unit for a computation.
type Level string

const (
	ByState  Level = "state"
	ByRegion Level = "region"
)

// Filter restricts which calendar entries participate in a computation.
// Empty sets mean no restriction on that dimension.
type Filter struct {
	Crops   map[string]bool
	Regions map[models.Region]bool
}

// Match reports whether an entry passes the filter.
func (f Filter) Match(e models.CropCalendarEntry) bool {
	if len(f.Crops) > 0 && !f.Crops[e.Crop] {
		return false
	}
	if len(f.Regions) > 0 {
		region, ok := models.RegionOf(e.State)
		if !ok || !f.Regions[region] {
			return false
		}
	}
	return true
}

type accumulator struct {
	totalActivities int
	crops           map[string]bool
	months          map[int]bool
}

// Compute derives one CoverageMetric per geographic unit present in the
// filtered entries, sorted by unit name. For each unit:
//
//	activity_factor = total_activities / max_total_activities * 60
//	crop_factor     = distinct_crops   / max_distinct_crops   * 30
//	density_factor  = active_months    / max_active_months    * 10
//	coverage        = sum of factors, clamped to [0, 100]
//
// A Both activity counts as two events toward the activity total. Region
// aggregation unions crops and months across member states before applying
// the same formula with region-level maxima. When every unit is empty all
// factors are zero; there is no division by zero.
func Compute(entries []models.CropCalendarEntry, filter Filter, level Level) []models.CoverageMetric {
	units := make(map[string]*accumulator)

	for _, e := range entries {
		if !filter.Match(e) {
			continue
		}
		unit := e.State
		if level == ByRegion {
			region, ok := models.RegionOf(e.State)
			if !ok {
				continue
			}
			unit = string(region)
		}
		acc := units[unit]
		if acc == nil {
			acc = &accumulator{crops: make(map[string]bool), months: make(map[int]bool)}
			units[unit] = acc
		}
		acc.totalActivities += e.Activity.EventCount()
		acc.crops[e.Crop] = true
		acc.months[e.Month] = true
	}

	var maxActivities, maxCrops, maxMonths int
	for _, acc := range units {
		if acc.totalActivities > maxActivities {
			maxActivities = acc.totalActivities
		}
		if len(acc.crops) > maxCrops {
			maxCrops = len(acc.crops)
		}
		if len(acc.months) > maxMonths {
			maxMonths = len(acc.months)
		}
	}

	metrics := make([]models.CoverageMetric, 0, len(units))
	for unit, acc := range units {
		m := models.CoverageMetric{
			Unit:            unit,
			TotalActivities: acc.totalActivities,
			DistinctCrops:   len(acc.crops),
			ActiveMonths:    len(acc.months),
		}
		m.ActivityFactor = share(acc.totalActivities, maxActivities) * activityWeight
		m.CropFactor = share(len(acc.crops), maxCrops) * cropWeight
		m.DensityFactor = share(len(acc.months), maxMonths) * densityWeight
		m.CoveragePercent = clamp(m.ActivityFactor+m.CropFactor+m.DensityFactor, 0, 100)
		metrics = append(metrics, m)
	}

	sort.Slice(metrics, func(i, j int) bool { return metrics[i].Unit < metrics[j].Unit })
	return metrics
}

func share(value, max int) float64 {
	if max == 0 {
		return 0
	}
	return float64(value) / float64(max)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
