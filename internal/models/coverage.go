package models

// CoverageMetric is the derived coverage score for one geographic unit, a
// state code or a region name depending on the aggregation level. The three
// factors are fixed-weight shares of the composite score: activity 60, crop
// diversity 30, temporal density 10.
type CoverageMetric struct {
	Unit            string  `json:"geographic_unit"`
	ActivityFactor  float64 `json:"activity_factor"`
	CropFactor      float64 `json:"crop_factor"`
	DensityFactor   float64 `json:"density_factor"`
	CoveragePercent float64 `json:"coverage_percent"`

	// raw inputs behind the factors, kept for breakdown displays
	TotalActivities int `json:"total_activities"`
	DistinctCrops   int `json:"distinct_crops"`
	ActiveMonths    int `json:"active_months"`
}

// TemporalCoverage is the gap report derived from an initiative's available
// years. A fully contiguous range has LargestGap 0 and no gap years.
type TemporalCoverage struct {
	FirstYear  int   `json:"first_year"`
	LastYear   int   `json:"last_year"`
	Span       int   `json:"span"`
	YearCount  int   `json:"year_count"`
	GapCount   int   `json:"gap_count"`
	LargestGap int   `json:"largest_gap"`
	GapYears   []int `json:"gap_years"`
}
