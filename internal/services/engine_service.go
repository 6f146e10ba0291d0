package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/montanaflynn/stats"

	"github.com/Priscasantos/landagri-b-api/internal/coverage"
	"github.com/Priscasantos/landagri-b-api/internal/jsonc"
	"github.com/Priscasantos/landagri-b-api/internal/logger"
	"github.com/Priscasantos/landagri-b-api/internal/models"
	"github.com/Priscasantos/landagri-b-api/internal/normalize"
	"github.com/Priscasantos/landagri-b-api/internal/snapshot"
	"github.com/Priscasantos/landagri-b-api/internal/temporal"
)

// Service-level errors
var (
	ErrNotLoaded          = snapshot.ErrNotLoaded
	ErrInitiativeNotFound = errors.New("initiative not found")
	ErrSensorNotFound     = errors.New("sensor not found")
	ErrInvalidRegion      = errors.New("invalid region name")
	ErrInvalidLevel       = errors.New(`aggregation level must be "state" or "region"`)
)

// CatalogPaths names the JSONC resources one reload consumes. The sensor
// catalog is optional; initiatives with sensor references then resolve
// against an empty catalog and are flagged accordingly.
type CatalogPaths struct {
	Initiatives string
	Sensors     string
	Calendar    string
}

// InitiativeFilter restricts ListInitiatives results. Zero value matches all.
type InitiativeFilter struct {
	Scope    string
	Provider string
}

// SpatialParams selects the entries and aggregation for a spatial coverage
// query.
type SpatialParams struct {
	Crops   []string
	Regions []string
	By      string
}

// SpatialCoverage is one spatial coverage query result.
type SpatialCoverage struct {
	Level   coverage.Level          `json:"level"`
	Metrics []models.CoverageMetric `json:"metrics"`
}

// ReloadResult reports the outcome of one reload attempt.
type ReloadResult struct {
	Success         bool                  `json:"success"`
	SnapshotVersion string                `json:"snapshot_version"`
	InitiativeCount int                   `json:"initiative_count"`
	SensorCount     int                   `json:"sensor_count"`
	CalendarEntries int                   `json:"calendar_entries"`
	Rejected        []normalize.Rejection `json:"rejected_initiatives"`
	Warnings        []normalize.Warning   `json:"warnings,omitempty"`
}

// SummaryStats aggregates the loaded snapshot for the overview cards.
type SummaryStats struct {
	SnapshotVersion string  `json:"snapshot_version"`
	InitiativeCount int     `json:"initiative_count"`
	SensorCount     int     `json:"sensor_count"`
	CropCount       int     `json:"crop_count"`
	StateCount      int     `json:"state_count"`
	MeanAccuracy    float64 `json:"mean_accuracy"`
	MedianAccuracy  float64 `json:"median_accuracy"`
	StdDevAccuracy  float64 `json:"stddev_accuracy"`
	MeanResolutionM float64 `json:"mean_resolution_m"`
	MeanCoveragePct float64 `json:"mean_coverage_percent"`
	MinCoveragePct  float64 `json:"min_coverage_percent"`
	MaxCoveragePct  float64 `json:"max_coverage_percent"`
	EarliestYear    int     `json:"earliest_year"`
	LatestYear      int     `json:"latest_year"`
}

// EngineService is the read API over the immutable data snapshot. All query
// methods are pure functions of (snapshot, params); results for a given
// snapshot version are memoized.
type EngineService interface {
	// Reload reads the catalogs, builds a new snapshot and swaps it in.
	// On failure the previous snapshot, if any, keeps serving.
	Reload(ctx context.Context, paths CatalogPaths) (*ReloadResult, error)

	// ListInitiatives returns canonical initiatives matching the filter,
	// sorted by id.
	ListInitiatives(filter InitiativeFilter) ([]models.Initiative, error)

	// GetTemporalCoverage derives the span and gap report for one initiative.
	GetTemporalCoverage(initiativeID string) (*models.TemporalCoverage, error)

	// GetSpatialCoverage computes weighted coverage per state or region.
	GetSpatialCoverage(params SpatialParams) (*SpatialCoverage, error)

	// ListSensors returns the sensor catalog sorted by key.
	ListSensors() ([]models.SensorRecord, error)

	// GetSensor looks up one sensor by key.
	GetSensor(key string) (*models.SensorRecord, error)

	// GetSummaryStats aggregates the snapshot for overview displays.
	GetSummaryStats() (*SummaryStats, error)

	// Loaded reports whether a snapshot has been published.
	Loaded() bool
}

type engineService struct {
	store      *snapshot.Store
	normalizer *normalize.Normalizer
	log        *logger.Logger

	mu    sync.Mutex
	cache map[string]*SpatialCoverage
}

// NewEngineService creates an EngineService over the given store.
func NewEngineService(store *snapshot.Store, log *logger.Logger) EngineService {
	return &engineService{
		store:      store,
		normalizer: normalize.New(log),
		log:        log,
		cache:      make(map[string]*SpatialCoverage),
	}
}

func (s *engineService) Loaded() bool {
	return s.store.Loaded()
}

func (s *engineService) Reload(ctx context.Context, paths CatalogPaths) (*ReloadResult, error) {
	s.log.Info("Reloading catalogs", map[string]interface{}{
		"initiatives": paths.Initiatives,
		"sensors":     paths.Sensors,
		"calendar":    paths.Calendar,
	})

	var sensorRecords []models.SensorRecord
	if paths.Sensors != "" {
		var rawSensors map[string]any
		if err := jsonc.DecodeFile(paths.Sensors, &rawSensors); err != nil {
			return nil, fmt.Errorf("loading sensor catalog: %w", err)
		}
		sensorRecords = s.normalizer.Sensors(rawSensors)
	}
	catalog := models.NewSensorCatalog(sensorRecords)

	var rawInitiatives map[string]any
	if err := jsonc.DecodeFile(paths.Initiatives, &rawInitiatives); err != nil {
		return nil, fmt.Errorf("loading initiative catalog: %w", err)
	}
	initiatives, rejections, warnings := s.normalizer.Initiatives(rawInitiatives, catalog)

	var calendar []models.CropCalendarEntry
	if paths.Calendar != "" {
		var rawCalendar map[string]any
		if err := jsonc.DecodeFile(paths.Calendar, &rawCalendar); err != nil {
			return nil, fmt.Errorf("loading crop calendar: %w", err)
		}
		var calendarWarnings []normalize.Warning
		calendar, calendarWarnings = s.normalizer.Calendar(rawCalendar)
		warnings = append(warnings, calendarWarnings...)
	}

	snap := snapshot.New(initiatives, catalog, calendar, rejections, warnings)
	s.store.Swap(snap)

	s.mu.Lock()
	s.cache = make(map[string]*SpatialCoverage)
	s.mu.Unlock()

	s.log.Info("Snapshot published", map[string]interface{}{
		"version":          snap.Version,
		"initiatives":      len(initiatives),
		"sensors":          catalog.Len(),
		"calendar_entries": len(calendar),
		"rejected":         len(rejections),
		"warnings":         len(warnings),
	})

	return &ReloadResult{
		Success:         true,
		SnapshotVersion: snap.Version,
		InitiativeCount: len(initiatives),
		SensorCount:     catalog.Len(),
		CalendarEntries: len(calendar),
		Rejected:        rejections,
		Warnings:        warnings,
	}, nil
}

func (s *engineService) ListInitiatives(filter InitiativeFilter) ([]models.Initiative, error) {
	snap, err := s.store.Current()
	if err != nil {
		return nil, err
	}

	out := make([]models.Initiative, 0, len(snap.Initiatives))
	for _, init := range snap.Initiatives {
		if filter.Scope != "" && !strings.EqualFold(init.Scope.String(), filter.Scope) {
			continue
		}
		if filter.Provider != "" && !strings.EqualFold(init.Provider, filter.Provider) {
			continue
		}
		out = append(out, init)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *engineService) GetTemporalCoverage(initiativeID string) (*models.TemporalCoverage, error) {
	snap, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	init, ok := snap.Initiative(initiativeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInitiativeNotFound, initiativeID)
	}
	cov := temporal.Analyze(init.AvailableYears)
	return &cov, nil
}

func (s *engineService) GetSpatialCoverage(params SpatialParams) (*SpatialCoverage, error) {
	snap, err := s.store.Current()
	if err != nil {
		return nil, err
	}

	level := coverage.ByState
	switch strings.ToLower(params.By) {
	case "", "state":
	case "region":
		level = coverage.ByRegion
	default:
		return nil, fmt.Errorf("%w: got %q", ErrInvalidLevel, params.By)
	}

	filter := coverage.Filter{}
	if len(params.Crops) > 0 {
		filter.Crops = make(map[string]bool, len(params.Crops))
		for _, crop := range params.Crops {
			filter.Crops[strings.TrimSpace(crop)] = true
		}
	}
	if len(params.Regions) > 0 {
		filter.Regions = make(map[models.Region]bool, len(params.Regions))
		for _, raw := range params.Regions {
			region, ok := models.ParseRegion(raw)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrInvalidRegion, raw)
			}
			filter.Regions[region] = true
		}
	}

	key := cacheKey(snap.Version, filter, level)
	s.mu.Lock()
	if cached, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	result := &SpatialCoverage{
		Level:   level,
		Metrics: coverage.Compute(snap.Calendar, filter, level),
	}

	s.mu.Lock()
	s.cache[key] = result
	s.mu.Unlock()

	s.log.Debug("Spatial coverage computed", map[string]interface{}{
		"snapshot": snap.Version,
		"level":    string(level),
		"units":    len(result.Metrics),
	})
	return result, nil
}

func (s *engineService) ListSensors() ([]models.SensorRecord, error) {
	snap, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	return snap.Sensors.All(), nil
}

func (s *engineService) GetSensor(key string) (*models.SensorRecord, error) {
	snap, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	rec, ok := snap.Sensors.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSensorNotFound, key)
	}
	return &rec, nil
}

func (s *engineService) GetSummaryStats() (*SummaryStats, error) {
	snap, err := s.store.Current()
	if err != nil {
		return nil, err
	}

	summary := &SummaryStats{
		SnapshotVersion: snap.Version,
		InitiativeCount: len(snap.Initiatives),
		SensorCount:     snap.Sensors.Len(),
	}

	var accuracies, resolutions stats.Float64Data
	for _, init := range snap.Initiatives {
		if init.AccuracyKnown {
			accuracies = append(accuracies, init.AccuracyPercent)
		}
		if init.ResolutionKnown {
			resolutions = append(resolutions, init.ResolutionMeters)
		}
		if summary.EarliestYear == 0 || init.FirstYear < summary.EarliestYear {
			summary.EarliestYear = init.FirstYear
		}
		if init.LastYear > summary.LatestYear {
			summary.LatestYear = init.LastYear
		}
	}
	if len(accuracies) > 0 {
		summary.MeanAccuracy, _ = accuracies.Mean()
		summary.MedianAccuracy, _ = accuracies.Median()
		summary.StdDevAccuracy, _ = accuracies.StandardDeviation()
	}
	if len(resolutions) > 0 {
		summary.MeanResolutionM, _ = resolutions.Mean()
	}

	crops := make(map[string]bool)
	states := make(map[string]bool)
	for _, e := range snap.Calendar {
		crops[e.Crop] = true
		states[e.State] = true
	}
	summary.CropCount = len(crops)
	summary.StateCount = len(states)

	if metrics := coverage.Compute(snap.Calendar, coverage.Filter{}, coverage.ByState); len(metrics) > 0 {
		var percents stats.Float64Data
		for _, m := range metrics {
			percents = append(percents, m.CoveragePercent)
		}
		summary.MeanCoveragePct, _ = percents.Mean()
		summary.MinCoveragePct, _ = percents.Min()
		summary.MaxCoveragePct, _ = percents.Max()
	}

	return summary, nil
}

func cacheKey(version string, filter coverage.Filter, level coverage.Level) string {
	crops := make([]string, 0, len(filter.Crops))
	for c := range filter.Crops {
		crops = append(crops, c)
	}
	sort.Strings(crops)
	regions := make([]string, 0, len(filter.Regions))
	for r := range filter.Regions {
		regions = append(regions, string(r))
	}
	sort.Strings(regions)
	return version + "|" + string(level) + "|" + strings.Join(crops, ",") + "|" + strings.Join(regions, ",")
}
