package models

import "sort"

// SensorRecord holds technical metadata for one satellite sensor. Records are
// owned by the process-wide catalog and referenced by key from initiatives,
// never embedded.
type SensorRecord struct {
	Key                 string    `json:"key"`
	DisplayName         string    `json:"display_name"`
	PlatformName        string    `json:"platform_name,omitempty"`
	Agency              string    `json:"agency,omitempty"`
	SpatialResolutionsM []float64 `json:"spatial_resolutions_m,omitempty"`
	RevisitTimeDays     float64   `json:"revisit_time_days,omitempty"`
	Status              string    `json:"status,omitempty"`
	SpectralBands       int       `json:"spectral_bands,omitempty"`
}

// SensorCatalog is a read-only lookup of sensor records by key. It is built
// once per snapshot and never mutated afterwards.
type SensorCatalog struct {
	records map[string]SensorRecord
}

// NewSensorCatalog copies the given records into a catalog.
func NewSensorCatalog(records []SensorRecord) *SensorCatalog {
	m := make(map[string]SensorRecord, len(records))
	for _, r := range records {
		m[r.Key] = r
	}
	return &SensorCatalog{records: m}
}

// Get looks up a sensor by key.
func (c *SensorCatalog) Get(key string) (SensorRecord, bool) {
	r, ok := c.records[key]
	return r, ok
}

// Len reports the number of catalogued sensors.
func (c *SensorCatalog) Len() int {
	return len(c.records)
}

// All returns the catalogued sensors sorted by key for stable output.
func (c *SensorCatalog) All() []SensorRecord {
	out := make([]SensorRecord, 0, len(c.records))
	for _, r := range c.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
