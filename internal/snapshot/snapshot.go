// Package snapshot holds the engine's process-wide immutable data snapshot.
// A snapshot is built wholesale on each reload and published with a single
// atomic pointer swap, so readers holding the previous snapshot keep seeing
// consistent data and never observe a partial update.
package snapshot

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Priscasantos/landagri-b-api/internal/models"
	"github.com/Priscasantos/landagri-b-api/internal/normalize"
)

// ErrNotLoaded is returned for queries issued before any successful load.
var ErrNotLoaded = errors.New("engine data not loaded")

// Snapshot is one immutable, versioned view of the canonical data. Nothing
// mutates a snapshot after New returns it.
type Snapshot struct {
	Version     string
	LoadedAt    time.Time
	Initiatives []models.Initiative
	Sensors     *models.SensorCatalog
	Calendar    []models.CropCalendarEntry
	Rejections  []normalize.Rejection
	Warnings    []normalize.Warning

	byID map[string]*models.Initiative
}

// New builds a snapshot and assigns it a fresh version.
func New(initiatives []models.Initiative, sensors *models.SensorCatalog, calendar []models.CropCalendarEntry, rejections []normalize.Rejection, warnings []normalize.Warning) *Snapshot {
	if sensors == nil {
		sensors = models.NewSensorCatalog(nil)
	}
	s := &Snapshot{
		Version:     uuid.New().String(),
		LoadedAt:    time.Now().UTC(),
		Initiatives: initiatives,
		Sensors:     sensors,
		Calendar:    calendar,
		Rejections:  rejections,
		Warnings:    warnings,
		byID:        make(map[string]*models.Initiative, len(initiatives)),
	}
	for i := range s.Initiatives {
		s.byID[s.Initiatives[i].ID] = &s.Initiatives[i]
	}
	return s
}

// Initiative looks up one initiative by id.
func (s *Snapshot) Initiative(id string) (*models.Initiative, bool) {
	init, ok := s.byID[id]
	return init, ok
}

// Store publishes snapshots. Swap is the only write point; in a
// multi-threaded host the atomic pointer is the sole synchronization needed.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns an empty store in the Uninitialized state.
func NewStore() *Store {
	return &Store{}
}

// Current returns the published snapshot, or ErrNotLoaded before the first
// successful load.
func (st *Store) Current() (*Snapshot, error) {
	s := st.current.Load()
	if s == nil {
		return nil, ErrNotLoaded
	}
	return s, nil
}

// Loaded reports whether a snapshot has been published.
func (st *Store) Loaded() bool {
	return st.current.Load() != nil
}

// Swap publishes a new snapshot. Callers build the snapshot fully before
// swapping; a failed build never reaches this point, which is what keeps the
// previous snapshot serving after a bad reload.
func (st *Store) Swap(s *Snapshot) {
	st.current.Store(s)
}
