package normalize

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Priscasantos/landagri-b-api/internal/logger"
	"github.com/Priscasantos/landagri-b-api/internal/models"
)

func testNormalizer() *Normalizer {
	return New(logger.NewWithWriter(io.Discard, zerolog.Disabled))
}

func emptyCatalog() *models.SensorCatalog {
	return models.NewSensorCatalog(nil)
}

func TestInitiatives_SuffixedProductFamilies(t *testing.T) {
	raw := map[string]any{
		"Brazilian Land Monitor": map[string]any{
			"acronym":             "BLM",
			"provider":            "INPE",
			"available_years":     []any{2018.0, 2019.0, 2020.0},
			"number_of_classes":   12.0,
			"class_legend":        "Forest, Pasture, Soybean",
			"product_name":        "Collection 7",
			"product_name_2":      "Collection 8 beta",
			"number_of_classes_2": 15.0,
		},
	}

	initiatives, rejections, _ := testNormalizer().Initiatives(raw, emptyCatalog())
	require.Empty(t, rejections)
	require.Len(t, initiatives, 1)

	init := initiatives[0]
	assert.Equal(t, "blm", init.ID)
	assert.Equal(t, "Brazilian Land Monitor (BLM)", init.DisplayName)
	require.Len(t, init.Products, 2)

	primary := init.Products[0]
	assert.True(t, primary.IsPrimary)
	assert.Equal(t, "Collection 7", primary.Name)
	// the three-entry legend overrides the declared count of 12
	assert.Equal(t, 3, primary.ClassCount)
	assert.Equal(t, []string{"Forest", "Pasture", "Soybean"}, primary.ClassLegend)

	secondary := init.Products[1]
	assert.False(t, secondary.IsPrimary)
	assert.Equal(t, "Collection 8 beta", secondary.Name)
	assert.Equal(t, 15, secondary.ClassCount)

	assert.Equal(t, "Collection 7", init.PrimaryProduct().Name)
}

func TestInitiatives_RejectsWithoutProducts(t *testing.T) {
	raw := map[string]any{
		"No Products Here": map[string]any{
			"available_years": []any{2020.0},
		},
	}

	initiatives, rejections, _ := testNormalizer().Initiatives(raw, emptyCatalog())
	assert.Empty(t, initiatives)
	require.Len(t, rejections, 1)
	assert.Equal(t, "no-products-here", rejections[0].ID)
	assert.Equal(t, CodeSchemaIncomplete, rejections[0].Code)
}

func TestInitiatives_RejectsWithoutYears(t *testing.T) {
	raw := map[string]any{
		"Timeless": map[string]any{
			"number_of_classes": 5.0,
			"available_years":   []any{"soon"},
		},
	}

	initiatives, rejections, warnings := testNormalizer().Initiatives(raw, emptyCatalog())
	assert.Empty(t, initiatives)
	require.Len(t, rejections, 1)
	assert.Equal(t, CodeNoAvailableYears, rejections[0].Code)

	// the discarded "soon" still produces a coercion warning
	require.NotEmpty(t, warnings)
	assert.Equal(t, CodeTypeCoercion, warnings[0].Code)
}

func TestInitiatives_RejectsDuplicateID(t *testing.T) {
	record := map[string]any{
		"id":                "mapbio",
		"available_years":   []any{2020.0},
		"number_of_classes": 5.0,
	}
	raw := map[string]any{
		"First":  record,
		"Second": record,
	}

	initiatives, rejections, _ := testNormalizer().Initiatives(raw, emptyCatalog())
	require.Len(t, initiatives, 1)
	require.Len(t, rejections, 1)
	assert.Equal(t, "mapbio", rejections[0].ID)
	assert.Equal(t, CodeDuplicateInitiative, rejections[0].Code)
}

func TestInitiatives_RejectsUnexpectedShape(t *testing.T) {
	raw := map[string]any{
		"Just A String": "not a record",
	}

	initiatives, rejections, _ := testNormalizer().Initiatives(raw, emptyCatalog())
	assert.Empty(t, initiatives)
	require.Len(t, rejections, 1)
	assert.Equal(t, CodeSchemaIncomplete, rejections[0].Code)
}

func TestInitiatives_UnresolvedSensorFlagged(t *testing.T) {
	catalog := models.NewSensorCatalog([]models.SensorRecord{
		{Key: "landsat-8", DisplayName: "Landsat 8"},
	})
	raw := map[string]any{
		"Sensor User": map[string]any{
			"available_years":    []any{2020.0},
			"number_of_classes":  5.0,
			"sensors_referenced": []any{"landsat-8", "mystery-sat"},
		},
	}

	initiatives, rejections, warnings := testNormalizer().Initiatives(raw, catalog)
	require.Empty(t, rejections)
	require.Len(t, initiatives, 1)
	require.Len(t, initiatives[0].Sensors, 2)

	assert.False(t, initiatives[0].Sensors[0].Unresolved)
	assert.True(t, initiatives[0].Sensors[1].Unresolved)

	require.Len(t, warnings, 1)
	assert.Equal(t, CodeUnresolvedSensor, warnings[0].Code)
	assert.Equal(t, "sensor-user", warnings[0].Subject)
}

func TestInitiatives_DerivedTemporalFields(t *testing.T) {
	raw := map[string]any{
		"Ranged": map[string]any{
			"available_years":   "2000-2003",
			"number_of_classes": 5.0,
			// precomputed values in the input must be ignored
			"first_year": 1990.0,
			"span":       99.0,
		},
	}

	initiatives, rejections, _ := testNormalizer().Initiatives(raw, emptyCatalog())
	require.Empty(t, rejections)
	require.Len(t, initiatives, 1)

	init := initiatives[0]
	assert.Equal(t, []int{2000, 2001, 2002, 2003}, init.AvailableYears)
	assert.Equal(t, 2000, init.FirstYear)
	assert.Equal(t, 2003, init.LastYear)
	assert.Equal(t, 4, init.Span)
	assert.Equal(t, 4, init.YearCount)
}

func TestInitiatives_AccuracyAndResolution(t *testing.T) {
	raw := map[string]any{
		"Measured": map[string]any{
			"available_years":   []any{2020.0},
			"number_of_classes": 5.0,
			"accuracy":          "80.3%",
			"spatial_resolution": []any{
				map[string]any{"resolution": 30.0},
				map[string]any{"resolution": 10.0, "current": true},
			},
		},
		"Unmeasured": map[string]any{
			"available_years":   []any{2020.0},
			"number_of_classes": 5.0,
			"accuracy":          "not available",
		},
	}

	initiatives, rejections, _ := testNormalizer().Initiatives(raw, emptyCatalog())
	require.Empty(t, rejections)
	require.Len(t, initiatives, 2)

	measured := initiatives[0]
	require.True(t, measured.AccuracyKnown)
	assert.InDelta(t, 80.3, measured.AccuracyPercent, 1e-9)
	require.True(t, measured.ResolutionKnown)
	assert.InDelta(t, 10.0, measured.ResolutionMeters, 1e-9, "entry marked current wins")

	unmeasured := initiatives[1]
	assert.False(t, unmeasured.AccuracyKnown)
	assert.False(t, unmeasured.ResolutionKnown)
}

// Feeding canonical output back through the normalizer must reproduce the
// same records.
func TestInitiatives_Idempotent(t *testing.T) {
	raw := map[string]any{
		"Round Trip": map[string]any{
			"acronym":           "RT",
			"provider":          "Embrapa",
			"coverage_scope":    "national",
			"available_years":   []any{2019.0, 2020.0},
			"number_of_classes": 4.0,
			"class_legend":      []any{"A", "B", "C", "D"},
		},
	}

	n := testNormalizer()
	first, rejections, _ := n.Initiatives(raw, emptyCatalog())
	require.Empty(t, rejections)
	require.Len(t, first, 1)

	canonical := map[string]any{
		first[0].DisplayName: map[string]any{
			"id":              first[0].ID,
			"display_name":    first[0].DisplayName,
			"acronym":         first[0].Acronym,
			"provider":        first[0].Provider,
			"coverage_scope":  first[0].Scope.String(),
			"available_years": []any{2019.0, 2020.0},
			"products": []any{
				map[string]any{
					"name":         first[0].Products[0].Name,
					"class_count":  float64(first[0].Products[0].ClassCount),
					"class_legend": []any{"A", "B", "C", "D"},
					"is_primary":   true,
				},
			},
		},
	}

	second, rejections, _ := n.Initiatives(canonical, emptyCatalog())
	require.Empty(t, rejections)
	require.Len(t, second, 1)
	assert.Equal(t, first[0], second[0])
}

func TestSensors(t *testing.T) {
	raw := map[string]any{
		"landsat-8": map[string]any{
			"display_name":          "Landsat 8 OLI",
			"agency":                "NASA/USGS",
			"revisit_time_days":     16.0,
			"spatial_resolutions_m": []any{15.0, 30.0, 100.0},
			"spectral_bands":        11.0,
		},
		"broken": "not a record",
		"bare":   map[string]any{},
	}

	records := testNormalizer().Sensors(raw)
	require.Len(t, records, 2)

	// sorted by key: bare first
	assert.Equal(t, "bare", records[0].Key)
	assert.Equal(t, "bare", records[0].DisplayName, "key stands in for a missing display name")

	ls := records[1]
	assert.Equal(t, "landsat-8", ls.Key)
	assert.Equal(t, "Landsat 8 OLI", ls.DisplayName)
	assert.InDelta(t, 16.0, ls.RevisitTimeDays, 1e-9)
	assert.Equal(t, []float64{15, 30, 100}, ls.SpatialResolutionsM)
	assert.Equal(t, 11, ls.SpectralBands)
}

func TestCalendar(t *testing.T) {
	raw := map[string]any{
		"Soybean": []any{
			map[string]any{
				"state_name": "São Paulo",
				"calendar": map[string]any{
					"January":  "P",
					"February": "",
					"March":    "PH",
					"Smarch":   "P",
					"April":    "X",
				},
			},
			map[string]any{
				"state_name": "Atlantis",
				"calendar":   map[string]any{"January": "P"},
			},
		},
	}

	entries, warnings := testNormalizer().Calendar(raw)
	require.Len(t, entries, 2)

	assert.Equal(t, models.CropCalendarEntry{
		Crop: "Soybean", State: "SP", Month: 1, Activity: models.ActivityPlanting,
	}, entries[0])
	assert.Equal(t, models.CropCalendarEntry{
		Crop: "Soybean", State: "SP", Month: 3, Activity: models.ActivityBoth,
	}, entries[1])

	codes := make(map[string]int)
	for _, w := range warnings {
		codes[w.Code]++
	}
	assert.Equal(t, 1, codes[CodeUnknownState])
	assert.Equal(t, 1, codes[CodeTypeCoercion], "unknown month")
	assert.Equal(t, 1, codes[CodeUnknownActivity])
}

func TestCalendar_NestedKey(t *testing.T) {
	raw := map[string]any{
		"crop_calendar": map[string]any{
			"Corn": []any{
				map[string]any{
					"state":    "PR",
					"calendar": map[string]any{"Feb": "H"},
				},
			},
		},
	}

	entries, warnings := testNormalizer().Calendar(raw)
	require.Empty(t, warnings)
	require.Len(t, entries, 1)
	assert.Equal(t, "PR", entries[0].State)
	assert.Equal(t, 2, entries[0].Month)
	assert.Equal(t, models.ActivityHarvesting, entries[0].Activity)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"MapBiomas", "mapbiomas"},
		{"Produção Agrícola Municipal", "producao-agricola-municipal"},
		{"TerraClass (Amazon)", "terraclass-amazon"},
		{"  spaced  out  ", "spaced-out"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in), "slugify(%q)", tt.in)
	}
}
