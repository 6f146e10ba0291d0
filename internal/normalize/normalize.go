// Package normalize transforms the raw JSONC catalog trees into the
// canonical records the rest of the engine consumes. Record-level problems
// are isolated: a bad initiative or calendar row is excluded and reported,
// it never aborts the rest of the load.
package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Priscasantos/landagri-b-api/internal/logger"
	"github.com/Priscasantos/landagri-b-api/internal/models"
	"github.com/Priscasantos/landagri-b-api/internal/temporal"
)

// Diagnostic codes reported alongside a still-usable result.
const (
	CodeSchemaIncomplete    = "SCHEMA_INCOMPLETE"
	CodeTypeCoercion        = "TYPE_COERCION_WARNING"
	CodeUnknownActivity     = "UNKNOWN_ACTIVITY_CODE"
	CodeUnknownState        = "UNKNOWN_STATE"
	CodeUnresolvedSensor    = "UNRESOLVED_SENSOR"
	CodeNoAvailableYears    = "NO_AVAILABLE_YEARS"
	CodeDuplicateInitiative = "DUPLICATE_INITIATIVE"
)

// Rejection explains why one initiative was excluded from the snapshot.
type Rejection struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Warning is a non-fatal, record-level diagnostic.
type Warning struct {
	Code    string `json:"code"`
	Subject string `json:"subject"`
	Detail  string `json:"detail"`
}

// Normalizer canonicalizes raw catalog trees. It is stateless between calls;
// the sensor catalog is only consulted to resolve references.
type Normalizer struct {
	log      *logger.Logger
	validate *validator.Validate
}

// New creates a Normalizer.
func New(log *logger.Logger) *Normalizer {
	return &Normalizer{
		log:      log,
		validate: validator.New(),
	}
}

// Sensors canonicalizes the sensor catalog tree, a mapping of sensor key to
// technical metadata.
func (n *Normalizer) Sensors(raw map[string]any) []models.SensorRecord {
	keys := sortedKeys(raw)
	records := make([]models.SensorRecord, 0, len(keys))
	for _, key := range keys {
		details, ok := raw[key].(map[string]any)
		if !ok {
			n.log.Warn("Skipping sensor with unexpected shape", map[string]interface{}{
				"sensor": key,
			})
			continue
		}
		rec := models.SensorRecord{
			Key:          key,
			DisplayName:  firstString(details, "display_name", "name"),
			PlatformName: firstString(details, "platform_name", "platform"),
			Agency:       firstString(details, "agency", "provider"),
			Status:       asString(details["status"]),
		}
		if rec.DisplayName == "" {
			rec.DisplayName = key
		}
		rec.RevisitTimeDays, _ = asFloat(firstPresent(details, "revisit_time_days", "revisit_time"))
		rec.SpatialResolutionsM = asFloatList(firstPresent(details, "spatial_resolutions_m", "spatial_resolution"))
		// spectral bands arrive either as a count or as a band list
		switch bands := details["spectral_bands"].(type) {
		case []any:
			rec.SpectralBands = len(bands)
		default:
			if f, ok := asFloat(bands); ok {
				rec.SpectralBands = int(f)
			}
		}
		records = append(records, rec)
	}
	return records
}

// Initiatives canonicalizes the initiative catalog tree, keyed by initiative
// name. Rejected initiatives are excluded from the result but always
// reported; they never silently vanish.
func (n *Normalizer) Initiatives(raw map[string]any, catalog *models.SensorCatalog) ([]models.Initiative, []Rejection, []Warning) {
	var (
		initiatives []models.Initiative
		rejections  []Rejection
		warnings    []Warning
	)
	seenIDs := make(map[string]bool)

	for _, name := range sortedKeys(raw) {
		details, ok := raw[name].(map[string]any)
		if !ok {
			rejections = append(rejections, Rejection{
				ID: slugify(name), Code: CodeSchemaIncomplete,
				Reason: fmt.Sprintf("unexpected record shape %T", raw[name]),
			})
			continue
		}

		init, recWarnings, err := n.initiative(name, details, catalog)
		warnings = append(warnings, recWarnings...)
		if err != nil {
			rej := Rejection{ID: slugify(name), Code: CodeSchemaIncomplete, Reason: err.Error()}
			if rerr, ok := err.(*rejectionError); ok {
				rej.Code = rerr.code
			}
			n.log.Warn("Initiative rejected", map[string]interface{}{
				"initiative": name,
				"code":       rej.Code,
				"reason":     rej.Reason,
			})
			rejections = append(rejections, rej)
			continue
		}

		if seenIDs[init.ID] {
			rejections = append(rejections, Rejection{
				ID: init.ID, Code: CodeDuplicateInitiative,
				Reason: "another initiative already uses this id",
			})
			continue
		}
		seenIDs[init.ID] = true
		initiatives = append(initiatives, init)
	}

	return initiatives, rejections, warnings
}

type rejectionError struct {
	code string
	msg  string
}

func (e *rejectionError) Error() string { return e.msg }

func (n *Normalizer) initiative(name string, details map[string]any, catalog *models.SensorCatalog) (models.Initiative, []Warning, error) {
	var warnings []Warning

	init := models.Initiative{
		ID:          firstString(details, "id"),
		Acronym:     asString(details["acronym"]),
		Methodology: firstString(details, "methodology", "classification_method"),
		Provider:    asString(details["provider"]),
		Scope:       models.ParseCoverageScope(firstString(details, "coverage_scope", "coverage")),
	}
	if init.ID == "" {
		if init.Acronym != "" {
			init.ID = slugify(init.Acronym)
		} else {
			init.ID = slugify(name)
		}
	}
	init.DisplayName = firstString(details, "display_name")
	if init.DisplayName == "" {
		init.DisplayName = displayName(name, init.Acronym)
	}

	if acc, known := parseAccuracy(firstPresent(details, "accuracy_percent", "overall_accuracy", "accuracy")); known {
		init.AccuracyPercent = acc
		init.AccuracyKnown = true
	}
	if res, known := parseResolution(firstPresent(details, "resolution_meters", "spatial_resolution")); known {
		init.ResolutionMeters = res
		init.ResolutionKnown = true
	}

	// Temporal fields are always recomputed from the year list; precomputed
	// first/last/span values in the input are never trusted.
	years, yearWarnings := temporal.NormalizeYears(firstPresent(details, "available_years", "temporal_interval"))
	for _, w := range yearWarnings {
		warnings = append(warnings, Warning{Code: CodeTypeCoercion, Subject: init.ID, Detail: w.String()})
	}
	if len(years) == 0 {
		return models.Initiative{}, warnings, &rejectionError{
			code: CodeNoAvailableYears,
			msg:  "no usable available_years after normalization",
		}
	}
	init.AvailableYears = years
	init.FirstYear = years[0]
	init.LastYear = years[len(years)-1]
	init.Span = init.LastYear - init.FirstYear + 1
	init.YearCount = len(years)

	products, err := resolveProducts(details)
	if err != nil {
		return models.Initiative{}, warnings, err
	}
	init.Products = products

	init.Sensors = n.resolveSensors(init.ID, details["sensors_referenced"], catalog, &warnings)

	if err := n.validate.Struct(&init); err != nil {
		return models.Initiative{}, warnings, &rejectionError{
			code: CodeSchemaIncomplete,
			msg:  fmt.Sprintf("canonical record invalid: %v", err),
		}
	}
	return init, warnings, nil
}

func (n *Normalizer) resolveSensors(initiativeID string, raw any, catalog *models.SensorCatalog, warnings *[]Warning) []models.SensorReference {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	refs := make([]models.SensorReference, 0, len(list))
	for _, item := range list {
		var ref models.SensorReference
		switch v := item.(type) {
		case string:
			ref.SensorKey = v
		case map[string]any:
			ref.SensorKey = firstString(v, "sensor_key", "key", "name")
			ref.YearsUsed, _ = normalizeYearList(v["years_used"])
		default:
			continue
		}
		if ref.SensorKey == "" {
			continue
		}
		if _, found := catalog.Get(ref.SensorKey); !found {
			ref.Unresolved = true
			*warnings = append(*warnings, Warning{
				Code:    CodeUnresolvedSensor,
				Subject: initiativeID,
				Detail:  fmt.Sprintf("sensor %q is not in the sensor catalog", ref.SensorKey),
			})
		}
		refs = append(refs, ref)
	}
	return refs
}

// Calendar canonicalizes the crop-calendar tree: crop name to a list of
// per-state records, each with a month-to-activity-code mapping. Unknown
// states, months and activity codes are discarded with a warning.
func (n *Normalizer) Calendar(raw map[string]any) ([]models.CropCalendarEntry, []Warning) {
	var (
		entries  []models.CropCalendarEntry
		warnings []Warning
	)

	// some catalogs nest the calendar under a top-level "crop_calendar" key
	if nested, ok := raw["crop_calendar"].(map[string]any); ok {
		raw = nested
	}

	for _, crop := range sortedKeys(raw) {
		states, ok := raw[crop].([]any)
		if !ok {
			continue
		}
		for _, item := range states {
			record, ok := item.(map[string]any)
			if !ok {
				continue
			}
			rawState := firstString(record, "state", "state_name", "state_code")
			state, ok := models.NormalizeState(rawState)
			if !ok {
				warnings = append(warnings, Warning{
					Code:    CodeUnknownState,
					Subject: crop,
					Detail:  fmt.Sprintf("unrecognized state %q", rawState),
				})
				continue
			}
			calendar, ok := record["calendar"].(map[string]any)
			if !ok {
				continue
			}
			for _, monthName := range sortedKeys(calendar) {
				code := asString(calendar[monthName])
				if strings.TrimSpace(code) == "" {
					continue
				}
				month, ok := models.ParseMonth(monthName)
				if !ok {
					warnings = append(warnings, Warning{
						Code:    CodeTypeCoercion,
						Subject: crop,
						Detail:  fmt.Sprintf("unrecognized month %q for state %s", monthName, state),
					})
					continue
				}
				activity, ok := models.ParseActivityCode(code)
				if !ok {
					warnings = append(warnings, Warning{
						Code:    CodeUnknownActivity,
						Subject: crop,
						Detail:  fmt.Sprintf("unrecognized activity code %q for state %s month %d", code, state, month),
					})
					continue
				}
				entries = append(entries, models.CropCalendarEntry{
					Crop:     crop,
					State:    state,
					Month:    month,
					Activity: activity,
				})
			}
		}
	}

	for _, w := range warnings {
		n.log.Warn("Calendar entry discarded", map[string]interface{}{
			"code":    w.Code,
			"subject": w.Subject,
			"detail":  w.Detail,
		})
	}
	return entries, warnings
}

var productKeyRe = regexp.MustCompile(`^(number_of_classes|class_legend|product_name)(?:_(\d+))?$`)

// resolveProducts groups the product-describing key families of one raw
// initiative into an ordered ProductVersion list. Parallel products are
// declared either as an explicit "products"/"detailed_products" array or as
// suffixed key families (class_legend + class_legend_2 + ...). Suffix index
// orders the list, unsuffixed keys are index 0. Grouping by index is what
// keeps a second product from silently overwriting the first under one key.
func resolveProducts(details map[string]any) ([]models.ProductVersion, error) {
	if list, ok := details["products"].([]any); ok {
		return productsFromList(list)
	}
	if list, ok := details["detailed_products"].([]any); ok {
		return productsFromList(list)
	}

	type family struct {
		name       string
		classCount int
		legend     []string
		hasCount   bool
	}
	families := make(map[int]*family)
	get := func(idx int) *family {
		f := families[idx]
		if f == nil {
			f = &family{}
			families[idx] = f
		}
		return f
	}

	for key, value := range details {
		m := productKeyRe.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		idx := 0
		if m[2] != "" {
			idx, _ = strconv.Atoi(m[2])
		}
		f := get(idx)
		switch m[1] {
		case "number_of_classes":
			if count, ok := asFloat(value); ok {
				f.classCount = int(count)
				f.hasCount = true
			}
		case "class_legend":
			f.legend = legendList(value)
		case "product_name":
			f.name = asString(value)
		}
	}

	indexes := make([]int, 0, len(families))
	for idx, f := range families {
		if !f.hasCount && len(f.legend) == 0 {
			continue
		}
		indexes = append(indexes, idx)
	}
	if len(indexes) == 0 {
		return nil, &rejectionError{
			code: CodeSchemaIncomplete,
			msg:  "initiative declares neither a class legend nor a class count",
		}
	}
	sort.Ints(indexes)

	products := make([]models.ProductVersion, 0, len(indexes))
	for _, idx := range indexes {
		f := families[idx]
		p := models.ProductVersion{Name: f.name, ClassCount: f.classCount, ClassLegend: f.legend}
		if len(p.ClassLegend) > 0 {
			// the legend is authoritative over a declared count
			p.ClassCount = len(p.ClassLegend)
		}
		products = append(products, p)
	}
	products[0].IsPrimary = true
	return products, nil
}

func productsFromList(list []any) ([]models.ProductVersion, error) {
	var products []models.ProductVersion
	primaryDeclared := false
	for _, item := range list {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		p := models.ProductVersion{
			Name:        firstString(record, "name", "product_name"),
			ClassLegend: legendList(firstPresent(record, "class_legend", "legend")),
		}
		if count, ok := asFloat(firstPresent(record, "class_count", "number_of_classes")); ok {
			p.ClassCount = int(count)
		}
		if len(p.ClassLegend) > 0 {
			p.ClassCount = len(p.ClassLegend)
		}
		if p.ClassCount == 0 && len(p.ClassLegend) == 0 {
			continue
		}
		if b, ok := record["is_primary"].(bool); ok && b && !primaryDeclared {
			p.IsPrimary = true
			primaryDeclared = true
		}
		products = append(products, p)
	}
	if len(products) == 0 {
		return nil, &rejectionError{
			code: CodeSchemaIncomplete,
			msg:  "initiative declares neither a class legend nor a class count",
		}
	}
	if !primaryDeclared {
		products[0].IsPrimary = true
	}
	return products, nil
}

// legendList accepts a legend either as a list of class names or as a single
// comma-separated string.
func legendList(raw any) []string {
	switch v := raw.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := strings.TrimSpace(asString(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

var notInformedValues = map[string]bool{
	"not informed": true, "not available": true, "incomplete": true,
	"n/a": true, "na": true, "unknown": true, "": true,
}

var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// parseAccuracy accepts a number, a percentage string such as "80.3%", or a
// mapping with an "overall" value. Placeholder strings mean unknown.
func parseAccuracy(raw any) (float64, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return parseAccuracy(firstPresent(v, "overall", "overall_accuracy", "value"))
	case string:
		if notInformedValues[strings.ToLower(strings.TrimSpace(v))] {
			return 0, false
		}
		if m := numberRe.FindString(v); m != "" {
			f, err := strconv.ParseFloat(m, 64)
			if err == nil && f >= 0 && f <= 100 {
				return f, true
			}
		}
		return 0, false
	default:
		if f, ok := asFloat(raw); ok && f >= 0 && f <= 100 {
			return f, true
		}
		return 0, false
	}
}

// parseResolution accepts a number, a string such as "30m", or a list of
// resolution objects where an entry marked current wins.
func parseResolution(raw any) (float64, bool) {
	switch v := raw.(type) {
	case []any:
		var first float64
		found := false
		for _, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				if f, ok := parseResolution(item); ok && !found {
					first, found = f, true
				}
				continue
			}
			f, ok := parseResolution(obj["resolution"])
			if !ok {
				continue
			}
			if current, _ := obj["current"].(bool); current {
				return f, true
			}
			if !found {
				first, found = f, true
			}
		}
		return first, found
	case string:
		if notInformedValues[strings.ToLower(strings.TrimSpace(v))] {
			return 0, false
		}
		if m := numberRe.FindString(v); m != "" {
			f, err := strconv.ParseFloat(m, 64)
			if err == nil && f > 0 {
				return f, true
			}
		}
		return 0, false
	default:
		if f, ok := asFloat(raw); ok && f > 0 {
			return f, true
		}
		return 0, false
	}
}

func displayName(name, acronym string) string {
	if acronym != "" && !strings.Contains(name, acronym) {
		return fmt.Sprintf("%s (%s)", name, acronym)
	}
	return name
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	slug := slugRe.ReplaceAllString(strings.ToLower(accentFoldString(s)), "-")
	return strings.Trim(slug, "-")
}

func accentFoldString(s string) string {
	return strings.NewReplacer(
		"á", "a", "â", "a", "ã", "a", "à", "a",
		"é", "e", "ê", "e", "í", "i",
		"ó", "o", "ô", "o", "õ", "o",
		"ú", "u", "ç", "c",
	).Replace(s)
}

func normalizeYearList(raw any) ([]int, []temporal.Warning) {
	return temporal.NormalizeYears(raw)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := asString(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func asString(raw any) string {
	s, _ := raw.(string)
	return s
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func asFloatList(raw any) []float64 {
	switch v := raw.(type) {
	case []any:
		var out []float64
		for _, item := range v {
			if f, ok := asFloat(item); ok {
				out = append(out, f)
			} else if f, ok := parseResolution(item); ok {
				out = append(out, f)
			}
		}
		return out
	default:
		if f, ok := asFloat(raw); ok {
			return []float64{f}
		}
		if f, ok := parseResolution(raw); ok {
			return []float64{f}
		}
		return nil
	}
}
