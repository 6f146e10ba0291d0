package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ActivityCode marks the agricultural activity recorded for one crop, state
// and month. A combined code always decomposes into Planting and Harvesting;
// there is deliberately no third counted category.
type ActivityCode int8

const (
	ActivityPlanting ActivityCode = iota + 1
	ActivityHarvesting
	ActivityBoth
)

// ParseActivityCode derives an ActivityCode from the raw textual codes used
// in the CONAB calendars ("P", "H", "PH", "P/H", "H/P", "P AND H", "H AND P",
// case-insensitive). Unknown codes return ok=false so callers can discard
// them with a warning instead of failing the whole calendar.
func ParseActivityCode(raw string) (ActivityCode, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "P", "PLANTING":
		return ActivityPlanting, true
	case "H", "HARVEST", "HARVESTING":
		return ActivityHarvesting, true
	case "PH", "HP", "P/H", "H/P", "P AND H", "H AND P":
		return ActivityBoth, true
	default:
		return 0, false
	}
}

// String returns the canonical display form of the code.
func (a ActivityCode) String() string {
	switch a {
	case ActivityPlanting:
		return "Planting"
	case ActivityHarvesting:
		return "Harvesting"
	case ActivityBoth:
		return "Both"
	default:
		return "Unknown"
	}
}

// MarshalJSON renders the code as its display string.
func (a ActivityCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// IncludesPlanting reports whether the code covers a planting event.
func (a ActivityCode) IncludesPlanting() bool {
	return a == ActivityPlanting || a == ActivityBoth
}

// IncludesHarvesting reports whether the code covers a harvesting event.
func (a ActivityCode) IncludesHarvesting() bool {
	return a == ActivityHarvesting || a == ActivityBoth
}

// EventCount is the number of distinct agronomic events the code represents.
// Both is two events (a planting and a harvest in the same month), which is
// what makes activity totals sensitive to density rather than flat counts.
func (a ActivityCode) EventCount() int {
	if a == ActivityBoth {
		return 2
	}
	if a == ActivityPlanting || a == ActivityHarvesting {
		return 1
	}
	return 0
}

// CropCalendarEntry is one (crop, state, month) activity observation from the
// crop-calendar catalog. State is always the normalized 2-letter code.
type CropCalendarEntry struct {
	Crop     string       `json:"crop"`
	State    string       `json:"state"`
	Month    int          `json:"month"`
	Activity ActivityCode `json:"activity_code"`
}

var monthsByName = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// ParseMonth maps an English month name (3-letter or full, case-insensitive)
// to its 1-12 number. The calendars use both short and long forms.
func ParseMonth(name string) (int, bool) {
	m, ok := monthsByName[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// MonthName returns the short English name for a 1-12 month number.
func MonthName(month int) (string, error) {
	names := [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	if month < 1 || month > 12 {
		return "", fmt.Errorf("month out of range: %d", month)
	}
	return names[month-1], nil
}
