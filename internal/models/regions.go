package models

import (
	"sort"
	"strings"
)

// Region is one of the five Brazilian macro-regions. Every one of the 27
// state codes (26 states plus the Federal District) maps to exactly one
// region; the partition is exhaustive and disjoint.
type Region string

const (
	RegionNorth       Region = "North"
	RegionNortheast   Region = "Northeast"
	RegionCentralWest Region = "Central-West"
	RegionSoutheast   Region = "Southeast"
	RegionSouth       Region = "South"
)

var stateToRegion = map[string]Region{
	// North
	"AC": RegionNorth, "AP": RegionNorth, "AM": RegionNorth, "PA": RegionNorth,
	"RO": RegionNorth, "RR": RegionNorth, "TO": RegionNorth,

	// Northeast
	"AL": RegionNortheast, "BA": RegionNortheast, "CE": RegionNortheast,
	"MA": RegionNortheast, "PB": RegionNortheast, "PE": RegionNortheast,
	"PI": RegionNortheast, "RN": RegionNortheast, "SE": RegionNortheast,

	// Central-West
	"DF": RegionCentralWest, "GO": RegionCentralWest,
	"MT": RegionCentralWest, "MS": RegionCentralWest,

	// Southeast
	"ES": RegionSoutheast, "MG": RegionSoutheast,
	"RJ": RegionSoutheast, "SP": RegionSoutheast,

	// South
	"PR": RegionSouth, "RS": RegionSouth, "SC": RegionSouth,
}

var stateNameToCode = map[string]string{
	"acre": "AC", "alagoas": "AL", "amapa": "AP", "amazonas": "AM",
	"bahia": "BA", "ceara": "CE", "distrito federal": "DF",
	"espirito santo": "ES", "goias": "GO", "maranhao": "MA",
	"mato grosso": "MT", "mato grosso do sul": "MS", "minas gerais": "MG",
	"para": "PA", "paraiba": "PB", "parana": "PR", "pernambuco": "PE",
	"piaui": "PI", "rio de janeiro": "RJ", "rio grande do norte": "RN",
	"rio grande do sul": "RS", "rondonia": "RO", "roraima": "RR",
	"santa catarina": "SC", "sao paulo": "SP", "sergipe": "SE",
	"tocantins": "TO",
}

// accent folding for the Portuguese state names found in the calendars
var accentFold = strings.NewReplacer(
	"á", "a", "â", "a", "ã", "a", "à", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u",
	"ç", "c",
)

// NormalizeState resolves a raw state value, either a 2-letter code in any
// case or a full state name such as "São Paulo", to the canonical 2-letter
// code. Unknown values return ok=false.
func NormalizeState(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 2 {
		code := strings.ToUpper(trimmed)
		if _, ok := stateToRegion[code]; ok {
			return code, true
		}
		return "", false
	}
	folded := accentFold.Replace(strings.ToLower(trimmed))
	code, ok := stateNameToCode[folded]
	return code, ok
}

// RegionOf returns the region a state code belongs to.
func RegionOf(stateCode string) (Region, bool) {
	r, ok := stateToRegion[strings.ToUpper(stateCode)]
	return r, ok
}

// ParseRegion resolves a raw region name, case-insensitively.
func ParseRegion(raw string) (Region, bool) {
	for _, r := range AllRegions() {
		if strings.EqualFold(string(r), strings.TrimSpace(raw)) {
			return r, true
		}
	}
	return "", false
}

// AllRegions returns the five regions in the conventional display order.
func AllRegions() []Region {
	return []Region{
		RegionNorth, RegionNortheast, RegionCentralWest,
		RegionSoutheast, RegionSouth,
	}
}

// AllStates returns all 27 state codes, sorted.
func AllStates() []string {
	out := make([]string, 0, len(stateToRegion))
	for code := range stateToRegion {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// RegionStates returns the sorted state codes belonging to one region.
func RegionStates(region Region) []string {
	var out []string
	for code, r := range stateToRegion {
		if r == region {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}
