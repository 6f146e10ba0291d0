package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActivityCode(t *testing.T) {
	tests := []struct {
		raw  string
		want ActivityCode
		ok   bool
	}{
		{"P", ActivityPlanting, true},
		{"p", ActivityPlanting, true},
		{"H", ActivityHarvesting, true},
		{" h ", ActivityHarvesting, true},
		{"PH", ActivityBoth, true},
		{"P/H", ActivityBoth, true},
		{"H/P", ActivityBoth, true},
		{"P AND H", ActivityBoth, true},
		{"h and p", ActivityBoth, true},
		{"X", 0, false},
		{"", 0, false},
		{"No Activity", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseActivityCode(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Combined codes decompose into planting plus harvesting; there is never a
// third counted category.
func TestActivityCodeDecomposition(t *testing.T) {
	for _, raw := range []string{"PH", "P/H", "H AND P"} {
		code, ok := ParseActivityCode(raw)
		require.True(t, ok, raw)
		assert.True(t, code.IncludesPlanting(), raw)
		assert.True(t, code.IncludesHarvesting(), raw)
		assert.Equal(t, 2, code.EventCount(), raw)
	}

	planting, _ := ParseActivityCode("P")
	assert.True(t, planting.IncludesPlanting())
	assert.False(t, planting.IncludesHarvesting())
	assert.Equal(t, 1, planting.EventCount())

	harvesting, _ := ParseActivityCode("H")
	assert.Equal(t, 1, harvesting.EventCount())
}

func TestActivityCodeString(t *testing.T) {
	assert.Equal(t, "Planting", ActivityPlanting.String())
	assert.Equal(t, "Harvesting", ActivityHarvesting.String())
	assert.Equal(t, "Both", ActivityBoth.String())
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name  string
		month int
		ok    bool
	}{
		{"Jan", 1, true},
		{"january", 1, true},
		{"SEP", 9, true},
		{"September", 9, true},
		{"Dec", 12, true},
		{" apr ", 4, true},
		{"Smarch", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseMonth(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.month, got, tt.name)
	}
}

func TestMonthName(t *testing.T) {
	name, err := MonthName(3)
	require.NoError(t, err)
	assert.Equal(t, "Mar", name)

	_, err = MonthName(0)
	assert.Error(t, err)
	_, err = MonthName(13)
	assert.Error(t, err)
}
