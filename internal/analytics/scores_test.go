package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/model"
)

func floatPtr(f float64) *float64 { return &f }

func TestEnergyRiskScore(t *testing.T) {
	tests := []struct {
		rating string
		want   float64
		ok     bool
	}{
		{"A", 10, true},
		{"b", 20, true},
		{" C ", 40, true},
		{"D", 60, true},
		{"E", 75, true},
		{"F", 90, true},
		{"G", 100, true},
		{"H", 0, false},
		{"", 0, false},
		{"BB", 0, false},
	}
	for _, tt := range tests {
		got := EnergyRiskScore(tt.rating)
		if !tt.ok {
			assert.Nil(t, got, tt.rating)
			continue
		}
		require.NotNil(t, got, tt.rating)
		assert.InDelta(t, tt.want, *got, 0.001, tt.rating)
	}
}

func TestRefurbFromYear(t *testing.T) {
	tests := []struct {
		year int
		want model.RefurbIntensity
	}{
		{1890, model.RefurbFull},
		{1949, model.RefurbFull},
		{1950, model.RefurbMedium},
		{1969, model.RefurbMedium},
		{1970, model.RefurbLight},
		{1989, model.RefurbLight},
		{1990, model.RefurbNone},
		{2020, model.RefurbNone},
		{0, model.RefurbNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RefurbFromYear(tt.year), "year %d", tt.year)
	}
}

func TestSegmentForPrice(t *testing.T) {
	assert.Equal(t, SegmentUnknown, SegmentForPrice(nil))
	assert.Equal(t, SegmentUnknown, SegmentForPrice(floatPtr(0)))
	assert.Equal(t, SegmentLow, SegmentForPrice(floatPtr(250_000)))
	assert.Equal(t, SegmentLow, SegmentForPrice(floatPtr(499_999)))
	assert.Equal(t, SegmentMid, SegmentForPrice(floatPtr(500_000)))
	assert.Equal(t, SegmentMid, SegmentForPrice(floatPtr(1_999_999)))
	assert.Equal(t, SegmentHigh, SegmentForPrice(floatPtr(2_000_000)))
}
