// Package analytics derives investment signals from the property graph:
// pure scoring heuristics plus a Postgres-backed capex estimation subsystem
// over construction cost benchmarks and renovation modules.
package analytics

import (
	"strings"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/model"
)

// DefaultEnergyRisk is used when a property has no usable energy rating.
const DefaultEnergyRisk = 50.0

var energyRiskByRating = map[string]float64{
	"A": 10,
	"B": 20,
	"C": 40,
	"D": 60,
	"E": 75,
	"F": 90,
	"G": 100,
}

// EnergyRiskScore maps an EPC letter to a 0-100 risk score. Returns nil for
// unknown or invalid ratings.
func EnergyRiskScore(rating string) *float64 {
	score, ok := energyRiskByRating[strings.ToUpper(strings.TrimSpace(rating))]
	if !ok {
		return nil
	}
	return &score
}

// RefurbFromYear estimates refurbishment intensity from construction year
// alone, a fallback for properties whose description carries no keyword
// signal.
func RefurbFromYear(year int) model.RefurbIntensity {
	switch {
	case year <= 0:
		return model.RefurbNone
	case year < 1950:
		return model.RefurbFull
	case year < 1970:
		return model.RefurbMedium
	case year < 1990:
		return model.RefurbLight
	default:
		return model.RefurbNone
	}
}

// PriceSegment buckets an asking price into a coarse market segment.
type PriceSegment string

const (
	SegmentUnknown PriceSegment = "unknown"
	SegmentLow     PriceSegment = "low"
	SegmentMid     PriceSegment = "mid"
	SegmentHigh    PriceSegment = "high"
)

func SegmentForPrice(price *float64) PriceSegment {
	if price == nil || *price <= 0 {
		return SegmentUnknown
	}
	switch {
	case *price < 500_000:
		return SegmentLow
	case *price < 2_000_000:
		return SegmentMid
	default:
		return SegmentHigh
	}
}
