package store

import (
	"math"

	"github.com/nerrad567/vacuum-logger/internal/gauge"
)

const (
	// Sentinel is persisted in place of a missing or out-of-range value.
	Sentinel = -999.0

	// IonOverflow is the largest ion gauge value kept as-is. The
	// controller reports over-range (filament off, above 1e-2 Torr) as
	// 9.9e9.
	IonOverflow = 9.89e9
)

// NoLimit disables the over-range check in Encode.
var NoLimit = math.Inf(1)

// Encode returns the value to persist for r. A failed Result, or a value
// strictly greater than limit, becomes Sentinel.
func Encode(r gauge.Result, limit float64) float64 {
	if !r.OK() || r.Value > limit {
		return Sentinel
	}
	return r.Value
}

// encodeChannels applies the per-channel rules: only the ion channel has
// an over-range limit.
func encodeChannels(ion, cg1, cg2 gauge.Result) (float64, float64, float64) {
	return Encode(ion, IonOverflow), Encode(cg1, NoLimit), Encode(cg2, NoLimit)
}
