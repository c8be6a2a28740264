// Package formula computes the PG/VG diluent split of a liquid formula from
// its fragrance concentration.
package formula

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/your-org/production-backend/internal/pkg/apperror"
)

const (
	// PGCeiling is the fragrance percentage up to which PG tops the formula up to 60%
	PGCeiling = 60.0
	// BaseVG is the VG share while the fragrance stays at or below PGCeiling
	BaseVG = 40.0
	// RatioTolerance is the allowed drift between stored and computed ratios
	RatioTolerance = 0.1
)

// Ratios is the PG/VG split for a fragrance percentage
type Ratios struct {
	Percentage float64 `json:"percentage"`
	PG         float64 `json:"pgRatio"`
	VG         float64 `json:"vgRatio"`
}

// Total returns percentage + PG + VG
func (r Ratios) Total() float64 {
	return decimal.NewFromFloat(r.Percentage).
		Add(decimal.NewFromFloat(r.PG)).
		Add(decimal.NewFromFloat(r.VG)).
		InexactFloat64()
}

// CalculateRatios returns the PG/VG split for fragrance percentage p.
//
// Up to 60% fragrance, PG fills the gap to 60 and VG stays at 40. Above 60%,
// PG drops to zero and VG takes the remainder.
func CalculateRatios(p float64) (Ratios, error) {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > 100 {
		return Ratios{}, apperror.InvalidInput("fragrance percentage must be between 0 and 100, got %v", p)
	}

	pct := decimal.NewFromFloat(p)
	if p <= PGCeiling {
		return Ratios{
			Percentage: p,
			PG:         Round2(decimal.NewFromFloat(PGCeiling).Sub(pct)),
			VG:         BaseVG,
		}, nil
	}

	return Ratios{
		Percentage: p,
		PG:         0,
		VG:         Round2(decimal.NewFromInt(100).Sub(pct)),
	}, nil
}

// Round2 rounds half away from zero to two decimal places
func Round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// RoundTo rounds v half away from zero to the given number of places
func RoundTo(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// RatiosMatch reports whether stored pg/vg are within RatioTolerance of expected
func RatiosMatch(pg, vg float64, expected Ratios) bool {
	return math.Abs(pg-expected.PG) <= RatioTolerance && math.Abs(vg-expected.VG) <= RatioTolerance
}

// SumsToHundred reports whether percentage + pg + vg is within RatioTolerance of 100
func SumsToHundred(percentage, pg, vg float64) bool {
	r := Ratios{Percentage: percentage, PG: pg, VG: vg}
	return math.Abs(r.Total()-100) <= RatioTolerance
}
