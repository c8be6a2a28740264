package formula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/production-backend/internal/pkg/apperror"
)

func TestCalculateRatios(t *testing.T) {
	cases := []struct {
		name string
		p    float64
		pg   float64
		vg   float64
	}{
		{"zero fragrance", 0, 60, 40},
		{"typical", 35.7, 24.3, 40},
		{"boundary stays in low branch", 60, 0, 40},
		{"just above boundary", 60.01, 0, 39.99},
		{"high fragrance", 75, 0, 25},
		{"pure fragrance", 100, 0, 0},
		{"rounds half up", 12.345, 47.66, 40},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := CalculateRatios(tc.p)
			require.NoError(t, err)
			assert.Equal(t, tc.pg, r.PG)
			assert.Equal(t, tc.vg, r.VG)
		})
	}
}

func TestCalculateRatiosRejectsOutOfRange(t *testing.T) {
	for _, p := range []float64{-0.01, 100.01, math.NaN(), math.Inf(1)} {
		_, err := CalculateRatios(p)
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput), "p=%v", p)
	}
}

func TestCalculatedRatiosSumToHundred(t *testing.T) {
	for p := 0.0; p <= 100; p += 0.37 {
		r, err := CalculateRatios(p)
		require.NoError(t, err)
		assert.InDelta(t, 100, r.Total(), 0.01, "p=%v", p)
		assert.True(t, SumsToHundred(r.Percentage, r.PG, r.VG))
	}
}

func TestRatiosMatchTolerance(t *testing.T) {
	expected, err := CalculateRatios(35.7)
	require.NoError(t, err)

	assert.True(t, RatiosMatch(24.3, 40, expected))
	assert.True(t, RatiosMatch(24.35, 40.05, expected))
	assert.False(t, RatiosMatch(24.5, 40, expected))
	assert.False(t, RatiosMatch(24.3, 39.8, expected))
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 89.25, RoundTo(250*35.7/100, 3))
	assert.Equal(t, 0.667, RoundTo(2.0/3.0, 3))
}
