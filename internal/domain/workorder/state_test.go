package workorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/production-backend/internal/domain/bom"
	"github.com/your-org/production-backend/internal/pkg/apperror"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		code     apperror.Code
	}{
		{StatusForecast, StatusInProgress, ""},
		{StatusInProgress, StatusForecast, ""},
		{StatusForecast, StatusCompleted, ""},
		{StatusInProgress, StatusCompleted, ""},
		{StatusCompleted, StatusWarehoused, ""},
		{StatusForecast, StatusWarehoused, apperror.CodeInvalidOperation},
		{StatusCompleted, StatusInProgress, apperror.CodeInvalidOperation},
		{StatusWarehoused, StatusCompleted, apperror.CodeInvalidOperation},
		{StatusWarehoused, StatusForecast, apperror.CodeInvalidOperation},
		{StatusForecast, StatusForecast, apperror.CodeInvalidOperation},
		{StatusForecast, "cancelled", apperror.CodeInvalidInput},
	}
	for _, tc := range cases {
		err := CanTransition(tc.from, tc.to)
		if tc.code == "" {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
			continue
		}
		assert.True(t, apperror.HasCode(err, tc.code), "%s -> %s: %v", tc.from, tc.to, err)
	}
}

func TestCheckCompletion(t *testing.T) {
	lines := []bom.Line{
		{Code: "F-1", Quantity: 10, CurrentStock: 20},
		{Code: "M-PG", Quantity: 5, CurrentStock: 2},
	}

	_, err := CheckCompletion(lines)
	assert.True(t, apperror.HasCode(err, apperror.CodeRuleViolation))

	lines[0].UsedQuantity = 10
	warnings, err := CheckCompletion(lines)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	lines[1].UsedQuantity = 5
	warnings, err = CheckCompletion(lines)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, 3.0, warnings[0].Missing)
}

func TestWorkedHours(t *testing.T) {
	hours, overtime, err := WorkedHours("08:00", "17:30")
	require.NoError(t, err)
	assert.Equal(t, 9.5, hours)
	assert.Equal(t, 1.5, overtime)

	hours, overtime, err = WorkedHours("22:00", "06:00")
	require.NoError(t, err)
	assert.Equal(t, 8.0, hours)
	assert.Equal(t, 0.0, overtime)

	hours, _, err = WorkedHours("13:15", "15:35")
	require.NoError(t, err)
	assert.Equal(t, 2.33, hours)

	_, _, err = WorkedHours("9am", "17:00")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))

	_, _, err = WorkedHours("09:00", "09:00")
	assert.True(t, apperror.HasCode(err, apperror.CodeOutOfRange))
}
