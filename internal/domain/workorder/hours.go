package workorder

import (
	"strings"
	"time"

	"github.com/your-org/production-backend/internal/domain/formula"
	"github.com/your-org/production-backend/internal/pkg/apperror"
)

// StandardShiftHours is the length of a shift before overtime starts
const StandardShiftHours = 8.0

const (
	clockLayout = "15:04"
	dateLayout  = "2006-01-02"
)

// WorkedHours returns the hours between two HH:MM clock times. An end time at
// or before the start time is taken to fall on the next day.
func WorkedHours(start, end string) (hours, overtime float64, err error) {
	s, err := time.Parse(clockLayout, strings.TrimSpace(start))
	if err != nil {
		return 0, 0, apperror.InvalidInput("start time %q must be HH:MM", start)
	}
	e, err := time.Parse(clockLayout, strings.TrimSpace(end))
	if err != nil {
		return 0, 0, apperror.InvalidInput("end time %q must be HH:MM", end)
	}
	if s.Equal(e) {
		return 0, 0, apperror.New(apperror.CodeOutOfRange, "start and end time cannot be equal")
	}

	d := e.Sub(s)
	if d < 0 {
		d += 24 * time.Hour
	}

	hours = formula.RoundTo(d.Hours(), 2)
	if hours > StandardShiftHours {
		overtime = formula.RoundTo(hours-StandardShiftHours, 2)
	}
	return hours, overtime, nil
}

func validWorkDate(v string) bool {
	_, err := time.Parse(dateLayout, strings.TrimSpace(v))
	return err == nil
}
