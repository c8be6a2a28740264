package workorder

import (
	"github.com/your-org/production-backend/internal/domain/bom"
	"github.com/your-org/production-backend/internal/pkg/apperror"
)

var transitions = map[Status][]Status{
	StatusForecast:   {StatusInProgress, StatusCompleted},
	StatusInProgress: {StatusForecast, StatusCompleted},
	StatusCompleted:  {StatusWarehoused},
	StatusWarehoused: nil,
}

// CanTransition validates a status change without looking at the BOM
func CanTransition(from, to Status) error {
	if !to.IsValid() {
		return apperror.InvalidInput("unknown work order status %q", to)
	}
	if from == to {
		return apperror.New(apperror.CodeInvalidOperation, "work order is already %s", to)
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	if from == StatusWarehoused {
		return apperror.New(apperror.CodeInvalidOperation, "work order is warehoused and can no longer change")
	}
	return apperror.New(apperror.CodeInvalidOperation, "cannot change work order from %s to %s", from, to)
}

// CheckCompletion is the completion gate. It rejects a BOM with no recorded
// usage and returns shortages as warnings.
func CheckCompletion(lines []bom.Line) ([]bom.Shortage, error) {
	if !bom.HasUsage(lines) {
		return nil, apperror.New(apperror.CodeRuleViolation,
			"record the used quantity of at least one material before completing the work order")
	}
	shortages := bom.Shortages(lines)
	if shortages == nil {
		shortages = []bom.Shortage{}
	}
	return shortages, nil
}

// IsEditable reports whether quantities, materials and time records may change
func (s Status) IsEditable() bool {
	return s != StatusWarehoused
}
