package lookup

import (
	"errors"

	"fantasy-pricing-lab/internal/domain"
)

// Errors returned by lookup functions.
var (
	ErrNoSalaryData = errors.New("no salary data available")
	ErrNoMatch      = errors.New("no matching player")
)

// SalaryAt returns the salary point at or before target (Unix ms).
// points must be ordered by CreatedAt ASC, as SalaryHistoryStore.GetByPlayer returns them.
// If no point is at or before target, returns the first available point.
// Returns ErrNoSalaryData if points is empty.
func SalaryAt(target int64, points []domain.SalaryPoint) (domain.SalaryPoint, error) {
	if len(points) == 0 {
		return domain.SalaryPoint{}, ErrNoSalaryData
	}

	for i := len(points) - 1; i >= 0; i-- {
		if points[i].CreatedAt <= target {
			return points[i], nil
		}
	}

	return points[0], nil
}

// SalaryChange returns the latest salary minus the earliest one.
// Returns ErrNoSalaryData if points is empty.
func SalaryChange(points []domain.SalaryPoint) (int, error) {
	if len(points) == 0 {
		return 0, ErrNoSalaryData
	}
	return points[len(points)-1].Salary - points[0].Salary, nil
}
