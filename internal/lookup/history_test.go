package lookup

import (
	"errors"
	"testing"

	"fantasy-pricing-lab/internal/domain"
)

func history() []domain.SalaryPoint {
	return []domain.SalaryPoint{
		{RunID: "r1", CreatedAt: 1000, Salary: 20},
		{RunID: "r2", CreatedAt: 2000, Salary: 25},
		{RunID: "r3", CreatedAt: 3000, Salary: 18},
	}
}

func TestSalaryAt_EmptySlice(t *testing.T) {
	_, err := SalaryAt(1000, nil)
	if !errors.Is(err, ErrNoSalaryData) {
		t.Errorf("expected ErrNoSalaryData, got %v", err)
	}
}

func TestSalaryAt(t *testing.T) {
	tests := []struct {
		name   string
		target int64
		want   string
	}{
		{"exact match", 2000, "r2"},
		{"between points", 2500, "r2"},
		{"before first", 500, "r1"},
		{"after last", 9000, "r3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SalaryAt(tt.target, history())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.RunID != tt.want {
				t.Errorf("SalaryAt(%d) = %s, want %s", tt.target, got.RunID, tt.want)
			}
		})
	}
}

func TestSalaryChange(t *testing.T) {
	change, err := SalaryChange(history())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if change != -2 {
		t.Errorf("expected -2, got %d", change)
	}

	if _, err := SalaryChange(nil); !errors.Is(err, ErrNoSalaryData) {
		t.Errorf("expected ErrNoSalaryData, got %v", err)
	}
}
