package memory

import (
	"context"
	"errors"
	"testing"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/storage"
)

func TestSalaryHistoryStore_GetByRunOrdering(t *testing.T) {
	store := NewSalaryHistoryStore()
	ctx := context.Background()

	points := []domain.SalaryPoint{
		{RunID: "r1", LeagueID: "lg1", PlayerID: "b", Salary: 10, CreatedAt: 1000},
		{RunID: "r1", LeagueID: "lg1", PlayerID: "a", Salary: 10, CreatedAt: 1000},
		{RunID: "r1", LeagueID: "lg1", PlayerID: "c", Salary: 45, CreatedAt: 1000},
		{RunID: "r2", LeagueID: "lg1", PlayerID: "a", Salary: 12, CreatedAt: 2000},
	}
	if err := store.InsertBulk(ctx, points); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByRun(ctx, "r1")
	if err != nil {
		t.Fatalf("GetByRun failed: %v", err)
	}
	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d points, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].PlayerID != id {
			t.Errorf("Position %d: got %s, want %s", i, got[i].PlayerID, id)
		}
	}

	history, _ := store.GetByPlayer(ctx, "lg1", "a")
	if len(history) != 2 || history[0].Salary != 10 || history[1].Salary != 12 {
		t.Errorf("Unexpected history: %+v", history)
	}
}

func TestSalaryHistoryStore_DuplicateKey(t *testing.T) {
	store := NewSalaryHistoryStore()
	ctx := context.Background()

	p := domain.SalaryPoint{RunID: "r1", LeagueID: "lg1", PlayerID: "a", Salary: 10}
	if err := store.InsertBulk(ctx, []domain.SalaryPoint{p}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	if err := store.InsertBulk(ctx, []domain.SalaryPoint{p}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}
