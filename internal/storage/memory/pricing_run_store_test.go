package memory

import (
	"context"
	"errors"
	"testing"

	"fantasy-pricing-lab/internal/domain"
	"fantasy-pricing-lab/internal/storage"
)

func testRun(id string, season int, createdAt int64) *domain.PricingRun {
	return &domain.PricingRun{
		RunID:       id,
		LeagueID:    "lg1",
		Season:      season,
		DataVersion: "dv",
		CreatedAt:   createdAt,
		Result: domain.PricingResult{
			Season:  domain.SeasonContext{Year: season},
			Prices:  []domain.PricedPlayer{{PlayerID: "p1", Salary: 40, Stats: map[string]float64{"hr": 30}}},
			Success: true,
		},
	}
}

func TestPricingRunStore_InsertAndGet(t *testing.T) {
	store := NewPricingRunStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testRun("r1", 2026, 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "r1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Result.Prices) != 1 || got.Result.Prices[0].Salary != 40 {
		t.Errorf("Unexpected prices: %+v", got.Result.Prices)
	}

	got.Result.Prices[0].Stats["hr"] = 0
	again, _ := store.GetByID(ctx, "r1")
	if again.Result.Prices[0].Stats["hr"] != 30 {
		t.Errorf("Stored run mutated through returned copy")
	}
}

func TestPricingRunStore_DuplicateKey(t *testing.T) {
	store := NewPricingRunStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testRun("r1", 2026, 1000)); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if err := store.Insert(ctx, testRun("r1", 2026, 2000)); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestPricingRunStore_GetByLeagueAndLatest(t *testing.T) {
	store := NewPricingRunStore()
	ctx := context.Background()

	for _, r := range []*domain.PricingRun{
		testRun("r2", 2026, 2000),
		testRun("r1", 2026, 1000),
		testRun("r3", 2025, 3000),
	} {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	runs, err := store.GetByLeague(ctx, "lg1")
	if err != nil {
		t.Fatalf("GetByLeague failed: %v", err)
	}
	if len(runs) != 3 || runs[0].RunID != "r1" || runs[2].RunID != "r3" {
		t.Errorf("Unexpected order: %v, %v, %v", runs[0].RunID, runs[1].RunID, runs[2].RunID)
	}

	latest, err := store.GetLatest(ctx, "lg1", 2026)
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if latest.RunID != "r2" {
		t.Errorf("Expected r2 as latest, got %s", latest.RunID)
	}

	if _, err := store.GetLatest(ctx, "lg1", 2020); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
