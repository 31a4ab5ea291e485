package idhash

import (
	"testing"

	"github.com/mr-tron/base58"

	"fantasy-pricing-lab/internal/domain"
)

func TestComputeRunID(t *testing.T) {
	tests := []struct {
		name        string
		leagueID    string
		season      int
		dataVersion string
	}{
		{name: "standard league", leagueID: "league-1", season: 2025, dataVersion: "abc"},
		{name: "empty data version", leagueID: "league-1", season: 2025, dataVersion: ""},
		{name: "other season", leagueID: "league-2", season: 2024, dataVersion: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRunID(tt.leagueID, tt.season, tt.dataVersion)

			decoded, err := base58.Decode(got)
			if err != nil {
				t.Fatalf("ComputeRunID() is not base58: %v", err)
			}
			if len(decoded) != 32 {
				t.Errorf("decoded length = %d, want 32", len(decoded))
			}

			// Verify determinism: same inputs should produce same output
			if got2 := ComputeRunID(tt.leagueID, tt.season, tt.dataVersion); got != got2 {
				t.Errorf("ComputeRunID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeRunID_DifferentInputs(t *testing.T) {
	base := ComputeRunID("league", 2025, "v1")

	if base == ComputeRunID("other", 2025, "v1") {
		t.Error("Different league should produce different hash")
	}
	if base == ComputeRunID("league", 2024, "v1") {
		t.Error("Different season should produce different hash")
	}
	if base == ComputeRunID("league", 2025, "v2") {
		t.Error("Different data version should produce different hash")
	}
}

func testPool() []domain.PlayerRecord {
	return []domain.PlayerRecord{
		{PlayerID: "h1", Name: "Hitter", Position: "SS", Current: domain.StatLine{"ab": 500, "hr": 20}},
		{PlayerID: "p1", Name: "Pitcher", Position: "SP", IsPitcher: true, Current: domain.StatLine{"ip": 180}},
	}
}

func TestComputeDataVersion_OrderIndependent(t *testing.T) {
	cfg := domain.LeagueConfig{LeagueID: "l", NumTeams: 12}
	pool := testPool()
	reversed := []domain.PlayerRecord{pool[1], pool[0]}

	if ComputeDataVersion(pool, cfg) != ComputeDataVersion(reversed, cfg) {
		t.Error("data version should not depend on pool order")
	}
}

func TestComputeDataVersion_ZeroStatsIgnored(t *testing.T) {
	cfg := domain.LeagueConfig{LeagueID: "l"}
	pool := testPool()
	withZero := testPool()
	withZero[0].Current["sb"] = 0

	if ComputeDataVersion(pool, cfg) != ComputeDataVersion(withZero, cfg) {
		t.Error("explicit zero stats should hash like missing stats")
	}
}

func TestComputeDataVersion_DetectsChanges(t *testing.T) {
	cfg := domain.LeagueConfig{LeagueID: "l", NumTeams: 12}
	base := ComputeDataVersion(testPool(), cfg)

	changed := testPool()
	changed[0].Current["hr"] = 21
	if base == ComputeDataVersion(changed, cfg) {
		t.Error("stat change should change the data version")
	}

	dual := testPool()
	dual[1].EligibleForDualEvaluation = true
	if base == ComputeDataVersion(dual, cfg) {
		t.Error("dual flag should change the data version")
	}

	other := cfg
	other.NumTeams = 10
	if base == ComputeDataVersion(testPool(), other) {
		t.Error("config change should change the data version")
	}
}
