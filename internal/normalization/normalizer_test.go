package normalization

import (
	"math"
	"testing"

	"fantasy-pricing-lab/internal/domain"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNormalizeHitter_Paths(t *testing.T) {
	n := NewNormalizer(Thresholds{})

	tests := []struct {
		name   string
		player domain.PlayerRecord
		method domain.NormalizationMethod
	}{
		{
			name:   "full season",
			player: domain.PlayerRecord{Current: domain.StatLine{"ab": 300, "hr": 20}},
			method: domain.MethodCurrentYear,
		},
		{
			name: "blended",
			player: domain.PlayerRecord{
				Current: domain.StatLine{"ab": 150, "hr": 10},
				Prior:   domain.StatLine{"ab": 500, "hr": 30},
			},
			method: domain.MethodBlended,
		},
		{
			name: "partial current, thin prior",
			player: domain.PlayerRecord{
				Current: domain.StatLine{"ab": 150, "hr": 10},
				Prior:   domain.StatLine{"ab": 100, "hr": 3},
			},
			method: domain.MethodPartialCurrent,
		},
		{
			name:   "prior fallback",
			player: domain.PlayerRecord{Prior: domain.StatLine{"ab": 500, "hr": 30}},
			method: domain.MethodPriorYear,
		},
		{
			name:   "two years fallback",
			player: domain.PlayerRecord{TwoYearsAgo: domain.StatLine{"ab": 500, "hr": 30}},
			method: domain.MethodTwoYearsAgo,
		},
		{
			name:   "nothing",
			player: domain.PlayerRecord{},
			method: domain.MethodNoData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.player, domain.RoleHitter)
			if got.Method != tt.method {
				t.Errorf("method = %s, want %s", got.Method, tt.method)
			}
			if got.Stats == nil {
				t.Errorf("stats must be non-nil")
			}
		})
	}
}

func TestNormalizeHitter_BlendMath(t *testing.T) {
	n := NewNormalizer(DefaultThresholds())
	p := domain.PlayerRecord{
		Current: domain.StatLine{"ab": 150, "hr": 10, "avg": 0.300},
		Prior:   domain.StatLine{"ab": 500, "hr": 30, "avg": 0.260},
	}

	got := n.Normalize(p, domain.RoleHitter)

	// w = 150/300 = 0.5
	if !approx(got.Weight, 0.5) {
		t.Fatalf("weight = %v, want 0.5", got.Weight)
	}
	if !approx(got.Stats.Get("hr"), 20) {
		t.Errorf("hr = %v, want 20", got.Stats.Get("hr"))
	}
	if !approx(got.Stats.Get("avg"), 0.280) {
		t.Errorf("avg = %v, want 0.280", got.Stats.Get("avg"))
	}
	if got.Stats.Get("ab") != 500 {
		t.Errorf("ab should come from the larger season, got %v", got.Stats.Get("ab"))
	}
}

func TestNormalize_DiscountAndNudge(t *testing.T) {
	n := NewNormalizer(DefaultThresholds())

	prior := n.Normalize(domain.PlayerRecord{Prior: domain.StatLine{"hr": 20, "avg": 0.350}}, domain.RoleHitter)
	if !approx(prior.Stats.Get("hr"), 17) {
		t.Errorf("prior hr = %v, want 17", prior.Stats.Get("hr"))
	}
	// 0.350 + (0.250-0.350)*0.05 = 0.345
	if !approx(prior.Stats.Get("avg"), 0.345) {
		t.Errorf("prior avg = %v, want 0.345", prior.Stats.Get("avg"))
	}

	old := n.Normalize(domain.PlayerRecord{TwoYearsAgo: domain.StatLine{"w": 10, "era": 3.20, "ip": 150, "gs": 25}}, domain.RolePitcher)
	if old.Method != domain.MethodTwoYearsAgo {
		t.Fatalf("method = %s", old.Method)
	}
	if !approx(old.Stats.Get("w"), 7) {
		t.Errorf("two-years w = %v, want 7", old.Stats.Get("w"))
	}
	// 3.20 + (4.20-3.20)*0.05 = 3.25
	if !approx(old.Stats.Get("era"), 3.25) {
		t.Errorf("two-years era = %v, want 3.25", old.Stats.Get("era"))
	}
	if !old.IsStarter {
		t.Errorf("role should come from the first season with appearances")
	}
}

func TestNormalizePitcher_StarterAndReliever(t *testing.T) {
	n := NewNormalizer(DefaultThresholds())

	starter := n.Normalize(domain.PlayerRecord{
		IsPitcher: true,
		Current:   domain.StatLine{"gs": 6, "p_g": 6, "w": 3, "era": 3.00},
		Prior:     domain.StatLine{"gs": 30, "p_g": 30, "w": 12, "era": 4.00},
	}, domain.RolePitcher)
	if !starter.IsStarter || starter.Method != domain.MethodBlended {
		t.Fatalf("expected blended starter, got %+v", starter)
	}
	// w = 6/12 = 0.5 -> wins 7.5, era 3.5
	if !approx(starter.Stats.Get("w"), 7.5) || !approx(starter.Stats.Get("era"), 3.5) {
		t.Errorf("blend mismatch: w=%v era=%v", starter.Stats.Get("w"), starter.Stats.Get("era"))
	}

	reliever := n.Normalize(domain.PlayerRecord{
		IsPitcher: true,
		Current:   domain.StatLine{"p_g": 30, "gs": 0, "sv": 20},
	}, domain.RolePitcher)
	if reliever.IsStarter || reliever.Method != domain.MethodCurrentYear {
		t.Errorf("expected full-season reliever, got %+v", reliever)
	}

	// 4 starts in 6 games is a majority
	swing := n.Normalize(domain.PlayerRecord{
		IsPitcher: true,
		Current:   domain.StatLine{"p_g": 6, "gs": 4},
	}, domain.RolePitcher)
	if !swing.IsStarter || swing.Method != domain.MethodPartialCurrent {
		t.Errorf("expected partial starter, got %+v", swing)
	}

	thinPrior := n.Normalize(domain.PlayerRecord{
		IsPitcher: true,
		Current:   domain.StatLine{"p_g": 12, "sv": 5},
		Prior:     domain.StatLine{"p_g": 9, "sv": 2},
	}, domain.RolePitcher)
	if thinPrior.Method != domain.MethodPartialCurrent {
		t.Errorf("reliever prior below 10 G must not blend, got %s", thinPrior.Method)
	}
}

func TestNormalize_RateMissingOnOneSide(t *testing.T) {
	n := NewNormalizer(DefaultThresholds())

	got := n.Normalize(domain.PlayerRecord{
		Current: domain.StatLine{"ab": 60, "hr": 2},
		Prior:   domain.StatLine{"ab": 400, "hr": 15, "ops": 0.800},
	}, domain.RoleHitter)

	if got.Stats.Get("ops") != 0.800 {
		t.Errorf("ops should not be blended against a missing value, got %v", got.Stats.Get("ops"))
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	n := NewNormalizer(DefaultThresholds())
	p := domain.PlayerRecord{Current: domain.StatLine{"ab": 400, "hr": 25}}

	got := n.Normalize(p, domain.RoleHitter)
	got.Stats["hr"] = 0

	if p.Current["hr"] != 25 {
		t.Errorf("input stat line was mutated")
	}
}
