package lookup

import (
	"errors"
	"testing"

	"fantasy-pricing-lab/internal/domain"
)

func samplePrices() []domain.PricedPlayer {
	return []domain.PricedPlayer{
		{PlayerID: "p1", PlayerName: "Ronald Acuña Jr.", Position: "OF", Team: "ATL", Salary: 52},
		{PlayerID: "p2", PlayerName: "Shohei Ohtani", Position: "DH/SP", Team: "LAD", Salary: 50},
		{PlayerID: "p3", PlayerName: "Gerrit Cole", Position: "SP", Team: "NYY", Salary: 31},
		{PlayerID: "p4", PlayerName: "Corbin Carroll", Position: "OF", Team: "ARI", Salary: 28},
		{PlayerID: "p5", PlayerName: "Jackson Holliday", Position: "2B/SS", Team: "BAL", Salary: 1, IsRookie: true},
	}
}

func TestIndex_SearchExact(t *testing.T) {
	idx := NewIndex(samplePrices())

	got := idx.Search("Gerrit Cole", Filter{}, 0)
	if len(got) == 0 {
		t.Fatal("expected a match")
	}
	if got[0].Player.PlayerID != "p3" {
		t.Errorf("expected p3 first, got %s", got[0].Player.PlayerID)
	}
}

func TestIndex_SearchFuzzy(t *testing.T) {
	idx := NewIndex(samplePrices())

	got := idx.Search("ohtni", Filter{}, 0)
	if len(got) == 0 || got[0].Player.PlayerID != "p2" {
		t.Fatalf("expected Ohtani for abbreviated query, got %+v", got)
	}
}

func TestIndex_SearchFoldsDiacritics(t *testing.T) {
	idx := NewIndex(samplePrices())

	got := idx.Search("acuna", Filter{}, 0)
	if len(got) == 0 || got[0].Player.PlayerID != "p1" {
		t.Fatalf("expected Acuña for ascii query, got %+v", got)
	}
}

func TestIndex_SearchFilter(t *testing.T) {
	idx := NewIndex(samplePrices())

	got := idx.Search("", Filter{Position: "of"}, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 outfielders, got %d", len(got))
	}
	if got[0].Player.PlayerID != "p1" || got[1].Player.PlayerID != "p4" {
		t.Errorf("expected run order p1, p4; got %s, %s", got[0].Player.PlayerID, got[1].Player.PlayerID)
	}

	rookies := true
	got = idx.Search("", Filter{Rookies: &rookies}, 0)
	if len(got) != 1 || got[0].Player.PlayerID != "p5" {
		t.Errorf("expected only the rookie, got %+v", got)
	}

	got = idx.Search("", Filter{MinSalary: 30, Team: "lad"}, 0)
	if len(got) != 1 || got[0].Player.PlayerID != "p2" {
		t.Errorf("expected only Ohtani, got %+v", got)
	}
}

func TestIndex_SearchLimit(t *testing.T) {
	idx := NewIndex(samplePrices())

	if got := idx.Search("", Filter{}, 2); len(got) != 2 {
		t.Errorf("expected 2 results, got %d", len(got))
	}
	if got := idx.Search("", Filter{}, 0); len(got) != 5 {
		t.Errorf("expected all 5 results under default limit, got %d", len(got))
	}
}

func TestIndex_SearchNoMatch(t *testing.T) {
	idx := NewIndex(samplePrices())

	if got := idx.Search("zzzzzz", Filter{}, 0); len(got) != 0 {
		t.Errorf("expected no matches, got %+v", got)
	}
}

func TestIndex_ByID(t *testing.T) {
	idx := NewIndex(samplePrices())

	p, err := idx.ByID("p4")
	if err != nil {
		t.Fatalf("ByID failed: %v", err)
	}
	if p.PlayerName != "Corbin Carroll" {
		t.Errorf("expected Corbin Carroll, got %s", p.PlayerName)
	}

	if _, err := idx.ByID("missing"); !errors.Is(err, ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
}

func TestNewIndex_CopiesInput(t *testing.T) {
	prices := samplePrices()
	idx := NewIndex(prices)
	prices[0].Salary = 999

	p, _ := idx.ByID("p1")
	if p.Salary != 52 {
		t.Errorf("expected index to keep original salary 52, got %d", p.Salary)
	}
}
