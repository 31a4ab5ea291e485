package reporting

import (
	"encoding/csv"
	"sort"
	"strconv"
	"strings"

	"fantasy-pricing-lab/internal/domain"
)

// PriceColumns are the fixed leading columns of the prices CSV. One column
// per display stat present in the result follows.
var PriceColumns = []string{
	"player_id", "player_name", "position", "team", "salary", "tier",
	"impact_score", "total_z_score", "is_rookie", "normalization_method",
}

// RenderPricesCSV renders priced players as CSV string.
func RenderPricesCSV(prices []domain.PricedPlayer) string {
	statKeys := statColumns(prices)

	var sb strings.Builder
	w := csv.NewWriter(&sb)

	header := append(append([]string(nil), PriceColumns...), statKeys...)
	_ = w.Write(header)

	for _, p := range prices {
		row := []string{
			p.PlayerID,
			p.PlayerName,
			p.Position,
			p.Team,
			strconv.Itoa(p.Salary),
			p.Tier,
			strconv.FormatFloat(p.ImpactScore, 'f', 2, 64),
			strconv.FormatFloat(p.TotalZScore, 'f', 3, 64),
			strconv.FormatBool(p.IsRookie),
			string(p.NormalizationMethod),
		}
		for _, k := range statKeys {
			v, ok := p.Stats[k]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		_ = w.Write(row)
	}

	w.Flush()
	return sb.String()
}

// RenderCategoriesCSV renders category distributions as CSV string.
func RenderCategoriesCSV(stats []domain.CategoryStatistic) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write([]string{"role", "category", "count", "mean", "std_dev", "min", "max"})
	for _, s := range stats {
		_ = w.Write([]string{
			string(s.Role),
			s.Category,
			strconv.Itoa(s.Count),
			strconv.FormatFloat(s.Mean, 'f', 6, 64),
			strconv.FormatFloat(s.StdDev, 'f', 6, 64),
			strconv.FormatFloat(s.Min, 'f', 6, 64),
			strconv.FormatFloat(s.Max, 'f', 6, 64),
		})
	}

	w.Flush()
	return sb.String()
}

// statColumns lists display stats in a fixed order: hitter stats, then
// pitcher stats, then any other key alphabetically.
func statColumns(prices []domain.PricedPlayer) []string {
	present := make(map[string]bool)
	for _, p := range prices {
		for k := range p.Stats {
			present[k] = true
		}
	}

	var cols []string
	for _, group := range [][]string{domain.HitterDisplayStats, domain.PitcherDisplayStats} {
		for _, k := range group {
			if present[k] {
				cols = append(cols, k)
				delete(present, k)
			}
		}
	}

	var rest []string
	for k := range present {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(cols, rest...)
}
