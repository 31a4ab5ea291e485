package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Pricing Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	season := fmt.Sprintf("%d", r.Season.Year)
	if r.Season.Label != "" {
		season += " (" + r.Season.Label + ")"
	}
	sb.WriteString(fmt.Sprintf("League: %s | Season: %s\n\n", r.LeagueID, season))

	// League
	sb.WriteString("## League\n\n")
	sb.WriteString("| Setting | Value |\n")
	sb.WriteString("|---------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Teams | %d |\n", r.League.NumTeams))
	sb.WriteString(fmt.Sprintf("| Roster Size | %d |\n", r.League.RosterSize))
	sb.WriteString(fmt.Sprintf("| Cap Mode | %s |\n", r.League.CapMode))
	sb.WriteString(fmt.Sprintf("| Draft Cap | %d |\n", r.League.DraftCap))
	sb.WriteString(fmt.Sprintf("| Total Cap | %d |\n", r.League.TotalCap))
	sb.WriteString(fmt.Sprintf("| Salary Range | %d - %d |\n", r.League.MinSalary, r.League.MaxSalary))
	sb.WriteString(fmt.Sprintf("| Usage Target | %.2f |\n", r.League.UsageTarget))
	sb.WriteString(fmt.Sprintf("| Budget Ceiling | %d |\n", r.League.BudgetCeiling))
	if r.League.RelevantPlayers > 0 {
		sb.WriteString(fmt.Sprintf("| Relevant Players | %d |\n", r.League.RelevantPlayers))
	}
	sb.WriteString("\n")

	// Data Quality
	sb.WriteString("## Data Quality\n\n")
	if len(r.DataQuality.SufficiencyChecks) > 0 {
		sb.WriteString("### Sufficiency Checks\n\n")
		sb.WriteString("| Check | Threshold | Actual | Status |\n")
		sb.WriteString("|-------|-----------|--------|--------|\n")
		for _, check := range r.DataQuality.SufficiencyChecks {
			status := "FAIL"
			if check.Pass {
				status = "PASS"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				check.Name, check.Threshold, check.Actual, status))
		}
		sb.WriteString("\n")

		if r.DataQuality.AllChecksPassed {
			sb.WriteString("**All checks passed.**\n\n")
		} else {
			sb.WriteString("**Some checks failed.** Prices below may be unreliable.\n\n")
		}
	} else if len(r.DataQuality.IntegrityErrors) == 0 {
		sb.WriteString("No data quality checks performed.\n\n")
	}

	// Integrity errors (always shown if present, even without sufficiency checks)
	if len(r.DataQuality.IntegrityErrors) > 0 {
		sb.WriteString("### Integrity Errors\n\n")
		for _, err := range r.DataQuality.IntegrityErrors {
			sb.WriteString(fmt.Sprintf("- %s\n", err))
		}
		sb.WriteString("\n")
	}

	// Summary
	s := r.Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Players Priced | %d |\n", s.TotalPlayers))
	sb.WriteString(fmt.Sprintf("| Total Money | %d |\n", s.TotalMoney))
	sb.WriteString(fmt.Sprintf("| Average Salary | %.2f |\n", s.AverageSalary))
	sb.WriteString(fmt.Sprintf("| Average Team Spend | %.2f |\n", s.AverageTeamSpend))
	sb.WriteString(fmt.Sprintf("| Cap Usage %% | %.2f |\n", s.CapUsagePercent))
	sb.WriteString(fmt.Sprintf("| Max Salary | %d |\n", s.MaxSalary))
	sb.WriteString(fmt.Sprintf("| >= 50 / >= 30 / >= 20 | %d / %d / %d |\n", s.Over50, s.Over30, s.Over20))
	sb.WriteString(fmt.Sprintf("| Under 5 | %d |\n", s.Under5))
	sb.WriteString(fmt.Sprintf("| At Minimum | %d |\n", s.AtMinimum))
	sb.WriteString(fmt.Sprintf("| Rookies | %d |\n", s.RookieCount))
	sb.WriteString(fmt.Sprintf("| Warnings | %d |\n", s.WarningCount))
	sb.WriteString("\n")

	p := r.Percentiles
	sb.WriteString("### Salary Percentiles\n\n")
	sb.WriteString("| P10 | P25 | P50 | P75 | P90 |\n")
	sb.WriteString("|-----|-----|-----|-----|-----|\n")
	sb.WriteString(fmt.Sprintf("| %.2f | %.2f | %.2f | %.2f | %.2f |\n\n", p.P10, p.P25, p.P50, p.P75, p.P90))

	v := r.Viability
	sb.WriteString("### Draft Viability\n\n")
	if v.Rescaled {
		sb.WriteString(fmt.Sprintf("- Rescaled by %.4f\n", v.RescaleRatio))
	} else {
		sb.WriteString("- No rescale needed\n")
	}
	sb.WriteString(fmt.Sprintf("- Trimmed $%d to fit the budget ceiling\n", v.Trimmed))
	sb.WriteString(fmt.Sprintf("- %d players pushed to the floor (quota %d)\n\n", v.FloorPushed, v.FloorQuota))

	// Tiers
	sb.WriteString("## Tiers\n\n")
	if len(r.Tiers) > 0 {
		sb.WriteString("| Tier | Players | Money | Min | Max |\n")
		sb.WriteString("|------|---------|-------|-----|-----|\n")
		for _, t := range r.Tiers {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d |\n",
				t.Tier, t.Players, t.Money, t.MinSalary, t.MaxSalary))
		}
	} else {
		sb.WriteString("No priced players.\n")
	}
	sb.WriteString("\n")

	// Positions
	sb.WriteString("## Positions\n\n")
	if len(r.Positions) > 0 {
		sb.WriteString("| Position | Slots | Demand | Priced | Avg Salary | Max Salary | Replacement | Scarcity |\n")
		sb.WriteString("|----------|-------|--------|--------|------------|------------|-------------|----------|\n")
		for _, pos := range r.Positions {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %.2f | %d | %.3f | %.3f |\n",
				pos.Position, pos.Slots, pos.Demand, pos.Priced,
				pos.AvgSalary, pos.MaxSalary, pos.ReplacementLevel, pos.ScarcityFactor))
		}
	} else {
		sb.WriteString("No positions configured.\n")
	}
	sb.WriteString("\n")

	// Categories
	sb.WriteString("## Category Distributions\n\n")
	if len(r.Categories) > 0 {
		sb.WriteString("| Role | Category | Count | Mean | StdDev | Min | Max |\n")
		sb.WriteString("|------|----------|-------|------|--------|-----|-----|\n")
		for _, c := range r.Categories {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %.4f | %.4f | %.4f | %.4f |\n",
				c.Role, c.Category, c.Count, c.Mean, c.StdDev, c.Min, c.Max))
		}
	} else {
		sb.WriteString("No category statistics available.\n")
	}
	sb.WriteString("\n")

	// Top players
	sb.WriteString("## Top Players\n\n")
	if len(r.TopPlayers) > 0 {
		sb.WriteString("| # | Player | Position | Team | Salary | Tier | Impact | Method |\n")
		sb.WriteString("|---|--------|----------|------|--------|------|--------|--------|\n")
		for i, pl := range r.TopPlayers {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %d | %s | %.2f | %s |\n",
				i+1, pl.PlayerName, pl.Position, pl.Team, pl.Salary, pl.Tier, pl.ImpactScore, pl.NormalizationMethod))
		}
	} else {
		sb.WriteString("No priced players.\n")
	}
	sb.WriteString("\n")

	// Warnings
	if len(r.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", w))
		}
		sb.WriteString("\n")
	}

	// Reproducibility
	rp := r.Reproducibility
	if rp.RunID != "" || rp.DataVersion != "" {
		sb.WriteString("## Reproducibility\n\n")
		sb.WriteString("| Field | Value |\n")
		sb.WriteString("|-------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Report Timestamp | %s |\n", rp.ReportTimestamp.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("| Generator Version | %s |\n", rp.GeneratorVersion))
		sb.WriteString(fmt.Sprintf("| Run ID | %s |\n", rp.RunID))
		sb.WriteString(fmt.Sprintf("| Data Version | %s |\n", rp.DataVersion))
		if rp.ReplayCommand != "" {
			sb.WriteString(fmt.Sprintf("| Replay Command | `%s` |\n", rp.ReplayCommand))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
