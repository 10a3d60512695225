package heuristics

import "repohealth/internal/report"

// The advice tables below check named conditions in a fixed priority order.
// Each condition contributes at most one canned entry. The win, strength and
// milestone lists carry a fallback so they are never empty; dominant risks
// may legitimately be empty for a clean tree.

func dominantRisks(s signals) []string {
	type check struct {
		hit  bool
		text string
	}
	checks := []check{
		{s.dynamicExec, "Dynamic code execution paths"},
		{s.hardcodedCreds, "Credential material committed to source"},
		{s.emptyHandlers, "Silently swallowed errors"},
		{s.avgComplexity >= 6, "High average complexity"},
		{s.largeFiles >= 2, "Oversized modules concentrate change risk"},
		{s.lowCommentFiles >= 2, "Sparsely documented hotspots"},
		{s.dirShare > 0.8 && s.files >= 8, "Monolithic directory layout"},
	}
	var out []string
	for _, c := range checks {
		if !c.hit {
			continue
		}
		out = append(out, c.text)
		if len(out) == report.MaxDominantRisks {
			break
		}
	}
	return out
}

func quickWins(s signals) []string {
	type check struct {
		hit  bool
		text string
	}
	checks := []check{
		{s.maintLow > 0, "Strip leftover debug statements before release builds"},
		{s.maintMedium > 0, "Tighten loose type escapes where the fix is mechanical"},
		{s.lowCommentFiles > 0, "Add header comments to the least documented files"},
		{s.emptyHandlers, "Log the error in every empty exception handler"},
		{s.largeFiles > 0, "Extract helpers from files over 380 lines"},
	}
	var out []string
	for _, c := range checks {
		if !c.hit {
			continue
		}
		out = append(out, c.text)
		if len(out) == report.MaxQuickWins {
			break
		}
	}
	if len(out) == 0 {
		out = append(out, "Wire this report into CI to catch regressions early")
	}
	return out
}

func strengths(s signals) []string {
	type check struct {
		hit  bool
		text string
	}
	checks := []check{
		{s.critical == 0 && s.high == 0, "No high-severity findings in the sampled files"},
		{s.avgComplexity < 3.5, "Low average complexity across sampled files"},
		{s.meanCommentRatio >= 0.08, "Healthy comment coverage"},
		{s.rootCount >= 4, "Work is spread across distinct top-level areas"},
		{s.largeFiles == 0, "File sizes stay within review-friendly bounds"},
	}
	var out []string
	for _, c := range checks {
		if !c.hit {
			continue
		}
		out = append(out, c.text)
		if len(out) == report.MaxStrengths {
			break
		}
	}
	if len(out) == 0 {
		out = append(out, "Consistent, navigable project layout")
	}
	return out
}

func nextMilestones(s signals, cats report.CategoryScores) []string {
	type check struct {
		hit  bool
		text string
	}
	checks := []check{
		{s.secCritical > 0, "Remove dynamic execution paths and rotate any exposed credentials"},
		{cats.Security < 70, "Lift the security score above 70"},
		{s.emptyHandlers, "Eliminate empty exception handlers"},
		{s.largeFiles > 0, "Bring every file under 380 lines"},
		{cats.Documentation < 55, "Raise comment coverage toward the documentation baseline"},
	}
	var out []string
	for _, c := range checks {
		if !c.hit {
			continue
		}
		out = append(out, c.text)
		if len(out) == report.MaxNextMilestones {
			break
		}
	}
	if len(out) == 0 {
		out = append(out, "Automate health reporting on every default-branch push")
	}
	return out
}
