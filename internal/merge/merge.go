package merge

import (
	"math"
	"sort"
	"strings"

	"repohealth/internal/report"
	"repohealth/internal/util/mathutil"
)

// Local-weight bounds for anchoring AI values against the baseline.
const (
	MinLocalWeight     = 0.5
	MaxLocalWeight     = 0.95
	DefaultLocalWeight = 0.8
)

// Weights is the local-vs-AI blend, threaded explicitly into every merge
// call so a request can carry its own weighting.
type Weights struct {
	Local float64
	AI    float64
}

// NewWeights clamps local into [MinLocalWeight, MaxLocalWeight] and derives
// the AI complement.
func NewWeights(local float64) Weights {
	if math.IsNaN(local) {
		local = DefaultLocalWeight
	}
	local = mathutil.ClampFloat(local, MinLocalWeight, MaxLocalWeight)
	return Weights{Local: local, AI: 1 - local}
}

func blendScore(local int, ai float64, w Weights) int {
	return mathutil.RoundInt(float64(local)*w.Local + ai*w.AI)
}

// Blend merges a single candidate into the baseline. Category and risk
// scores are anchored weighted averages; every list is a whole-list
// replacement by the candidate's sanitized list, falling back to the
// baseline's when the candidate has nothing usable. The overall score and
// grade are re-derived, never taken from the candidate.
func Blend(baseline report.Report, cand Candidate, w Weights) report.Report {
	out := baseline

	out.Categories = blendCategories(baseline.Categories, []Candidate{cand}, w)

	if ai, ok := cand.riskScore(); ok {
		out.Risk.Score = report.ClampRiskScore(blendScore(baseline.Risk.Score, ai, w))
	}
	if lvl, ok := cand.riskLevel(); ok {
		out.Risk.Level = lvl
	} else {
		out.Risk.Level = report.RiskLevelFor(out.Risk.Score)
	}
	out.Risk.DominantRisks = replaceList(baseline.Risk.DominantRisks, cand.dominantRisks(), report.MaxDominantRisks)

	if s, ok := cand.summary(); ok {
		out.Summary = s
	}
	if issues := cand.issues(); len(issues) > 0 {
		out.TopIssues = issues
	}
	if fixes := cand.fixes(); len(fixes) > 0 {
		out.PriorityFixes = fixes
	}
	out.QuickWins = replaceList(baseline.QuickWins, cand.listOf("quickWins", report.MaxQuickWins), report.MaxQuickWins)
	out.Strengths = replaceList(baseline.Strengths, cand.listOf("strengths", report.MaxStrengths), report.MaxStrengths)
	out.NextMilestones = replaceList(baseline.NextMilestones, cand.listOf("nextMilestones", report.MaxNextMilestones), report.MaxNextMilestones)

	finishMerged(&out, w)
	return out
}

// Consensus merges two or more candidates: per-axis AI values are averaged
// first, then the consensus average is anchored against the baseline with
// the same weights. Lists are unioned and de-duplicated instead of
// replaced, and the risk level is a majority vote.
func Consensus(baseline report.Report, cands []Candidate, w Weights) report.Report {
	out := baseline

	out.Categories = blendCategories(baseline.Categories, cands, w)

	var riskVals []float64
	for _, c := range cands {
		if v, ok := c.riskScore(); ok {
			riskVals = append(riskVals, v)
		}
	}
	if len(riskVals) > 0 {
		out.Risk.Score = report.ClampRiskScore(blendScore(baseline.Risk.Score, mathutil.MeanFloat(riskVals...), w))
	}
	out.Risk.Level = voteRiskLevel(cands, out.Risk.Score)

	domLists := [][]string{baseline.Risk.DominantRisks}
	winLists := [][]string{baseline.QuickWins}
	strLists := [][]string{baseline.Strengths}
	mileLists := [][]string{baseline.NextMilestones}
	issueLists := [][]report.Issue{baseline.TopIssues}
	fixLists := [][]report.Fix{baseline.PriorityFixes}
	var summaries []string
	for _, c := range cands {
		domLists = append(domLists, c.dominantRisks())
		winLists = append(winLists, c.listOf("quickWins", report.MaxQuickWins))
		strLists = append(strLists, c.listOf("strengths", report.MaxStrengths))
		mileLists = append(mileLists, c.listOf("nextMilestones", report.MaxNextMilestones))
		issueLists = append(issueLists, c.issues())
		fixLists = append(fixLists, c.fixes())
		if s, ok := c.summary(); ok {
			summaries = append(summaries, s)
		}
	}
	out.Risk.DominantRisks = unionStrings(domLists, report.MaxDominantRisks)
	out.QuickWins = unionStrings(winLists, report.MaxQuickWins)
	out.Strengths = unionStrings(strLists, report.MaxStrengths)
	out.NextMilestones = unionStrings(mileLists, report.MaxNextMilestones)
	out.TopIssues = unionIssues(issueLists)
	out.PriorityFixes = unionFixes(fixLists)
	out.Summary = consensusSummary(baseline.Summary, summaries)

	finishMerged(&out, w)
	return out
}

// finishMerged applies the invariants every merged report must satisfy.
func finishMerged(out *report.Report, w Weights) {
	out.AnalysisMeta.StabilityMode = report.StabilityAnchored
	out.AnalysisMeta.ScoreWeights = report.ScoreWeights{Local: w.Local, AI: w.AI}
	out.Rederive()
	out.CapLists()
}

// blendCategories anchors the candidates' per-axis averages against the
// baseline. Axes no candidate supplies keep the baseline value untouched;
// a category is never silently zeroed.
func blendCategories(base report.CategoryScores, cands []Candidate, w Weights) report.CategoryScores {
	blendOne := func(local int, axis string) int {
		var vals []float64
		for _, c := range cands {
			if v, ok := c.category(axis); ok {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			return local
		}
		return report.ClampCategory(blendScore(local, mathutil.MeanFloat(vals...), w))
	}
	return report.CategoryScores{
		Maintainability: blendOne(base.Maintainability, "maintainability"),
		Reliability:     blendOne(base.Reliability, "reliability"),
		Security:        blendOne(base.Security, "security"),
		Documentation:   blendOne(base.Documentation, "documentation"),
		Architecture:    blendOne(base.Architecture, "architecture"),
	}
}

// voteRiskLevel picks the most frequent sanitized level across candidates;
// first-seen wins frequency ties, and the blended score decides when no
// candidate supplied a usable level.
func voteRiskLevel(cands []Candidate, blendedScore int) report.RiskLevel {
	counts := map[report.RiskLevel]int{}
	var order []report.RiskLevel
	for _, c := range cands {
		lvl, ok := c.riskLevel()
		if !ok {
			continue
		}
		if counts[lvl] == 0 {
			order = append(order, lvl)
		}
		counts[lvl]++
	}
	if len(order) == 0 {
		return report.RiskLevelFor(blendedScore)
	}
	winner := order[0]
	for _, lvl := range order[1:] {
		if counts[lvl] > counts[winner] {
			winner = lvl
		}
	}
	return winner
}

// replaceList applies whole-list replacement: the candidate list when it
// has anything usable, otherwise the baseline's, capped either way.
func replaceList(base, cand []string, max int) []string {
	src := base
	if len(cand) > 0 {
		src = cand
	}
	if len(src) > max {
		src = src[:max]
	}
	return src
}

// unionStrings concatenates the lists, de-duplicates case-insensitively
// preserving first-seen order, and caps the result.
func unionStrings(lists [][]string, max int) []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range lists {
		for _, s := range list {
			key := strings.ToLower(strings.TrimSpace(s))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s)
			if len(out) == max {
				return out
			}
		}
	}
	return out
}

func unionIssues(lists [][]report.Issue) []report.Issue {
	seen := map[string]bool{}
	var out []report.Issue
	for _, list := range lists {
		for _, is := range list {
			key := strings.ToLower(is.File) + "::" + strings.ToLower(is.Title)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, is)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := report.SeverityRank(out[i].Severity), report.SeverityRank(out[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Title < out[j].Title
	})
	if len(out) > report.MaxTopIssues {
		out = out[:report.MaxTopIssues]
	}
	return out
}

func unionFixes(lists [][]report.Fix) []report.Fix {
	seen := map[string]bool{}
	var out []report.Fix
	for _, list := range lists {
		for _, fx := range list {
			key := strings.ToLower(fx.File) + "::" + strings.ToLower(fx.Suggestion)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, fx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ii, ij := report.ImpactRank(out[i].Impact), report.ImpactRank(out[j].Impact)
		if ii != ij {
			return ii > ij
		}
		ei, ej := report.EffortRank(out[i].Effort), report.EffortRank(out[j].Effort)
		if ei != ej {
			return ei > ej
		}
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Suggestion < out[j].Suggestion
	})
	if len(out) > report.MaxPriorityFixes {
		out = out[:report.MaxPriorityFixes]
	}
	return out
}

// consensusSummary passes a single or unanimous summary through unchanged
// and stitches the first two distinct ones together otherwise.
func consensusSummary(baseline string, summaries []string) string {
	var distinct []string
	for _, s := range summaries {
		dup := false
		for _, have := range distinct {
			if have == s {
				dup = true
				break
			}
		}
		if !dup {
			distinct = append(distinct, s)
		}
	}
	switch len(distinct) {
	case 0:
		return baseline
	case 1:
		return distinct[0]
	default:
		return distinct[0] + " Consensus view: " + distinct[1]
	}
}
