package merge

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"repohealth/internal/report"
)

func baselineReport() report.Report {
	r := report.Report{
		Repository: "acme/service",
		Confidence: 60,
		Summary:    "Solid foundations with a handful of complexity hotspots.",
		Categories: report.CategoryScores{
			Maintainability: 60,
			Reliability:     55,
			Security:        70,
			Documentation:   40,
			Architecture:    65,
		},
		Risk: report.RiskAssessment{
			Score:         50,
			Level:         report.RiskModerate,
			DominantRisks: []string{"High average complexity"},
		},
		Heatmap: []report.HeatmapEntry{
			{File: "src/core.js", ComplexityScore: 7, Issues: 2, LOC: 410, Risk: report.RiskElevated},
		},
		TopIssues: []report.Issue{{
			File:           "src/core.js",
			Title:          "Large file",
			Description:    "410 lines of code in one file.",
			Severity:       report.SeverityMedium,
			Recommendation: "Split responsibilities into smaller modules.",
		}},
		PriorityFixes: []report.Fix{{
			File:       "src/core.js",
			Suggestion: "Split responsibilities into smaller modules.",
			Impact:     report.ImpactMedium,
			Effort:     report.EffortMedium,
			Rationale:  "410 lines of code in one file.",
		}},
		QuickWins:      []string{"Add a linter to the pipeline"},
		Strengths:      []string{"Small, focused modules"},
		NextMilestones: []string{"Raise test coverage above 60%"},
		AnalysisMeta: report.AnalysisMeta{
			Provider:      report.ProviderLocal,
			Model:         "none",
			FallbackUsed:  true,
			StabilityMode: report.StabilityDeterministic,
			ScoreWeights:  report.ScoreWeights{Local: 1, AI: 0},
		},
	}
	r.Rederive()
	return r
}

func mustCandidate(t *testing.T, provider, raw string) Candidate {
	t.Helper()
	c, err := ParseCandidate(provider, raw)
	require.NoError(t, err)
	return c
}

func TestNewWeights(t *testing.T) {
	cases := []struct {
		in        float64
		wantLocal float64
	}{
		{0.8, 0.8},
		{0.5, 0.5},
		{0.95, 0.95},
		{0.2, MinLocalWeight},
		{1.5, MaxLocalWeight},
		{math.NaN(), DefaultLocalWeight},
	}
	for _, tc := range cases {
		w := NewWeights(tc.in)
		require.InDelta(t, tc.wantLocal, w.Local, 1e-9)
		require.InDelta(t, 1-tc.wantLocal, w.AI, 1e-9)
	}
}

func TestBlendAnchorsScores(t *testing.T) {
	base := baselineReport()
	cand := mustCandidate(t, "gemini", `{
		"categories": {"maintainability": 90, "security": 40},
		"risk": {"score": 80, "level": "Elevated"}
	}`)

	out := Blend(base, cand, NewWeights(0.8))

	require.Equal(t, 66, out.Categories.Maintainability) // round(60*0.8 + 90*0.2)
	require.Equal(t, 64, out.Categories.Security)
	require.Equal(t, base.Categories.Reliability, out.Categories.Reliability)
	require.Equal(t, base.Categories.Documentation, out.Categories.Documentation)
	require.Equal(t, base.Categories.Architecture, out.Categories.Architecture)

	require.Equal(t, 56, out.Risk.Score)
	require.Equal(t, report.RiskElevated, out.Risk.Level)

	require.Equal(t, report.WeightedOverall(out.Categories), out.OverallScore)
	require.Equal(t, report.GradeFor(out.OverallScore), out.Grade)
}

func TestBlendKeepsBaselineWhenCandidateSilent(t *testing.T) {
	base := baselineReport()
	out := Blend(base, mustCandidate(t, "groq", `{}`), NewWeights(0.8))

	require.Equal(t, base.Categories, out.Categories)
	require.Equal(t, base.Risk.Score, out.Risk.Score)
	require.Equal(t, report.RiskLevelFor(base.Risk.Score), out.Risk.Level)
	require.Equal(t, base.Summary, out.Summary)
	require.Equal(t, base.TopIssues, out.TopIssues)
	require.Equal(t, base.PriorityFixes, out.PriorityFixes)
	require.Equal(t, base.QuickWins, out.QuickWins)
	require.Equal(t, base.Strengths, out.Strengths)
	require.Equal(t, base.NextMilestones, out.NextMilestones)
	require.Equal(t, base.Risk.DominantRisks, out.Risk.DominantRisks)
	require.Equal(t, base.OverallScore, out.OverallScore)
}

func TestBlendStampsAnchoredMeta(t *testing.T) {
	out := Blend(baselineReport(), mustCandidate(t, "gemini", `{}`), NewWeights(0.7))
	require.Equal(t, report.StabilityAnchored, out.AnalysisMeta.StabilityMode)
	require.InDelta(t, 0.7, out.AnalysisMeta.ScoreWeights.Local, 1e-9)
	require.InDelta(t, 0.3, out.AnalysisMeta.ScoreWeights.AI, 1e-9)
}

func TestBlendSanitizesRiskLevel(t *testing.T) {
	base := baselineReport()

	out := Blend(base, mustCandidate(t, "gemini", `{"risk": {"score": 80, "level": "Apocalyptic"}}`), NewWeights(0.8))
	require.Equal(t, 56, out.Risk.Score)
	require.Equal(t, report.RiskLevelFor(56), out.Risk.Level)

	// A valid level is accepted verbatim, whatever case it arrives in.
	out = Blend(base, mustCandidate(t, "gemini", `{"risk": {"level": " low "}}`), NewWeights(0.8))
	require.Equal(t, base.Risk.Score, out.Risk.Score)
	require.Equal(t, report.RiskLow, out.Risk.Level)
}

func TestBlendReplacesListsWholesale(t *testing.T) {
	base := baselineReport()
	cand := mustCandidate(t, "gemini", `{
		"quickWins": ["Enable CI caching", "  ", "Pin dependency versions"],
		"topIssues": [{"title": "SQL injection risk", "file": "src/db.js", "severity": "critical"}],
		"priorityFixes": [{"suggestion": "Parameterize queries", "impact": "high", "effort": "low"}]
	}`)

	out := Blend(base, cand, NewWeights(0.8))

	require.Equal(t, []string{"Enable CI caching", "Pin dependency versions"}, out.QuickWins)
	require.Equal(t, base.Strengths, out.Strengths, "absent list falls back to baseline")
	require.Equal(t, base.NextMilestones, out.NextMilestones)

	require.Len(t, out.TopIssues, 1)
	require.Equal(t, "SQL injection risk", out.TopIssues[0].Title)
	require.Equal(t, report.SeverityCritical, out.TopIssues[0].Severity)
	require.NotEmpty(t, out.TopIssues[0].Description)
	require.NotEmpty(t, out.TopIssues[0].Recommendation)

	require.Len(t, out.PriorityFixes, 1)
	require.Equal(t, "Parameterize queries", out.PriorityFixes[0].Suggestion)
	require.Equal(t, "general", out.PriorityFixes[0].File)
	require.Equal(t, report.ImpactHigh, out.PriorityFixes[0].Impact)
	require.Equal(t, report.EffortLow, out.PriorityFixes[0].Effort)
}

func TestBlendCapsOversizedLists(t *testing.T) {
	cand := mustCandidate(t, "gemini", `{
		"quickWins": ["a","b","c","d","e","f","g","h"],
		"risk": {"dominantRisks": ["r1","r2","r3","r4","r5","r6"]}
	}`)
	out := Blend(baselineReport(), cand, NewWeights(0.8))
	require.Len(t, out.QuickWins, report.MaxQuickWins)
	require.Len(t, out.Risk.DominantRisks, report.MaxDominantRisks)
}

// Feeding a report back through parse and blend must not drift any value:
// blending a score with itself is the identity.
func TestBlendRoundTripIsStable(t *testing.T) {
	base := baselineReport()
	raw, err := json.Marshal(base)
	require.NoError(t, err)

	out := Blend(base, mustCandidate(t, "gemini", string(raw)), NewWeights(0.8))

	want := base
	want.AnalysisMeta.StabilityMode = report.StabilityAnchored
	want.AnalysisMeta.ScoreWeights = report.ScoreWeights{Local: 0.8, AI: 1 - 0.8}
	require.Equal(t, want, out)
}

func TestConsensusAveragesBeforeAnchoring(t *testing.T) {
	base := baselineReport()
	cands := []Candidate{
		mustCandidate(t, "gemini", `{"categories": {"maintainability": 70}, "risk": {"score": 60}}`),
		mustCandidate(t, "groq", `{"categories": {"maintainability": 90}, "risk": {"score": 100}}`),
	}

	out := Consensus(base, cands, NewWeights(0.8))

	// mean(70, 90) = 80, then round(60*0.8 + 80*0.2) = 64.
	require.Equal(t, 64, out.Categories.Maintainability)
	require.Equal(t, base.Categories.Reliability, out.Categories.Reliability)
	// mean(60, 100) = 80, then round(50*0.8 + 80*0.2) = 56.
	require.Equal(t, 56, out.Risk.Score)

	require.Equal(t, report.WeightedOverall(out.Categories), out.OverallScore)
	require.Equal(t, report.GradeFor(out.OverallScore), out.Grade)
	require.Equal(t, report.StabilityAnchored, out.AnalysisMeta.StabilityMode)
}

func TestConsensusRiskLevelVote(t *testing.T) {
	base := baselineReport()
	w := NewWeights(0.8)

	majority := []Candidate{
		mustCandidate(t, "a", `{"risk": {"level": "Elevated"}}`),
		mustCandidate(t, "b", `{"risk": {"level": "Low"}}`),
		mustCandidate(t, "c", `{"risk": {"level": "elevated"}}`),
	}
	require.Equal(t, report.RiskElevated, Consensus(base, majority, w).Risk.Level)

	tied := []Candidate{
		mustCandidate(t, "a", `{"risk": {"level": "Low"}}`),
		mustCandidate(t, "b", `{"risk": {"level": "Critical"}}`),
	}
	require.Equal(t, report.RiskLow, Consensus(base, tied, w).Risk.Level, "first seen wins a tie")

	noVotes := []Candidate{
		mustCandidate(t, "a", `{"risk": {"level": "Apocalyptic"}}`),
		mustCandidate(t, "b", `{}`),
	}
	out := Consensus(base, noVotes, w)
	require.Equal(t, report.RiskLevelFor(out.Risk.Score), out.Risk.Level)
}

func TestConsensusUnionsStringLists(t *testing.T) {
	base := baselineReport()
	cands := []Candidate{
		mustCandidate(t, "gemini", `{"quickWins": ["add a LINTER to the pipeline", "Pin dependency versions"]}`),
		mustCandidate(t, "groq", `{"quickWins": ["Pin dependency versions", "Cache CI dependencies"]}`),
	}

	out := Consensus(base, cands, NewWeights(0.8))

	require.Equal(t, []string{
		"Add a linter to the pipeline",
		"Pin dependency versions",
		"Cache CI dependencies",
	}, out.QuickWins, "baseline first, case-insensitive de-dup keeps first spelling")
}

func TestConsensusUnionsIssuesAndFixes(t *testing.T) {
	base := baselineReport()
	cands := []Candidate{
		mustCandidate(t, "gemini", `{
			"topIssues": [{"title": "large FILE", "file": "SRC/core.js", "severity": "high"}],
			"priorityFixes": [{"file": "src/core.js", "suggestion": "split RESPONSIBILITIES into smaller modules."}]
		}`),
		mustCandidate(t, "groq", `{
			"topIssues": [{"title": "SQL injection", "file": "src/db.js", "severity": "critical"}],
			"priorityFixes": [{"file": "src/db.js", "suggestion": "Parameterize queries", "impact": "high"}]
		}`),
	}

	out := Consensus(base, cands, NewWeights(0.8))

	// The duplicate of the baseline issue is dropped; the union sorts by
	// severity, so the new critical finding leads.
	require.Len(t, out.TopIssues, 2)
	require.Equal(t, "SQL injection", out.TopIssues[0].Title)
	require.Equal(t, report.SeverityCritical, out.TopIssues[0].Severity)
	require.Equal(t, "Large file", out.TopIssues[1].Title)

	require.Len(t, out.PriorityFixes, 2)
	require.Equal(t, report.ImpactHigh, out.PriorityFixes[0].Impact)
	require.Equal(t, "Parameterize queries", out.PriorityFixes[0].Suggestion)
	require.Equal(t, base.PriorityFixes[0].Suggestion, out.PriorityFixes[1].Suggestion)
}

func TestConsensusSummary(t *testing.T) {
	base := baselineReport()
	w := NewWeights(0.8)

	distinct := []Candidate{
		mustCandidate(t, "a", `{"summary": "First view."}`),
		mustCandidate(t, "b", `{"summary": "Second view."}`),
	}
	require.Equal(t, "First view. Consensus view: Second view.",
		Consensus(base, distinct, w).Summary)

	unanimous := []Candidate{
		mustCandidate(t, "a", `{"summary": "Same view."}`),
		mustCandidate(t, "b", `{"summary": "Same view."}`),
	}
	require.Equal(t, "Same view.", Consensus(base, unanimous, w).Summary)

	silent := []Candidate{
		mustCandidate(t, "a", `{}`),
		mustCandidate(t, "b", `{}`),
	}
	require.Equal(t, base.Summary, Consensus(base, silent, w).Summary)
}
