package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeightedOverall(t *testing.T) {
	tests := []struct {
		name string
		c    CategoryScores
		want int
	}{
		{
			name: "uniform scores pass through",
			c:    CategoryScores{Maintainability: 80, Reliability: 80, Security: 80, Documentation: 80, Architecture: 80},
			want: 80,
		},
		{
			name: "weighted mix",
			// .30*90 + .25*70 + .25*60 + .10*50 + .10*40 = 27+17.5+15+5+4 = 68.5 -> 69
			c:    CategoryScores{Maintainability: 90, Reliability: 70, Security: 60, Documentation: 50, Architecture: 40},
			want: 69,
		},
		{
			name: "floor clamp",
			c:    CategoryScores{},
			want: MinOverallScore,
		},
		{
			name: "ceiling clamp",
			c:    CategoryScores{Maintainability: 100, Reliability: 100, Security: 100, Documentation: 100, Architecture: 100},
			want: MaxOverallScore,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, WeightedOverall(tt.c))
		})
	}
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		score int
		want  Grade
	}{
		{99, GradeAPlus}, {92, GradeAPlus},
		{91, GradeA}, {84, GradeA},
		{83, GradeBPlus}, {76, GradeBPlus},
		{75, GradeB}, {68, GradeB},
		{67, GradeCPlus}, {60, GradeCPlus},
		{59, GradeC}, {52, GradeC},
		{51, GradeD}, {42, GradeD},
		{41, GradeF}, {10, GradeF},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, GradeFor(tt.score), "score %d", tt.score)
	}
}

func TestRiskLevelFor(t *testing.T) {
	tests := []struct {
		score int
		want  RiskLevel
	}{
		{100, RiskCritical}, {75, RiskCritical},
		{74, RiskElevated}, {55, RiskElevated},
		{54, RiskModerate}, {35, RiskModerate},
		{34, RiskLow}, {5, RiskLow},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, RiskLevelFor(tt.score), "score %d", tt.score)
	}
}

func TestValidRiskLevel(t *testing.T) {
	for _, l := range []RiskLevel{RiskLow, RiskModerate, RiskElevated, RiskCritical} {
		require.True(t, ValidRiskLevel(l))
	}
	require.False(t, ValidRiskLevel("Severe"))
	require.False(t, ValidRiskLevel(""))
	require.False(t, ValidRiskLevel("low"))
}

func TestRanksAreStrictlyOrdered(t *testing.T) {
	require.Greater(t, SeverityRank(SeverityCritical), SeverityRank(SeverityHigh))
	require.Greater(t, SeverityRank(SeverityHigh), SeverityRank(SeverityMedium))
	require.Greater(t, SeverityRank(SeverityMedium), SeverityRank(SeverityLow))
	require.Greater(t, SeverityRank(SeverityLow), SeverityRank(Severity("bogus")))

	require.Greater(t, ImpactRank(ImpactHigh), ImpactRank(ImpactMedium))
	require.Greater(t, EffortRank(EffortHigh), EffortRank(EffortMedium))
	require.Greater(t, EffortRank(EffortMedium), EffortRank(EffortLow))
}

func TestRederive(t *testing.T) {
	r := Report{
		OverallScore: 1,
		Grade:        "Z",
		Categories:   CategoryScores{Maintainability: 80, Reliability: 80, Security: 80, Documentation: 80, Architecture: 80},
	}
	r.Rederive()
	require.Equal(t, 80, r.OverallScore)
	require.Equal(t, GradeBPlus, r.Grade)
}

func TestCapLists(t *testing.T) {
	r := Report{}
	for i := 0; i < 40; i++ {
		r.Heatmap = append(r.Heatmap, HeatmapEntry{File: "f"})
		r.TopIssues = append(r.TopIssues, Issue{Title: "t"})
		r.PriorityFixes = append(r.PriorityFixes, Fix{Suggestion: "s"})
		r.QuickWins = append(r.QuickWins, "w")
		r.Strengths = append(r.Strengths, "s")
		r.NextMilestones = append(r.NextMilestones, "m")
		r.Risk.DominantRisks = append(r.Risk.DominantRisks, "r")
	}
	r.CapLists()
	require.Len(t, r.Heatmap, MaxHeatmapEntries)
	require.Len(t, r.TopIssues, MaxTopIssues)
	require.Len(t, r.PriorityFixes, MaxPriorityFixes)
	require.Len(t, r.QuickWins, MaxQuickWins)
	require.Len(t, r.Strengths, MaxStrengths)
	require.Len(t, r.NextMilestones, MaxNextMilestones)
	require.Len(t, r.Risk.DominantRisks, MaxDominantRisks)
}
