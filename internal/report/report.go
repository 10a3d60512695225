// Package report defines the health-report contract: the bounded, versioned
// output every path of the engine must produce, plus the derivation rules
// (overall score, grade, risk level) that hold for every report regardless
// of whether AI contributed to it.
package report

import (
	"math"

	"repohealth/internal/snapshot"
	"repohealth/internal/util/mathutil"
)

// Version is stamped into every report as reportVersion.
const Version = "2.3"

// Score bounds.
const (
	MinOverallScore = 10
	MaxOverallScore = 99
	MinRiskScore    = 5
	MaxRiskScore    = 100
	MinConfidence   = 45
	MaxConfidence   = 96
)

// List caps. Every list field is truncated to its cap on every path.
const (
	MaxHeatmapEntries = 20
	MaxTopIssues      = 12
	MaxPriorityFixes  = 6
	MaxQuickWins      = 6
	MaxStrengths      = 5
	MaxNextMilestones = 5
	MaxDominantRisks  = 4
)

// Category weights for the overall score. The weighted sum is the single
// source of truth for overallScore and is re-derived after every merge.
const (
	WeightMaintainability = 0.30
	WeightReliability     = 0.25
	WeightSecurity        = 0.25
	WeightDocumentation   = 0.10
	WeightArchitecture    = 0.10
)

// Grade is a letter grade derived from the overall score.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeBPlus Grade = "B+"
	GradeB     Grade = "B"
	GradeCPlus Grade = "C+"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// RiskLevel is the qualitative risk bucket.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskElevated RiskLevel = "Elevated"
	RiskCritical RiskLevel = "Critical"
)

// Severity of a single finding.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// Impact of a priority fix.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
)

// Effort estimated for a priority fix.
type Effort string

const (
	EffortLow    Effort = "Low"
	EffortMedium Effort = "Medium"
	EffortHigh   Effort = "High"
)

// CategoryScores holds the five fixed assessment axes, each in [0,100].
type CategoryScores struct {
	Maintainability int `json:"maintainability"`
	Reliability     int `json:"reliability"`
	Security        int `json:"security"`
	Documentation   int `json:"documentation"`
	Architecture    int `json:"architecture"`
}

// RiskAssessment aggregates repository-level risk.
type RiskAssessment struct {
	Score         int       `json:"score"`
	Level         RiskLevel `json:"level"`
	DominantRisks []string  `json:"dominantRisks"`
}

// HeatmapEntry is one file's position on the complexity heatmap.
type HeatmapEntry struct {
	File            string    `json:"file"`
	ComplexityScore int       `json:"complexityScore"`
	Issues          int       `json:"issues"`
	LOC             int       `json:"loc"`
	Risk            RiskLevel `json:"risk"`
}

// Issue is a single finding attributed to a file.
type Issue struct {
	File           string   `json:"file"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Severity       Severity `json:"severity"`
	Recommendation string   `json:"recommendation"`
}

// Fix is an actionable remediation derived from the top findings.
type Fix struct {
	File       string `json:"file"`
	Suggestion string `json:"suggestion"`
	Impact     Impact `json:"impact"`
	Effort     Effort `json:"effort"`
	Rationale  string `json:"rationale"`
}

// ScoreWeights records the local/AI blend applied to category scores.
type ScoreWeights struct {
	Local float64 `json:"local"`
	AI    float64 `json:"ai"`
}

// Stability modes recorded in analysisMeta.
const (
	StabilityDeterministic = "deterministic"
	StabilityAnchored      = "anchored"
)

// ProviderLocal tags reports whose scores come from heuristics alone.
const ProviderLocal = "local-heuristics"

// AnalysisMeta describes how the report was produced.
type AnalysisMeta struct {
	Provider       string                 `json:"provider"`
	Model          string                 `json:"model"`
	FallbackUsed   bool                   `json:"fallbackUsed"`
	FallbackReason string                 `json:"fallbackReason,omitempty"`
	FilesAnalyzed  int                    `json:"filesAnalyzed"`
	EstimatedLOC   int                    `json:"estimatedLoc"`
	Sampling       snapshot.SamplingStats `json:"sampling"`
	StabilityMode  string                 `json:"stabilityMode"`
	ScoreWeights   ScoreWeights           `json:"scoreWeights"`
}

// Report is the complete health assessment. Constructed once per request,
// immutable after being returned.
type Report struct {
	ID             string         `json:"id"`
	ReportVersion  string         `json:"reportVersion"`
	GeneratedAt    string         `json:"generatedAt"`
	Repository     string         `json:"repository"`
	OverallScore   int            `json:"overallScore"`
	Grade          Grade          `json:"grade"`
	Confidence     int            `json:"confidence"`
	Summary        string         `json:"summary"`
	Categories     CategoryScores `json:"categories"`
	Risk           RiskAssessment `json:"risk"`
	Heatmap        []HeatmapEntry `json:"heatmap"`
	TopIssues      []Issue        `json:"topIssues"`
	PriorityFixes  []Fix          `json:"priorityFixes"`
	QuickWins      []string       `json:"quickWins"`
	Strengths      []string       `json:"strengths"`
	NextMilestones []string       `json:"nextMilestones"`
	AnalysisMeta   AnalysisMeta   `json:"analysisMeta"`
}

// WeightedOverall derives the overall score from the five category scores,
// clamped to [MinOverallScore, MaxOverallScore].
func WeightedOverall(c CategoryScores) int {
	raw := WeightMaintainability*float64(c.Maintainability) +
		WeightReliability*float64(c.Reliability) +
		WeightSecurity*float64(c.Security) +
		WeightDocumentation*float64(c.Documentation) +
		WeightArchitecture*float64(c.Architecture)
	return mathutil.ClampInt(int(math.Round(raw)), MinOverallScore, MaxOverallScore)
}

// GradeFor maps an overall score to its letter grade.
func GradeFor(score int) Grade {
	switch {
	case score >= 92:
		return GradeAPlus
	case score >= 84:
		return GradeA
	case score >= 76:
		return GradeBPlus
	case score >= 68:
		return GradeB
	case score >= 60:
		return GradeCPlus
	case score >= 52:
		return GradeC
	case score >= 42:
		return GradeD
	default:
		return GradeF
	}
}

// RiskLevelFor maps a risk score to its level.
func RiskLevelFor(score int) RiskLevel {
	switch {
	case score >= 75:
		return RiskCritical
	case score >= 55:
		return RiskElevated
	case score >= 35:
		return RiskModerate
	default:
		return RiskLow
	}
}

// ValidRiskLevel reports whether s is one of the four canonical levels.
func ValidRiskLevel(s RiskLevel) bool {
	switch s {
	case RiskLow, RiskModerate, RiskElevated, RiskCritical:
		return true
	}
	return false
}

// SeverityRank orders severities for sorting: Critical=4 .. Low=1, unknown=0.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// ImpactRank orders impacts for sorting: High=2, Medium=1, unknown=0.
func ImpactRank(i Impact) int {
	switch i {
	case ImpactHigh:
		return 2
	case ImpactMedium:
		return 1
	}
	return 0
}

// EffortRank orders efforts for sorting: High=3, Medium=2, Low=1, unknown=0.
func EffortRank(e Effort) int {
	switch e {
	case EffortHigh:
		return 3
	case EffortMedium:
		return 2
	case EffortLow:
		return 1
	}
	return 0
}

// ClampCategory clamps a category score into [0,100].
func ClampCategory(v int) int {
	return mathutil.ClampInt(v, 0, 100)
}

// ClampRiskScore clamps a risk score into [MinRiskScore, MaxRiskScore].
func ClampRiskScore(v int) int {
	return mathutil.ClampInt(v, MinRiskScore, MaxRiskScore)
}

// Rederive recomputes overallScore and grade from the category scores.
// Called after every merge so AI input can never set the overall directly.
func (r *Report) Rederive() {
	r.OverallScore = WeightedOverall(r.Categories)
	r.Grade = GradeFor(r.OverallScore)
}

// CapLists truncates every list field to its documented cap.
func (r *Report) CapLists() {
	if len(r.Heatmap) > MaxHeatmapEntries {
		r.Heatmap = r.Heatmap[:MaxHeatmapEntries]
	}
	if len(r.TopIssues) > MaxTopIssues {
		r.TopIssues = r.TopIssues[:MaxTopIssues]
	}
	if len(r.PriorityFixes) > MaxPriorityFixes {
		r.PriorityFixes = r.PriorityFixes[:MaxPriorityFixes]
	}
	if len(r.QuickWins) > MaxQuickWins {
		r.QuickWins = r.QuickWins[:MaxQuickWins]
	}
	if len(r.Strengths) > MaxStrengths {
		r.Strengths = r.Strengths[:MaxStrengths]
	}
	if len(r.NextMilestones) > MaxNextMilestones {
		r.NextMilestones = r.NextMilestones[:MaxNextMilestones]
	}
	if len(r.Risk.DominantRisks) > MaxDominantRisks {
		r.Risk.DominantRisks = r.Risk.DominantRisks[:MaxDominantRisks]
	}
}
