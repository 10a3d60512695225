// Package heuristics implements the local analyzer: a pure, deterministic
// Snapshot -> Report function with no I/O. It is the engine's last-resort
// path and the baseline every AI candidate is anchored against.
package heuristics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"repohealth/internal/report"
	"repohealth/internal/snapshot"
	"repohealth/internal/util/mathutil"
)

const (
	largeFileLOC     = 380
	veryLargeFileLOC = 600

	complexityBonusLOC      = 320
	complexityExtraBonusLOC = 500

	sparseCommentRatio  = 0.02
	sparseCommentMinLOC = 120

	// Aggregate category scores never collapse below the floor or saturate
	// above the ceiling, bounding the influence of one pathological file.
	categoryFloor   = 18
	categoryCeiling = 97
)

// fileAnalysis is the per-file result feeding the aggregate pass.
type fileAnalysis struct {
	path         string
	loc          int
	commentRatio float64
	complexity   int
	issues       []report.Issue
	categories   []string // parallel to issues
}

// signals are the aggregate inputs to the category formulas.
type signals struct {
	files            int
	totalLOC         int
	avgComplexity    float64
	meanCommentRatio float64

	critical, high, medium, low int

	secCritical, secHigh  int
	relHigh               int
	maintMedium, maintLow int

	largeFiles      int // loc > largeFileLOC, includes very large
	veryLargeFiles  int
	lowCommentFiles int

	dynamicExec    bool
	hardcodedCreds bool
	emptyHandlers  bool

	dirShare  float64 // largest top-level directory's share of files
	rootCount int     // distinct top-level directories, capped at 6
}

// Analyze produces a complete baseline report from a snapshot. It cannot
// fail on a snapshot that passed Validate; callers reject empty snapshots
// before reaching it.
func Analyze(snap snapshot.Snapshot) report.Report {
	files := make([]fileAnalysis, 0, len(snap.Files))
	for _, f := range snap.Files {
		files = append(files, analyzeFile(f))
	}
	sig := aggregate(files)

	cats := report.CategoryScores{
		Maintainability: scoreMaintainability(sig),
		Reliability:     scoreReliability(sig),
		Security:        scoreSecurity(sig),
		Documentation:   scoreDocumentation(sig),
		Architecture:    scoreArchitecture(sig),
	}

	riskScore := report.ClampRiskScore(mathutil.RoundInt(
		8 + 18*float64(sig.critical) + 9*float64(sig.high) + 4*float64(sig.medium) +
			float64(sig.low) + 2*sig.avgComplexity))

	rep := report.Report{
		Repository: snap.Project.FullName,
		Confidence: confidenceFor(sig.files, sig.totalLOC),
		Categories: cats,
		Risk: report.RiskAssessment{
			Score:         riskScore,
			Level:         report.RiskLevelFor(riskScore),
			DominantRisks: dominantRisks(sig),
		},
		Heatmap:        buildHeatmap(files),
		TopIssues:      buildTopIssues(files),
		QuickWins:      quickWins(sig),
		Strengths:      strengths(sig),
		NextMilestones: nextMilestones(sig, cats),
		AnalysisMeta: report.AnalysisMeta{
			Provider:      report.ProviderLocal,
			Model:         "none",
			FallbackUsed:  true,
			FilesAnalyzed: sig.files,
			EstimatedLOC:  sig.totalLOC,
			Sampling:      snap.Stats,
			StabilityMode: report.StabilityDeterministic,
			ScoreWeights:  report.ScoreWeights{Local: 1, AI: 0},
		},
	}
	rep.PriorityFixes = buildPriorityFixes(rep.TopIssues)
	rep.Rederive()
	rep.Summary = summarize(sig, rep)
	rep.CapLists()
	return rep
}

// analyzeFile computes loc, comment ratio, complexity and rule matches for
// one file.
func analyzeFile(f snapshot.FileSample) fileAnalysis {
	lines := strings.Split(f.Content, "\n")
	loc := len(lines)

	commentLines := 0
	for _, ln := range lines {
		trimmed := strings.TrimSpace(ln)
		for _, p := range commentPrefixes {
			if strings.HasPrefix(trimmed, p) {
				commentLines++
				break
			}
		}
	}
	ratio := float64(commentLines) / float64(loc)

	hits := 0
	for _, re := range complexityTokens {
		hits += len(re.FindAllStringIndex(f.Content, -1))
	}
	bonus := 0
	if loc > complexityBonusLOC {
		bonus++
	}
	if loc > complexityExtraBonusLOC {
		bonus++
	}
	complexity := mathutil.ClampInt(mathutil.RoundInt(30*float64(hits)/float64(loc))+bonus, 1, 10)

	fa := fileAnalysis{path: f.Path, loc: loc, commentRatio: ratio, complexity: complexity}
	for _, rule := range patternRules {
		n := len(rule.re.FindAllStringIndex(f.Content, -1))
		if n == 0 {
			continue
		}
		fa.addIssue(report.Issue{
			File:           f.Path,
			Title:          rule.title,
			Description:    fmt.Sprintf("%d %s found in this file.", n, rule.noun),
			Severity:       rule.severity,
			Recommendation: rule.recommendation,
		}, rule.category)
	}

	switch {
	case loc > veryLargeFileLOC:
		fa.addIssue(report.Issue{
			File:           f.Path,
			Title:          titleVeryLargeFile,
			Description:    fmt.Sprintf("File spans %d lines, well past the %d-line review threshold.", loc, veryLargeFileLOC),
			Severity:       report.SeverityHigh,
			Recommendation: "Split this file along responsibility boundaries.",
		}, catArchitecture)
	case loc > largeFileLOC:
		fa.addIssue(report.Issue{
			File:           f.Path,
			Title:          titleLargeFile,
			Description:    fmt.Sprintf("File spans %d lines; files beyond %d lines slow reviews down.", loc, largeFileLOC),
			Severity:       report.SeverityMedium,
			Recommendation: "Split this file along responsibility boundaries.",
		}, catArchitecture)
	}

	if ratio < sparseCommentRatio && loc > sparseCommentMinLOC {
		fa.addIssue(report.Issue{
			File:           f.Path,
			Title:          titleSparseComments,
			Description:    fmt.Sprintf("Only %.1f%% of %d lines look like comments.", ratio*100, loc),
			Severity:       report.SeverityLow,
			Recommendation: "Add doc comments to exported symbols and tricky sections.",
		}, catDocumentation)
	}
	return fa
}

// addIssue appends the issue unless one with the same severity and title is
// already recorded for this file.
func (fa *fileAnalysis) addIssue(is report.Issue, category string) {
	for _, have := range fa.issues {
		if have.Severity == is.Severity && have.Title == is.Title {
			return
		}
	}
	fa.issues = append(fa.issues, is)
	fa.categories = append(fa.categories, category)
}

func aggregate(files []fileAnalysis) signals {
	sig := signals{files: len(files)}
	dirFiles := map[string]int{}
	sumComplexity := 0
	sumRatio := 0.0

	for _, fa := range files {
		sig.totalLOC += fa.loc
		sumComplexity += fa.complexity
		sumRatio += fa.commentRatio

		if fa.loc > largeFileLOC {
			sig.largeFiles++
		}
		if fa.loc > veryLargeFileLOC {
			sig.veryLargeFiles++
		}
		if fa.commentRatio < sparseCommentRatio && fa.loc > sparseCommentMinLOC {
			sig.lowCommentFiles++
		}

		root := "."
		if i := strings.IndexByte(fa.path, '/'); i > 0 {
			root = fa.path[:i]
		}
		dirFiles[root]++

		for i, is := range fa.issues {
			switch is.Severity {
			case report.SeverityCritical:
				sig.critical++
			case report.SeverityHigh:
				sig.high++
			case report.SeverityMedium:
				sig.medium++
			case report.SeverityLow:
				sig.low++
			}
			switch fa.categories[i] {
			case catSecurity:
				if is.Severity == report.SeverityCritical {
					sig.secCritical++
				} else if is.Severity == report.SeverityHigh {
					sig.secHigh++
				}
			case catReliability:
				if is.Severity == report.SeverityHigh {
					sig.relHigh++
				}
			case catMaintainability:
				if is.Severity == report.SeverityMedium {
					sig.maintMedium++
				} else if is.Severity == report.SeverityLow {
					sig.maintLow++
				}
			}
			switch is.Title {
			case titleDynamicExec:
				sig.dynamicExec = true
			case titleHardcodedCreds:
				sig.hardcodedCreds = true
			case titleEmptyHandler:
				sig.emptyHandlers = true
			}
		}
	}

	if sig.files > 0 {
		sig.avgComplexity = float64(sumComplexity) / float64(sig.files)
		sig.meanCommentRatio = sumRatio / float64(sig.files)
		maxDir := 0
		for _, n := range dirFiles {
			if n > maxDir {
				maxDir = n
			}
		}
		sig.dirShare = float64(maxDir) / float64(sig.files)
		sig.rootCount = len(dirFiles)
		if sig.rootCount > 6 {
			sig.rootCount = 6
		}
	}
	return sig
}

func clampCategory(v float64) int {
	return mathutil.ClampInt(mathutil.RoundInt(v), categoryFloor, categoryCeiling)
}

func scoreMaintainability(s signals) int {
	return clampCategory(93 - 5.5*s.avgComplexity - 4*float64(s.maintMedium) -
		1.5*float64(s.maintLow) - 3*float64(s.largeFiles))
}

func scoreReliability(s signals) int {
	return clampCategory(90 - 13*float64(s.relHigh) - 3*float64(s.critical) - 2*s.avgComplexity)
}

func scoreSecurity(s signals) int {
	return clampCategory(95 - 21*float64(s.secCritical) - 9*float64(s.secHigh) - float64(s.medium))
}

func scoreDocumentation(s signals) int {
	return clampCategory(36 + 220*s.meanCommentRatio - 5*float64(s.lowCommentFiles) + 2*float64(s.rootCount))
}

func scoreArchitecture(s signals) int {
	excess := math.Max(0, s.dirShare-0.5)
	plainLarge := s.largeFiles - s.veryLargeFiles
	return clampCategory(88 - 30*excess - 6*float64(s.veryLargeFiles) -
		3*float64(plainLarge) + 2*float64(s.rootCount-1))
}

// confidenceFor grows with sample size only; it says nothing about quality.
func confidenceFor(files, totalLOC int) int {
	return mathutil.ClampInt(45+3*files+totalLOC/400, report.MinConfidence, report.MaxConfidence)
}

func buildHeatmap(files []fileAnalysis) []report.HeatmapEntry {
	entries := make([]report.HeatmapEntry, 0, len(files))
	for _, fa := range files {
		var crit, high, med int
		for _, is := range fa.issues {
			switch is.Severity {
			case report.SeverityCritical:
				crit++
			case report.SeverityHigh:
				high++
			case report.SeverityMedium:
				med++
			}
		}
		fileRisk := mathutil.ClampInt(9*fa.complexity+16*crit+8*high+3*med,
			report.MinRiskScore, report.MaxRiskScore)
		entries = append(entries, report.HeatmapEntry{
			File:            fa.path,
			ComplexityScore: fa.complexity,
			Issues:          len(fa.issues),
			LOC:             fa.loc,
			Risk:            report.RiskLevelFor(fileRisk),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ComplexityScore != entries[j].ComplexityScore {
			return entries[i].ComplexityScore > entries[j].ComplexityScore
		}
		if entries[i].LOC != entries[j].LOC {
			return entries[i].LOC > entries[j].LOC
		}
		return entries[i].File < entries[j].File
	})
	if len(entries) > report.MaxHeatmapEntries {
		entries = entries[:report.MaxHeatmapEntries]
	}
	return entries
}

func buildTopIssues(files []fileAnalysis) []report.Issue {
	complexityOf := make(map[string]int, len(files))
	var all []report.Issue
	for _, fa := range files {
		complexityOf[fa.path] = fa.complexity
		all = append(all, fa.issues...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		ri, rj := report.SeverityRank(all[i].Severity), report.SeverityRank(all[j].Severity)
		if ri != rj {
			return ri > rj
		}
		ci, cj := complexityOf[all[i].File], complexityOf[all[j].File]
		if ci != cj {
			return ci > cj
		}
		if all[i].File != all[j].File {
			return all[i].File < all[j].File
		}
		return all[i].Title < all[j].Title
	})
	if len(all) > report.MaxTopIssues {
		all = all[:report.MaxTopIssues]
	}
	return all
}

func buildPriorityFixes(topIssues []report.Issue) []report.Fix {
	n := len(topIssues)
	if n > report.MaxPriorityFixes {
		n = report.MaxPriorityFixes
	}
	fixes := make([]report.Fix, 0, n)
	for _, is := range topIssues[:n] {
		impact := report.ImpactMedium
		if is.Severity == report.SeverityCritical || is.Severity == report.SeverityHigh {
			impact = report.ImpactHigh
		}
		fixes = append(fixes, report.Fix{
			File:       is.File,
			Suggestion: is.Recommendation,
			Impact:     impact,
			Effort:     effortFor(is.Title),
			Rationale:  is.Description,
		})
	}
	return fixes
}

func summarize(sig signals, rep report.Report) string {
	word := "poor"
	switch {
	case rep.OverallScore >= 84:
		word = "strong"
	case rep.OverallScore >= 68:
		word = "solid"
	case rep.OverallScore >= 52:
		word = "mixed"
	case rep.OverallScore >= 42:
		word = "fragile"
	}
	best, worst := extremeCategories(rep.Categories)
	return fmt.Sprintf(
		"Analyzed %d files (~%d LOC): overall health is %s (%s, %d/100) with %s risk. Strongest axis: %s; weakest: %s.",
		sig.files, sig.totalLOC, word, rep.Grade, rep.OverallScore,
		strings.ToLower(string(rep.Risk.Level)), best, worst)
}

// extremeCategories names the best and worst axes, ties resolved by the
// fixed axis order below.
func extremeCategories(c report.CategoryScores) (best, worst string) {
	axes := []struct {
		name  string
		score int
	}{
		{"maintainability", c.Maintainability},
		{"reliability", c.Reliability},
		{"security", c.Security},
		{"documentation", c.Documentation},
		{"architecture", c.Architecture},
	}
	best, worst = axes[0].name, axes[0].name
	bestScore, worstScore := axes[0].score, axes[0].score
	for _, a := range axes[1:] {
		if a.score > bestScore {
			best, bestScore = a.name, a.score
		}
		if a.score < worstScore {
			worst, worstScore = a.name, a.score
		}
	}
	return best, worst
}
