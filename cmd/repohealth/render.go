package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"repohealth/internal/report"
)

// Caps for the terminal view. The full lists are always in the JSON.
const (
	maxRenderedIssues   = 6
	maxRenderedHotspots = 5
)

func gradeColor(g report.Grade) func(a ...interface{}) string {
	switch g {
	case report.GradeAPlus, report.GradeA:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	case report.GradeBPlus, report.GradeB:
		return color.New(color.FgCyan, color.Bold).SprintFunc()
	case report.GradeCPlus, report.GradeC:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

func riskColor(l report.RiskLevel) func(a ...interface{}) string {
	switch l {
	case report.RiskLow:
		return color.New(color.FgGreen).SprintFunc()
	case report.RiskModerate:
		return color.New(color.FgYellow).SprintFunc()
	case report.RiskElevated:
		return color.New(color.FgHiYellow).SprintFunc()
	default:
		return color.New(color.FgRed).SprintFunc()
	}
}

func severityColor(s report.Severity) func(a ...interface{}) string {
	switch s {
	case report.SeverityCritical:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case report.SeverityHigh:
		return color.New(color.FgRed).SprintFunc()
	case report.SeverityMedium:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgGreen).SprintFunc()
	}
}

func renderReport(w io.Writer, rep report.Report) {
	cyan := color.New(color.FgCyan).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()
	grade := gradeColor(rep.Grade)
	risk := riskColor(rep.Risk.Level)

	fmt.Fprintf(w, "\n%s %s\n", cyan("▸"), rep.Repository)
	fmt.Fprintf(w, "  Grade %s  score %d/100  confidence %d%%\n",
		grade(string(rep.Grade)), rep.OverallScore, rep.Confidence)
	fmt.Fprintf(w, "  Risk %s (%d)", risk(string(rep.Risk.Level)), rep.Risk.Score)
	if len(rep.Risk.DominantRisks) > 0 {
		fmt.Fprintf(w, ": %s", strings.Join(rep.Risk.DominantRisks, ", "))
	}
	fmt.Fprintln(w)

	if rep.Summary != "" {
		fmt.Fprintf(w, "\n  %s\n", rep.Summary)
	}

	c := rep.Categories
	fmt.Fprintf(w, "\n%s Categories\n", cyan("▸"))
	fmt.Fprintf(w, "  %-16s %3d\n", "maintainability", c.Maintainability)
	fmt.Fprintf(w, "  %-16s %3d\n", "reliability", c.Reliability)
	fmt.Fprintf(w, "  %-16s %3d\n", "security", c.Security)
	fmt.Fprintf(w, "  %-16s %3d\n", "documentation", c.Documentation)
	fmt.Fprintf(w, "  %-16s %3d\n", "architecture", c.Architecture)

	if len(rep.Heatmap) > 0 {
		fmt.Fprintf(w, "\n%s Hotspots\n", cyan("▸"))
		for i, hm := range rep.Heatmap {
			if i == maxRenderedHotspots {
				fmt.Fprintf(w, "  %s\n", faint(fmt.Sprintf("... and %d more", len(rep.Heatmap)-i)))
				break
			}
			fmt.Fprintf(w, "  %-40s complexity %2d  issues %d  %s\n",
				hm.File, hm.ComplexityScore, hm.Issues, riskColor(hm.Risk)(string(hm.Risk)))
		}
	}

	if len(rep.TopIssues) > 0 {
		fmt.Fprintf(w, "\n%s Top issues\n", cyan("▸"))
		for i, issue := range rep.TopIssues {
			if i == maxRenderedIssues {
				fmt.Fprintf(w, "  %s\n", faint(fmt.Sprintf("... and %d more, see --json", len(rep.TopIssues)-i)))
				break
			}
			fmt.Fprintf(w, "  %s %s\n", severityColor(issue.Severity)("["+string(issue.Severity)+"]"), issue.Title)
			if issue.File != "" {
				fmt.Fprintf(w, "      %s\n", faint(issue.File))
			}
		}
	}

	if len(rep.PriorityFixes) > 0 {
		fmt.Fprintf(w, "\n%s Priority fixes\n", cyan("▸"))
		for _, fix := range rep.PriorityFixes {
			fmt.Fprintf(w, "  %s %s\n", cyan("→"), fix.Suggestion)
			fmt.Fprintf(w, "      impact %s, effort %s: %s\n", fix.Impact, fix.Effort, fix.File)
		}
	}

	if len(rep.QuickWins) > 0 {
		fmt.Fprintf(w, "\n%s Quick wins\n", cyan("▸"))
		for _, win := range rep.QuickWins {
			fmt.Fprintf(w, "  %s %s\n", yellow("!"), win)
		}
	}

	if len(rep.Strengths) > 0 {
		fmt.Fprintf(w, "\n%s Strengths\n", cyan("▸"))
		for _, s := range rep.Strengths {
			fmt.Fprintf(w, "  %s %s\n", green("✓"), s)
		}
	}

	if len(rep.NextMilestones) > 0 {
		fmt.Fprintf(w, "\n%s Next milestones\n", cyan("▸"))
		for _, m := range rep.NextMilestones {
			fmt.Fprintf(w, "  %s %s\n", cyan("→"), m)
		}
	}

	meta := rep.AnalysisMeta
	provider := meta.Provider
	if meta.Model != "" {
		provider += " (" + meta.Model + ")"
	}
	if meta.FallbackUsed && meta.FallbackReason != "" {
		fmt.Fprintf(w, "\n  %s %s\n", yellow("⚠"), meta.FallbackReason)
	}
	fmt.Fprintf(w, "\n%s\n", faint(fmt.Sprintf("report %s, provider %s, %d files, %d LOC, generated %s",
		rep.ID, provider, meta.FilesAnalyzed, meta.EstimatedLOC, rep.GeneratedAt)))
}
