package heuristics

import (
	"regexp"

	"repohealth/internal/report"
)

// Issue categories used for aggregate scoring. Only the rule tables use
// these; the report itself does not expose per-issue categories.
const (
	catSecurity        = "security"
	catReliability     = "reliability"
	catMaintainability = "maintainability"
	catDocumentation   = "documentation"
	catArchitecture    = "architecture"
)

// Fixed issue titles. Tests and the effort table key on these.
const (
	titleDynamicExec    = "Dynamic code execution detected"
	titleHardcodedCreds = "Potential hardcoded credential"
	titleUnsafeHTML     = "Unsafe HTML injection risk"
	titleEmptyHandler   = "Empty exception handler"
	titleLooseTyping    = "Loose typing in use"
	titleDebugResidue   = "Debug statements left in code"
	titleVeryLargeFile  = "Very large file"
	titleLargeFile      = "Large file"
	titleSparseComments = "Sparse comments"
)

// patternRule is one content-matching heuristic. Each rule contributes at
// most one issue per file; the match count goes into the description.
type patternRule struct {
	re             *regexp.Regexp
	severity       report.Severity
	category       string
	title          string
	noun           string
	recommendation string
}

// patternRules run in this fixed order for every file.
var patternRules = []patternRule{
	{
		re:             regexp.MustCompile(`\beval\s*\(|\bnew\s+Function\s*\(|\bexec(?:Sync)?\s*\(|Runtime\.getRuntime\(\)\.exec`),
		severity:       report.SeverityCritical,
		category:       catSecurity,
		title:          titleDynamicExec,
		noun:           "dynamic code execution call(s)",
		recommendation: "Replace dynamic evaluation with explicit dispatch or a safe parser.",
	},
	{
		re:             regexp.MustCompile(`(?i)(api[_-]?key|apikey|secret|passwd|password|token|private[_-]?key)\s*[:=]\s*["'][^"']{8,}["']`),
		severity:       report.SeverityCritical,
		category:       catSecurity,
		title:          titleHardcodedCreds,
		noun:           "credential-looking literal(s)",
		recommendation: "Move secrets to environment variables or a secrets manager and rotate the exposed value.",
	},
	{
		re:             regexp.MustCompile(`innerHTML\s*=|outerHTML\s*=|dangerouslySetInnerHTML|document\.write\s*\(`),
		severity:       report.SeverityHigh,
		category:       catSecurity,
		title:          titleUnsafeHTML,
		noun:           "raw HTML sink(s)",
		recommendation: "Sanitize markup with a vetted library or assign text content instead.",
	},
	{
		re:             regexp.MustCompile(`catch\s*(?:\([^)]*\))?\s*\{\s*\}|except[^:\n]*:\s*(?:pass|\.\.\.)\s*(?:\n|$)`),
		severity:       report.SeverityHigh,
		category:       catReliability,
		title:          titleEmptyHandler,
		noun:           "handler(s) that swallow errors",
		recommendation: "Handle or propagate the error; at minimum log it with context.",
	},
	{
		re:             regexp.MustCompile(`:\s*any\b|\bas\s+any\b|@ts-ignore|@ts-nocheck|@SuppressWarnings`),
		severity:       report.SeverityMedium,
		category:       catMaintainability,
		title:          titleLooseTyping,
		noun:           "type escape hatch(es)",
		recommendation: "Replace escape-hatch types with precise interfaces.",
	},
	{
		re:             regexp.MustCompile(`console\.(?:log|debug|trace)\s*\(|\bdebugger\b|\bvar_dump\s*\(|\bprint_r\s*\(`),
		severity:       report.SeverityLow,
		category:       catMaintainability,
		title:          titleDebugResidue,
		noun:           "debug statement(s)",
		recommendation: "Remove debug statements or route them through a leveled logger.",
	},
}

// complexityTokens are the branching/control-flow markers counted per file.
var complexityTokens = []*regexp.Regexp{
	regexp.MustCompile(`\bif\b`),
	regexp.MustCompile(`\bfor\b`),
	regexp.MustCompile(`\bwhile\b`),
	regexp.MustCompile(`\bswitch\b`),
	regexp.MustCompile(`\bcase\b`),
	regexp.MustCompile(`\bcatch\b`),
	regexp.MustCompile(`\bexcept\b`),
	regexp.MustCompile(`\brescue\b`),
	regexp.MustCompile(`&&`),
	regexp.MustCompile(`\|\|`),
	regexp.MustCompile(`\?\s*[^\s:?]+\s*:`),
}

// commentPrefixes mark a line as a comment for the comment-ratio heuristic.
var commentPrefixes = []string{"//", "#", "*", "/*", "*/", "--", "'''", `"""`}

// effortFor estimates remediation effort for a priority fix.
func effortFor(title string) report.Effort {
	switch title {
	case titleDynamicExec, titleVeryLargeFile:
		return report.EffortHigh
	case titleUnsafeHTML, titleLooseTyping, titleLargeFile:
		return report.EffortMedium
	case titleHardcodedCreds, titleEmptyHandler, titleDebugResidue, titleSparseComments:
		return report.EffortLow
	}
	return report.EffortMedium
}
