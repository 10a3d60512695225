// Package prompt condenses a snapshot and its baseline report into the
// bounded instruction payload sent to completion providers. Pure transforms
// only; validation of whatever comes back is the merge package's job.
package prompt

import (
	"bytes"
	"fmt"

	"repohealth/internal/report"
	"repohealth/internal/snapshot"
	"repohealth/internal/util/jsonutil"
)

// Payload bounds. Ten files of 1700 characters keeps the prompt inside
// every supported provider's context window with room for the schema.
const (
	MaxPromptFiles = 10
	MaxFileChars   = 1700
)

// SystemInstruction is the system message for every provider call.
const SystemInstruction = "You are a senior code reviewer producing a repository health report. " +
	"Respond with a single JSON object and nothing else: no prose, no markdown fences, no explanations. " +
	"Every field you return must follow the schema in the user message; omit fields you cannot improve."

const outputSchema = `{
  "summary": "one paragraph, plain text",
  "categories": {"maintainability": 0-100, "reliability": 0-100, "security": 0-100, "documentation": 0-100, "architecture": 0-100},
  "risk": {"score": 5-100, "level": "Low|Moderate|Elevated|Critical", "dominantRisks": ["...", "max 4"]},
  "topIssues": [{"file": "...", "title": "...", "description": "...", "severity": "Critical|High|Medium|Low", "recommendation": "..."}],
  "priorityFixes": [{"file": "...", "suggestion": "...", "impact": "High|Medium", "effort": "Low|Medium|High", "rationale": "..."}],
  "quickWins": ["...", "max 6"],
  "strengths": ["...", "max 5"],
  "nextMilestones": ["...", "max 5"]
}`

// Build renders the user prompt: review task, output schema, the full
// baseline report, then up to MaxPromptFiles files truncated to
// MaxFileChars characters each. Deterministic for a given input pair.
func Build(snap snapshot.Snapshot, baseline report.Report) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Review the repository %q and refine the baseline health report below.\n", snap.Project.FullName)
	buf.WriteString("Adjust scores only where the sampled files justify it, keep issue lists concrete and file-specific, ")
	buf.WriteString("and respect every bound in the schema. JSON only.\n")

	writeSection(&buf, "OUTPUT SCHEMA", outputSchema)

	baselineJSON, err := jsonutil.MarshalNoEscapeIndent(baseline, "", "  ")
	if err != nil {
		// A report is always marshalable; this guards against future field types.
		baselineJSON = []byte("{}")
	}
	writeSection(&buf, "BASELINE REPORT", string(baselineJSON))

	buf.WriteString("\n[FILES]\n")
	n := len(snap.Files)
	if n > MaxPromptFiles {
		n = MaxPromptFiles
	}
	for _, f := range snap.Files[:n] {
		fmt.Fprintf(&buf, "--- %s ---\n", f.Path)
		buf.WriteString(truncateChars(f.Content, MaxFileChars))
		buf.WriteString("\n")
	}
	if len(snap.Files) > n {
		fmt.Fprintf(&buf, "(%d more files omitted)\n", len(snap.Files)-n)
	}
	return buf.String()
}

func writeSection(buf *bytes.Buffer, name, body string) {
	buf.WriteString("\n[" + name + "]\n")
	buf.WriteString(body)
	buf.WriteString("\n")
}

// truncateChars cuts s to at most n characters without splitting a rune.
func truncateChars(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
