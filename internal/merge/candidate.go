// Package merge reconciles untrusted AI candidate payloads with the
// deterministic baseline report. Candidates are treated as adversarial:
// every field access goes through a sanitize-or-default step, every list is
// capped, and the overall score is always re-derived from the weighted
// category formula rather than accepted from a provider.
package merge

import (
	"fmt"
	"math"
	"strings"

	"repohealth/internal/report"
	"repohealth/internal/util/jsonutil"
)

// Candidate is one provider payload, parsed but not yet trusted. Its shape
// is whatever the provider returned; the accessor methods below never
// assume a field exists or has the right type.
type Candidate struct {
	Provider string

	fields map[string]any
}

// ParseCandidate decodes the JSON object extracted from a provider's
// completion text. A payload that is not a JSON object is a contract
// violation and fails the whole call.
func ParseCandidate(provider, jsonText string) (Candidate, error) {
	var fields map[string]any
	if err := jsonutil.UnmarshalFlex([]byte(jsonText), &fields); err != nil {
		return Candidate{}, fmt.Errorf("candidate payload from %s: %w", provider, err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return Candidate{Provider: provider, fields: fields}, nil
}

// --- sanitize-or-default primitives ---

func cleanString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

func finiteNumber(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func subMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func coerceSeverity(v any) report.Severity {
	if s, ok := cleanString(v); ok {
		switch strings.ToLower(s) {
		case "critical":
			return report.SeverityCritical
		case "high":
			return report.SeverityHigh
		case "medium":
			return report.SeverityMedium
		case "low":
			return report.SeverityLow
		}
	}
	return report.SeverityMedium
}

func coerceImpact(v any) report.Impact {
	if s, ok := cleanString(v); ok && strings.EqualFold(s, string(report.ImpactHigh)) {
		return report.ImpactHigh
	}
	return report.ImpactMedium
}

func coerceEffort(v any) report.Effort {
	if s, ok := cleanString(v); ok {
		switch strings.ToLower(s) {
		case "low":
			return report.EffortLow
		case "medium":
			return report.EffortMedium
		case "high":
			return report.EffortHigh
		}
	}
	return report.EffortMedium
}

func coerceRiskLevel(v any) (report.RiskLevel, bool) {
	if s, ok := cleanString(v); ok {
		switch strings.ToLower(s) {
		case "low":
			return report.RiskLow, true
		case "moderate":
			return report.RiskModerate, true
		case "elevated":
			return report.RiskElevated, true
		case "critical":
			return report.RiskCritical, true
		}
	}
	return "", false
}

func stringOr(v any, def string) string {
	if s, ok := cleanString(v); ok {
		return s
	}
	return def
}

// --- candidate accessors ---

// category returns the candidate's value for one category axis, if finite.
func (c Candidate) category(name string) (float64, bool) {
	cats := subMap(c.fields["categories"])
	if cats == nil {
		return 0, false
	}
	for k, v := range cats {
		if strings.EqualFold(k, name) {
			return finiteNumber(v)
		}
	}
	return 0, false
}

func (c Candidate) riskScore() (float64, bool) {
	return finiteNumber(subMap(c.fields["risk"])["score"])
}

func (c Candidate) riskLevel() (report.RiskLevel, bool) {
	return coerceRiskLevel(subMap(c.fields["risk"])["level"])
}

func (c Candidate) summary() (string, bool) {
	return cleanString(c.fields["summary"])
}

func (c Candidate) dominantRisks() []string {
	return c.stringList(subMap(c.fields["risk"])["dominantRisks"], report.MaxDominantRisks)
}

// listOf returns the sanitized, capped string list stored under key.
func (c Candidate) listOf(key string, max int) []string {
	return c.stringList(c.fields[key], max)
}

func (c Candidate) stringList(v any, max int) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, it := range items {
		s, ok := cleanString(it)
		if !ok {
			continue
		}
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out
}

// issues returns the candidate's topIssues, sanitized and capped. The title
// is an issue's identity (it forms the de-dup key), so entries without one
// are dropped; every other field falls back to a documented default.
func (c Candidate) issues() []report.Issue {
	items, ok := c.fields["topIssues"].([]any)
	if !ok {
		return nil
	}
	var out []report.Issue
	for _, it := range items {
		m := subMap(it)
		if m == nil {
			continue
		}
		title, ok := cleanString(m["title"])
		if !ok {
			continue
		}
		out = append(out, report.Issue{
			File:           stringOr(m["file"], "general"),
			Title:          title,
			Description:    stringOr(m["description"], "Flagged during AI review."),
			Severity:       coerceSeverity(m["severity"]),
			Recommendation: stringOr(m["recommendation"], "Review and remediate."),
		})
		if len(out) == report.MaxTopIssues {
			break
		}
	}
	return out
}

// fixes returns the candidate's priorityFixes, sanitized and capped. The
// suggestion is a fix's identity; entries without one are dropped.
func (c Candidate) fixes() []report.Fix {
	items, ok := c.fields["priorityFixes"].([]any)
	if !ok {
		return nil
	}
	var out []report.Fix
	for _, it := range items {
		m := subMap(it)
		if m == nil {
			continue
		}
		suggestion, ok := cleanString(m["suggestion"])
		if !ok {
			continue
		}
		out = append(out, report.Fix{
			File:       stringOr(m["file"], "general"),
			Suggestion: suggestion,
			Impact:     coerceImpact(m["impact"]),
			Effort:     coerceEffort(m["effort"]),
			Rationale:  stringOr(m["rationale"], "Suggested by AI review."),
		})
		if len(out) == report.MaxPriorityFixes {
			break
		}
	}
	return out
}
