// Package enhance decides which AI providers to consult for a report,
// calls them, and merges whatever comes back into the deterministic
// baseline. Every provider problem degrades toward the baseline; enhance
// never fails a request outright.
package enhance

import "strings"

// Modes understood by ResolvePlan. Any other mode string is treated as a
// single provider name.
const (
	ModeHybrid = "hybrid"
	ModeAuto   = "auto"
)

// ProviderName identifies one of the supported completion providers. The
// set is closed: adding a provider is a compile-time change, not an
// open-ended string match.
type ProviderName string

const (
	ProviderGemini    ProviderName = "gemini"
	ProviderGroq      ProviderName = "groq"
	ProviderAnthropic ProviderName = "anthropic"
)

// providerPriority is the fixed order auto mode walks and degraded hybrid
// falls back to.
var providerPriority = [...]ProviderName{ProviderGemini, ProviderGroq, ProviderAnthropic}

// KnownProvider reports whether name is in the closed provider set.
func KnownProvider(name ProviderName) bool {
	for _, p := range providerPriority {
		if p == name {
			return true
		}
	}
	return false
}

type PlanKind string

const (
	PlanEmpty      PlanKind = "empty"
	PlanSequential PlanKind = "sequential"
	PlanHybrid     PlanKind = "hybrid"
)

// Plan is the resolved execution topology for one request. Degraded marks
// a hybrid request that could not be honored with two providers.
type Plan struct {
	Kind      PlanKind
	Providers []ProviderName
	Degraded  bool
}

// ResolvePlan picks the topology for one request from the requested mode
// and the credentialed provider set. Pure decision, no I/O. Provider order
// in the result always follows the fixed priority order regardless of the
// order of available.
func ResolvePlan(mode string, available []ProviderName) Plan {
	avail := make(map[ProviderName]bool, len(available))
	for _, name := range available {
		avail[name] = true
	}
	var ordered []ProviderName
	for _, name := range providerPriority {
		if avail[name] {
			ordered = append(ordered, name)
		}
	}

	switch normalizeMode(mode) {
	case ModeHybrid:
		if len(ordered) >= 2 {
			return Plan{Kind: PlanHybrid, Providers: ordered}
		}
		if len(ordered) == 0 {
			return Plan{Kind: PlanEmpty, Degraded: true}
		}
		return Plan{Kind: PlanSequential, Providers: ordered, Degraded: true}
	case ModeAuto:
		if len(ordered) == 0 {
			return Plan{Kind: PlanEmpty}
		}
		return Plan{Kind: PlanSequential, Providers: ordered}
	default:
		name := ProviderName(normalizeMode(mode))
		if avail[name] {
			return Plan{Kind: PlanSequential, Providers: []ProviderName{name}}
		}
		return Plan{Kind: PlanEmpty}
	}
}

func normalizeMode(mode string) string {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		return ModeAuto
	}
	return mode
}
