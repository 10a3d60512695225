package enhance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePlan(t *testing.T) {
	cases := []struct {
		name          string
		mode          string
		available     []ProviderName
		wantKind      PlanKind
		wantProviders []ProviderName
		wantDegraded  bool
	}{
		{
			name:          "hybrid with two providers",
			mode:          "hybrid",
			available:     []ProviderName{ProviderGemini, ProviderGroq},
			wantKind:      PlanHybrid,
			wantProviders: []ProviderName{ProviderGemini, ProviderGroq},
		},
		{
			name:          "hybrid reorders to priority",
			mode:          "hybrid",
			available:     []ProviderName{ProviderAnthropic, ProviderGroq, ProviderGemini},
			wantKind:      PlanHybrid,
			wantProviders: []ProviderName{ProviderGemini, ProviderGroq, ProviderAnthropic},
		},
		{
			name:          "hybrid degrades with one provider",
			mode:          "hybrid",
			available:     []ProviderName{ProviderGroq},
			wantKind:      PlanSequential,
			wantProviders: []ProviderName{ProviderGroq},
			wantDegraded:  true,
		},
		{
			name:         "hybrid with no providers",
			mode:         "hybrid",
			wantKind:     PlanEmpty,
			wantDegraded: true,
		},
		{
			name:          "auto follows priority order",
			mode:          "auto",
			available:     []ProviderName{ProviderAnthropic, ProviderGemini},
			wantKind:      PlanSequential,
			wantProviders: []ProviderName{ProviderGemini, ProviderAnthropic},
		},
		{
			name:          "empty mode means auto",
			mode:          "",
			available:     []ProviderName{ProviderGroq},
			wantKind:      PlanSequential,
			wantProviders: []ProviderName{ProviderGroq},
		},
		{
			name:          "single provider mode",
			mode:          "groq",
			available:     []ProviderName{ProviderGemini, ProviderGroq},
			wantKind:      PlanSequential,
			wantProviders: []ProviderName{ProviderGroq},
		},
		{
			name:      "single provider unconfigured",
			mode:      "groq",
			available: []ProviderName{ProviderGemini},
			wantKind:  PlanEmpty,
		},
		{
			name:      "unknown provider name",
			mode:      "banana",
			available: []ProviderName{ProviderGemini},
			wantKind:  PlanEmpty,
		},
		{
			name:          "mode is case and whitespace insensitive",
			mode:          "  HYBRID ",
			available:     []ProviderName{ProviderGemini, ProviderGroq},
			wantKind:      PlanHybrid,
			wantProviders: []ProviderName{ProviderGemini, ProviderGroq},
		},
		{
			name:     "auto with no providers",
			mode:     "auto",
			wantKind: PlanEmpty,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolvePlan(tc.mode, tc.available)
			require.Equal(t, tc.wantKind, got.Kind)
			require.Equal(t, tc.wantProviders, got.Providers)
			require.Equal(t, tc.wantDegraded, got.Degraded)
		})
	}
}

func TestKnownProvider(t *testing.T) {
	require.True(t, KnownProvider(ProviderGemini))
	require.True(t, KnownProvider(ProviderGroq))
	require.True(t, KnownProvider(ProviderAnthropic))
	require.False(t, KnownProvider("openai"))
}
