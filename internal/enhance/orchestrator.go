package enhance

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"repohealth/internal/llmclient"
	"repohealth/internal/merge"
	"repohealth/internal/progress"
	"repohealth/internal/prompt"
	"repohealth/internal/report"
	"repohealth/internal/snapshot"
)

// DefaultTimeout bounds a single provider round trip. A provider that
// never answers must not stall the whole response.
const DefaultTimeout = 60 * time.Second

// Provider tags recorded in analysisMeta for the hybrid outcomes.
const (
	providerHybrid        = "hybrid"
	providerHybridPartial = "hybrid-partial:"
)

// Provider couples a closed provider name with the client that reaches it.
type Provider struct {
	Name   ProviderName
	Model  string
	Client llmclient.Client
}

// Orchestrator fans a report prompt out to the configured providers per
// the resolved plan. Mode and weights are threaded into Enhance per call
// rather than held as process state, so a request can override both.
type Orchestrator struct {
	timeout   time.Duration
	providers map[ProviderName]Provider
}

// New builds an orchestrator over the given providers. Providers without a
// client are dropped; timeout <= 0 selects DefaultTimeout.
func New(timeout time.Duration, providers ...Provider) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	byName := make(map[ProviderName]Provider, len(providers))
	for _, p := range providers {
		if p.Client == nil {
			continue
		}
		byName[p.Name] = p
	}
	return &Orchestrator{timeout: timeout, providers: byName}
}

// Available lists the credentialed providers in priority order.
func (o *Orchestrator) Available() []ProviderName {
	var names []ProviderName
	for _, name := range providerPriority {
		if _, ok := o.providers[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Enhance resolves the plan for mode and runs it against the baseline.
// It never returns an error: a failed or absent provider leaves the
// baseline intact and records what happened in analysisMeta.
func (o *Orchestrator) Enhance(ctx context.Context, snap snapshot.Snapshot, baseline report.Report, mode string, w merge.Weights) report.Report {
	emitter := progress.EmitterFrom(ctx)
	plan := ResolvePlan(mode, o.Available())

	if len(plan.Providers) == 0 {
		out := baseline
		out.AnalysisMeta.FallbackUsed = true
		out.AnalysisMeta.FallbackReason = emptyPlanReason(mode)
		emitter.EmitStage("merge", 90, out.AnalysisMeta.FallbackReason)
		return out
	}

	userPrompt := prompt.Build(snap, baseline)
	emitter.EmitStage("prompt", 50, fmt.Sprintf("prompt built for %d provider(s)", len(plan.Providers)))

	if plan.Kind == PlanHybrid {
		return o.runHybrid(ctx, emitter, plan, baseline, userPrompt, w)
	}
	return o.runSequential(ctx, emitter, plan, baseline, userPrompt, w)
}

func emptyPlanReason(mode string) string {
	switch m := normalizeMode(mode); m {
	case ModeHybrid, ModeAuto:
		return "no AI providers configured"
	default:
		return fmt.Sprintf("provider %q not configured", m)
	}
}

// runSequential walks the plan in order and returns on the first provider
// that yields a parseable candidate. Each provider is tried at most once.
func (o *Orchestrator) runSequential(ctx context.Context, emitter progress.Emitter, plan Plan, baseline report.Report, userPrompt string, w merge.Weights) report.Report {
	degradeNote := ""
	if plan.Degraded {
		degradeNote = fmt.Sprintf("hybrid degraded to sequential: %d provider(s) configured", len(plan.Providers))
	}

	var failures []string
	for i, name := range plan.Providers {
		p := o.providers[name]
		emitter.EmitStage("provider:"+string(name), 60+10*i, "querying")

		cand, err := o.attempt(ctx, p, userPrompt)
		if err != nil {
			failures = append(failures, err.Error())
			emitter.EmitStage("provider:"+string(name), 60+10*i, "failed, trying next")
			continue
		}

		out := merge.Blend(baseline, cand, w)
		out.AnalysisMeta.Provider = string(name)
		out.AnalysisMeta.Model = p.Model
		out.AnalysisMeta.FallbackUsed = i > 0 || plan.Degraded
		out.AnalysisMeta.FallbackReason = joinNonEmpty(degradeNote, strings.Join(failures, "; "))
		emitter.EmitStage("merge", 90, fmt.Sprintf("blended %s candidate", name))
		return out
	}

	// Everyone failed: keep the baseline and record the last error.
	out := baseline
	out.AnalysisMeta.FallbackUsed = true
	lastErr := ""
	if len(failures) > 0 {
		lastErr = failures[len(failures)-1]
	}
	out.AnalysisMeta.FallbackReason = joinNonEmpty(degradeNote, lastErr)
	emitter.EmitStage("merge", 90, "all providers failed")
	return out
}

// runHybrid dispatches every provider concurrently and waits for all of
// them to settle. Consensus needs every voice, so there is no cancellation
// on first failure or first success.
func (o *Orchestrator) runHybrid(ctx context.Context, emitter progress.Emitter, plan Plan, baseline report.Report, userPrompt string, w merge.Weights) report.Report {
	type outcome struct {
		p    Provider
		cand merge.Candidate
		err  error
	}

	results := make([]outcome, len(plan.Providers))
	var wg sync.WaitGroup
	for i, name := range plan.Providers {
		p := o.providers[name]
		emitter.EmitStage("provider:"+string(name), 60, "querying")
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			cand, err := o.attempt(ctx, p, userPrompt)
			if err != nil {
				emitter.EmitStage("provider:"+string(p.Name), 70, "failed")
			} else {
				emitter.EmitStage("provider:"+string(p.Name), 70, "candidate received")
			}
			results[i] = outcome{p: p, cand: cand, err: err}
		}(i, p)
	}
	wg.Wait()

	var (
		succeeded []outcome
		failures  []string
	)
	for _, res := range results {
		if res.err != nil {
			failures = append(failures, res.err.Error())
			continue
		}
		succeeded = append(succeeded, res)
	}

	switch len(succeeded) {
	case 0:
		out := baseline
		out.AnalysisMeta.FallbackUsed = true
		out.AnalysisMeta.FallbackReason = strings.Join(failures, "; ")
		emitter.EmitStage("merge", 90, "all providers failed")
		return out

	case 1:
		// One voice is no consensus: blend it like a sequential result but
		// keep the distinct tag so consumers can see the degradation.
		win := succeeded[0]
		out := merge.Blend(baseline, win.cand, w)
		out.AnalysisMeta.Provider = providerHybridPartial + string(win.p.Name)
		out.AnalysisMeta.Model = win.p.Model
		out.AnalysisMeta.FallbackUsed = true
		out.AnalysisMeta.FallbackReason = strings.Join(failures, "; ")
		emitter.EmitStage("merge", 90, fmt.Sprintf("hybrid degraded to single candidate from %s", win.p.Name))
		return out

	default:
		cands := make([]merge.Candidate, len(succeeded))
		models := make([]string, len(succeeded))
		for i, res := range succeeded {
			cands[i] = res.cand
			models[i] = res.p.Model
		}
		out := merge.Consensus(baseline, cands, w)
		out.AnalysisMeta.Provider = providerHybrid
		out.AnalysisMeta.Model = strings.Join(models, ",")
		out.AnalysisMeta.FallbackUsed = len(failures) > 0
		out.AnalysisMeta.FallbackReason = strings.Join(failures, "; ")
		emitter.EmitStage("merge", 90, fmt.Sprintf("consensus of %d candidates", len(cands)))
		return out
	}
}

// attempt is one bounded provider round trip: complete, extract the first
// balanced JSON object, parse. No retries.
func (o *Orchestrator) attempt(ctx context.Context, p Provider, userPrompt string) (merge.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	raw, err := p.Client.Complete(ctx, prompt.SystemInstruction, userPrompt)
	if err != nil {
		return merge.Candidate{}, fmt.Errorf("%s: %w", p.Name, err)
	}
	objText, err := llmclient.ExtractJSONObject(raw)
	if err != nil {
		return merge.Candidate{}, fmt.Errorf("%s: %w", p.Name, err)
	}
	return merge.ParseCandidate(string(p.Name), objText)
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, s := range parts {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, "; ")
}
