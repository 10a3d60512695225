// Package engine runs the full report pipeline: validate the snapshot,
// score it with local heuristics, enhance with whatever AI providers are
// configured, then persist and archive the result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"repohealth/internal/archive"
	"repohealth/internal/enhance"
	"repohealth/internal/heuristics"
	"repohealth/internal/merge"
	"repohealth/internal/progress"
	"repohealth/internal/report"
	"repohealth/internal/reportstore"
	"repohealth/internal/snapshot"
)

// Cache defaults when Options leaves them zero.
const (
	defaultCacheEntries = 256
	defaultCacheTTL     = 15 * time.Minute
)

// ErrArchiveDisabled is returned by ArchiveURL when no archive is wired.
var ErrArchiveDisabled = errors.New("archive is not configured")

type Options struct {
	Orchestrator *enhance.Orchestrator
	Store        *reportstore.Store
	Archive      *archive.S3Archive // nil disables archiving

	// Mode and LocalWeight are the process defaults; requests may override.
	Mode        string
	LocalWeight float64

	CacheEntries int
	CacheTTL     time.Duration
}

type Engine struct {
	orch  *enhance.Orchestrator
	store *reportstore.Store
	arch  *archive.S3Archive

	mode    string
	weights merge.Weights

	cache *expirable.LRU[string, report.Report]
	group singleflight.Group
}

func New(opts Options) *Engine {
	orch := opts.Orchestrator
	if orch == nil {
		orch = enhance.New(0)
	}
	store := opts.Store
	if store == nil {
		store = reportstore.NewMemory()
	}
	entries := opts.CacheEntries
	if entries <= 0 {
		entries = defaultCacheEntries
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	mode := opts.Mode
	if mode == "" {
		mode = enhance.ModeAuto
	}
	return &Engine{
		orch:    orch,
		store:   store,
		arch:    opts.Archive,
		mode:    mode,
		weights: merge.NewWeights(opts.LocalWeight),
		cache:   expirable.NewLRU[string, report.Report](entries, nil, ttl),
	}
}

// RequestOptions are per-request overrides. Zero values defer to the
// engine's defaults.
type RequestOptions struct {
	Mode        string
	LocalWeight float64
	// Force skips the fingerprint cache and regenerates.
	Force bool
}

// GenerateReport produces one report for the snapshot. Identical snapshots
// under the same mode and weight are served from cache; concurrent
// requests for the same key share a single run.
func (e *Engine) GenerateReport(ctx context.Context, snap snapshot.Snapshot, opts RequestOptions) (report.Report, error) {
	if err := snap.Validate(); err != nil {
		return report.Report{}, err
	}

	mode := opts.Mode
	if mode == "" {
		mode = e.mode
	}
	w := e.weights
	if opts.LocalWeight > 0 {
		w = merge.NewWeights(opts.LocalWeight)
	}

	key := fmt.Sprintf("%s|%s|%.2f", snap.Fingerprint(), mode, w.Local)
	emitter := progress.EmitterFrom(ctx)
	emitter.EmitStage("snapshot", 10, fmt.Sprintf("fingerprinted %d files", len(snap.Files)))

	if !opts.Force {
		if rep, ok := e.cache.Get(key); ok {
			emitter.Emit(progress.Event{Type: progress.EventTypeComplete, Stage: "done", Percent: 100, Message: "served from cache"})
			return rep, nil
		}
	}

	v, err, _ := e.group.Do(key, func() (any, error) {
		rep := e.generate(ctx, snap, mode, w)
		e.cache.Add(key, rep)
		return rep, nil
	})
	if err != nil {
		return report.Report{}, err
	}
	// Emitted here rather than inside generate so callers that joined an
	// in-flight run still see their stream terminate.
	emitter.Emit(progress.Event{Type: progress.EventTypeComplete, Stage: "done", Percent: 100})
	return v.(report.Report), nil
}

func (e *Engine) generate(ctx context.Context, snap snapshot.Snapshot, mode string, w merge.Weights) report.Report {
	emitter := progress.EmitterFrom(ctx)

	emitter.EmitStage("heuristics", 20, fmt.Sprintf("scoring %d sampled files", len(snap.Files)))
	baseline := heuristics.Analyze(snap)

	rep := e.orch.Enhance(ctx, snap, baseline, mode, w)

	rep.ID = uuid.NewString()
	rep.ReportVersion = report.Version
	rep.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	rep.Repository = snap.Project.FullName

	emitter.EmitStage("persist", 95, "saving report")
	e.persist(ctx, rep)
	return rep
}

// persist is best-effort: storage trouble is logged, never surfaced to the
// request that produced the report.
func (e *Engine) persist(ctx context.Context, rep report.Report) {
	if err := e.store.Save(ctx, rep); err != nil {
		log.Printf("report store: save failed for %s: %v", rep.Repository, err)
	}
	if e.arch == nil {
		return
	}
	if _, err := e.arch.Put(ctx, rep); err != nil {
		log.Printf("report archive: upload failed for %s: %v", rep.Repository, err)
	}
}

// Latest returns the most recent stored report for a repository.
func (e *Engine) Latest(ctx context.Context, repo string) (report.Report, error) {
	return e.store.Latest(ctx, repo)
}

// History returns up to limit stored reports for a repository, newest
// first.
func (e *Engine) History(ctx context.Context, repo string, limit int) ([]report.Report, error) {
	return e.store.History(ctx, repo, limit)
}

// ArchiveURL returns a presigned link to an archived report.
func (e *Engine) ArchiveURL(ctx context.Context, repo, reportID string) (string, error) {
	if e.arch == nil {
		return "", ErrArchiveDisabled
	}
	return e.arch.URL(ctx, repo, reportID)
}

// Providers lists the configured provider names in priority order.
func (e *Engine) Providers() []enhance.ProviderName {
	return e.orch.Available()
}

// Close releases held resources.
func (e *Engine) Close() error {
	return e.store.Close()
}
