// Package assistant is the high-level facade over the orchestration core.
// It owns the unit registry, the request router, the workflow executors, and
// the conversation history, and exposes one method per capability.
package assistant

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/XiaoConstantine/coda-go/pkg/core"
	"github.com/XiaoConstantine/coda-go/pkg/logging"
	"github.com/XiaoConstantine/coda-go/pkg/memory"
	"github.com/XiaoConstantine/coda-go/pkg/registry"
	"github.com/XiaoConstantine/coda-go/pkg/router"
	"github.com/XiaoConstantine/coda-go/pkg/units"
	"github.com/XiaoConstantine/coda-go/pkg/workflows"
)

// Metrics aggregates request counters across the assistant's lifetime.
type Metrics struct {
	TotalRequests      uint64  `json:"total_requests"`
	SuccessfulRequests uint64  `json:"successful_requests"`
	FailedRequests     uint64  `json:"failed_requests"`
	AvgExecutionTime   float64 `json:"avg_execution_time"`
}

// MemoryInfo describes the current history state.
type MemoryInfo struct {
	HistorySize int `json:"history_size"`
}

type options struct {
	units         []core.ProcessingUnit
	history       memory.History
	capacity      int
	composites    map[router.CompositeName][]core.Capability
	cacheSize     int
	maxConcurrent int
}

// Option configures an Assistant at construction time.
type Option func(*options)

// WithUnits replaces the default unit set.
func WithUnits(list ...core.ProcessingUnit) Option {
	return func(o *options) { o.units = list }
}

// WithHistory uses a caller-supplied history backend instead of the default
// in-memory one.
func WithHistory(h memory.History) Option {
	return func(o *options) { o.history = h }
}

// WithHistoryCapacity sets the bound of the default in-memory history.
// Ignored when WithHistory is used.
func WithHistoryCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithComposites replaces the default composite routing table.
func WithComposites(m map[router.CompositeName][]core.Capability) Option {
	return func(o *options) { o.composites = m }
}

// WithCacheSize bounds the result cache. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithMaxConcurrent caps parallel workflow fan-out. Zero means unbounded.
func WithMaxConcurrent(n int) Option {
	return func(o *options) { o.maxConcurrent = n }
}

// Assistant wires the registry, router, executors, history, and cache into a
// single entry point. All methods are safe for concurrent use.
type Assistant struct {
	registry *registry.UnitRegistry
	router   *router.IntentRouter
	chain    *workflows.Chain
	parallel *workflows.Parallel
	history  memory.History
	cache    *resultCache
	logger   *logging.Logger

	mu      sync.Mutex
	metrics Metrics
}

// New builds an assistant with all default processing units registered.
func New(opts ...Option) (*Assistant, error) {
	o := options{
		capacity:   memory.DefaultCapacity,
		composites: router.DefaultComposites(),
		cacheSize:  128,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.units == nil {
		o.units = units.All()
	}
	if o.history == nil {
		o.history = memory.NewBoundedHistory(o.capacity)
	}

	reg := registry.New()
	for _, unit := range o.units {
		if err := reg.Register(unit); err != nil {
			return nil, err
		}
	}

	rt, err := router.New(reg, o.composites)
	if err != nil {
		return nil, err
	}

	a := &Assistant{
		registry: reg,
		router:   rt,
		chain:    workflows.NewChain(reg),
		parallel: workflows.NewParallel(reg, o.maxConcurrent),
		history:  o.history,
		logger:   logging.GetLogger(),
	}
	if o.cacheSize > 0 {
		a.cache = newResultCache(o.cacheSize)
	}
	return a, nil
}

// Analyze runs the analysis unit over the given code.
func (a *Assistant) Analyze(ctx context.Context, code string, lang core.Language) core.Result {
	return a.Process(ctx, core.NewRequest(core.CapabilityAnalysis, code, lang))
}

// Debug runs the debug unit. errMsg optionally carries an observed runtime
// error to fold into the analysis.
func (a *Assistant) Debug(ctx context.Context, code string, lang core.Language, errMsg string) core.Result {
	req := core.NewRequest(core.CapabilityDebug, code, lang)
	if errMsg != "" {
		req.Metadata = map[string]interface{}{"error_message": errMsg}
	}
	return a.Process(ctx, req)
}

// Generate produces code from a natural language description.
func (a *Assistant) Generate(ctx context.Context, description string, lang core.Language) core.Result {
	return a.Process(ctx, core.NewRequest(core.CapabilityGeneration, description, lang))
}

// Optimize suggests performance rewrites for the given code.
func (a *Assistant) Optimize(ctx context.Context, code string, lang core.Language) core.Result {
	return a.Process(ctx, core.NewRequest(core.CapabilityOptimization, code, lang))
}

// Explain describes the given code in natural language at the requested
// detail level.
func (a *Assistant) Explain(ctx context.Context, code string, lang core.Language, detail core.DetailLevel) core.Result {
	req := core.NewRequest(core.CapabilityExplanation, code, lang)
	if detail != "" {
		req.Metadata = map[string]interface{}{"detail_level": string(detail)}
	}
	return a.Process(ctx, req)
}

// Solve answers a data structures and algorithms problem statement.
func (a *Assistant) Solve(ctx context.Context, problem string, lang core.Language) core.Result {
	return a.Process(ctx, core.NewRequest(core.CapabilityDSA, problem, lang))
}

// ComprehensiveReview runs the analysis, debug, and optimization units in
// sequence and aggregates their results.
func (a *Assistant) ComprehensiveReview(ctx context.Context, code string, lang core.Language) core.Result {
	return a.Process(ctx, core.NewRequest(core.Capability(router.ComprehensiveReview), code, lang))
}

// ParallelReview is ComprehensiveReview with the steps fanned out
// concurrently instead of chained. Results merge the same way; there is no
// fail-fast since all steps run.
func (a *Assistant) ParallelReview(ctx context.Context, code string, lang core.Language) core.Result {
	req := core.NewRequest(core.Capability(router.ComprehensiveReview), code, lang)
	return a.process(ctx, req, a.parallel.Run)
}

// Process routes and executes an arbitrary request. This is the entry point
// the capability methods and the CLI share.
func (a *Assistant) Process(ctx context.Context, req core.Request) core.Result {
	return a.process(ctx, req, a.chain.Run)
}

type runFunc func(ctx context.Context, req core.Request, sequence []core.Capability) (core.Result, error)

func (a *Assistant) process(ctx context.Context, req core.Request, run runFunc) core.Result {
	start := time.Now()
	ctx = logging.WithRequestID(ctx, req.ID)
	a.logger.Info(ctx, "processing request: capability=%s language=%s", req.Capability, req.Language)

	result := a.execute(ctx, req, run)
	result.ExecutionTime = time.Since(start).Seconds()

	// A canceled run leaves no trace in history: either all of its effects
	// land or none do.
	if ctx.Err() != nil {
		a.record(result.Success, result.ExecutionTime)
		a.logger.Warn(ctx, "request canceled: %v", ctx.Err())
		return result
	}

	if _, err := a.history.Append(req, result); err != nil {
		a.logger.Error(ctx, "failed to record history entry: %v", err)
	}
	a.record(result.Success, result.ExecutionTime)

	done := logging.WithLatency(ctx, time.Since(start).Milliseconds())
	if result.Success {
		a.logger.Info(done, "request completed in %.3fs", result.ExecutionTime)
	} else {
		a.logger.Warn(done, "request failed: %s", result.Error)
	}
	return result
}

func (a *Assistant) execute(ctx context.Context, req core.Request, run runFunc) core.Result {
	if err := req.Validate(); err != nil {
		return core.Failure(err.Error())
	}

	if a.cache != nil {
		if cached, ok := a.cache.get(req); ok {
			a.logger.Debug(ctx, "cache hit for capability %s", req.Capability)
			return cached
		}
	}

	// Units see the enriched request; history and the cache key stay on the
	// caller's original so identical requests keep identical keys.
	enriched := withContext(req, a.relevantContext(req))

	sequence, err := a.router.Route(enriched)
	if err != nil {
		return core.Failure(err.Error())
	}

	result, err := run(ctx, enriched, sequence)
	if err != nil {
		return core.Failure(err.Error())
	}

	if a.cache != nil && result.Success && len(sequence) == 1 {
		a.cache.put(req, result)
	}
	return result
}

const (
	// contextWindow is how far back relevantContext scans.
	contextWindow = 10
	// contextLimit caps how many prior exchanges a unit is handed.
	contextLimit = 5
)

// relevantContext assembles context from recent history for units to draw on:
// the newest few exchanges in the request's language, plus any recent
// failures. Returns nil when there is nothing relevant.
func (a *Assistant) relevantContext(req core.Request) map[string]interface{} {
	entries, err := a.history.Recent(contextWindow)
	if err != nil || len(entries) == 0 {
		return nil
	}

	var recentCode []map[string]interface{}
	var recentErrors []string
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if !e.Result.Success && e.Result.Error != "" {
			recentErrors = append(recentErrors, e.Result.Error)
		}
		if len(recentCode) >= contextLimit || e.Request.Language != req.Language {
			continue
		}
		recentCode = append(recentCode, map[string]interface{}{
			"payload":    e.Request.Payload,
			"language":   string(e.Request.Language),
			"capability": e.Request.Capability.String(),
		})
	}
	if len(recentCode) == 0 && len(recentErrors) == 0 {
		return nil
	}

	contextData := map[string]interface{}{}
	if len(recentCode) > 0 {
		contextData["recent_code"] = recentCode
	}
	if len(recentErrors) > 0 {
		contextData["recent_errors"] = recentErrors
	}
	return contextData
}

// withContext returns a copy of req whose metadata carries the assembled
// history context under the "context" key. The caller's metadata map is
// never mutated.
func withContext(req core.Request, contextData map[string]interface{}) core.Request {
	if contextData == nil {
		return req
	}
	meta := make(map[string]interface{}, len(req.Metadata)+1)
	for k, v := range req.Metadata {
		meta[k] = v
	}
	meta["context"] = contextData
	req.Metadata = meta
	return req
}

func (a *Assistant) record(success bool, elapsed float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.metrics.TotalRequests++
	if success {
		a.metrics.SuccessfulRequests++
	} else {
		a.metrics.FailedRequests++
	}
	total := float64(a.metrics.TotalRequests)
	a.metrics.AvgExecutionTime = (a.metrics.AvgExecutionTime*(total-1) + elapsed) / total
}

// Metrics returns a snapshot of the request counters.
func (a *Assistant) Metrics() Metrics {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.metrics
}

// CacheStats returns result cache counters. Zero values when caching is off.
func (a *Assistant) CacheStats() CacheStats {
	if a.cache == nil {
		return CacheStats{}
	}
	return a.cache.snapshot()
}

// Capabilities lists the registered capability tags in sorted order.
func (a *Assistant) Capabilities() []core.Capability {
	return a.registry.Capabilities()
}

// Composites lists the configured composite workflow names.
func (a *Assistant) Composites() []router.CompositeName {
	return a.router.Composites()
}

// History returns the n most recent exchanges, oldest first.
func (a *Assistant) History(n int) ([]memory.Entry, error) {
	return a.history.Recent(n)
}

// MemoryInfo reports the current history size.
func (a *Assistant) MemoryInfo() (MemoryInfo, error) {
	size, err := a.history.Len()
	if err != nil {
		return MemoryInfo{}, err
	}
	return MemoryInfo{HistorySize: size}, nil
}

// ClearMemory drops every history entry.
func (a *Assistant) ClearMemory() error {
	return a.history.Clear()
}

// Close releases the history backend when it holds external resources.
func (a *Assistant) Close() error {
	if closer, ok := a.history.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
