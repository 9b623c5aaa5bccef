package workflows

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/XiaoConstantine/coda-go/pkg/core"
	"github.com/XiaoConstantine/coda-go/pkg/registry"
	"github.com/sourcegraph/conc/pool"
)

// Parallel fans independent capabilities out concurrently and merges their
// results into one aggregate. Unlike Chain there is no ordering between steps,
// so it is only suitable for capabilities that do not feed each other; the
// comprehensive review composite stays on Chain.
type Parallel struct {
	registry      *registry.UnitRegistry
	maxConcurrent int
}

// NewParallel creates a concurrent executor. maxConcurrent <= 0 means one
// goroutine per capability.
func NewParallel(reg *registry.UnitRegistry, maxConcurrent int) *Parallel {
	return &Parallel{
		registry:      reg,
		maxConcurrent: maxConcurrent,
	}
}

// Run invokes every capability in the sequence against the same request and
// returns an aggregate keyed by capability. Any failing step fails the whole
// aggregate; successful sibling results are still included in Data.
func (p *Parallel) Run(ctx context.Context, req core.Request, sequence []core.Capability) (core.Result, error) {
	if len(sequence) == 0 {
		return core.Result{}, ErrEmptySequence
	}

	// Resolve everything up front so a misconfigured sequence fails before
	// any unit runs
	units := make(map[core.Capability]core.ProcessingUnit, len(sequence))
	for _, capability := range sequence {
		unit, err := p.registry.Resolve(capability)
		if err != nil {
			return core.Result{}, err
		}
		units[capability] = unit
	}

	var (
		mu        sync.Mutex
		aggregate = make(map[string]interface{}, len(sequence))
		failed    []string
	)

	workers := pool.New().WithContext(ctx)
	if p.maxConcurrent > 0 {
		workers = workers.WithMaxGoroutines(p.maxConcurrent)
	}

	for _, capability := range sequence {
		capability := capability
		workers.Go(func(ctx context.Context) error {
			result, err := units[capability].Process(ctx, req)
			if err != nil {
				result = core.Failure(err.Error())
			}

			mu.Lock()
			defer mu.Unlock()
			aggregate[capability.String()] = result.Data
			if !result.Success {
				failed = append(failed, fmt.Sprintf("%s: %s", capability, result.Error))
			}
			return nil
		})
	}

	if err := workers.Wait(); err != nil {
		return core.Result{}, err
	}

	if len(failed) > 0 {
		sort.Strings(failed)
		return core.Result{
			Success: false,
			Data:    aggregate,
			Error:   "parallel run failed: " + strings.Join(failed, "; "),
		}, nil
	}

	return core.SuccessResult(aggregate), nil
}
