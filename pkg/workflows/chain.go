// Package workflows executes capability sequences against a registry of
// processing units.
package workflows

import (
	"fmt"

	"context"

	"github.com/XiaoConstantine/coda-go/pkg/core"
	"github.com/XiaoConstantine/coda-go/pkg/errors"
	"github.com/XiaoConstantine/coda-go/pkg/logging"
	"github.com/XiaoConstantine/coda-go/pkg/registry"
)

// Chain runs a capability sequence strictly in declared order, every step
// against the same original request payload. Step results are aggregated into
// one result keyed by capability; the first failing step stops the run.
type Chain struct {
	registry *registry.UnitRegistry
}

// NewChain creates a sequential executor over the given registry.
func NewChain(reg *registry.UnitRegistry) *Chain {
	return &Chain{registry: reg}
}

// Run executes the sequence. A single-capability sequence returns the unit's
// result unchanged. A multi-capability sequence returns an aggregate: Data
// keyed by capability identifier, Success true only when every step succeeded.
//
// Failure policy is fail-fast: when a step fails, the partial aggregate built
// so far is kept in Data, Error names the failing capability, and remaining
// steps are not invoked. No retries happen here; retry policy is a unit's own
// concern.
//
// A context cancellation aborts the run with an error; completed step results
// are discarded together as a unit and nothing is handed back for persistence.
func (c *Chain) Run(ctx context.Context, req core.Request, sequence []core.Capability) (core.Result, error) {
	if len(sequence) == 0 {
		return core.Result{}, ErrEmptySequence
	}

	if len(sequence) == 1 {
		return c.runStep(ctx, req, sequence[0])
	}

	logger := logging.GetLogger()
	aggregate := make(map[string]interface{}, len(sequence))

	for _, capability := range sequence {
		if err := errors.CheckContext(ctx, "workflow run"); err != nil {
			return core.Result{}, err
		}

		stepCtx := logging.WithCapability(ctx, capability.String())
		result, err := c.runStep(stepCtx, req, capability)
		if err != nil {
			return core.Result{}, err
		}

		aggregate[capability.String()] = result.Data
		if !result.Success {
			logger.Warn(stepCtx, "composite step failed, stopping run: %s", result.Error)
			return core.Result{
				Success: false,
				Data:    aggregate,
				Error:   fmt.Sprintf("capability %q failed: %s", capability, result.Error),
			}, nil
		}
	}

	return core.SuccessResult(aggregate), nil
}

// runStep resolves and invokes one unit. Resolution failures and context
// cancellations surface as errors; a unit's own error return is folded into a
// failed result so composite aggregation can record it.
func (c *Chain) runStep(ctx context.Context, req core.Request, capability core.Capability) (core.Result, error) {
	if err := errors.CheckContext(ctx, "step execution"); err != nil {
		return core.Result{}, err
	}

	unit, err := c.registry.Resolve(capability)
	if err != nil {
		return core.Result{}, err
	}

	result, err := unit.Process(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return core.Result{}, errors.Wrap(ctxErr, errors.Canceled, "step canceled mid-flight")
		}
		return core.Failure(err.Error()), nil
	}
	return result, nil
}
