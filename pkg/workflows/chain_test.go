package workflows

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/XiaoConstantine/coda-go/pkg/core"
	"github.com/XiaoConstantine/coda-go/pkg/errors"
	"github.com/XiaoConstantine/coda-go/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUnit scripts a unit's behavior and records invocations.
type fakeUnit struct {
	capability core.Capability
	result     core.Result
	err        error
	calls      int
	onProcess  func(ctx context.Context)
}

func (u *fakeUnit) Capability() core.Capability { return u.capability }

func (u *fakeUnit) Process(ctx context.Context, req core.Request) (core.Result, error) {
	u.calls++
	if u.onProcess != nil {
		u.onProcess(ctx)
	}
	return u.result, u.err
}

func succeedingUnit(capability core.Capability, data map[string]interface{}) *fakeUnit {
	return &fakeUnit{capability: capability, result: core.SuccessResult(data)}
}

func failingUnit(capability core.Capability, message string) *fakeUnit {
	return &fakeUnit{capability: capability, result: core.Failure(message)}
}

func buildRegistry(t *testing.T, units ...*fakeUnit) *registry.UnitRegistry {
	t.Helper()
	reg := registry.New()
	for _, unit := range units {
		require.NoError(t, reg.Register(unit))
	}
	return reg
}

func TestChainSingleCapability(t *testing.T) {
	unit := succeedingUnit(core.CapabilityAnalysis, map[string]interface{}{"score": 92})
	chain := NewChain(buildRegistry(t, unit))

	req := core.NewRequest(core.CapabilityAnalysis, "def f(): pass", core.LanguagePython)
	result, err := chain.Run(context.Background(), req, []core.Capability{core.CapabilityAnalysis})

	require.NoError(t, err)
	assert.True(t, result.Success)
	// Single-capability runs pass the unit result through unchanged
	assert.Equal(t, 92, result.Data["score"])
	assert.Equal(t, 1, unit.calls)
}

func TestChainAggregatesMultipleSteps(t *testing.T) {
	analysis := succeedingUnit(core.CapabilityAnalysis, map[string]interface{}{"score": 80})
	debug := succeedingUnit(core.CapabilityDebug, map[string]interface{}{"bugs": 0})
	optimize := succeedingUnit(core.CapabilityOptimization, map[string]interface{}{"suggestions": 2})
	chain := NewChain(buildRegistry(t, analysis, debug, optimize))

	req := core.NewRequest("", "def f(): pass", core.LanguagePython)
	sequence := []core.Capability{core.CapabilityAnalysis, core.CapabilityDebug, core.CapabilityOptimization}
	result, err := chain.Run(context.Background(), req, sequence)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Error)

	assert.Equal(t, map[string]interface{}{"score": 80}, result.Data["analysis"])
	assert.Equal(t, map[string]interface{}{"bugs": 0}, result.Data["debug"])
	assert.Equal(t, map[string]interface{}{"suggestions": 2}, result.Data["optimization"])
}

func TestChainFailFast(t *testing.T) {
	analysis := succeedingUnit(core.CapabilityAnalysis, map[string]interface{}{"score": 80})
	debug := failingUnit(core.CapabilityDebug, "parser blew up")
	optimize := succeedingUnit(core.CapabilityOptimization, map[string]interface{}{"suggestions": 2})
	chain := NewChain(buildRegistry(t, analysis, debug, optimize))

	req := core.NewRequest("", "def f(): pass", core.LanguagePython)
	sequence := []core.Capability{core.CapabilityAnalysis, core.CapabilityDebug, core.CapabilityOptimization}
	result, err := chain.Run(context.Background(), req, sequence)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "debug")

	// Partial aggregate keeps the analysis sub-result and records debug,
	// but optimization never ran
	assert.Contains(t, result.Data, "analysis")
	assert.Contains(t, result.Data, "debug")
	assert.NotContains(t, result.Data, "optimization")
	assert.Equal(t, 0, optimize.calls)
}

func TestChainUnitErrorBecomesFailedResult(t *testing.T) {
	broken := &fakeUnit{capability: core.CapabilityDebug, err: stderrors.New("unit crashed")}
	chain := NewChain(buildRegistry(t, broken))

	req := core.NewRequest(core.CapabilityDebug, "x = 1", core.LanguagePython)
	result, err := chain.Run(context.Background(), req, []core.Capability{core.CapabilityDebug})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unit crashed")
}

func TestChainUnknownCapability(t *testing.T) {
	chain := NewChain(buildRegistry(t))

	req := core.NewRequest(core.Capability("poetry"), "x", core.LanguagePython)
	_, err := chain.Run(context.Background(), req, []core.Capability{"poetry"})
	require.Error(t, err)

	var customErr *errors.Error
	require.True(t, stderrors.As(err, &customErr))
	assert.Equal(t, errors.UnknownCapability, customErr.Code())
}

func TestChainEmptySequence(t *testing.T) {
	chain := NewChain(buildRegistry(t))
	req := core.NewRequest(core.CapabilityAnalysis, "x", core.LanguagePython)

	_, err := chain.Run(context.Background(), req, nil)
	assert.ErrorIs(t, err, ErrEmptySequence)
}

func TestChainCancellationDiscardsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	// First step succeeds and cancels the run; the second must never start
	first := succeedingUnit(core.CapabilityAnalysis, map[string]interface{}{"score": 80})
	first.onProcess = func(context.Context) { cancel() }
	second := succeedingUnit(core.CapabilityDebug, map[string]interface{}{"bugs": 0})
	chain := NewChain(buildRegistry(t, first, second))

	req := core.NewRequest("", "def f(): pass", core.LanguagePython)
	_, err := chain.Run(ctx, req, []core.Capability{core.CapabilityAnalysis, core.CapabilityDebug})

	require.Error(t, err)
	var customErr *errors.Error
	require.True(t, stderrors.As(err, &customErr))
	assert.Equal(t, errors.Canceled, customErr.Code())
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}
