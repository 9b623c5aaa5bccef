package workflows

import (
	"context"
	"testing"

	"github.com/XiaoConstantine/coda-go/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelMergesResults(t *testing.T) {
	analysis := succeedingUnit(core.CapabilityAnalysis, map[string]interface{}{"score": 75})
	explain := succeedingUnit(core.CapabilityExplanation, map[string]interface{}{"summary": "short"})
	par := NewParallel(buildRegistry(t, analysis, explain), 2)

	req := core.NewRequest("", "def f(): pass", core.LanguagePython)
	result, err := par.Run(context.Background(), req, []core.Capability{
		core.CapabilityAnalysis,
		core.CapabilityExplanation,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, map[string]interface{}{"score": 75}, result.Data["analysis"])
	assert.Equal(t, map[string]interface{}{"summary": "short"}, result.Data["explanation"])
}

func TestParallelFailureFailsAggregate(t *testing.T) {
	analysis := succeedingUnit(core.CapabilityAnalysis, map[string]interface{}{"score": 75})
	debug := failingUnit(core.CapabilityDebug, "could not parse")
	par := NewParallel(buildRegistry(t, analysis, debug), 0)

	req := core.NewRequest("", "def f(): pass", core.LanguagePython)
	result, err := par.Run(context.Background(), req, []core.Capability{
		core.CapabilityAnalysis,
		core.CapabilityDebug,
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "debug")
	assert.Contains(t, result.Error, "could not parse")
	// Sibling results are still reported
	assert.Contains(t, result.Data, "analysis")
}

func TestParallelUnknownCapabilityFailsBeforeAnyRun(t *testing.T) {
	analysis := succeedingUnit(core.CapabilityAnalysis, nil)
	par := NewParallel(buildRegistry(t, analysis), 1)

	req := core.NewRequest("", "x", core.LanguagePython)
	_, err := par.Run(context.Background(), req, []core.Capability{
		core.CapabilityAnalysis,
		core.Capability("poetry"),
	})

	require.Error(t, err)
	assert.Equal(t, 0, analysis.calls, "no unit runs when the sequence fails resolution")
}

func TestParallelEmptySequence(t *testing.T) {
	par := NewParallel(buildRegistry(t), 1)
	req := core.NewRequest("", "x", core.LanguagePython)

	_, err := par.Run(context.Background(), req, nil)
	assert.ErrorIs(t, err, ErrEmptySequence)
}
