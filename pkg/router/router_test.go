package router

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

type stubUnit struct {
	capability core.Capability
}

func (u *stubUnit) Capability() core.Capability { return u.capability }

func (u *stubUnit) Process(ctx context.Context, req core.Request) (core.Result, error) {
	return core.SuccessResult(nil), nil
}

func newRegistry(t *testing.T, capabilities ...core.Capability) *registry.UnitRegistry {
	t.Helper()
	reg := registry.New()
	for _, capability := range capabilities {
		require.NoError(t, reg.Register(&stubUnit{capability: capability}))
	}
	return reg
}

func TestExplicitRouting(t *testing.T) {
	reg := newRegistry(t, core.CapabilityAnalysis, core.CapabilityDebug)
	r, err := New(reg, nil)
	require.NoError(t, err)

	req := core.NewRequest(core.CapabilityDebug, "x = 1/0", core.LanguagePython)
	route, err := r.Route(req)
	require.NoError(t, err)
	assert.Equal(t, []core.Capability{core.CapabilityDebug}, route)
}

func TestRoutingIsDeterministic(t *testing.T) {
	reg := newRegistry(t, core.CapabilityAnalysis, core.CapabilityDebug, core.CapabilityOptimization)
	r, err := New(reg, DefaultComposites())
	require.NoError(t, err)

	req := core.NewRequest(core.Capability(ComprehensiveReview), "def f(): pass", core.LanguagePython)
	first, err := r.Route(req)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := r.Route(req)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompositeRouting(t *testing.T) {
	reg := newRegistry(t, core.CapabilityAnalysis, core.CapabilityDebug, core.CapabilityOptimization)
	r, err := New(reg, DefaultComposites())
	require.NoError(t, err)

	req := core.NewRequest(core.Capability(ComprehensiveReview), "def f(): pass", core.LanguagePython)
	route, err := r.Route(req)
	require.NoError(t, err)
	assert.Equal(t, []core.Capability{
		core.CapabilityAnalysis,
		core.CapabilityDebug,
		core.CapabilityOptimization,
	}, route)

	// Callers mutating the returned route must not affect later decisions
	route[0] = core.Capability("mutated")
	again, err := r.Route(req)
	require.NoError(t, err)
	assert.Equal(t, core.CapabilityAnalysis, again[0])
}

func TestUnknownCapabilityRouting(t *testing.T) {
	reg := newRegistry(t, core.CapabilityAnalysis)
	r, err := New(reg, nil)
	require.NoError(t, err)

	req := core.NewRequest(core.Capability("poetry"), "roses are red", core.LanguagePython)
	route, err := r.Route(req)
	assert.Nil(t, route)

	var customErr *errors.Error
	require.True(t, stderrors.As(err, &customErr))
	assert.Equal(t, errors.UnknownCapability, customErr.Code())
}

func TestEmptyCapabilityRouting(t *testing.T) {
	reg := newRegistry(t, core.CapabilityAnalysis)
	r, err := New(reg, nil)
	require.NoError(t, err)

	route, err := r.Route(core.Request{Payload: "def f(): pass"})
	assert.Nil(t, route)
	assert.Error(t, err)
}

func TestCompositeValidationAtConstruction(t *testing.T) {
	t.Run("Dangling capability reference", func(t *testing.T) {
		reg := newRegistry(t, core.CapabilityAnalysis)
		_, err := New(reg, map[CompositeName][]core.Capability{
			"review": {core.CapabilityAnalysis, core.CapabilityDebug},
		})
		require.Error(t, err)

		var customErr *errors.Error
		require.True(t, stderrors.As(err, &customErr))
		assert.Equal(t, errors.UnknownCapability, customErr.Code())
	})

	t.Run("Empty composite", func(t *testing.T) {
		reg := newRegistry(t, core.CapabilityAnalysis)
		_, err := New(reg, map[CompositeName][]core.Capability{"empty": {}})
		assert.Error(t, err)
	})
}

func TestComposites(t *testing.T) {
	reg := newRegistry(t, core.CapabilityAnalysis, core.CapabilityDebug, core.CapabilityOptimization)
	r, err := New(reg, DefaultComposites())
	require.NoError(t, err)

	assert.Equal(t, []CompositeName{ComprehensiveReview}, r.Composites())
}
