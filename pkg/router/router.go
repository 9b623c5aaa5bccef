// Package router resolves a request to the ordered capability sequence that
// should handle it.
package router

import (
	"sort"

	"github.com/XiaoConstantine/coda-go/pkg/core"
	"github.com/XiaoConstantine/coda-go/pkg/errors"
	"github.com/XiaoConstantine/coda-go/pkg/registry"
)

// CompositeName identifies a predeclared multi-capability workflow, e.g.
// "comprehensive_review". Composites are configuration: the table is fixed at
// construction time and there is no intent classifier in the core.
type CompositeName string

// ComprehensiveReview is the built-in composite: analysis, then debug, then
// optimization, over the same input.
const ComprehensiveReview CompositeName = "comprehensive_review"

// DefaultComposites returns the composite table the assistant ships with.
func DefaultComposites() map[CompositeName][]core.Capability {
	return map[CompositeName][]core.Capability{
		ComprehensiveReview: {
			core.CapabilityAnalysis,
			core.CapabilityDebug,
			core.CapabilityOptimization,
		},
	}
}

// IntentRouter maps requests to capability sequences. Routing is deterministic
// and side-effect-free: identical input always yields the identical decision.
type IntentRouter struct {
	registry   *registry.UnitRegistry
	composites map[CompositeName][]core.Capability
}

// New builds a router over the given registry and composite table. Every
// capability a composite references must already be registered; a dangling
// reference is a configuration error and fails construction.
func New(reg *registry.UnitRegistry, composites map[CompositeName][]core.Capability) (*IntentRouter, error) {
	if composites == nil {
		composites = map[CompositeName][]core.Capability{}
	}

	for name, sequence := range composites {
		if len(sequence) == 0 {
			return nil, errors.WithFields(
				errors.New(errors.ValidationFailed, "composite workflow has no steps"),
				errors.Fields{"composite": string(name)},
			)
		}
		for _, capability := range sequence {
			if !reg.Contains(capability) {
				return nil, errors.WithFields(
					errors.New(errors.UnknownCapability, "composite references unregistered capability"),
					errors.Fields{
						"composite":  string(name),
						"capability": capability.String(),
					},
				)
			}
		}
	}

	// Copy the table so later caller mutation can't change routing decisions
	table := make(map[CompositeName][]core.Capability, len(composites))
	for name, sequence := range composites {
		steps := make([]core.Capability, len(sequence))
		copy(steps, sequence)
		table[name] = steps
	}

	return &IntentRouter{
		registry:   reg,
		composites: table,
	}, nil
}

// Route returns the ordered capability sequence that should handle req.
// If the request names a composite workflow, the composite's predeclared
// sequence is returned; otherwise the capability is validated against the
// registry and returned as a single-element sequence.
func (r *IntentRouter) Route(req core.Request) ([]core.Capability, error) {
	if req.Capability == "" {
		return nil, errors.New(errors.MalformedRequest, "request names no capability")
	}

	if sequence, ok := r.composites[CompositeName(req.Capability)]; ok {
		out := make([]core.Capability, len(sequence))
		copy(out, sequence)
		return out, nil
	}

	if _, err := r.registry.Resolve(req.Capability); err != nil {
		return nil, err
	}
	return []core.Capability{req.Capability}, nil
}

// Composites lists the configured composite workflow names, sorted.
func (r *IntentRouter) Composites() []CompositeName {
	names := make([]CompositeName, 0, len(r.composites))
	for name := range r.composites {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
