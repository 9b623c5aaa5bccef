// Package registry maps capability identifiers to processing unit instances.
package registry

import (
	"sort"
	"sync"

	"github.com/XiaoConstantine/coda-go/pkg/core"
	"github.com/XiaoConstantine/coda-go/pkg/errors"
)

// UnitRegistry provides an in-memory mapping from capability identifier to
// processing unit. Units are registered once at construction time; lookups
// for unknown identifiers fail rather than returning a default.
type UnitRegistry struct {
	mu    sync.RWMutex
	units map[core.Capability]core.ProcessingUnit
}

// New creates a new, empty UnitRegistry.
func New() *UnitRegistry {
	return &UnitRegistry{
		units: make(map[core.Capability]core.ProcessingUnit),
	}
}

// Register adds a unit under its capability tag.
// It returns an error if a unit with the same capability already exists.
func (r *UnitRegistry) Register(unit core.ProcessingUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if unit == nil {
		return errors.New(errors.MalformedRequest, "cannot register a nil unit")
	}

	capability := unit.Capability()
	if capability == "" {
		return errors.New(errors.ValidationFailed, "unit has an empty capability tag")
	}
	if _, exists := r.units[capability]; exists {
		return errors.WithFields(errors.New(errors.DuplicateCapability, "capability already registered"), errors.Fields{
			"capability": capability.String(),
		})
	}

	r.units[capability] = unit
	return nil
}

// Resolve retrieves the unit registered under a capability.
// It returns an error if the capability is unknown; it never falls back to a
// default unit.
func (r *UnitRegistry) Resolve(capability core.Capability) (core.ProcessingUnit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	unit, exists := r.units[capability]
	if !exists {
		return nil, errors.WithFields(errors.New(errors.UnknownCapability, "capability not registered"), errors.Fields{
			"capability": capability.String(),
			"registered": r.capabilitiesLocked(),
		})
	}
	return unit, nil
}

// Contains reports whether a capability is registered.
func (r *UnitRegistry) Contains(capability core.Capability) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.units[capability]
	return exists
}

// Capabilities returns all registered capability identifiers, sorted for
// deterministic output.
func (r *UnitRegistry) Capabilities() []core.Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]core.Capability, 0, len(r.units))
	for capability := range r.units {
		list = append(list, capability)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

func (r *UnitRegistry) capabilitiesLocked() []string {
	list := make([]string, 0, len(r.units))
	for capability := range r.units {
		list = append(list, capability.String())
	}
	sort.Strings(list)
	return list
}
