package filter

import (
	"github.com/goran-ethernal/subindex/pkg/config"
)

// ExclusionFilter decides which decoded events and extrinsics are kept.
// It is a pure predicate over the static exclusion configuration and is
// safe for concurrent use.
type ExclusionFilter struct {
	// pallet -> excluded variants; an empty set means the whole pallet
	// is excluded
	events map[string]map[string]struct{}

	// excluded "Pallet/Call" actions
	extrinsics map[string]struct{}
}

// New builds an ExclusionFilter from the exclusion configuration.
func New(cfg config.ExcludeConfig) *ExclusionFilter {
	f := &ExclusionFilter{
		events:     make(map[string]map[string]struct{}),
		extrinsics: make(map[string]struct{}, len(cfg.Extrinsics)),
	}

	for _, excl := range cfg.Events {
		if excl.Variant == nil {
			// Whole-pallet exclusion wins over any variant entries.
			f.events[excl.Pallet] = nil
			continue
		}

		variants, seen := f.events[excl.Pallet]
		if seen && variants == nil {
			continue
		}
		if variants == nil {
			variants = make(map[string]struct{})
			f.events[excl.Pallet] = variants
		}
		variants[*excl.Variant] = struct{}{}
	}

	for _, action := range cfg.Extrinsics {
		f.extrinsics[action] = struct{}{}
	}

	return f
}

// ExcludesEvent reports whether an event with the given pallet and
// variant must be dropped.
func (f *ExclusionFilter) ExcludesEvent(pallet, variant string) bool {
	variants, ok := f.events[pallet]
	if !ok {
		return false
	}
	if variants == nil {
		// Whole pallet excluded.
		return true
	}

	_, excluded := variants[variant]
	return excluded
}

// ExcludesExtrinsic reports whether an extrinsic with the given
// "Pallet/Call" action must be dropped. Dropping an extrinsic drops its
// events as a unit; they are never individually evaluated.
func (f *ExclusionFilter) ExcludesExtrinsic(action string) bool {
	_, excluded := f.extrinsics[action]
	return excluded
}
