// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"slices"
	"sync"

	"github.com/gogpu/marcher"
)

// PlatformFactory creates a platform. It returns nil when the platform is
// not available on this machine.
type PlatformFactory func() Platform

// registry holds registered platforms.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]PlatformFactory)
	// Priority order for enumeration; unlisted platforms follow by name.
	platformPriority = []string{"vulkan", "metal", "dx12", "gl"}
)

// Register registers a platform factory under name, replacing any previous
// registration. Backends call it from init functions.
func Register(name string, factory PlatformFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a platform from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered platform names in enumeration order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return orderedNames()
}

// orderedNames must be called with registryMu held.
func orderedNames() []string {
	names := make([]string, 0, len(factories))
	for _, name := range platformPriority {
		if _, ok := factories[name]; ok {
			names = append(names, name)
		}
	}
	var rest []string
	for name := range factories {
		if !slices.Contains(platformPriority, name) {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	return append(names, rest...)
}

// Platforms instantiates every registered platform in enumeration order,
// skipping factories that return nil. The order is deterministic, so the
// flat device index from List is stable across runs.
func Platforms() []Platform {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var out []Platform
	for _, name := range orderedNames() {
		if p := factories[name](); p != nil {
			out = append(out, p)
		} else {
			marcher.Logger().Debug("device: platform unavailable", "platform", name)
		}
	}
	return out
}
