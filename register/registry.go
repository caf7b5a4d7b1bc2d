/*
 * Copyright 2023 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package register holds named collections of rule producers: a Registry
// maps rule_def names to the Producer that builds their predicate.Predicate,
// and a Manager collects named Registries for one rule engine.
package register

import (
	"reflect"
	"sync"

	"github.com/bittoy/predylogic/errs"
	"github.com/bittoy/predylogic/predicate"
)

// BuildFunc constructs a predicate.Predicate from decoded rule parameters.
// params has the concrete type described by the Producer's ParamsType (or is
// nil if the producer takes none).
type BuildFunc func(params any) (predicate.Predicate, error)

// Producer is a named rule definition: given parameters of a
// known shape, it produces a predicate.Predicate. The parameter shape is
// carried explicitly as a reflect.Type rather than recovered from a
// function signature at registration time.
type Producer struct {
	Name string
	Desc string

	// ParamsType is the struct type rule parameters are decoded into via
	// mapstructure before Build is called. Nil means the producer takes no
	// parameters.
	ParamsType reflect.Type

	Build BuildFunc
}

// Registry is a named collection of Producers, guarded by a RWMutex: readers
// (schema generation, manifest compilation) take RLock, writers
// (Register/Unregister) take Lock.
type Registry struct {
	name      string
	mu        sync.RWMutex
	producers map[string]*Producer
	order     []string
}

func newRegistry(name string) *Registry {
	return &Registry{name: name, producers: make(map[string]*Producer)}
}

// Name returns the registry's name as given to Manager.NewRegistry.
func (r *Registry) Name() string { return r.name }

// Register adds a producer under its own Name. Registering two producers
// with the same name in one registry is a RuleDefConflictError.
func (r *Registry) Register(p *Producer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.producers[p.Name]; exists {
		return &errs.RuleDefConflictError{Registry: r.name, Rule: p.Name}
	}
	r.producers[p.Name] = p
	r.order = append(r.order, p.Name)
	return nil
}

// Unregister removes a producer by name. Unregistering a name that isn't
// present is a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.producers[name]; !exists {
		return
	}
	delete(r.producers, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get looks up a producer by name.
func (r *Registry) Get(name string) (*Producer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.producers[name]
	if !ok {
		return nil, &errs.RuleDefNotFoundError{RuleDefName: name}
	}
	return p, nil
}

// Producers returns a snapshot of every registered producer, keyed by name.
// Use Names for the registration order Producers' map iteration can't give
// you.
func (r *Registry) Producers() map[string]*Producer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*Producer, len(r.producers))
	for k, v := range r.producers {
		out[k] = v
	}
	return out
}

// Names returns every registered producer's name in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Manager collects named Registries for one rule engine instance.
type Manager struct {
	mu         sync.RWMutex
	registries map[string]*Registry
	order      []string
}

// NewManager creates an empty registry manager.
func NewManager() *Manager {
	return &Manager{registries: make(map[string]*Registry)}
}

// NewRegistry creates and adds a new, empty Registry under name. Adding two
// registries under the same name is a RegistryNameConflictError.
func (m *Manager) NewRegistry(name string) (*Registry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.registries[name]; exists {
		return nil, &errs.RegistryNameConflictError{Name: name}
	}
	r := newRegistry(name)
	m.registries[name] = r
	m.order = append(m.order, name)
	return r, nil
}

// Get looks up a registry by name.
func (m *Manager) Get(name string) (*Registry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.registries[name]
	if !ok {
		return nil, &errs.RegistryNotFoundError{Registry: name}
	}
	return r, nil
}

// Registries returns a snapshot of every registry in the manager, keyed by
// name. Use Names for the registration order Registries' map iteration
// can't give you.
func (m *Manager) Registries() map[string]*Registry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*Registry, len(m.registries))
	for k, v := range m.registries {
		out[k] = v
	}
	return out
}

// Names returns every registry's name in registration order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

var (
	defaultOnce sync.Once
	defaultMgr  *Manager
)

// Default returns a process-wide lazily-initialised Manager, for programs
// that want a single package-level registry. Prefer an explicit *Manager
// created with NewManager in library code; Default exists for small
// programs and examples that don't need per-instance isolation.
func Default() *Manager {
	defaultOnce.Do(func() { defaultMgr = NewManager() })
	return defaultMgr
}
