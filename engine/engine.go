/*
 * Copyright 2024 The RuleGo Authors.
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

// Package engine hosts RuleEngine, the hot-swappable home for compiled
// rules: it resolves manifest.RuleSetManifest trees against a
// register.Manager into predicate.Predicate values and publishes them
// behind per-rule PredicateHandles.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bittoy/predylogic"
	"github.com/bittoy/predylogic/errs"
	"github.com/bittoy/predylogic/manifest"
	"github.com/bittoy/predylogic/predicate"
	"github.com/bittoy/predylogic/register"
)

// RuleEngine holds every PredicateHandle it has ever handed out and the
// register.Manager rules are compiled against. Handles are never removed:
// a rule dropped from a later manifest keeps serving its last published
// predicate (see DESIGN.md's Open Question resolution), and a rule never
// published at all serves RuleRevokedError through its tombstone handle.
type RuleEngine struct {
	mgr    *register.Manager
	config predylogic.Config

	mu      sync.RWMutex
	handles map[manifest.Key]*PredicateHandle
}

// Option configures a RuleEngine at construction time.
type Option func(*RuleEngine) error

// WithConfig overrides the engine's ambient Config (logger, properties).
func WithConfig(c predylogic.Config) Option {
	return func(e *RuleEngine) error {
		e.config = c
		return nil
	}
}

// New builds a RuleEngine over mgr, the register.Manager that resolves
// manifest leaf nodes to producers.
func New(mgr *register.Manager, opts ...Option) *RuleEngine {
	e := &RuleEngine{
		mgr:     mgr,
		config:  predylogic.NewConfig(),
		handles: make(map[manifest.Key]*PredicateHandle),
	}
	for _, opt := range opts {
		_ = opt(e)
	}
	return e
}

// GetPredicateHandle returns the single PredicateHandle for (registry,
// rule), creating a tombstone handle on first access if no manifest has
// ever published that rule. The same *PredicateHandle is returned for the
// same key for the engine's whole lifetime.
func (e *RuleEngine) GetPredicateHandle(registryName, ruleName string) *PredicateHandle {
	key := manifest.Key{Registry: registryName, Rule: ruleName}

	e.mu.RLock()
	h, ok := e.handles[key]
	e.mu.RUnlock()
	if ok {
		return h
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if h, ok := e.handles[key]; ok {
		return h
	}
	h = newTombstoneHandle(key)
	e.handles[key] = h
	return h
}

type compiledRule struct {
	key  manifest.Key
	pred predicate.Predicate
}

// UpdateManifests validates, compiles and publishes every rule in ms.
// Validation and compilation happen outside the publish lock — manifests
// are validated for ref cycles, then every rule's tree is compiled against
// the register.Manager concurrently via errgroup, and only the final
// publish step (swapping each rule's PredicateHandle) takes the write
// lock, matching the broader pattern of parsing and building outside a
// lock and only swapping the published state under it.
func (e *RuleEngine) UpdateManifests(ms ...*manifest.RuleSetManifest) error {
	start := time.Now()
	err := e.updateManifests(ms)
	status := "ok"
	if err != nil {
		status = "error"
		e.config.Logger.Printf("UpdateManifests failed: %v", err)
	} else {
		e.config.Logger.Printf("UpdateManifests published %d manifest(s)", len(ms))
	}
	manifestUpdatesTotal.WithLabelValues(status).Inc()
	manifestUpdateDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	return err
}

func (e *RuleEngine) updateManifests(ms []*manifest.RuleSetManifest) error {
	for _, m := range ms {
		if err := m.Validate(); err != nil {
			return err
		}
	}

	var mu sync.Mutex
	var compiled []compiledRule

	g, _ := errgroup.WithContext(context.Background())
	for _, m := range ms {
		m := m
		for ruleID, node := range m.Rules {
			ruleID, node := ruleID, node
			g.Go(func() error {
				p, err := e.compileNode(node, m.Registry)
				if err != nil {
					return fmt.Errorf("rule %s/%s: %w", m.Registry, ruleID, err)
				}
				mu.Lock()
				compiled = append(compiled, compiledRule{
					key:  manifest.Key{Registry: m.Registry, Rule: ruleID},
					pred: p,
				})
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range compiled {
		h, ok := e.handles[c.key]
		if !ok {
			h = newTombstoneHandle(c.key)
			e.handles[c.key] = h
		}
		h.update(c.pred)
	}
	return nil
}

// compileNode lowers one manifest.LogicNode into a predicate.Predicate.
// registryName is the manifest's single registry: every leaf and ref in the
// tree resolves against it. Ref nodes compile to a leaf that calls through
// GetPredicateHandle, so a ref always observes whatever the target rule's
// handle currently holds, including later hot-swaps — it is never resolved
// to a fixed snapshot.
func (e *RuleEngine) compileNode(node manifest.LogicNode, registryName string) (predicate.Predicate, error) {
	switch node.Type {
	case manifest.NodeLeaf:
		return e.compileLeaf(node.Rule, registryName)
	case manifest.NodeAnd:
		children, err := e.compileChildren(node.Children, registryName)
		if err != nil {
			return nil, err
		}
		return predicate.AllOf(children)
	case manifest.NodeOr:
		children, err := e.compileChildren(node.Children, registryName)
		if err != nil {
			return nil, err
		}
		return predicate.AnyOf(children)
	case manifest.NodeNot:
		if node.Child == nil {
			return nil, errs.NewInvalidArgument("not node missing child")
		}
		child, err := e.compileNode(*node.Child, registryName)
		if err != nil {
			return nil, err
		}
		return predicate.Not(child), nil
	case manifest.NodeRef:
		handle := e.GetPredicateHandle(registryName, node.RefID)
		return predicate.Leaf(func(ctx any) (bool, error) {
			return handle.Invoke(ctx)
		}, predicate.WithName(node.RefID), predicate.WithDesc(fmt.Sprintf("ref:%s/%s", registryName, node.RefID))), nil
	default:
		return nil, errs.NewInvalidArgument(fmt.Sprintf("unknown node type %q", node.Type))
	}
}

func (e *RuleEngine) compileChildren(nodes []manifest.LogicNode, registryName string) ([]predicate.Predicate, error) {
	out := make([]predicate.Predicate, len(nodes))
	for i, n := range nodes {
		p, err := e.compileNode(n, registryName)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func (e *RuleEngine) compileLeaf(rule manifest.RuleRef, registryName string) (predicate.Predicate, error) {
	reg, err := e.mgr.Get(registryName)
	if err != nil {
		return nil, err
	}
	producer, err := reg.Get(rule.RuleDefName)
	if err != nil {
		return nil, err
	}
	params, err := manifest.BindParams(rule.Params, producer.ParamsType)
	if err != nil {
		return nil, err
	}
	p, err := producer.Build(params)
	if err != nil {
		return nil, err
	}
	return p, nil
}
