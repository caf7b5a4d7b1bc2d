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

package engine

import (
	"sync/atomic"

	"github.com/bittoy/predylogic/errs"
	"github.com/bittoy/predylogic/manifest"
	"github.com/bittoy/predylogic/predicate"
	"github.com/bittoy/predylogic/trace"
)

// predicateCell is the value a PredicateHandle atomically swaps. A handle
// with a nil Predicate and revoked=true is a tombstone: it exists so
// concurrent lookups get a stable object to call, but every call returns
// RuleRevokedError until a manifest publishes a real predicate for its key.
//
// Swapping the whole cell behind one pointer means readers never observe a
// half-updated value. Since Predicate is an interface (two words), it is
// wrapped in predicateCell so the swap goes through
// atomic.Pointer[predicateCell] rather than raw unsafe.Pointer arithmetic
// on the interface value itself.
type predicateCell struct {
	predicate predicate.Predicate
	revoked   bool
}

// PredicateHandle is a hot-swappable reference to one rule's compiled
// predicate. Exactly one PredicateHandle exists per (registry, rule) key
// for the lifetime of a RuleEngine: RuleEngine.GetPredicateHandle always
// returns the same *PredicateHandle for the same key, so callers may cache
// it and keep observing updates published by later UpdateManifests calls.
type PredicateHandle struct {
	key manifest.Key
	cell atomic.Pointer[predicateCell]
}

func newTombstoneHandle(key manifest.Key) *PredicateHandle {
	h := &PredicateHandle{key: key}
	h.cell.Store(&predicateCell{revoked: true})
	return h
}

// update atomically publishes a newly compiled predicate, making it visible
// to every caller already holding this handle.
func (h *PredicateHandle) update(p predicate.Predicate) {
	h.cell.Store(&predicateCell{predicate: p})
}

// Invoke evaluates the handle's current predicate in plain-bool mode.
// Calling Invoke on a handle whose rule has never been published returns
// RuleRevokedError.
func (h *PredicateHandle) Invoke(ctx any, opts ...predicate.CallOption) (bool, error) {
	cell := h.cell.Load()
	if cell.revoked {
		handleInvokesTotal.WithLabelValues(h.key.Registry, h.key.Rule, "revoked").Inc()
		return false, &errs.RuleRevokedError{Registry: h.key.Registry, Rule: h.key.Rule}
	}
	v, err := cell.predicate.Call(ctx, opts...)
	status := "ok"
	if err != nil {
		status = "error"
	}
	handleInvokesTotal.WithLabelValues(h.key.Registry, h.key.Rule, status).Inc()
	return v, err
}

// Trace evaluates the handle's current predicate in trace mode.
func (h *PredicateHandle) Trace(ctx any, opts ...predicate.CallOption) (trace.Trace, error) {
	cell := h.cell.Load()
	if cell.revoked {
		return trace.Trace{}, &errs.RuleRevokedError{Registry: h.key.Registry, Rule: h.key.Rule}
	}
	return cell.predicate.CallTrace(ctx, opts...)
}

// Registry returns the registry name this handle was obtained under.
func (h *PredicateHandle) Registry() string { return h.key.Registry }

// Rule returns the rule name this handle was obtained under.
func (h *PredicateHandle) Rule() string { return h.key.Rule }

// Revoked reports whether the handle currently has no published predicate.
func (h *PredicateHandle) Revoked() bool {
	return h.cell.Load().revoked
}
