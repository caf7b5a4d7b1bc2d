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

package predicate

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/bittoy/predylogic/trace"
)

// CallOption configures one evaluation of a predicate tree.
type CallOption func(*callConfig)

type callConfig struct {
	trace        bool
	shortCircuit bool
	failSkip     []error
}

func newCallConfig(opts ...CallOption) callConfig {
	cfg := callConfig{shortCircuit: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithTrace requests a trace.Trace result describing how the predicate
// reached its answer. Only meaningful for CallTrace; Call ignores it.
func WithTrace() CallOption {
	return func(c *callConfig) { c.trace = true }
}

// WithShortCircuit controls whether And/Or stop evaluating children as soon
// as the result is determined. Defaults to true; pass false to force every
// child to run (useful when leaves have side effects that must all occur).
func WithShortCircuit(on bool) CallOption {
	return func(c *callConfig) { c.shortCircuit = on }
}

// WithFailSkip names errors that, when returned by a leaf, are treated as
// "could not decide" rather than propagated: the leaf's contextual fallback
// value (true under And, false under Or, flipped under each Not, false at
// the root) is substituted and evaluation continues. Matching is via
// errors.Is against each target.
func WithFailSkip(targets ...error) CallOption {
	return func(c *callConfig) { c.failSkip = append(c.failSkip, targets...) }
}

// modeKey identifies one compiled evaluator variant cached per node. Two
// calls with equivalent CallOptions share the same compiled evaluator.
type modeKey struct {
	trace        bool
	shortCircuit bool
	failSkip     string
}

func keyFor(cfg callConfig) modeKey {
	return modeKey{trace: cfg.trace, shortCircuit: cfg.shortCircuit, failSkip: canonicalFailSkip(cfg.failSkip)}
}

func canonicalFailSkip(errs []error) string {
	if len(errs) == 0 {
		return ""
	}
	names := make([]string, len(errs))
	for i, e := range errs {
		names[i] = e.Error()
	}
	sort.Strings(names)
	return strings.Join(names, "\x00")
}

func matchesFailSkip(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

type boolEvaluator func(ctx any) (bool, error)
type traceEvaluator func(ctx any) (trace.Trace, error)

// Call evaluates the predicate rooted at p, compiling and caching the
// evaluator for this option set on first use.
func (l *leafNode) Call(ctx any, opts ...CallOption) (bool, error) {
	return callBool(l, newCallConfig(opts...), ctx)
}
func (a *andNode) Call(ctx any, opts ...CallOption) (bool, error) {
	return callBool(a, newCallConfig(opts...), ctx)
}
func (o *orNode) Call(ctx any, opts ...CallOption) (bool, error) {
	return callBool(o, newCallConfig(opts...), ctx)
}
func (n *notNode) Call(ctx any, opts ...CallOption) (bool, error) {
	return callBool(n, newCallConfig(opts...), ctx)
}

func (l *leafNode) CallTrace(ctx any, opts ...CallOption) (trace.Trace, error) {
	return callTrace(l, newCallConfig(opts...), ctx)
}
func (a *andNode) CallTrace(ctx any, opts ...CallOption) (trace.Trace, error) {
	return callTrace(a, newCallConfig(opts...), ctx)
}
func (o *orNode) CallTrace(ctx any, opts ...CallOption) (trace.Trace, error) {
	return callTrace(o, newCallConfig(opts...), ctx)
}
func (n *notNode) CallTrace(ctx any, opts ...CallOption) (trace.Trace, error) {
	return callTrace(n, newCallConfig(opts...), ctx)
}

func callBool(p Predicate, cfg callConfig, ctx any) (bool, error) {
	cfg.trace = false
	key := keyFor(cfg)
	if v, ok := p.cache().Load(key); ok {
		return v.(boolEvaluator)(ctx)
	}
	c := newCompiler(cfg)
	ev := c.compileBool(p, false)
	actual, _ := p.cache().LoadOrStore(key, ev)
	return actual.(boolEvaluator)(ctx)
}

func callTrace(p Predicate, cfg callConfig, ctx any) (trace.Trace, error) {
	cfg.trace = true
	key := keyFor(cfg)
	if v, ok := p.cache().Load(key); ok {
		return v.(traceEvaluator)(ctx)
	}
	c := newCompiler(cfg)
	ev := c.compileTrace(p, false)
	actual, _ := p.cache().LoadOrStore(key, ev)
	return actual.(traceEvaluator)(ctx)
}

// compiler holds the state of a single compile pass: the evaluation-mode
// options, and a leaf-memoisation cache keyed by (leaf identity, fallback).
// This cache is distinct from each node's own compiled-as-root cache: it
// exists only for the duration of one compile and lets the same leaf,
// reached twice within one tree under the same fallback, share one
// compiled evaluator instead of being compiled twice.
type compiler struct {
	cfg       callConfig
	boolLeafs map[leafKey]boolEvaluator
	traceLeaf map[leafKey]traceEvaluator
}

type leafKey struct {
	node     *leafNode
	fallback bool
}

func newCompiler(cfg callConfig) *compiler {
	return &compiler{
		cfg:       cfg,
		boolLeafs: make(map[leafKey]boolEvaluator),
		traceLeaf: make(map[leafKey]traceEvaluator),
	}
}

// --- bool-mode compilation ---------------------------------------------

// compileBool builds a bool-returning evaluator for root. Chains of
// same-kind And/Or nodes are collected by flattenSameKind with an explicit
// work-stack, so such chains compile without growing the Go call stack;
// nesting that alternates kinds (And under Or, any Not) is lowered by
// recursive calls, one Go stack frame per level.
func (c *compiler) compileBool(root Predicate, rootFallback bool) boolEvaluator {
	var build func(p Predicate, fallback bool) boolEvaluator
	build = func(p Predicate, fallback bool) boolEvaluator {
		switch n := p.(type) {
		case *leafNode:
			return c.compileLeafBool(n, fallback)
		case *andNode:
			children := flattenSameKind(n.children, KindAnd)
			evs := make([]boolEvaluator, len(children))
			for i, ch := range children {
				evs[i] = build(ch, true)
			}
			return processBinaryBool(evs, true, c.cfg.shortCircuit)
		case *orNode:
			children := flattenSameKind(n.children, KindOr)
			evs := make([]boolEvaluator, len(children))
			for i, ch := range children {
				evs[i] = build(ch, false)
			}
			return processBinaryBool(evs, false, c.cfg.shortCircuit)
		case *notNode:
			inner := build(n.child, !fallback)
			return processNotBool(inner)
		default:
			panic("predicate: unknown node kind")
		}
	}
	return build(root, rootFallback)
}

// flattenSameKind walks p's same-kind chain (an And whose immediate children
// may themselves be And, etc. — though And()/Or() already flatten at
// construction time, a manifest-built tree via AllOf/AnyOf may still nest)
// using an explicit stack, collecting leaves of the chain in left-to-right
// evaluation order.
func flattenSameKind(children []Predicate, kind Kind) []Predicate {
	out := make([]Predicate, 0, len(children))
	stack := make([]Predicate, len(children))
	copy(stack, children)
	// reverse so we pop in original left-to-right order
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		var sameKindChildren []Predicate
		switch kind {
		case KindAnd:
			if an, ok := top.(*andNode); ok {
				sameKindChildren = an.children
			}
		case KindOr:
			if on, ok := top.(*orNode); ok {
				sameKindChildren = on.children
			}
		}
		if sameKindChildren != nil {
			for i := len(sameKindChildren) - 1; i >= 0; i-- {
				stack = append(stack, sameKindChildren[i])
			}
			continue
		}
		out = append(out, top)
	}
	return out
}

func (c *compiler) compileLeafBool(l *leafNode, fallback bool) boolEvaluator {
	key := leafKey{node: l, fallback: fallback}
	if ev, ok := c.boolLeafs[key]; ok {
		return ev
	}
	failSkip := c.cfg.failSkip
	fn := l.fn
	var ev boolEvaluator
	if len(failSkip) == 0 {
		ev = func(ctx any) (bool, error) { return fn(ctx) }
	} else {
		ev = func(ctx any) (bool, error) {
			ok, err := fn(ctx)
			if err != nil {
				if matchesFailSkip(err, failSkip) {
					return fallback, nil
				}
				return false, err
			}
			return ok, nil
		}
	}
	c.boolLeafs[key] = ev
	return ev
}

// processBinaryBool builds the evaluator for an n-ary And (identity=true) or
// Or (identity=false) over already-compiled child evaluators.
func processBinaryBool(children []boolEvaluator, identity bool, shortCircuit bool) boolEvaluator {
	return func(ctx any) (bool, error) {
		result := identity
		for _, child := range children {
			v, err := child(ctx)
			if err != nil {
				return false, err
			}
			if identity {
				result = result && v
			} else {
				result = result || v
			}
			if shortCircuit && v == !identity {
				return result, nil
			}
		}
		return result, nil
	}
}

func processNotBool(inner boolEvaluator) boolEvaluator {
	return func(ctx any) (bool, error) {
		v, err := inner(ctx)
		if err != nil {
			return false, err
		}
		return !v, nil
	}
}

// --- trace-mode compilation ----------------------------------------------

func (c *compiler) compileTrace(root Predicate, rootFallback bool) traceEvaluator {
	var build func(p Predicate, fallback bool) traceEvaluator
	build = func(p Predicate, fallback bool) traceEvaluator {
		switch n := p.(type) {
		case *leafNode:
			return c.compileLeafTrace(n, fallback)
		case *andNode:
			children := flattenSameKind(n.children, KindAnd)
			evs := make([]traceEvaluator, len(children))
			for i, ch := range children {
				evs[i] = build(ch, true)
			}
			return processBinaryTrace(evs, trace.OpAnd, c.cfg.shortCircuit)
		case *orNode:
			children := flattenSameKind(n.children, KindOr)
			evs := make([]traceEvaluator, len(children))
			for i, ch := range children {
				evs[i] = build(ch, false)
			}
			return processBinaryTrace(evs, trace.OpOr, c.cfg.shortCircuit)
		case *notNode:
			inner := build(n.child, !fallback)
			return processNotTrace(inner)
		default:
			panic("predicate: unknown node kind")
		}
	}
	return build(root, rootFallback)
}

func (c *compiler) compileLeafTrace(l *leafNode, fallback bool) traceEvaluator {
	key := leafKey{node: l, fallback: fallback}
	if ev, ok := c.traceLeaf[key]; ok {
		return ev
	}
	failSkip := c.cfg.failSkip
	fn := l.fn
	ev := func(ctx any) (trace.Trace, error) {
		start := time.Now()
		ok, err := fn(ctx)
		elapsed := time.Since(start)
		if err != nil {
			if len(failSkip) > 0 && matchesFailSkip(err, failSkip) {
				return trace.Trace{
					Success:  fallback,
					Operator: trace.OpSkip,
					Node:     l,
					Desc:     l.desc,
					Err:      err,
					Elapsed:  elapsed,
				}, nil
			}
			return trace.Trace{}, err
		}
		return trace.Trace{
			Success:  ok,
			Operator: trace.OpLeaf,
			Node:     l,
			Desc:     l.desc,
			Value:    ok,
			Elapsed:  elapsed,
		}, nil
	}
	c.traceLeaf[key] = ev
	return ev
}

// processBinaryTrace evaluates children in order and records the trace of
// every child that ran, so a Trace is a faithful record of what ran; with
// shortCircuit on it skips the remaining children once the result is
// determined, mirroring the original compiler's _rt_and/_rt_or runtime
// helpers operating on lazy thunks.
func processBinaryTrace(children []traceEvaluator, op trace.Operator, shortCircuit bool) traceEvaluator {
	identity := op == trace.OpAnd
	return func(ctx any) (trace.Trace, error) {
		var childTraces []trace.Trace
		result := identity
		for _, child := range children {
			t, err := child(ctx)
			if err != nil {
				return trace.Trace{}, err
			}
			childTraces = append(childTraces, t)
			if identity {
				result = result && t.Success
			} else {
				result = result || t.Success
			}
			if shortCircuit && t.Success == !identity {
				break
			}
		}
		return trace.Trace{
			Success:  result,
			Operator: op,
			Children: childTraces,
		}, nil
	}
}

func processNotTrace(inner traceEvaluator) traceEvaluator {
	return func(ctx any) (trace.Trace, error) {
		t, err := inner(ctx)
		if err != nil {
			return trace.Trace{}, err
		}
		return trace.Trace{
			Success:  !t.Success,
			Operator: trace.OpNot,
			Children: []trace.Trace{t},
		}, nil
	}
}
