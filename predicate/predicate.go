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

// Package predicate implements the immutable, algebraic predicate IR
// (leaf/and/or/not) and the compiler that lowers it into specialised,
// per-mode evaluators.
//
// Predicate nodes are closed by construction: exactly four concrete kinds
// exist (leafNode, andNode, orNode, notNode), dispatched by a Kind() tag
// rather than virtual method dispatch, matching the tagged-variant model the
// language lacks natively.
package predicate

import (
	"reflect"
	"sync"

	"github.com/bittoy/predylogic/errs"
	"github.com/bittoy/predylogic/trace"
)

// Kind tags the four closed shapes a Predicate node can take.
type Kind int

const (
	KindLeaf Kind = iota
	KindAnd
	KindOr
	KindNot
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindNot:
		return "not"
	default:
		return "unknown"
	}
}

// LeafFunc is a host callable taking the opaque context and returning a
// boolean, or an error if it cannot decide. An error not matched by a call's
// fail_skip set propagates to the caller of Call/CallTrace.
type LeafFunc func(ctx any) (bool, error)

// Predicate is an immutable node in the predicate tree. The four concrete
// implementations (leaf, and, or, not) are unexported; callers build trees
// with Leaf, And, Or, Not, AllOf and AnyOf.
type Predicate interface {
	// Kind reports which of the four closed shapes this node is.
	Kind() Kind

	// Call evaluates the predicate as its own root and returns a plain
	// boolean. See CallOption for the available evaluation flags.
	Call(ctx any, opts ...CallOption) (bool, error)

	// CallTrace evaluates the predicate as its own root and returns a
	// Trace describing how the result was reached.
	CallTrace(ctx any, opts ...CallOption) (trace.Trace, error)

	// And returns a new predicate equivalent to "this AND other". Two And
	// nodes combined this way flatten into a single n-ary And.
	And(other Predicate) Predicate

	// Or returns a new predicate equivalent to "this OR other". Two Or
	// nodes combined this way flatten into a single n-ary Or.
	Or(other Predicate) Predicate

	// Not returns a new predicate equivalent to "NOT this".
	Not() Predicate

	// Equal reports whether other has the same content: same node kind
	// recursively, and for leaves, identical underlying function.
	// Descriptions and names are metadata and do not participate.
	Equal(other Predicate) bool

	cache() *sync.Map
}

// cacheable is embedded by every concrete node kind to provide the
// per-node, per-mode compiled-evaluator cache described in the data model:
// each predicate owns a mapping from (trace, short_circuit, fail_skip) to
// an evaluator, populated lazily and never invalidated.
type cacheable struct {
	evalCache sync.Map
}

func (c *cacheable) cache() *sync.Map { return &c.evalCache }

type leafNode struct {
	cacheable
	fn   LeafFunc
	desc string
	name string
}

type andNode struct {
	cacheable
	children []Predicate
}

type orNode struct {
	cacheable
	children []Predicate
}

type notNode struct {
	cacheable
	child Predicate
}

func (*leafNode) Kind() Kind { return KindLeaf }
func (*andNode) Kind() Kind  { return KindAnd }
func (*orNode) Kind() Kind   { return KindOr }
func (*notNode) Kind() Kind  { return KindNot }

// Desc returns the leaf's description, set via WithDesc. Only leaves carry
// metadata; And/Or/Not are structural.
func (l *leafNode) Desc() string { return l.desc }

// Name returns the leaf's name, set via WithName.
func (l *leafNode) Name() string { return l.name }

func (l *leafNode) And(other Predicate) Predicate { return And(l, other) }
func (a *andNode) And(other Predicate) Predicate  { return And(a, other) }
func (o *orNode) And(other Predicate) Predicate   { return And(o, other) }
func (n *notNode) And(other Predicate) Predicate  { return And(n, other) }

func (l *leafNode) Or(other Predicate) Predicate { return Or(l, other) }
func (a *andNode) Or(other Predicate) Predicate  { return Or(a, other) }
func (o *orNode) Or(other Predicate) Predicate   { return Or(o, other) }
func (n *notNode) Or(other Predicate) Predicate  { return Or(n, other) }

func (l *leafNode) Not() Predicate { return Not(l) }
func (a *andNode) Not() Predicate  { return Not(a) }
func (o *orNode) Not() Predicate   { return Not(o) }
func (n *notNode) Not() Predicate  { return Not(n) }

func (l *leafNode) Equal(other Predicate) bool { return equal(l, other) }
func (a *andNode) Equal(other Predicate) bool  { return equal(a, other) }
func (o *orNode) Equal(other Predicate) bool   { return equal(o, other) }
func (n *notNode) Equal(other Predicate) bool  { return equal(n, other) }

func equal(a, b Predicate) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case *leafNode:
		bv := b.(*leafNode)
		return reflect.ValueOf(av.fn).Pointer() == reflect.ValueOf(bv.fn).Pointer()
	case *andNode:
		bv := b.(*andNode)
		return equalChildren(av.children, bv.children)
	case *orNode:
		bv := b.(*orNode)
		return equalChildren(av.children, bv.children)
	case *notNode:
		bv := b.(*notNode)
		return equal(av.child, bv.child)
	default:
		return false
	}
}

func equalChildren(a, b []Predicate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// LeafOption configures metadata on a leaf created with Leaf.
type LeafOption func(*leafNode)

// WithDesc attaches a human-readable description to a leaf.
func WithDesc(desc string) LeafOption {
	return func(l *leafNode) { l.desc = desc }
}

// WithName attaches a name to a leaf, used for schema generation and trace
// rendering.
func WithName(name string) LeafOption {
	return func(l *leafNode) { l.name = name }
}

// Leaf wraps a host callable as a predicate leaf. The returned leaf node's
// own identity (not fn's behaviour, nor fn itself) is used as the
// compiler's memoisation key, so calling Leaf twice with "the same"
// function produces two leaves that the compiler will not consider
// identical.
func Leaf(fn LeafFunc, opts ...LeafOption) Predicate {
	l := &leafNode{fn: fn}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// And combines a and b with logical AND. If both are already And nodes, or
// one is, children are flattened into a single n-ary And rather than
// nesting — "And(a,b) & And(c,d)" becomes "And(a,b,c,d)".
func And(a, b Predicate) Predicate {
	aAnd, aIsAnd := a.(*andNode)
	bAnd, bIsAnd := b.(*andNode)
	switch {
	case aIsAnd && bIsAnd:
		return &andNode{children: concatPredicates(aAnd.children, bAnd.children)}
	case aIsAnd:
		return &andNode{children: append(append([]Predicate{}, aAnd.children...), b)}
	case bIsAnd:
		return &andNode{children: append(append([]Predicate{a}), bAnd.children...)}
	default:
		return &andNode{children: []Predicate{a, b}}
	}
}

// Or combines a and b with logical OR, flattening same-kind chains like And.
func Or(a, b Predicate) Predicate {
	aOr, aIsOr := a.(*orNode)
	bOr, bIsOr := b.(*orNode)
	switch {
	case aIsOr && bIsOr:
		return &orNode{children: concatPredicates(aOr.children, bOr.children)}
	case aIsOr:
		return &orNode{children: append(append([]Predicate{}, aOr.children...), b)}
	case bIsOr:
		return &orNode{children: append(append([]Predicate{a}), bOr.children...)}
	default:
		return &orNode{children: []Predicate{a, b}}
	}
}

// Not wraps any predicate in a logical negation. Not(Not(p)) is a distinct
// node from p: it evaluates to the same boolean, but as a trace it is
// preserved as two wrapping Not nodes rather than collapsed away.
func Not(p Predicate) Predicate {
	return &notNode{child: p}
}

func concatPredicates(a, b []Predicate) []Predicate {
	out := make([]Predicate, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// AllOf combines predicates with AND, without flattening: a singleton
// returns its sole element unchanged, and ps itself is never inspected for
// nested And nodes to flatten into. Empty input is an InvalidArgumentError.
func AllOf(ps []Predicate) (Predicate, error) {
	if len(ps) == 0 {
		return nil, errs.NewInvalidArgument("predicate: all_of requires at least one predicate")
	}
	if len(ps) == 1 {
		return ps[0], nil
	}
	return &andNode{children: append([]Predicate{}, ps...)}, nil
}

// AnyOf combines predicates with OR, following the same rules as AllOf.
func AnyOf(ps []Predicate) (Predicate, error) {
	if len(ps) == 0 {
		return nil, errs.NewInvalidArgument("predicate: any_of requires at least one predicate")
	}
	if len(ps) == 1 {
		return ps[0], nil
	}
	return &orNode{children: append([]Predicate{}, ps...)}, nil
}
