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

// Package trace defines the result carrier produced by trace-mode predicate
// evaluation: a pure, immutable value composable with the same algebraic
// laws (AND/OR/NOT) as the predicates that produced it.
package trace

import (
	"fmt"
	"strings"
	"time"
)

// Operator identifies what kind of node in the predicate tree produced a Trace.
type Operator string

const (
	OpLeaf     Operator = "leaf"
	OpAnd      Operator = "and"
	OpOr       Operator = "or"
	OpNot      Operator = "not"
	OpSkip     Operator = "SKIP"
	OpPureBool Operator = "PURE_BOOL"
)

// Node is the minimal view of a predicate a Trace needs to reference back to
// its origin without the trace package importing predicate (which would
// create an import cycle, since predicate emits Trace values).
type Node interface {
	Desc() string
	Name() string
}

// Trace records the execution of a single predicate node evaluation. Traces
// are pure values: combining two Traces with And, Or or Invert never mutates
// either operand, it returns a new Trace whose children hold the operands.
type Trace struct {
	Success  bool
	Operator Operator
	Children []Trace

	Node  Node
	Desc  string
	Value any
	Err   error

	Elapsed time.Duration

	style Style
}

// Style renders a Trace into a human-readable string. The core only
// guarantees the Trace data structure; rendering is a pluggable strategy
// supplied by the host.
type Style interface {
	Render(t Trace, level int) string
}

// defaultStyle is a minimal indented-tree renderer used when no Style has
// been attached to a Trace.
type defaultStyle struct{}

func (defaultStyle) Render(t Trace, level int) string {
	var b strings.Builder
	renderIndented(&b, t, level)
	return b.String()
}

func renderIndented(b *strings.Builder, t Trace, level int) {
	fmt.Fprintf(b, "%s%s success=%v", strings.Repeat("  ", level), t.Operator, t.Success)
	if t.Err != nil {
		fmt.Fprintf(b, " err=%v", t.Err)
	}
	b.WriteByte('\n')
	for _, c := range t.Children {
		renderIndented(b, c, level+1)
	}
}

// WithStyle returns a copy of t that renders using style.
func (t Trace) WithStyle(style Style) Trace {
	t.style = style
	return t
}

// Bool reports the trace's boolean outcome, mirroring the host Predicate's
// plain-bool evaluation mode.
func (t Trace) Bool() bool {
	return t.Success
}

// String renders the trace using its attached Style, or defaultStyle.
func (t Trace) String() string {
	style := t.style
	if style == nil {
		style = defaultStyle{}
	}
	return style.Render(t, 0)
}

// And combines two traces with the boolean law of AND: the result succeeds
// iff both operands succeed. The elapsed time of the combination is the sum
// of both operands' elapsed time.
func (t Trace) And(other Trace) Trace {
	return Trace{
		Success:  t.Success && other.Success,
		Operator: OpAnd,
		Children: []Trace{t, other},
		Elapsed:  t.Elapsed + other.Elapsed,
	}
}

// Or combines two traces with the boolean law of OR.
func (t Trace) Or(other Trace) Trace {
	return Trace{
		Success:  t.Success || other.Success,
		Operator: OpOr,
		Children: []Trace{t, other},
		Elapsed:  t.Elapsed + other.Elapsed,
	}
}

// Invert negates a trace, preserving elapsed time and wrapping it as a child
// of a new NOT-operator trace.
func (t Trace) Invert() Trace {
	return Trace{
		Success:  !t.Success,
		Operator: OpNot,
		Children: []Trace{t},
		Elapsed:  t.Elapsed,
	}
}

// FromBool wraps a plain boolean as a leaf-less "pure" trace, used when an
// AND/OR combinator is given a raw bool instead of a Trace operand.
func FromBool(v bool) Trace {
	return Trace{Success: v, Operator: OpPureBool}
}
