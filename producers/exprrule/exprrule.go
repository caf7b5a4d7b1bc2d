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

// Package exprrule turns an expr-lang boolean expression into a
// register.Producer, the scripted counterpart to a Go-native rule_def.
// Compilation happens once, at Build time, rather than on every call.
package exprrule

import (
	"fmt"
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/bittoy/predylogic/predicate"
	"github.com/bittoy/predylogic/register"
)

// Params is the manifest-level configuration for an expr rule def.
// Expr must evaluate to a boolean; the evaluation context supplied at
// Call time is exposed to the expression as its top-level environment.
type Params struct {
	Expr string `mapstructure:"expr"`
}

// Producer returns a register.Producer named name that compiles its
// Params.Expr into a predicate.Leaf. Register it into any registry the
// same way a Go-native producer would be registered.
func Producer(name string) *register.Producer {
	return &register.Producer{
		Name:       name,
		Desc:       "boolean expr-lang expression",
		ParamsType: reflect.TypeOf(Params{}),
		Build:      build,
	}
}

func build(params any) (predicate.Predicate, error) {
	p, ok := params.(Params)
	if !ok {
		return nil, fmt.Errorf("exprrule: expected Params, got %T", params)
	}
	program, err := expr.Compile(p.Expr, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("exprrule: compiling %q: %w", p.Expr, err)
	}
	return predicate.Leaf(func(ctx any) (bool, error) {
		out, err := vm.Run(program, ctx)
		if err != nil {
			return false, err
		}
		result, ok := out.(bool)
		if !ok {
			return false, fmt.Errorf("exprrule: expression %q did not evaluate to a bool", p.Expr)
		}
		return result, nil
	}, predicate.WithDesc(p.Expr)), nil
}
