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

// Package jsrule turns a JavaScript predicate function into a
// register.Producer using goja: one goja.Runtime loads the script body and
// a named function is invoked via goja.AssertFunction. Unlike exprrule's
// stateless vm.Program, a goja.Runtime is not goroutine-safe, so each built
// predicate.Leaf owns its own Runtime and serialises concurrent calls into
// it with a mutex.
package jsrule

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/dop251/goja"

	"github.com/bittoy/predylogic/predicate"
	"github.com/bittoy/predylogic/register"
)

// Params is the manifest-level configuration for a jsrule rule def.
// Script must define a top-level function named FuncName that returns a
// boolean when called with the evaluation context as its single argument.
type Params struct {
	Script   string `mapstructure:"script"`
	FuncName string `mapstructure:"func_name"`
}

// Producer returns a register.Producer named name that loads Params.Script
// into a fresh goja.Runtime per build and wraps Params.FuncName as a
// predicate.Leaf.
func Producer(name string) *register.Producer {
	return &register.Producer{
		Name:       name,
		Desc:       "JavaScript predicate function",
		ParamsType: reflect.TypeOf(Params{}),
		Build:      build,
	}
}

func build(params any) (predicate.Predicate, error) {
	p, ok := params.(Params)
	if !ok {
		return nil, fmt.Errorf("jsrule: expected Params, got %T", params)
	}

	vm := goja.New()
	if _, err := vm.RunString(p.Script); err != nil {
		return nil, fmt.Errorf("jsrule: loading script: %w", err)
	}
	fn, ok := goja.AssertFunction(vm.Get(p.FuncName))
	if !ok {
		return nil, fmt.Errorf("jsrule: %s is not a function", p.FuncName)
	}

	var mu sync.Mutex
	return predicate.Leaf(func(ctx any) (bool, error) {
		mu.Lock()
		defer mu.Unlock()
		res, err := fn(goja.Undefined(), vm.ToValue(ctx))
		if err != nil {
			return false, err
		}
		b, ok := res.Export().(bool)
		if !ok {
			return false, errors.New("jsrule: " + p.FuncName + " did not return a bool")
		}
		return b, nil
	}, predicate.WithName(p.FuncName)), nil
}
