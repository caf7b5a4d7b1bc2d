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

// Package schema derives a machine-readable description of every producer
// registered in a register.Registry, for use by manifest authors and
// editor tooling. Producers carry their parameter shape as a struct type
// (register.Producer.ParamsType); this package walks that struct's fields
// with fatih/structs to describe each one's name, kind and default value.
package schema

import (
	"reflect"

	"github.com/fatih/structs"

	"github.com/bittoy/predylogic/register"
)

// FieldSpec describes one parameter a producer accepts.
type FieldSpec struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Required bool   `json:"required"`
	Default  any    `json:"default,omitempty"`
}

// RuleDefSchema describes one producer registered in a registry.
type RuleDefSchema struct {
	Name   string      `json:"name"`
	Desc   string      `json:"desc,omitempty"`
	Fields []FieldSpec `json:"fields"`

	// XParamsOrder lists Fields' names in declaration order, under the
	// x-params-order key, for tooling that renders a manifest authoring
	// form and needs parameter order preserved independent of Fields'
	// JSON array order.
	XParamsOrder []string `json:"x-params-order"`
}

// RegistrySchema describes every producer in one named registry.
type RegistrySchema struct {
	Registry string          `json:"registry"`
	RuleDefs []RuleDefSchema `json:"rule_defs"`
}

// ManifestSchema describes every registry known to a register.Manager,
// the unit handed to editor tooling for manifest authoring assistance.
type ManifestSchema struct {
	Registries []RegistrySchema `json:"registries"`
}

// Generator derives schemas from a live register.Manager.
type Generator struct {
	mgr *register.Manager
}

// NewGenerator builds a Generator over mgr.
func NewGenerator(mgr *register.Manager) *Generator {
	return &Generator{mgr: mgr}
}

// Generate walks every registry and every producer in mgr and derives a
// ManifestSchema. Producers whose ParamsType is nil get an empty Fields
// list rather than being skipped, so the schema still documents that the
// rule def takes no parameters.
func (g *Generator) Generate() (*ManifestSchema, error) {
	out := &ManifestSchema{}
	registries := g.mgr.Registries()

	for _, name := range g.mgr.Names() {
		reg := registries[name]
		rs := RegistrySchema{Registry: name}

		producers := reg.Producers()
		for _, rn := range reg.Names() {
			p := producers[rn]
			fields, order, err := fieldsFor(p.ParamsType)
			if err != nil {
				return nil, err
			}
			rs.RuleDefs = append(rs.RuleDefs, RuleDefSchema{
				Name:         p.Name,
				Desc:         p.Desc,
				Fields:       fields,
				XParamsOrder: order,
			})
		}
		out.Registries = append(out.Registries, rs)
	}
	return out, nil
}

// fieldsFor describes paramsType's fields in declaration order via
// fatih/structs, which walks a struct's fields the same order they were
// declared in — the Go analogue of a producer's parameter signature order.
// It returns that same order a second time as a bare name list for
// XParamsOrder.
func fieldsFor(paramsType reflect.Type) ([]FieldSpec, []string, error) {
	if paramsType == nil {
		return nil, nil, nil
	}
	zero := reflect.New(paramsType).Elem().Interface()
	s := structs.New(zero)
	var fields []FieldSpec
	var order []string
	for _, f := range s.Fields() {
		tag := f.Tag("mapstructure")
		if tag == "" {
			tag = f.Name()
		}
		fields = append(fields, FieldSpec{
			Name:     tag,
			Kind:     f.Kind().String(),
			Required: f.Kind().String() != "ptr",
			Default:  f.Value(),
		})
		order = append(order, tag)
	}
	return fields, order, nil
}
