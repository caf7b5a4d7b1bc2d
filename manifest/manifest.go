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

// Package manifest models the declarative, JSON-shaped description of a
// rule set: one registry's worth of named rules, each a tree of LogicNode
// variants (leaf/and/or/not/ref), validated for arity and reference cycles
// before it reaches the compiler.
package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/bittoy/predylogic/errs"
)

// NodeType discriminates the five LogicNode shapes a manifest can encode.
type NodeType string

const (
	NodeLeaf NodeType = "leaf"
	NodeAnd  NodeType = "and"
	NodeOr   NodeType = "or"
	NodeNot  NodeType = "not"
	NodeRef  NodeType = "ref"
)

// RuleRef is a leaf node's rule definition: the producer it names plus
// whatever parameters that producer expects, flattened alongside
// rule_def_name rather than nested under a separate params object.
type RuleRef struct {
	RuleDefName string
	Params      map[string]any
}

func (r *RuleRef) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	nameRaw, ok := raw["rule_def_name"]
	if !ok {
		return &errs.ManifestValidationError{Msg: "rule missing rule_def_name"}
	}
	if err := json.Unmarshal(nameRaw, &r.RuleDefName); err != nil {
		return &errs.ManifestValidationError{Path: "rule_def_name", Msg: err.Error()}
	}
	delete(raw, "rule_def_name")

	params := make(map[string]any, len(raw))
	for k, v := range raw {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return &errs.ManifestValidationError{Path: k, Msg: err.Error()}
		}
		params[k] = val
	}
	r.Params = params
	return nil
}

// LogicNode is the JSON-level discriminated union of predicate shapes.
// encoding/json has no native discriminated-union support, so LogicNode
// implements UnmarshalJSON by reading node_type first and validating the
// fields allowed for that variant, rejecting unrecognised ones by hand.
type LogicNode struct {
	Type NodeType

	// leaf
	Rule RuleRef

	// and / or
	Children []LogicNode

	// not
	Child *LogicNode

	// ref
	RefID string
}

// GetDependencies yields the rule IDs this node's ref edges point at,
// recursively, for cycle-detection over the whole manifest. A ref_id names
// a rule within the same manifest's registry.
func (n LogicNode) GetDependencies() []string {
	var deps []string
	var walk func(LogicNode)
	walk = func(node LogicNode) {
		switch node.Type {
		case NodeRef:
			deps = append(deps, node.RefID)
		case NodeAnd, NodeOr:
			for _, c := range node.Children {
				walk(c)
			}
		case NodeNot:
			if node.Child != nil {
				walk(*node.Child)
			}
		}
	}
	walk(n)
	return deps
}

var leafFields = map[string]bool{"node_type": true, "rule": true}
var andOrFields = map[string]bool{"node_type": true, "rules": true}
var notFields = map[string]bool{"node_type": true, "rule": true}
var refFields = map[string]bool{"node_type": true, "ref_id": true}

func (n *LogicNode) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	typeRaw, ok := raw["node_type"]
	if !ok {
		return &errs.ManifestValidationError{Msg: "logic node missing node_type"}
	}
	var nodeType NodeType
	if err := json.Unmarshal(typeRaw, &nodeType); err != nil {
		return &errs.ManifestValidationError{Msg: "node_type must be a string"}
	}

	var allowed map[string]bool
	switch nodeType {
	case NodeLeaf:
		allowed = leafFields
	case NodeAnd, NodeOr:
		allowed = andOrFields
	case NodeNot:
		allowed = notFields
	case NodeRef:
		allowed = refFields
	default:
		return &errs.ManifestValidationError{Msg: fmt.Sprintf("unknown node_type %q", nodeType)}
	}
	for key := range raw {
		if !allowed[key] {
			return &errs.ManifestValidationError{Msg: fmt.Sprintf("unexpected field %q for node_type %q", key, nodeType)}
		}
	}

	n.Type = nodeType
	switch nodeType {
	case NodeLeaf:
		if err := unmarshalField(raw, "rule", &n.Rule); err != nil {
			return err
		}
	case NodeAnd, NodeOr:
		if err := unmarshalField(raw, "rules", &n.Children); err != nil {
			return err
		}
		if len(n.Children) < 2 {
			return &errs.ManifestValidationError{Msg: fmt.Sprintf("%s requires at least 2 rules, got %d", nodeType, len(n.Children))}
		}
	case NodeNot:
		var child LogicNode
		if err := unmarshalField(raw, "rule", &child); err != nil {
			return err
		}
		n.Child = &child
	case NodeRef:
		if err := unmarshalField(raw, "ref_id", &n.RefID); err != nil {
			return err
		}
	}
	return nil
}

func unmarshalField(raw map[string]json.RawMessage, key string, dst any) error {
	v, ok := raw[key]
	if !ok {
		return &errs.ManifestValidationError{Msg: fmt.Sprintf("missing required field %q", key)}
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return &errs.ManifestValidationError{Path: key, Msg: err.Error()}
	}
	return nil
}

// RuleSetManifest is the top-level unit handed to engine.RuleEngine.
// UpdateManifests: one registry's rules, keyed by rule ID, each a LogicNode
// tree. Ref edges between rules in the map are validated together so
// cycles can be detected before any rule is compiled.
type RuleSetManifest struct {
	Registry string               `json:"registry"`
	Rules    map[string]LogicNode `json:"rules"`
}

// Key identifies a rule by (registry, name) for dependency graphs and
// handle lookups.
type Key struct {
	Registry string
	Rule     string
}
