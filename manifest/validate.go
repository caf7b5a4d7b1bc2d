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

package manifest

import (
	"sort"

	"github.com/bittoy/predylogic/errs"
)

// Validate checks that the ref graph among rules defined in this manifest
// has no cycle. A ref_id naming a rule not defined in this manifest is left
// for the engine to resolve later against its published handles — a
// manifest is allowed to reference rules compiled by an earlier
// UpdateManifests call in the same registry.
func (m *RuleSetManifest) Validate() error {
	defined := make(map[string]bool, len(m.Rules))
	for id := range m.Rules {
		defined[id] = true
	}

	edges := make(map[string][]string, len(m.Rules))
	for id, rule := range m.Rules {
		for _, dep := range rule.GetDependencies() {
			if defined[dep] {
				edges[id] = append(edges[id], dep)
			}
		}
	}

	return detectCycle(defined, edges)
}

// detectCycle runs Kahn's algorithm over the ref graph restricted to rule
// IDs defined in this manifest. A non-empty remainder after the algorithm
// terminates is a cycle, reported in a deterministic order.
func detectCycle(nodes map[string]bool, edges map[string][]string) error {
	indegree := make(map[string]int, len(nodes))
	for id := range nodes {
		indegree[id] = 0
	}
	for _, tos := range edges {
		for _, to := range tos {
			indegree[to]++
		}
	}

	var queue []string
	for id, d := range indegree {
		if d == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	visited := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		visited++
		var next []string
		for _, to := range edges[n] {
			indegree[to]--
			if indegree[to] == 0 {
				next = append(next, to)
			}
		}
		sort.Strings(next)
		queue = append(queue, next...)
	}

	if visited == len(nodes) {
		return nil
	}

	var remaining []string
	for id, d := range indegree {
		if d > 0 {
			remaining = append(remaining, id)
		}
	}
	sort.Strings(remaining)
	return &errs.RuleDefRingError{Cycle: remaining}
}
