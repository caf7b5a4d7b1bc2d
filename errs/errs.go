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

// Package errs holds the typed error taxonomy shared by predicate, register,
// manifest and engine. Centralising it here instead of one errs.go
// per package avoids an import cycle: engine needs to raise register- and
// manifest-flavoured errors without register/manifest needing to import
// engine.
package errs

import (
	"fmt"
	"strings"
)

// InvalidArgumentError is returned by predicate.AllOf / predicate.AnyOf when
// given an empty sequence, and by the engine for a malformed manifest node.
type InvalidArgumentError struct {
	Msg string
}

func (e *InvalidArgumentError) Error() string { return e.Msg }

func NewInvalidArgument(msg string) error {
	return &InvalidArgumentError{Msg: msg}
}

// RegistryNameConflictError is raised when two registries are added to the
// same manager under the same name.
type RegistryNameConflictError struct {
	Name string
}

func (e *RegistryNameConflictError) Error() string {
	return fmt.Sprintf("registry name %q is already in use", e.Name)
}

// RuleDefConflictError is raised when two producers are registered under the
// same name in one registry.
type RuleDefConflictError struct {
	Registry string
	Rule     string
}

func (e *RuleDefConflictError) Error() string {
	return fmt.Sprintf("rule definition %q is already registered in registry %q", e.Rule, e.Registry)
}

// RegistryNotFoundError is raised when a manifest references an unknown
// registry.
type RegistryNotFoundError struct {
	Registry string
}

func (e *RegistryNotFoundError) Error() string {
	return fmt.Sprintf("registry %q not found", e.Registry)
}

// RuleDefNotFoundError is raised when a manifest leaf references an unknown
// rule_def_name within an otherwise known registry.
type RuleDefNotFoundError struct {
	RuleDefName string
}

func (e *RuleDefNotFoundError) Error() string {
	return fmt.Sprintf("rule definition %q not found", e.RuleDefName)
}

// ManifestValidationError covers field type mismatches, missing required
// fields, unknown fields, and insufficient and/or children.
type ManifestValidationError struct {
	Path string
	Msg  string
}

func (e *ManifestValidationError) Error() string {
	if e.Path == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// RuleDefRingError is raised when ref edges in a manifest form a cycle.
type RuleDefRingError struct {
	Cycle []string
}

func (e *RuleDefRingError) Error() string {
	if len(e.Cycle) <= 1 {
		name := ""
		if len(e.Cycle) == 1 {
			name = e.Cycle[0]
		}
		return fmt.Sprintf("cycle detected: %s", name)
	}
	return fmt.Sprintf("cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// RuleRevokedError is raised by a tombstone predicate when invoked: the
// handle exists but no compiled predicate has ever been published for it.
type RuleRevokedError struct {
	Registry string
	Rule     string
}

func (e *RuleRevokedError) Error() string {
	return fmt.Sprintf("rule %q in registry %q revoked or missing", e.Rule, e.Registry)
}
