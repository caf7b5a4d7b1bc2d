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

// Package predylogic holds the ambient configuration shared across the
// predicate/register/manifest/engine packages: logging and functional
// options.
package predylogic

import (
	"log"
	"os"
)

// Logger is the logging interface every package in this module accepts.
// It is intentionally minimal so the standard library's *log.Logger
// satisfies it without an adapter.
type Logger interface {
	Printf(format string, v ...any)
}

// DefaultLogger returns a Logger writing to stderr with a timestamp prefix.
func DefaultLogger() Logger {
	return log.New(os.Stderr, "[predylogic] ", log.LstdFlags)
}
