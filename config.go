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

package predylogic

// Config holds the settings shared by a RuleEngine instance: logging and a
// map of global string properties. The engine uses only Logger; no package
// in this module reads Properties, and manifest rule parameters are not
// resolved against it.
type Config struct {
	Logger     Logger
	Properties map[string]string
}

// NewConfig builds a Config with defaults applied, then runs opts over it.
func NewConfig(opts ...Option) Config {
	c := &Config{
		Logger:     DefaultLogger(),
		Properties: make(map[string]string),
	}
	for _, opt := range opts {
		_ = opt(c)
	}
	return *c
}
