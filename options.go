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

// Option configures a Config via the functional-options pattern.
type Option func(*Config) error

// WithLogger overrides the default stderr logger.
func WithLogger(l Logger) Option {
	return func(c *Config) error {
		c.Logger = l
		return nil
	}
}

// WithProperties sets the Config's global string properties. They are
// stored on the Config only; manifest rule parameters are not interpolated
// from them.
func WithProperties(props map[string]string) Option {
	return func(c *Config) error {
		c.Properties = props
		return nil
	}
}
