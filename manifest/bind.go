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
	"reflect"

	"github.com/bittoy/predylogic/errs"
	"github.com/mitchellh/mapstructure"
)

// BindParams decodes a leaf node's loosely-typed Params map into a value of
// paramsType, the shape a register.Producer declares it expects. A nil
// paramsType means the producer takes no parameters and params is ignored.
func BindParams(params map[string]any, paramsType reflect.Type) (any, error) {
	if paramsType == nil {
		return nil, nil
	}
	dst := reflect.New(paramsType).Interface()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		ErrorUnused:      true,
		WeaklyTypedInput: false,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, &errs.ManifestValidationError{Msg: err.Error()}
	}
	if err := decoder.Decode(params); err != nil {
		return nil, &errs.ManifestValidationError{Msg: err.Error()}
	}
	return reflect.ValueOf(dst).Elem().Interface(), nil
}
