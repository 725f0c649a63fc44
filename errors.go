/*
 * Copyright 2021 ByteDance Inc.
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

package matchopt

import (
	"errors"

	"github.com/cloudwego/matchopt/matcher"
)

// InvariantError occures when a matcher program is structurally broken,
// either on input or, which is a bug, after an optimizer pass.
type InvariantError = matcher.InvariantError

// AsInvariantError extracts the invariant violation from a value recovered
// from a panic, or from an error returned by Verify.
func AsInvariantError(v interface{}) (*InvariantError, bool) {
	var ie *InvariantError
	if err, ok := v.(error); ok && errors.As(err, &ie) {
		return ie, true
	} else {
		return nil, false
	}
}
