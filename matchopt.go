/*
 * Copyright 2022 CloudWeGo Authors
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

// Package matchopt optimizes the matcher programs that drive instruction
// selection: straight-line tests are contracted into compound nodes, and
// alternatives that share a prefix are factored into a decision tree.
package matchopt

import (
	"github.com/cloudwego/matchopt/internal/opt"
	"github.com/cloudwego/matchopt/internal/opts"
	"github.com/cloudwego/matchopt/internal/verify"
	"github.com/cloudwego/matchopt/matcher"
)

// Optimize rewrites the program rooted at m into an equivalent one, and
// returns its new root. m is consumed and must not be used afterwards.
func Optimize(m matcher.Matcher, options ...Option) matcher.Matcher {
	o := opts.GetDefaultOptions()
	for _, fn := range options {
		fn(&o)
	}
	return opt.Optimize(m, o)
}

// Verify checks the structural invariants of the program rooted at m.
// The returned error, if any, is an *InvariantError.
func Verify(m matcher.Matcher) error {
	return verify.Check(m)
}
