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

package matchopt

import (
	"github.com/cloudwego/matchopt/internal/opts"
	"github.com/cloudwego/matchopt/matcher"
	"github.com/cloudwego/matchopt/trace"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithOracle sets the oracle that answers property questions about the
// patterns of the program.
//
// The default oracle infers the properties from the root node of the
// pattern.
func WithOracle(oracle matcher.PropertyOracle) Option {
	if oracle == nil {
		panic("matchopt: nil property oracle")
	} else {
		return func(o *opts.Options) { o.Oracle = oracle }
	}
}

// WithTracer sets the sink that receives the diagnostic events of the
// optimizer. A nil sink drops every event.
func WithTracer(sink trace.Sink) Option {
	if sink == nil {
		return func(o *opts.Options) { o.Tracer = trace.Discard }
	} else {
		return func(o *opts.Options) { o.Tracer = sink }
	}
}

// WithVerify enables checking the program invariants before the first and
// after every pass. A violation panics with an *InvariantError.
//
// This value can also be configured with the `MATCHOPT_VERIFY` environment
// variable.
func WithVerify(v bool) Option {
	return func(o *opts.Options) { o.Verify = v }
}

// WithContraction enables or disables the Local Contraction pass.
//
// The default value is true, unless `MATCHOPT_NO_CONTRACT` is set.
func WithContraction(v bool) Option {
	return func(o *opts.Options) { o.Contract = v }
}

// WithFactoring enables or disables the Global Factoring pass.
//
// The default value is true, unless `MATCHOPT_NO_FACTOR` is set.
func WithFactoring(v bool) Option {
	return func(o *opts.Options) { o.Factor = v }
}

// WithSwitches enables or disables building SwitchOpcode and SwitchType
// nodes while factoring. It has no effect when factoring is disabled.
//
// The default value is true, unless `MATCHOPT_NO_SWITCH` is set.
func WithSwitches(v bool) Option {
	return func(o *opts.Options) { o.Switches = v }
}

// SetVerify sets the default verification mode for all optimizer runs
// from now on.
//
// Returns the old opts.Verify value.
func SetVerify(v bool) bool {
	v, opts.Verify = opts.Verify, v
	return v
}
