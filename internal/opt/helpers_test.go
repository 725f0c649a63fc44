/*
 * Copyright 2024 CloudWeGo Authors
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

package opt

import (
	"testing"

	"github.com/cloudwego/matchopt/internal/opts"
	"github.com/cloudwego/matchopt/matcher"
	"github.com/cloudwego/matchopt/oracle"
	"github.com/cloudwego/matchopt/trace"
	"github.com/stretchr/testify/require"
)

var (
	opAdd = &matcher.NodeInfo{Name: "add", EnumName: "ISD::ADD", NumResults: 1, Types: []matcher.ValueType{matcher.Other}}
	opSub = &matcher.NodeInfo{Name: "sub", EnumName: "ISD::SUB", NumResults: 1, Types: []matcher.ValueType{matcher.Other}}
	opMul = &matcher.NodeInfo{Name: "mul", EnumName: "ISD::MUL", NumResults: 1, Types: []matcher.ValueType{matcher.Other}}
	opLd  = &matcher.NodeInfo{Name: "ld", EnumName: "ISD::LOAD", NumResults: 2, Types: []matcher.ValueType{matcher.Other, matcher.Other}, Properties: matcher.HasChain}
)

var (
	pat1 = &matcher.Pattern{Name: "pat1", Source: opAdd, Complexity: 3}
	pat2 = &matcher.Pattern{Name: "pat2", Source: opSub, Complexity: 3}
	pat3 = &matcher.Pattern{Name: "pat3", Source: opMul, Complexity: 3}
	patL = &matcher.Pattern{Name: "patL", Source: opLd, Complexity: 5}
)

func testOptions(tr trace.Sink) opts.Options {
	return opts.Options{
		Contract: true,
		Factor:   true,
		Switches: true,
		Verify:   true,
		Oracle:   oracle.Inferred{},
		Tracer:   tr,
	}
}

func contractOnly(m matcher.Matcher) matcher.Matcher {
	o := testOptions(trace.Discard)
	o.Factor = false
	return Optimize(m, o)
}

func complete(p *matcher.Pattern, results ...int) *matcher.CompleteMatchMatcher {
	return matcher.NewCompleteMatch(results, p)
}

func requireSame(t *testing.T, expect matcher.Matcher, actual matcher.Matcher) {
	t.Helper()
	require.Equal(t, matcher.Format(expect), matcher.Format(actual))
}

func kinds(m matcher.Matcher) []matcher.Kind {
	var ret []matcher.Kind
	for ; m != nil; m = m.Next() {
		ret = append(ret, m.Kind())
	}
	return ret
}
