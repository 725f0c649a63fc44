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
	"fmt"
	"testing"

	"github.com/cloudwego/matchopt/matcher"
	"github.com/cloudwego/matchopt/oracle"
	"github.com/cloudwego/matchopt/trace"
	"github.com/stretchr/testify/require"
)

func TestContract_FusionBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		child int
		test  func() matcher.Matcher
		fused func() matcher.Matcher
	}{
		{"Record", 7, func() matcher.Matcher { return matcher.NewRecord("x", 0) }, func() matcher.Matcher { return matcher.NewRecordChild(7, "x", 0) }},
		{"Record", 8, func() matcher.Matcher { return matcher.NewRecord("x", 0) }, nil},
		{"CheckType", 7, func() matcher.Matcher { return matcher.NewCheckType(matcher.I32, 0) }, func() matcher.Matcher { return matcher.NewCheckChildType(7, matcher.I32) }},
		{"CheckType", 8, func() matcher.Matcher { return matcher.NewCheckType(matcher.I32, 0) }, nil},
		{"CheckTypeRes1", 0, func() matcher.Matcher { return matcher.NewCheckType(matcher.I32, 1) }, nil},
		{"CheckSame", 3, func() matcher.Matcher { return matcher.NewCheckSame(0) }, func() matcher.Matcher { return matcher.NewCheckChildSame(3, 0) }},
		{"CheckSame", 4, func() matcher.Matcher { return matcher.NewCheckSame(0) }, nil},
		{"CheckInteger", 4, func() matcher.Matcher { return matcher.NewCheckInteger(1) }, func() matcher.Matcher { return matcher.NewCheckChildInteger(4, 1) }},
		{"CheckInteger", 5, func() matcher.Matcher { return matcher.NewCheckInteger(1) }, nil},
		{"CheckCondCode", 1, func() matcher.Matcher { return matcher.NewCheckCondCode("SETEQ") }, nil},
		{"CheckCondCode", 2, func() matcher.Matcher { return matcher.NewCheckCondCode("SETEQ") }, func() matcher.Matcher { return matcher.NewCheckChild2CondCode("SETEQ") }},
		{"CheckCondCode", 3, func() matcher.Matcher { return matcher.NewCheckCondCode("SETEQ") }, nil},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%s/%d", tc.name, tc.child), func(t *testing.T) {
			build := func() matcher.Matcher {
				return matcher.Chain(matcher.NewMoveChild(tc.child), tc.test(), matcher.NewMoveParent(), complete(pat1))
			}
			got := contractOnly(build())
			if tc.fused != nil {
				requireSame(t, matcher.Chain(tc.fused(), complete(pat1)), got)
			} else {
				requireSame(t, build(), got)
			}
		})
	}
}

func TestContract_MoveChildSurvivesFusion(t *testing.T) {
	m := matcher.Chain(
		matcher.NewMoveChild(1),
		matcher.NewRecord("x", 0),
		matcher.NewCheckPredicate("hasOneUse"),
		matcher.NewMoveParent(),
		complete(pat1, 0),
	)
	expect := matcher.Chain(
		matcher.NewRecordChild(1, "x", 0),
		matcher.NewMoveChild(1),
		matcher.NewCheckPredicate("hasOneUse"),
		matcher.NewMoveParent(),
		complete(pat1, 0),
	)
	requireSame(t, expect, contractOnly(m))
}

func TestContract_CursorNoOps(t *testing.T) {
	m := matcher.Chain(matcher.NewMoveChild(3), matcher.NewMoveParent())
	require.Nil(t, contractOnly(m))

	/* a sibling round trip inside a child visit disappears completely */
	m = matcher.Chain(matcher.NewMoveChild(1), matcher.NewMoveSibling(2), matcher.NewMoveParent())
	require.Nil(t, contractOnly(m))

	/* the sibling move itself is dropped */
	m = matcher.Chain(matcher.NewMoveChild(0), matcher.NewCheckPredicate("p"), matcher.NewMoveSibling(2), matcher.NewMoveParent(), complete(pat1))
	expect := matcher.Chain(matcher.NewMoveChild(0), matcher.NewCheckPredicate("p"), matcher.NewMoveParent(), complete(pat1))
	requireSame(t, expect, contractOnly(m))
}

func TestContract_MoveSibling(t *testing.T) {
	m := matcher.Chain(
		matcher.NewMoveChild(0),
		matcher.NewCheckPredicate("p"),
		matcher.NewMoveParent(),
		matcher.NewMoveChild(1),
		matcher.NewCheckPredicate("q"),
		complete(pat1),
	)
	expect := matcher.Chain(
		matcher.NewMoveChild(0),
		matcher.NewCheckPredicate("p"),
		matcher.NewMoveSibling(1),
		matcher.NewCheckPredicate("q"),
		complete(pat1),
	)
	requireSame(t, expect, contractOnly(m))
}

func TestContract_SiblingUncontraction(t *testing.T) {
	tests := []struct {
		name    string
		sibling int
		body    func() []matcher.Matcher
		fused   func() []matcher.Matcher
	}{
		{
			name:    "Record",
			sibling: 1,
			body:    func() []matcher.Matcher { return []matcher.Matcher{matcher.NewRecord("x", 0)} },
			fused:   func() []matcher.Matcher { return []matcher.Matcher{matcher.NewRecordChild(1, "x", 0)} },
		},
		{
			name:    "RecordCheckType",
			sibling: 2,
			body: func() []matcher.Matcher {
				return []matcher.Matcher{matcher.NewRecord("x", 0), matcher.NewCheckType(matcher.I32, 0)}
			},
			fused: func() []matcher.Matcher {
				return []matcher.Matcher{matcher.NewRecordChild(2, "x", 0), matcher.NewCheckChildType(2, matcher.I32)}
			},
		},
		{
			name:    "CheckIntegerCheckType",
			sibling: 3,
			body: func() []matcher.Matcher {
				return []matcher.Matcher{matcher.NewCheckInteger(5), matcher.NewCheckType(matcher.I64, 0)}
			},
			fused: func() []matcher.Matcher {
				return []matcher.Matcher{matcher.NewCheckChildInteger(3, 5), matcher.NewCheckChildType(3, matcher.I64)}
			},
		},
		{
			name:    "CheckSame",
			sibling: 1,
			body:    func() []matcher.Matcher { return []matcher.Matcher{matcher.NewCheckSame(0)} },
			fused:   func() []matcher.Matcher { return []matcher.Matcher{matcher.NewCheckChildSame(1, 0)} },
		},
		{
			name:    "CheckCondCode",
			sibling: 2,
			body:    func() []matcher.Matcher { return []matcher.Matcher{matcher.NewCheckCondCode("SETLT")} },
			fused:   func() []matcher.Matcher { return []matcher.Matcher{matcher.NewCheckChild2CondCode("SETLT")} },
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			nodes := []matcher.Matcher{matcher.NewMoveChild(0), matcher.NewCheckPredicate("p"), matcher.NewMoveParent(), matcher.NewMoveChild(tc.sibling)}
			nodes = append(nodes, tc.body()...)
			nodes = append(nodes, matcher.NewMoveParent(), complete(pat1))

			/* the sibling visit turns into child checks on the parent */
			expect := []matcher.Matcher{matcher.NewMoveChild(0), matcher.NewCheckPredicate("p"), matcher.NewMoveParent()}
			expect = append(expect, tc.fused()...)
			expect = append(expect, complete(pat1))
			requireSame(t, matcher.Chain(expect...), contractOnly(matcher.Chain(nodes...)))
		})
	}
}

func TestContract_RecordOpcodeSwap(t *testing.T) {
	m := matcher.Chain(matcher.NewRecord("x", 0), matcher.NewCheckOpcode(opAdd), complete(pat1, 0))
	expect := matcher.Chain(matcher.NewCheckOpcode(opAdd), matcher.NewRecord("x", 0), complete(pat1, 0))
	requireSame(t, expect, contractOnly(m))
}

func TestContract_MorphNodeTo(t *testing.T) {
	info := matcher.EmitInfo{Instruction: "ADD32rr", VTs: []matcher.ValueType{matcher.I32}, Operands: []int{0}}
	emit := func(info matcher.EmitInfo, p *matcher.Pattern, results ...int) matcher.Matcher {
		return matcher.Chain(matcher.NewRecord("x", 0), matcher.NewEmitNode(info, 1), complete(p, results...))
	}

	/* results line up with the emitted node */
	got := contractOnly(emit(info, pat1, 1))
	require.Equal(t, []matcher.Kind{matcher.KindRecord, matcher.KindMorphNodeTo}, kinds(got))
	morph := got.Next().(*matcher.MorphNodeToMatcher)
	require.Equal(t, 1, morph.NumResults)
	require.Equal(t, pat1, morph.Pattern)
	require.Equal(t, "ADD32rr", morph.Instruction)

	/* results refer to something else */
	got = contractOnly(emit(info, pat1, 0))
	require.Equal(t, []matcher.Kind{matcher.KindRecord, matcher.KindEmitNode, matcher.KindCompleteMatch}, kinds(got))

	/* more results than the node produces */
	got = contractOnly(emit(info, pat1, 1, 2))
	require.Equal(t, []matcher.Kind{matcher.KindRecord, matcher.KindEmitNode, matcher.KindCompleteMatch}, kinds(got))

	/* the pattern needs a chain, but the node has none */
	got = contractOnly(emit(info, patL, 1))
	require.Equal(t, []matcher.Kind{matcher.KindRecord, matcher.KindEmitNode, matcher.KindCompleteMatch}, kinds(got))

	/* the node has the chain */
	chained := info
	chained.HasChain = true
	got = contractOnly(emit(chained, patL, 1))
	require.Equal(t, []matcher.Kind{matcher.KindRecord, matcher.KindMorphNodeTo}, kinds(got))
}

func TestContract_MorphNodeToOracle(t *testing.T) {
	info := matcher.EmitInfo{Instruction: "ADD32rr", VTs: []matcher.ValueType{matcher.I32}}
	tab := oracle.NewTable(oracle.Inferred{})
	tab.Set(pat1.Name, matcher.OutGlue)

	/* the table says the pattern produces glue */
	o := testOptions(trace.Discard)
	o.Factor = false
	o.Oracle = tab
	got := Optimize(matcher.Chain(matcher.NewEmitNode(info, 0), complete(pat1, 0)), o)
	require.Equal(t, []matcher.Kind{matcher.KindEmitNode, matcher.KindCompleteMatch}, kinds(got))

	/* and the node has the glue */
	info.HasOutGlue = true
	got = Optimize(matcher.Chain(matcher.NewEmitNode(info, 0), complete(pat1, 0)), o)
	require.Equal(t, []matcher.Kind{matcher.KindMorphNodeTo}, kinds(got))
}

func TestContract_Scopes(t *testing.T) {
	m := matcher.NewScope(
		matcher.Chain(matcher.NewMoveChild(0), matcher.NewRecord("x", 0), matcher.NewMoveParent(), complete(pat1, 0)),
		matcher.Chain(matcher.NewRecord("y", 0), matcher.NewCheckOpcode(opSub), complete(pat2, 0)),
	)
	expect := matcher.NewScope(
		matcher.Chain(matcher.NewRecordChild(0, "x", 0), complete(pat1, 0)),
		matcher.Chain(matcher.NewCheckOpcode(opSub), matcher.NewRecord("y", 0), complete(pat2, 0)),
	)
	requireSame(t, expect, contractOnly(m))
}

func TestContract_Idempotent(t *testing.T) {
	build := func() matcher.Matcher {
		return matcher.Chain(
			matcher.NewRecord("root", 0),
			matcher.NewCheckOpcode(opAdd),
			matcher.NewMoveChild(0),
			matcher.NewRecord("lhs", 1),
			matcher.NewCheckType(matcher.I32, 0),
			matcher.NewMoveParent(),
			matcher.NewMoveChild(1),
			matcher.NewCheckInteger(4),
			matcher.NewMoveParent(),
			matcher.NewScope(
				matcher.Chain(matcher.NewMoveChild(2), matcher.NewCheckCondCode("SETEQ"), matcher.NewMoveParent(), complete(pat1, 1)),
				matcher.Chain(matcher.NewMoveChild(2), matcher.NewMoveParent(), complete(pat2, 0)),
			),
		)
	}
	once := contractOnly(build())
	twice := contractOnly(contractOnly(build()))
	require.Equal(t, matcher.Fingerprint(once), matcher.Fingerprint(twice))

	/* nothing fires on the second run */
	c := trace.NewCounter()
	o := testOptions(c)
	o.Factor = false
	Optimize(once, o)
	require.Empty(t, c.Rules())
}

func TestContract_TraceRules(t *testing.T) {
	c := trace.NewCounter()
	o := testOptions(c)
	o.Factor = false
	Optimize(matcher.Chain(matcher.NewRecord("x", 0), matcher.NewCheckOpcode(opAdd), matcher.NewMoveChild(1), matcher.NewMoveParent(), complete(pat1, 0)), o)
	require.Equal(t, 1, c.Rule("Record+CheckOpcode"))
	require.Equal(t, 1, c.Rule("MoveChild+MoveParent"))
	require.Equal(t, 1, c.Count(trace.Reorder))
	require.Equal(t, 1, c.Count(trace.Eliminate))
	require.Equal(t, 1, c.Count(trace.PassBegin))
	require.Equal(t, 1, c.Count(trace.PassEnd))
}
