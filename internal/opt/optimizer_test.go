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

	"github.com/cloudwego/matchopt/internal/interp"
	"github.com/cloudwego/matchopt/internal/randprog"
	"github.com/cloudwego/matchopt/matcher"
	"github.com/cloudwego/matchopt/trace"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

func representative() matcher.Matcher {
	return matcher.NewScope(
		matcher.Chain(
			matcher.NewRecord("root", 0),
			matcher.NewCheckOpcode(opAdd),
			matcher.NewMoveChild(0),
			matcher.NewRecord("lhs", 1),
			matcher.NewMoveParent(),
			matcher.NewMoveChild(1),
			matcher.NewCheckInteger(1),
			matcher.NewMoveParent(),
			matcher.NewCheckType(matcher.I32, 0),
			complete(pat1, 1),
		),
		matcher.Chain(
			matcher.NewRecord("root", 0),
			matcher.NewCheckOpcode(opAdd),
			matcher.NewMoveChild(0),
			matcher.NewRecord("lhs", 1),
			matcher.NewMoveParent(),
			matcher.NewCheckType(matcher.I64, 0),
			complete(pat2, 1),
		),
		matcher.Chain(
			matcher.NewCheckOpcode(opSub),
			matcher.NewRecord("root", 0),
			matcher.NewCheckPatternPredicate("HasSSE2"),
			matcher.NewEmitNode(matcher.EmitInfo{Instruction: "SUB32rr", VTs: []matcher.ValueType{matcher.I32}, Operands: []int{0}}, 1),
			complete(pat2, 1),
		),
		matcher.Chain(
			matcher.NewCheckPredicate("hasOneUse"),
			matcher.NewCheckOpcode(opMul),
			matcher.NewScope(
				matcher.Chain(matcher.NewCheckType(matcher.I32, 0), complete(pat3)),
				matcher.Chain(matcher.NewCheckType(matcher.I64, 0), complete(pat3)),
			),
		),
	)
}

func TestOptimize_Idempotent(t *testing.T) {
	once := Optimize(representative(), testOptions(trace.Discard))
	fp := matcher.Fingerprint(once)

	/* a second run finds nothing to do */
	c := trace.NewCounter()
	twice := Optimize(once, testOptions(c))
	require.Equal(t, fp, matcher.Fingerprint(twice), matcher.Format(twice))
	require.Empty(t, c.Rules())
	require.Equal(t, 0, c.Count(trace.Merge))
	require.Equal(t, 0, c.Count(trace.Hoist))
}

func TestOptimize_Shrinks(t *testing.T) {
	in := representative()
	size := matcher.Size(in)
	out := Optimize(in, testOptions(trace.Discard))
	require.Less(t, matcher.Size(out), size)
	require.Equal(t, matcher.KindSwitchOpcode, out.Kind(), matcher.Format(out))
}

func TestOptimize_CollapseRecontracts(t *testing.T) {
	build := func() matcher.Matcher {
		return matcher.Chain(
			matcher.NewRecord("root", 0),
			matcher.NewScope(
				matcher.Chain(matcher.NewCheckOpcode(opSub), complete(pat2, 0)),
				nil,
			),
		)
	}

	/* the collapsed scope puts the opcode check right behind the record */
	expect := matcher.Chain(matcher.NewCheckOpcode(opSub), matcher.NewRecord("root", 0), complete(pat2, 0))
	once := Optimize(build(), testOptions(trace.Discard))
	requireSame(t, expect, once)

	c := trace.NewCounter()
	requireSame(t, expect, Optimize(once, testOptions(c)))
	require.Empty(t, c.Rules())
}

func TestOptimize_IdempotentRandom(t *testing.T) {
	for seed := int64(1); seed <= 3000; seed++ {
		once := Optimize(randprog.New(seed, randprog.DefaultConfig).Program(), testOptions(trace.Discard))
		expect := matcher.Format(once)

		/* nothing is left for a second run */
		c := trace.NewCounter()
		twice := Optimize(once, testOptions(c))
		require.Equal(t, expect, matcher.Format(twice), "seed %d: %v", seed, c.Rules())
	}
}

func TestOptimize_PassEvents(t *testing.T) {
	var events []trace.Event
	o := testOptions(trace.Func(func(ev trace.Event) {
		if ev.Kind == trace.PassBegin || ev.Kind == trace.PassEnd {
			events = append(events, ev)
		}
	}))
	out := Optimize(representative(), o)
	require.Len(t, events, 4)
	require.Equal(t, "Local Contraction", events[0].Pass)
	require.Equal(t, "Global Factoring", events[3].Pass)
	require.Equal(t, events[1].Fingerprint, events[2].Fingerprint)
	require.Equal(t, matcher.Fingerprint(out), events[3].Fingerprint)
	require.Equal(t, matcher.Size(out), events[3].Count)
}

func TestOptimize_DisabledPasses(t *testing.T) {
	o := testOptions(trace.Discard)
	o.Contract = false
	o.Factor = false
	in := representative()
	expect := matcher.Format(in)
	require.Equal(t, expect, matcher.Format(Optimize(in, o)))
}

func TestOptimize_VerifyRejectsBrokenInput(t *testing.T) {
	shared := complete(pat1)
	m := matcher.NewScope(
		matcher.Chain(matcher.NewCheckPredicate("a"), shared),
		matcher.Chain(matcher.NewCheckPredicate("b"), shared),
	)
	require.Panics(t, func() { Optimize(m, testOptions(trace.Discard)) })
}

func TestOptimize_SemanticEquivalence(t *testing.T) {
	for seed := int64(1); seed <= 300; seed++ {
		orig := randprog.New(seed, randprog.DefaultConfig)
		prog := orig.Program()
		opt := Optimize(randprog.New(seed, randprog.DefaultConfig).Program(), testOptions(trace.Discard))

		/* both programs must agree on every input */
		for i := 0; i < 20; i++ {
			in := orig.Input()
			expect, err := interp.Run(prog, in)
			require.NoError(t, err)
			actual, err := interp.Run(opt, in)
			require.NoError(t, err)
			if !expect.Matched {
				require.False(t, actual.Matched)
				continue
			}
			require.Equal(t, expect, actual,
				"seed %d\noriginal:\n%s\noptimized:\n%s\ninput:\n%s",
				seed, matcher.Format(prog), matcher.Format(opt), spew.Sdump(in.PatternPredicates)+in.Root.Dump(),
			)
		}
	}
}
