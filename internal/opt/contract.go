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
	"github.com/cloudwego/matchopt/matcher"
	"github.com/cloudwego/matchopt/trace"
	"github.com/oleiade/lane"
)

// Every rewrite looks at no more than 4 nodes starting at the current one,
// so a rewrite can only complete a window that starts up to 3 nodes earlier.
const (
	_MaxLookBack = 3
)

// Contract turns multiple matcher node patterns like 'MoveChild+Record'
// into single compound nodes like 'RecordChild', and removes cursor moves
// that cancel out.
type Contract struct{}

func (Contract) Apply(ctx *Context, mp *matcher.Matcher) {
	contractNodes(ctx, mp)
}

func contractNodes(ctx *Context, mp *matcher.Matcher) {
	path := lane.NewStack()

	/* walk the chain, rewriting until a local fixpoint */
	for *mp != nil {
		switch p := (*mp).(type) {
		case *matcher.ScopeMatcher:
			for i := 0; i < p.NumChildren(); i++ {
				child := p.TakeChild(i)
				contractNodes(ctx, &child)
				p.ResetChild(i, child)
			}
			return
		case *matcher.SwitchOpcodeMatcher:
			for i := range p.Cases {
				contractNodes(ctx, &p.Cases[i].Body)
			}
			return
		case *matcher.SwitchTypeMatcher:
			for i := range p.Cases {
				contractNodes(ctx, &p.Cases[i].Body)
			}
			return
		}

		/* try to rewrite at the current position */
		ev, stop := contractAt(ctx, mp)
		if ev.Rule != "" {
			ctx.emit(ev)
			if stop {
				return
			}

			/* look back for windows that the rewrite completed */
			for i := 0; i < _MaxLookBack && !path.Empty(); i++ {
				mp = path.Pop().(*matcher.Matcher)
			}
			continue
		}

		/* no contractions were performed, go to next node */
		path.Push(mp)
		mp = matcher.NextPtr(*mp)
	}
}

// contractAt applies the first matching rule at *mp. stop is set when the
// rewrite terminated the chain.
func contractAt(ctx *Context, mp *matcher.Matcher) (ev trace.Event, stop bool) {
	switch n := (*mp).(type) {
	case *matcher.MoveChildMatcher:
		/* movechild N; foo      --> foochild N; movechild N */
		if fused := fuseChild(n.ChildNo, n.Next()); fused != nil {
			fused.SetNext(n)
			*mp = fused
			n.SetNext(n.Next().TakeNext())
			return trace.Event{Kind: trace.Fuse, Rule: "MoveChild+" + fused.Kind().String(), Node: fused.String()}, false
		}

		/* movechild N; moveparent --> (nothing) */
		if _, ok := n.Next().(*matcher.MoveParentMatcher); ok {
			*mp = n.TakeNext().TakeNext()
			return trace.Event{Kind: trace.Eliminate, Rule: "MoveChild+MoveParent", Node: n.String()}, false
		}

	case *matcher.MoveParentMatcher:
		/* moveparent; movechild N --> movesibling N */
		if mc, ok := n.Next().(*matcher.MoveChildMatcher); ok {
			ms := matcher.NewMoveSibling(mc.ChildNo)
			ms.SetNext(mc.TakeNext())
			*mp = ms
			return trace.Event{Kind: trace.Fuse, Rule: "MoveParent+MoveChild", Node: ms.String()}, false
		}

	case *matcher.MoveSiblingMatcher:
		/* movesibling N; foo [; checktype]; moveparent --> moveparent; foochild N [; checkchildtype N] */
		if mp2 := uncontractSibling(n); mp2 != nil {
			*mp = mp2
			return trace.Event{Kind: trace.Fuse, Rule: "MoveSibling+MoveParent", Node: mp2.Next().String()}, false
		}

		/* movesibling N; moveparent --> moveparent */
		if _, ok := n.Next().(*matcher.MoveParentMatcher); ok {
			*mp = n.TakeNext()
			return trace.Event{Kind: trace.Eliminate, Rule: "MoveSibling+MoveParent", Node: n.String()}, false
		}

	case *matcher.EmitNodeMatcher:
		/* emitnode; completematch --> morphnodeto */
		if cm, ok := n.Next().(*matcher.CompleteMatchMatcher); ok && canMorph(ctx, n, cm) {
			morph := matcher.NewMorphNodeTo(n.EmitInfo, len(cm.Results), cm.Pattern)
			*mp = morph
			return trace.Event{Kind: trace.Fuse, Rule: "EmitNode+CompleteMatch", Node: morph.String()}, true
		}

	case *matcher.RecordMatcher:
		/* record; checkopcode --> checkopcode; record
		 * structural checks go first, so that targets with many operations valid
		 * on multiple types can factor on the opcode */
		if co, ok := n.Next().(*matcher.CheckOpcodeMatcher); ok {
			tail := co.TakeNext()
			n.TakeNext()
			*mp = co
			co.SetNext(n)
			n.SetNext(tail)
			return trace.Event{Kind: trace.Reorder, Rule: "Record+CheckOpcode", Node: co.String()}, false
		}
	}
	return trace.Event{}, false
}

// fuseChild returns the 'foochild N' form of m, or nil if there is none.
func fuseChild(childNo int, m matcher.Matcher) matcher.Matcher {
	switch p := m.(type) {
	case *matcher.RecordMatcher:
		if childNo < matcher.MaxRecordChild {
			return matcher.NewRecordChild(childNo, p.WhatFor, p.ResultNo)
		}
	case *matcher.CheckTypeMatcher:
		if childNo < matcher.MaxCheckChildType && p.ResNo == 0 {
			return matcher.NewCheckChildType(childNo, p.Type)
		}
	case *matcher.CheckSameMatcher:
		if childNo < matcher.MaxCheckChildSame {
			return matcher.NewCheckChildSame(childNo, p.MatchNumber)
		}
	case *matcher.CheckIntegerMatcher:
		if childNo < matcher.MaxCheckChildInteger {
			return matcher.NewCheckChildInteger(childNo, p.Value)
		}
	case *matcher.CheckCondCodeMatcher:
		if childNo == matcher.CondCodeChild {
			return matcher.NewCheckChild2CondCode(p.CondCode)
		}
	}
	return nil
}

// uncontractSibling handles MoveSibling followed by one or two tests and a
// MoveParent. The sibling move is undone to form the child operations:
//
//	movesibling N; record; moveparent                --> moveparent; recordchild N
//	movesibling N; record; checktype; moveparent     --> moveparent; recordchild N; checkchildtype N
//	movesibling N; checktype; moveparent             --> moveparent; checkchildtype N
//	movesibling N; checkinteger; moveparent          --> moveparent; checkchildinteger N
//	movesibling N; checkinteger; checktype; moveparent --> moveparent; checkchildinteger N; checkchildtype N
//	movesibling 2; checkcondcode; moveparent         --> moveparent; checkchild2condcode
//	movesibling N; checksame; moveparent             --> moveparent; checkchildsame N
//	movesibling N; checksame; checktype; moveparent  --> moveparent; checkchildsame N; checkchildtype N
func uncontractSibling(ms *matcher.MoveSiblingMatcher) matcher.Matcher {
	t1 := ms.Next()
	f1 := fuseChild(ms.SiblingNo, t1)

	/* the first test must have a child form */
	if f1 == nil {
		return nil
	}

	/* single test */
	if mp, ok := t1.Next().(*matcher.MoveParentMatcher); ok {
		ret := matcher.NewMoveParent()
		matcher.Chain(ret, f1)
		f1.SetNext(mp.TakeNext())
		return ret
	}

	/* only record, checkinteger and checksame can be followed by a type check */
	switch t1.Kind() {
	case matcher.KindRecord, matcher.KindCheckInteger, matcher.KindCheckSame:
		break
	default:
		return nil
	}

	/* test; checktype; moveparent */
	t2, ok := t1.Next().(*matcher.CheckTypeMatcher)
	if !ok {
		return nil
	}
	mp, ok := t2.Next().(*matcher.MoveParentMatcher)
	if !ok {
		return nil
	}
	f2 := fuseChild(ms.SiblingNo, t2)
	if f2 == nil {
		return nil
	}

	/* build the new sequence */
	ret := matcher.NewMoveParent()
	matcher.Chain(ret, f1, f2)
	f2.SetNext(mp.TakeNext())
	return ret
}

// canMorph checks whether EmitNode+CompleteMatch can become MorphNodeTo.
func canMorph(ctx *Context, en *matcher.EmitNodeMatcher, cm *matcher.CompleteMatchMatcher) bool {
	if len(cm.Results) > len(en.VTs) {
		return false
	}

	/* the result values must line up with the emitted ones */
	for i, v := range cm.Results {
		if v != en.FirstResultSlot+i {
			return false
		}
	}

	/* the selected node must not define a subset of the chain results of
	 * the matched pattern, e.g. the pattern has a chain but the root doesn't */
	if !en.HasChain && ctx.oracle.PatternHasProperty(cm.Pattern, matcher.HasChain) {
		return false
	}

	/* same for glue */
	if !en.HasOutGlue && ctx.oracle.PatternHasProperty(cm.Pattern, matcher.OutGlue) {
		return false
	}
	return true
}
