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
)

// Collapsing or merging a scope splices chains together, which can create
// new contraction windows and, once contracted, new factoring chances.
const (
	_MaxFactorRounds = 8
)

// Factor pulls common leading nodes out of the alternatives of every
// Scope, and turns scopes that dispatch on opcodes or types into switches.
type Factor struct{}

func (Factor) Apply(ctx *Context, mp *matcher.Matcher) {
	for i := 0; i < _MaxFactorRounds; i++ {
		fp := matcher.Fingerprint(*mp)
		factorNodes(ctx, mp)

		/* stop when a round finds nothing to factor */
		if matcher.Fingerprint(*mp) == fp {
			return
		}

		/* clean up the windows created by the splices */
		ctx.recontract(mp)
	}
}

// recontract cleans up a chain after a node has been unlinked from it,
// the removal may have made new contraction windows.
func (self *Context) recontract(mp *matcher.Matcher) {
	if self.contract {
		contractNodes(self, mp)
	}
}

func factorNodes(ctx *Context, mp *matcher.Matcher) {
	for {
		switch p := (*mp).(type) {
		case nil:
			return
		case *matcher.ScopeMatcher:
			factorScope(ctx, mp)
			return
		case *matcher.SwitchOpcodeMatcher:
			for i := range p.Cases {
				factorNodes(ctx, &p.Cases[i].Body)
			}
			return
		case *matcher.SwitchTypeMatcher:
			for i := range p.Cases {
				factorNodes(ctx, &p.Cases[i].Body)
			}
			return
		default:
			mp = matcher.NextPtr(p)
		}
	}
}

// flatten factors every child of sc, and inlines the children that are
// scopes themselves. Empty children can never match and are dropped.
func flatten(ctx *Context, sc *matcher.ScopeMatcher) []matcher.Matcher {
	opts := make([]matcher.Matcher, 0, sc.NumChildren())

	/* factor the children first */
	for i := 0; i < sc.NumChildren(); i++ {
		child := sc.TakeChild(i)
		factorNodes(ctx, &child)

		/* merge the nested scopes */
		if sub, ok := child.(*matcher.ScopeMatcher); ok {
			for j := 0; j < sub.NumChildren(); j++ {
				if c := sub.TakeChild(j); c != nil {
					opts = append(opts, c)
				}
			}
		} else if child != nil {
			opts = append(opts, child)
		}
	}
	return opts
}

func factorScope(ctx *Context, mp *matcher.Matcher) {
	sc := (*mp).(*matcher.ScopeMatcher)
	opts := flatten(ctx, sc)
	e := len(opts)

	/* merge the neighboring alternatives that start with the same node */
	for i := 0; i < e; i++ {
		j := i + 1
		if j == e {
			break
		}

		/* remember where we started, non-equal elements are moved here */
		k := j
		optn := opts[i]
		group := []matcher.Matcher{optn}

		/* all the known-equal alternatives after this one */
		for j < e && matcher.IsEqual(opts[j], optn) {
			group = append(group, opts[j])
			j++
		}

		/* look past the alternatives that can never both succeed */
		for j < e {
			sm := opts[j]

			/* it is equal after all */
			if matcher.IsEqual(optn, sm) {
				group = append(group, sm)
				j++
				continue
			}

			/* contradictory alternatives are free to move behind the group */
			if matcher.IsContradictory(optn, sm) {
				opts[k] = opts[j]
				k++
				j++
				continue
			}

			/* the same or a contradictory node may occur later in the chain */
			if matcher.IsSimplePredicateOrRecord(optn) {
				m2 := matcher.FindNodeWithKind(sm, optn.Kind())
				if m2 != nil && m2 != sm && matcher.CanMoveBefore(m2, sm) &&
					(matcher.IsEqual(m2, optn) || matcher.IsContradictory(m2, optn)) {
					rest := matcher.UnlinkNode(sm, m2)
					ctx.recontract(&rest)
					m2.SetNext(rest)
					opts[j] = m2
					ctx.emit(trace.Event{Kind: trace.Hoist, Node: m2.String(), Other: sm.String()})
					continue
				}
			}

			/* we don't know how to handle this entry */
			break
		}

		/* nothing could be merged past here */
		if j < e && j+1 < e {
			ctx.emit(trace.Event{Kind: trace.MergeFailed, Node: optn.String(), Other: opts[j].String(), Count: e - j})
		}

		/* slide the rest of the elements down */
		if j != k {
			n := copy(opts[k:e], opts[j:e])
			e = k + n
		}

		/* only one alternative starts with this node */
		if len(group) == 1 {
			opts[i] = group[0]
			continue
		}

		/* pull the first node off each alternative, reuse the first one */
		shared := optn
		rests := make([]matcher.Matcher, 0, len(group))
		for _, g := range group {
			if r := g.TakeNext(); r != nil {
				rests = append(rests, r)
			}
		}

		/* factor the new scope recursively */
		if len(rests) != 0 {
			shared.SetNext(matcher.NewScope(rests...))
			factorScope(ctx, matcher.NextPtr(shared))
		}

		/* put the shared node where we started */
		opts[i] = shared
		ctx.emit(trace.Event{Kind: trace.Merge, Node: shared.String(), Count: len(group)})
	}

	/* trim the alternatives to the updated end */
	opts = opts[:e]

	/* no need for the scope if it is down to a single alternative */
	switch len(opts) {
	case 0:
		*mp = nil
		ctx.emit(trace.Event{Kind: trace.Collapse, Node: "<null>"})
		return
	case 1:
		*mp = opts[0]
		ctx.emit(trace.Event{Kind: trace.Collapse, Node: opts[0].String()})
		return
	}

	/* try to turn the scope into a switch */
	if ctx.switches {
		if allOpcodeChecks(opts) {
			*mp = switchOnOpcode(ctx, opts)
			return
		}
		if allTypeChecks(opts) {
			*mp = switchOnType(ctx, opts)
			return
		}
	}

	/* reassemble the scope with the adjusted children */
	sc.SetNumChildren(len(opts))
	for i, m := range opts {
		sc.ResetChild(i, m)
	}
}

func allOpcodeChecks(opts []matcher.Matcher) bool {
	for _, m := range opts {
		if m.Kind() != matcher.KindCheckOpcode {
			return false
		}
	}
	return true
}

func allTypeChecks(opts []matcher.Matcher) bool {
	for _, m := range opts {
		ct, ok := matcher.FindNodeWithKind(m, matcher.KindCheckType).(*matcher.CheckTypeMatcher)

		/* IPTR could alias any other case, and switches only work on result 0 */
		if !ok || ct.ResNo != 0 || ct.Type == matcher.IPTR || ct.Type == matcher.Other {
			return false
		}

		/* the type check must be able to move to the front */
		if !matcher.CanMoveBefore(ct, m) {
			return false
		}
	}
	return true
}

func switchOnOpcode(ctx *Context, opts []matcher.Matcher) matcher.Matcher {
	seen := make(map[string]bool, len(opts))
	cases := make([]matcher.OpcodeCase, 0, len(opts))

	/* every opcode must have been merged into a single case */
	for _, m := range opts {
		co := m.(*matcher.CheckOpcodeMatcher)
		if seen[co.Opcode.EnumName] {
			panic(matcher.Invariantf(co, "duplicate opcode not factored: %s", co.Opcode.EnumName))
		}
		seen[co.Opcode.EnumName] = true

		/* a bare opcode check can never complete a match */
		if body := co.TakeNext(); body != nil {
			cases = append(cases, matcher.OpcodeCase{Opcode: co.Opcode, Body: body})
		}
	}

	/* build the switch */
	if len(cases) == 0 {
		return nil
	}
	ret := matcher.NewSwitchOpcode(cases)
	ctx.emit(trace.Event{Kind: trace.SwitchOpcode, Node: ret.String(), Count: len(cases)})
	return ret
}

func switchOnType(ctx *Context, opts []matcher.Matcher) matcher.Matcher {
	index := make(map[matcher.ValueType]int, len(opts))
	cases := make([]matcher.TypeCase, 0, len(opts))

	/* hoist the type check out of every alternative */
	for _, m := range opts {
		ct := matcher.FindNodeWithKind(m, matcher.KindCheckType).(*matcher.CheckTypeMatcher)
		rest := matcher.UnlinkNode(m, ct)
		ctx.recontract(&rest)

		/* a bare type check can never complete a match */
		if rest == nil {
			continue
		}

		/* first case of this type */
		i, ok := index[ct.Type]
		if !ok {
			index[ct.Type] = len(cases)
			cases = append(cases, matcher.TypeCase{Type: ct.Type, Body: rest})
			continue
		}

		/* duplicated types are factored as a scope */
		if sc, ok := cases[i].Body.(*matcher.ScopeMatcher); ok {
			n := sc.NumChildren()
			sc.SetNumChildren(n + 1)
			sc.ResetChild(n, rest)
		} else {
			cases[i].Body = matcher.NewScope(cases[i].Body, rest)
		}
	}

	/* factor the scopes we may have created */
	for i := range cases {
		if _, ok := cases[i].Body.(*matcher.ScopeMatcher); ok {
			factorScope(ctx, &cases[i].Body)
		}
	}

	/* drop the cases that can never match */
	n := 0
	for _, c := range cases {
		if c.Body != nil {
			cases[n] = c
			n++
		}
	}
	cases = cases[:n]

	/* build the switch, or a plain check if there is only one case */
	switch len(cases) {
	case 0:
		return nil
	case 1:
		ret := matcher.NewCheckType(cases[0].Type, 0)
		ret.SetNext(cases[0].Body)
		ctx.emit(trace.Event{Kind: trace.Collapse, Node: ret.String()})
		return ret
	default:
		ret := matcher.NewSwitchType(cases)
		ctx.emit(trace.Event{Kind: trace.SwitchType, Node: ret.String(), Count: len(cases)})
		return ret
	}
}
