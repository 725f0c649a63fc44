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

// Package verify checks the structural invariants of a matcher program.
package verify

import (
	"github.com/cloudwego/matchopt/matcher"
	"github.com/oleiade/lane"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

type checker struct {
	g   *simple.DirectedGraph
	ids map[matcher.Matcher]int64
	st  *lane.Stack
}

func newChecker() *checker {
	return &checker{
		g:   simple.NewDirectedGraph(),
		ids: make(map[matcher.Matcher]int64),
		st:  lane.NewStack(),
	}
}

func (self *checker) node(m matcher.Matcher) (int64, bool) {
	if id, ok := self.ids[m]; ok {
		return id, false
	}

	/* allocate a new graph node */
	id := int64(len(self.ids))
	self.ids[m] = id
	self.g.AddNode(simple.Node(id))
	return id, true
}

func (self *checker) link(from matcher.Matcher, to matcher.Matcher) error {
	if to == nil {
		return nil
	}

	/* a node can never be its own successor */
	if from == to {
		return matcher.Invariantf(from, "node refers to itself")
	}

	/* every node has exactly one owner */
	fid, _ := self.node(from)
	tid, fresh := self.node(to)
	if self.g.To(tid).Len() != 0 {
		return matcher.Invariantf(to, "node is shared by more than one parent")
	}

	/* add the edge, and visit the node if it is new */
	self.g.SetEdge(self.g.NewEdge(simple.Node(fid), simple.Node(tid)))
	if fresh {
		self.st.Push(to)
	}
	return nil
}

// Check verifies that the program rooted at m is a tree of exclusively
// owned nodes, and that every node is well-formed. It returns a
// *matcher.InvariantError describing the first violation found.
func Check(m matcher.Matcher) error {
	if m == nil {
		return nil
	}

	/* walk every reachable node */
	c := newChecker()
	c.node(m)
	c.st.Push(m)

	for !c.st.Empty() {
		p := c.st.Pop().(matcher.Matcher)
		if err := checkNode(p); err != nil {
			return err
		}

		/* visit the successors */
		for _, s := range successors(p) {
			if err := c.link(p, s); err != nil {
				return err
			}
		}
	}

	/* only a cycle through the root can get past the ownership checks */
	if _, err := topo.Sort(c.g); err != nil {
		return matcher.Invariantf(m, "program contains a cycle")
	}
	return nil
}

func successors(m matcher.Matcher) []matcher.Matcher {
	var ret []matcher.Matcher
	switch p := m.(type) {
	case *matcher.ScopeMatcher:
		for i := 0; i < p.NumChildren(); i++ {
			ret = append(ret, p.Child(i))
		}
	case *matcher.SwitchOpcodeMatcher:
		for _, c := range p.Cases {
			ret = append(ret, c.Body)
		}
	case *matcher.SwitchTypeMatcher:
		for _, c := range p.Cases {
			ret = append(ret, c.Body)
		}
	}
	return append(ret, m.Next())
}

func checkNode(m matcher.Matcher) error {
	switch p := m.(type) {
	case *matcher.ScopeMatcher:
		return checkScope(p)
	case *matcher.SwitchOpcodeMatcher:
		return checkSwitchOpcode(p)
	case *matcher.SwitchTypeMatcher:
		return checkSwitchType(p)
	case *matcher.RecordChildMatcher:
		return checkChildNo(m, p.ChildNo, matcher.MaxRecordChild)
	case *matcher.CheckChildTypeMatcher:
		return checkChildNo(m, p.ChildNo, matcher.MaxCheckChildType)
	case *matcher.CheckChildSameMatcher:
		return checkChildNo(m, p.ChildNo, matcher.MaxCheckChildSame)
	case *matcher.CheckChildIntegerMatcher:
		return checkChildNo(m, p.ChildNo, matcher.MaxCheckChildInteger)
	case *matcher.CheckOpcodeMatcher:
		if p.Opcode == nil {
			return matcher.Invariantf(m, "opcode check without an opcode")
		}
	case *matcher.MorphNodeToMatcher:
		if p.NumResults > len(p.VTs) {
			return matcher.Invariantf(m, "morphed node produces %d results, but only has %d types", p.NumResults, len(p.VTs))
		}
	}

	/* terminal nodes end the chain */
	if matcher.IsTerminal(m) && m.Next() != nil {
		return matcher.Invariantf(m, "terminal node has a successor")
	}
	return nil
}

func checkChildNo(m matcher.Matcher, childNo int, limit int) error {
	if childNo < 0 || childNo >= limit {
		return matcher.Invariantf(m, "child number %d out of range [0, %d)", childNo, limit)
	} else {
		return nil
	}
}

func checkScope(p *matcher.ScopeMatcher) error {
	if p.Next() != nil {
		return matcher.Invariantf(p, "scope must be the last node of its chain")
	} else {
		return nil
	}
}

func checkSwitchOpcode(p *matcher.SwitchOpcodeMatcher) error {
	seen := make(map[string]bool, len(p.Cases))

	/* switches are the last node of their chain */
	if p.Next() != nil {
		return matcher.Invariantf(p, "switch must be the last node of its chain")
	}

	/* opcodes are unique */
	for _, c := range p.Cases {
		if c.Opcode == nil {
			return matcher.Invariantf(p, "case without an opcode")
		}
		if seen[c.Opcode.EnumName] {
			return matcher.Invariantf(p, "duplicate case %s", c.Opcode.EnumName)
		}
		if c.Body == nil {
			return matcher.Invariantf(p, "case %s is empty", c.Opcode.EnumName)
		}
		seen[c.Opcode.EnumName] = true
	}
	return nil
}

func checkSwitchType(p *matcher.SwitchTypeMatcher) error {
	seen := make(map[matcher.ValueType]bool, len(p.Cases))

	/* switches are the last node of their chain */
	if p.Next() != nil {
		return matcher.Invariantf(p, "switch must be the last node of its chain")
	}

	/* types are unique and concrete */
	for _, c := range p.Cases {
		if c.Type == matcher.IPTR || c.Type == matcher.Other {
			return matcher.Invariantf(p, "case %s cannot be switched on", c.Type)
		}
		if seen[c.Type] {
			return matcher.Invariantf(p, "duplicate case %s", c.Type)
		}
		if c.Body == nil {
			return matcher.Invariantf(p, "case %s is empty", c.Type)
		}
		seen[c.Type] = true
	}
	return nil
}
