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

// Package interp runs matcher programs against a DAG, so that programs
// can be compared by what they do rather than by how they look.
package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/matchopt/matcher"
)

// Input is what a matcher program runs on.
type Input struct {
	Root              *Node
	PatternPredicates map[string]bool
}

// Outcome is the observable result of running a program. Two programs
// are equivalent on an input when their outcomes are equal.
type Outcome struct {
	Matched bool
	Pattern string
	Results []string
	Effects []string
}

func (self Outcome) String() string {
	if !self.Matched {
		return "<no match>"
	} else {
		return fmt.Sprintf("%s => [%s] {%s}", self.Pattern, strings.Join(self.Results, ", "), strings.Join(self.Effects, "; "))
	}
}

// RuntimeError is returned when a program refers to a slot or a cursor
// position that does not exist.
type RuntimeError struct {
	Node   string
	Reason string
}

func (self *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at '%s': %s", self.Node, self.Reason)
}

type state struct {
	in      *Input
	path    []*Node
	slots   []string
	nodes   []*Node
	effects []string
	out     Outcome
	err     error
}

type snapshot struct {
	path    []*Node
	slots   int
	effects int
}

// Run executes the program rooted at m on in.
func Run(m matcher.Matcher, in *Input) (Outcome, error) {
	st := &state{
		in:   in,
		path: []*Node{in.Root},
	}

	/* execute the program */
	if st.exec(m) {
		return st.out, nil
	} else if st.err != nil {
		return Outcome{}, st.err
	} else {
		return Outcome{}, nil
	}
}

func (self *state) save() snapshot {
	return snapshot{
		path:    append([]*Node(nil), self.path...),
		slots:   len(self.slots),
		effects: len(self.effects),
	}
}

func (self *state) restore(s snapshot) {
	self.path = s.path
	self.slots = self.slots[:s.slots]
	self.nodes = self.nodes[:s.slots]
	self.effects = self.effects[:s.effects]
}

func (self *state) fail(m matcher.Matcher, format string, args ...interface{}) bool {
	self.err = &RuntimeError{Node: m.String(), Reason: fmt.Sprintf(format, args...)}
	return false
}

func (self *state) cur() *Node {
	return self.path[len(self.path)-1]
}

func (self *state) record(n *Node) {
	self.slots = append(self.slots, n.String())
	self.nodes = append(self.nodes, n)
}

func (self *state) value(text string) {
	self.slots = append(self.slots, text)
	self.nodes = append(self.nodes, nil)
}

func (self *state) isSame(m matcher.Matcher, n *Node, k int) (bool, bool) {
	if k < 0 || k >= len(self.nodes) {
		return false, self.fail(m, "slot %d is not recorded", k)
	} else {
		return self.nodes[k] == n, true
	}
}

func (self *state) operands(m matcher.Matcher, ops []int) ([]string, bool) {
	ret := make([]string, len(ops))
	for i, op := range ops {
		if op < 0 || op >= len(self.slots) {
			return nil, self.fail(m, "operand slot %d is not recorded", op)
		}
		ret[i] = self.slots[op]
	}
	return ret, true
}

// exec runs a chain, it only returns true if the chain completed a match.
func (self *state) exec(m matcher.Matcher) bool {
	for ; m != nil; m = m.Next() {
		switch p := m.(type) {
		case *matcher.ScopeMatcher:
			return self.execScope(p)
		case *matcher.SwitchOpcodeMatcher:
			return self.execSwitchOpcode(p)
		case *matcher.SwitchTypeMatcher:
			return self.execSwitchType(p)
		case *matcher.CompleteMatchMatcher:
			return self.complete(p)
		case *matcher.MorphNodeToMatcher:
			return self.morph(p)
		default:
			if !self.step(m) {
				return false
			}
		}
	}
	return false
}

func (self *state) execScope(p *matcher.ScopeMatcher) bool {
	for i := 0; i < p.NumChildren(); i++ {
		s := self.save()
		if self.exec(p.Child(i)) {
			return true
		}
		if self.err != nil {
			return false
		}
		self.restore(s)
	}
	return false
}

func (self *state) execSwitchOpcode(p *matcher.SwitchOpcodeMatcher) bool {
	op := self.cur().Opcode
	for _, c := range p.Cases {
		if c.Opcode.EnumName == op {
			return self.exec(c.Body)
		}
	}
	return false
}

func (self *state) execSwitchType(p *matcher.SwitchTypeMatcher) bool {
	for _, c := range p.Cases {
		if self.cur().HasType(0, c.Type) {
			return self.exec(c.Body)
		}
	}
	return false
}

func (self *state) complete(p *matcher.CompleteMatchMatcher) bool {
	res, ok := self.operands(p, p.Results)
	if !ok {
		return false
	}
	self.out = Outcome{
		Matched: true,
		Pattern: p.Pattern.Name,
		Results: res,
		Effects: append([]string(nil), self.effects...),
	}
	return true
}

func (self *state) morph(p *matcher.MorphNodeToMatcher) bool {
	label, ok := self.emit(p, &p.EmitInfo)
	if !ok {
		return false
	}

	/* the root takes over the results of the new node */
	res := make([]string, p.NumResults)
	for i := range res {
		res[i] = label + "#" + strconv.Itoa(i)
	}
	self.out = Outcome{
		Matched: true,
		Pattern: p.Pattern.Name,
		Results: res,
		Effects: append([]string(nil), self.effects...),
	}
	return true
}

// emit records the side effect of creating a new machine node, and
// returns its label.
func (self *state) emit(m matcher.Matcher, info *matcher.EmitInfo) (string, bool) {
	ops, ok := self.operands(m, info.Operands)
	if !ok {
		return "", false
	}

	/* flags are part of the identity of the new node */
	var flags []string
	if info.HasChain {
		flags = append(flags, "chain")
	}
	if info.HasInGlue {
		flags = append(flags, "inglue")
	}
	if info.HasOutGlue {
		flags = append(flags, "outglue")
	}
	if info.HasMemRefs {
		flags = append(flags, "mem")
	}

	/* build the label */
	label := fmt.Sprintf("%s(%s)%v{%s}/%d", info.Instruction, strings.Join(ops, ","), info.VTs, strings.Join(flags, ","), info.NumFixedArityOperands)
	self.effects = append(self.effects, "emit "+label)
	return label, true
}

// step runs a single test or action, and reports whether it succeeded.
func (self *state) step(m matcher.Matcher) bool {
	n := self.cur()
	switch p := m.(type) {
	case *matcher.MoveChildMatcher:
		self.path = append(self.path, n.Child(p.ChildNo))
		return true
	case *matcher.MoveParentMatcher:
		if len(self.path) == 1 {
			return self.fail(m, "cursor is at the root")
		}
		self.path = self.path[:len(self.path)-1]
		return true
	case *matcher.MoveSiblingMatcher:
		if len(self.path) == 1 {
			return self.fail(m, "cursor is at the root")
		}
		self.path[len(self.path)-1] = self.path[len(self.path)-2].Child(p.SiblingNo)
		return true
	case *matcher.RecordMatcher:
		self.record(n)
		return true
	case *matcher.RecordChildMatcher:
		self.record(n.Child(p.ChildNo))
		return true
	case *matcher.CheckSameMatcher:
		ok, _ := self.isSame(m, n, p.MatchNumber)
		return ok
	case *matcher.CheckChildSameMatcher:
		ok, _ := self.isSame(m, n.Child(p.ChildNo), p.MatchNumber)
		return ok
	case *matcher.CheckPatternPredicateMatcher:
		return self.in.PatternPredicates[p.Predicate]
	case *matcher.CheckPredicateMatcher:
		return n.Preds[p.Predicate]
	case *matcher.CheckOpcodeMatcher:
		return n.Opcode == p.Opcode.EnumName
	case *matcher.CheckTypeMatcher:
		return n.HasType(p.ResNo, p.Type)
	case *matcher.CheckChildTypeMatcher:
		return n.Child(p.ChildNo).HasType(0, p.Type)
	case *matcher.CheckIntegerMatcher:
		return n.Const && n.Value == p.Value
	case *matcher.CheckChildIntegerMatcher:
		c := n.Child(p.ChildNo)
		return c.Const && c.Value == p.Value
	case *matcher.CheckCondCodeMatcher:
		return n.CondCode != "" && n.CondCode == p.CondCode
	case *matcher.CheckChild2CondCodeMatcher:
		c := n.Child(2)
		return c.CondCode != "" && c.CondCode == p.CondCode
	case *matcher.CheckValueTypeMatcher:
		return n.VTName != "" && n.VTName == p.TypeName
	case *matcher.CheckAndImmMatcher:
		c := n.Child(1)
		return c.Const && c.Value == p.Value
	case *matcher.CheckOrImmMatcher:
		c := n.Child(1)
		return c.Const && c.Value == p.Value
	case *matcher.CheckImmAllOnesVMatcher:
		return n.AllOnes
	case *matcher.CheckImmAllZerosVMatcher:
		return n.AllZeros
	case *matcher.CheckFoldableChainNodeMatcher:
		return n.Foldable
	case *matcher.EmitIntegerMatcher:
		self.value(fmt.Sprintf("imm(%d:%s)", p.Value, p.Type))
		return true
	case *matcher.EmitRegisterMatcher:
		self.value(fmt.Sprintf("reg(%s:%s)", p.Reg, p.Type))
		return true
	case *matcher.EmitMergeInputChainsMatcher:
		ops, ok := self.operands(m, p.ChainNodes)
		if ok {
			self.effects = append(self.effects, "merge("+strings.Join(ops, ",")+")")
		}
		return ok
	case *matcher.EmitNodeMatcher:
		label, ok := self.emit(m, &p.EmitInfo)
		if !ok {
			return false
		}
		for i := range p.VTs {
			self.value(label + "#" + strconv.Itoa(i))
		}
		return true
	default:
		return self.fail(m, "cannot execute %s", m.Kind())
	}
}
