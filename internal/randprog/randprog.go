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

// Package randprog generates random, well-formed matcher programs and
// random DAGs to run them on.
package randprog

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/cloudwego/matchopt/internal/interp"
	"github.com/cloudwego/matchopt/matcher"
	"github.com/oleiade/lane"
)

type Config struct {
	MaxNest    int
	MaxAlts    int
	MaxChain   int
	MaxCursor  int
	MaxDAG     int
	MaxPattern int
}

var DefaultConfig = Config{
	MaxNest:    3,
	MaxAlts:    4,
	MaxChain:   5,
	MaxCursor:  2,
	MaxDAG:     3,
	MaxPattern: 6,
}

// Generator draws programs and inputs from a deterministic random source.
type Generator struct {
	f    *gofakeit.Faker
	cfg  Config
	pats []*matcher.Pattern
}

func New(seed int64, cfg Config) *Generator {
	g := &Generator{
		f:   gofakeit.New(seed),
		cfg: cfg,
	}

	/* a fixed pool of patterns, so that terminal nodes can compare equal */
	for i := 0; i < cfg.MaxPattern; i++ {
		g.pats = append(g.pats, &matcher.Pattern{
			Name:       fmt.Sprintf("pat%d", i),
			Source:     Opcodes[g.f.IntRange(0, len(Opcodes)-1)],
			Complexity: g.f.IntRange(1, 10),
		})
	}
	return g
}

func (self *Generator) chance(pct int) bool {
	return self.f.IntRange(1, 100) <= pct
}

func (self *Generator) pick(n int) int {
	return self.f.IntRange(0, n-1)
}

func (self *Generator) opcode() *matcher.NodeInfo {
	return Opcodes[self.pick(len(Opcodes))]
}

/** DAG Generation **/

type pending struct {
	node  *interp.Node
	depth int
}

// DAG generates a random DAG. Leaves are shared between parents from time
// to time, so that same-value checks have a chance to succeed.
func (self *Generator) DAG() *interp.Node {
	id := 0
	root := self.dagNode(&id, self.opcode())
	leaves := []*interp.Node(nil)

	/* breadth-first, every queued node gets its children */
	q := lane.NewQueue()
	q.Enqueue(pending{root, 0})

	for !q.Empty() {
		p := q.Dequeue().(pending)
		nc := 0

		/* deeper nodes have fewer children */
		if p.depth < self.cfg.MaxDAG && p.node.Opcode != OpConstant.EnumName {
			nc = self.f.IntRange(0, 3)
		}

		/* build the children */
		for i := 0; i < nc; i++ {
			if len(leaves) != 0 && self.chance(25) {
				p.node.Children = append(p.node.Children, leaves[self.pick(len(leaves))])
				continue
			}

			/* constants and condition codes are always leaves */
			op := self.opcode()
			c := self.dagNode(&id, op)
			p.node.Children = append(p.node.Children, c)

			if op == OpConstant || op == OpCondCode {
				leaves = append(leaves, c)
			} else {
				q.Enqueue(pending{c, p.depth + 1})
			}
		}
	}
	return root
}

func (self *Generator) dagNode(id *int, op *matcher.NodeInfo) *interp.Node {
	n := interp.NewNode(*id, op)
	*id++

	/* results of unknown type get a concrete one */
	for i, vt := range n.Types {
		if vt == matcher.Other {
			n.Types[i] = resultTypes[self.pick(len(resultTypes))]
		}
	}

	/* leaf payloads */
	switch op {
	case OpConstant:
		n.Const = true
		n.Value = int64(self.f.IntRange(0, int(maxImmediates)))
	case OpCondCode:
		n.CondCode = condCodes[self.pick(len(condCodes))]
	}

	/* the rest of the node properties */
	if self.chance(50) {
		n.VTName = valueTypes[self.pick(len(valueTypes))]
	}
	n.Preds = make(map[string]bool, len(nodePreds))
	for _, p := range nodePreds {
		n.Preds[p] = self.f.Bool()
	}
	switch self.pick(3) {
	case 0:
		n.AllOnes = true
	case 1:
		n.AllZeros = true
	}
	n.Foldable = self.f.Bool()
	return n
}

// Input generates a random DAG together with the pattern predicates.
func (self *Generator) Input() *interp.Input {
	in := &interp.Input{
		Root:              self.DAG(),
		PatternPredicates: make(map[string]bool, len(patternPreds)),
	}
	for _, p := range patternPreds {
		in.PatternPredicates[p] = self.f.Bool()
	}
	return in
}

/** Program Generation **/

// frame tracks what a node may refer to at its position in the chain.
type frame struct {
	depth int
	slots int
}

// Program generates a random program. The cursor never moves above the
// root and every slot reference points to a value recorded earlier.
func (self *Generator) Program() matcher.Matcher {
	alts := make([]matcher.Matcher, self.f.IntRange(2, self.cfg.MaxAlts))
	for i := range alts {
		alts[i] = self.chain(frame{}, 1)
	}
	return matcher.NewScope(alts...)
}

func (self *Generator) chain(fr frame, nest int) matcher.Matcher {
	var nodes []matcher.Matcher
	n := self.f.IntRange(0, self.cfg.MaxChain)

	/* alternatives often start the same way, so that there is something to factor */
	if self.chance(60) {
		nodes = append(nodes, self.leader(&fr))
	}

	/* the body */
	for i := 0; i < n; i++ {
		nodes = append(nodes, self.step(&fr)...)
	}

	/* the end of the chain */
	switch {
	case nest < self.cfg.MaxNest && self.chance(35):
		alts := make([]matcher.Matcher, self.f.IntRange(1, self.cfg.MaxAlts))
		for i := range alts {
			alts[i] = self.chain(fr, nest+1)
		}
		nodes = append(nodes, matcher.NewScope(alts...))
	case self.chance(5):
		break
	default:
		nodes = append(nodes, self.terminal(&fr)...)
	}
	return matcher.Chain(nodes...)
}

func (self *Generator) leader(fr *frame) matcher.Matcher {
	switch self.pick(4) {
	case 0:
		return matcher.NewCheckOpcode([]*matcher.NodeInfo{OpAdd, OpSub, OpMul}[self.pick(3)])
	case 1:
		return matcher.NewCheckType([]matcher.ValueType{matcher.I32, matcher.I64}[self.pick(2)], 0)
	case 2:
		return matcher.NewCheckPatternPredicate(patternPreds[self.pick(len(patternPreds))])
	default:
		fr.slots++
		return matcher.NewRecord("root", fr.slots-1)
	}
}

// step generates a short run of nodes, updating the frame.
func (self *Generator) step(fr *frame) []matcher.Matcher {
	switch self.pick(8) {
	case 0, 1:
		return self.visitChild(fr)
	case 2:
		fr.slots++
		return []matcher.Matcher{matcher.NewRecord("tmp", fr.slots-1)}
	case 3:
		return []matcher.Matcher{self.check(fr)}
	case 4:
		return []matcher.Matcher{self.childCheck(fr)}
	case 5:
		if fr.depth < self.cfg.MaxCursor {
			fr.depth++
			return []matcher.Matcher{matcher.NewMoveChild(childChoices[self.pick(len(childChoices))])}
		}
		return []matcher.Matcher{self.check(fr)}
	case 6:
		if fr.depth > 0 {
			fr.depth--
			return []matcher.Matcher{matcher.NewMoveParent()}
		}
		return []matcher.Matcher{self.check(fr)}
	default:
		return []matcher.Matcher{self.emit(fr)}
	}
}

// visitChild moves into a child, runs a test or two there, and comes back.
func (self *Generator) visitChild(fr *frame) []matcher.Matcher {
	ret := []matcher.Matcher{matcher.NewMoveChild(childChoices[self.pick(len(childChoices))])}
	fr.depth++

	/* one or two tests on the child */
	for i := self.f.IntRange(1, 2); i > 0; i-- {
		if self.chance(30) {
			fr.slots++
			ret = append(ret, matcher.NewRecord("child", fr.slots-1))
		} else {
			ret = append(ret, self.check(fr))
		}
	}

	/* back to where we were */
	fr.depth--
	return append(ret, matcher.NewMoveParent())
}

func (self *Generator) check(fr *frame) matcher.Matcher {
	switch self.pick(14) {
	case 0:
		return matcher.NewCheckOpcode(self.opcode())
	case 1:
		return matcher.NewCheckType(checkTypes[self.pick(len(checkTypes))], self.pick(2))
	case 2:
		return matcher.NewCheckInteger(int64(self.f.IntRange(0, int(maxImmediates))))
	case 3:
		return matcher.NewCheckCondCode(condCodes[self.pick(len(condCodes))])
	case 4:
		if fr.slots > 0 {
			return matcher.NewCheckSame(self.pick(fr.slots))
		}
		return matcher.NewCheckPredicate(nodePreds[self.pick(len(nodePreds))])
	case 5:
		return matcher.NewCheckPredicate(nodePreds[self.pick(len(nodePreds))])
	case 6:
		return matcher.NewCheckPatternPredicate(patternPreds[self.pick(len(patternPreds))])
	case 7:
		return matcher.NewCheckValueType(valueTypes[self.pick(len(valueTypes))])
	case 8:
		return matcher.NewCheckAndImm(int64(self.f.IntRange(0, int(maxImmediates))))
	case 9:
		return matcher.NewCheckOrImm(int64(self.f.IntRange(0, int(maxImmediates))))
	case 10:
		return matcher.NewCheckImmAllOnesV()
	case 11:
		return matcher.NewCheckImmAllZerosV()
	case 12:
		return matcher.NewCheckFoldableChainNode()
	default:
		return matcher.NewCheckType(checkTypes[self.pick(len(checkTypes))], 0)
	}
}

func (self *Generator) childCheck(fr *frame) matcher.Matcher {
	switch self.pick(5) {
	case 0:
		fr.slots++
		return matcher.NewRecordChild(self.pick(matcher.MaxRecordChild), "child", fr.slots-1)
	case 1:
		return matcher.NewCheckChildType(self.pick(matcher.MaxCheckChildType), checkTypes[self.pick(len(checkTypes))])
	case 2:
		return matcher.NewCheckChildInteger(self.pick(matcher.MaxCheckChildInteger), int64(self.f.IntRange(0, int(maxImmediates))))
	case 3:
		return matcher.NewCheckChild2CondCode(condCodes[self.pick(len(condCodes))])
	default:
		if fr.slots > 0 {
			return matcher.NewCheckChildSame(self.pick(matcher.MaxCheckChildSame), self.pick(fr.slots))
		}
		return matcher.NewCheckChildType(self.pick(matcher.MaxCheckChildType), checkTypes[self.pick(len(checkTypes))])
	}
}

func (self *Generator) emit(fr *frame) matcher.Matcher {
	switch self.pick(3) {
	case 0:
		fr.slots++
		return matcher.NewEmitInteger(int64(self.f.IntRange(0, int(maxImmediates))), resultTypes[self.pick(len(resultTypes))])
	case 1:
		fr.slots++
		return matcher.NewEmitRegister(registers[self.pick(len(registers))], resultTypes[self.pick(len(resultTypes))])
	default:
		if fr.slots == 0 {
			return matcher.NewCheckFoldableChainNode()
		}
		return matcher.NewEmitMergeInputChains(self.slots(fr, 2)...)
	}
}

// slots picks up to n of the recorded slots.
func (self *Generator) slots(fr *frame, n int) []int {
	if fr.slots == 0 {
		return nil
	}
	ret := make([]int, self.f.IntRange(1, n))
	for i := range ret {
		ret[i] = self.pick(fr.slots)
	}
	return ret
}

func (self *Generator) terminal(fr *frame) []matcher.Matcher {
	pat := self.pats[self.pick(len(self.pats))]

	/* a plain match */
	if self.chance(40) {
		return []matcher.Matcher{matcher.NewCompleteMatch(self.slots(fr, 2), pat)}
	}

	/* emit a node, then complete with its results */
	info := matcher.EmitInfo{
		Instruction: instructions[self.pick(len(instructions))],
		Operands:    self.slots(fr, 3),
		HasChain:    self.f.Bool(),
		HasOutGlue:  self.f.Bool(),
		HasMemRefs:  self.chance(20),
	}
	for i := self.f.IntRange(1, 2); i > 0; i-- {
		info.VTs = append(info.VTs, resultTypes[self.pick(len(resultTypes))])
	}

	/* results usually line up with the new node */
	first := fr.slots
	fr.slots += len(info.VTs)
	results := make([]int, self.f.IntRange(0, len(info.VTs)))
	for i := range results {
		results[i] = first + i
	}
	if self.chance(20) {
		results = self.slots(fr, 2)
	}
	return []matcher.Matcher{
		matcher.NewEmitNode(info, first),
		matcher.NewCompleteMatch(results, pat),
	}
}
