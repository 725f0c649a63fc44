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

package matcher

import (
	"fmt"
	"strings"
)

// Matcher is a single node of a matcher program. Every node owns its
// successor exclusively, ownership moves with TakeNext and SetNext.
type Matcher interface {
	fmt.Stringer
	Kind() Kind
	Next() Matcher
	SetNext(next Matcher)
	TakeNext() Matcher
}

// Link is the successor slot embedded in every node.
type Link struct {
	next Matcher
}

func (self *Link) Next() Matcher {
	return self.next
}

func (self *Link) SetNext(next Matcher) {
	self.next = next
}

// NextPtr exposes the successor slot so passes can rewrite it in place.
func (self *Link) NextPtr() *Matcher {
	return &self.next
}

func (self *Link) TakeNext() Matcher {
	m := self.next
	self.next = nil
	return m
}

type linked interface {
	NextPtr() *Matcher
}

// NextPtr returns the successor slot of m.
func NextPtr(m Matcher) *Matcher {
	return m.(linked).NextPtr()
}

/** Control Flow **/

// ScopeMatcher tries each child in order until one of them succeeds.
type ScopeMatcher struct {
	Link
	children []Matcher
}

func NewScope(children ...Matcher) *ScopeMatcher {
	return &ScopeMatcher{children: children}
}

func (self *ScopeMatcher) Kind() Kind          { return KindScope }
func (self *ScopeMatcher) NumChildren() int    { return len(self.children) }
func (self *ScopeMatcher) Child(i int) Matcher { return self.children[i] }
func (self *ScopeMatcher) String() string      { return "Scope" }

// TakeChild detaches child i, leaving a nil hole to be refilled with ResetChild.
func (self *ScopeMatcher) TakeChild(i int) Matcher {
	m := self.children[i]
	self.children[i] = nil
	return m
}

func (self *ScopeMatcher) ResetChild(i int, m Matcher) {
	self.children[i] = m
}

func (self *ScopeMatcher) SetNumChildren(n int) {
	if n <= cap(self.children) {
		for i := n; i < len(self.children); i++ {
			self.children[i] = nil
		}
		self.children = self.children[:n]
	} else {
		self.children = append(self.children, make([]Matcher, n-len(self.children))...)
	}
}

type OpcodeCase struct {
	Opcode *NodeInfo
	Body   Matcher
}

// SwitchOpcodeMatcher dispatches on the opcode of the current node.
type SwitchOpcodeMatcher struct {
	Link
	Cases []OpcodeCase
}

func NewSwitchOpcode(cases []OpcodeCase) *SwitchOpcodeMatcher {
	return &SwitchOpcodeMatcher{Cases: cases}
}

func (self *SwitchOpcodeMatcher) Kind() Kind { return KindSwitchOpcode }

func (self *SwitchOpcodeMatcher) String() string {
	names := make([]string, len(self.Cases))
	for i, c := range self.Cases {
		names[i] = c.Opcode.String()
	}
	return fmt.Sprintf("SwitchOpcode [%s]", strings.Join(names, ", "))
}

type TypeCase struct {
	Type ValueType
	Body Matcher
}

// SwitchTypeMatcher dispatches on the type of result 0 of the current node.
type SwitchTypeMatcher struct {
	Link
	Cases []TypeCase
}

func NewSwitchType(cases []TypeCase) *SwitchTypeMatcher {
	return &SwitchTypeMatcher{Cases: cases}
}

func (self *SwitchTypeMatcher) Kind() Kind { return KindSwitchType }

func (self *SwitchTypeMatcher) String() string {
	names := make([]string, len(self.Cases))
	for i, c := range self.Cases {
		names[i] = c.Type.String()
	}
	return fmt.Sprintf("SwitchType [%s]", strings.Join(names, ", "))
}

/** Recording **/

// RecordMatcher saves the current node in the next recorded slot.
type RecordMatcher struct {
	Link
	WhatFor  string
	ResultNo int
}

func NewRecord(whatFor string, resultNo int) *RecordMatcher {
	return &RecordMatcher{WhatFor: whatFor, ResultNo: resultNo}
}

func (self *RecordMatcher) Kind() Kind { return KindRecord }

func (self *RecordMatcher) String() string {
	return fmt.Sprintf("Record #%d '%s'", self.ResultNo, self.WhatFor)
}

// RecordChildMatcher saves child ChildNo of the current node.
type RecordChildMatcher struct {
	Link
	ChildNo  int
	WhatFor  string
	ResultNo int
}

func NewRecordChild(childNo int, whatFor string, resultNo int) *RecordChildMatcher {
	return &RecordChildMatcher{ChildNo: childNo, WhatFor: whatFor, ResultNo: resultNo}
}

func (self *RecordChildMatcher) Kind() Kind { return KindRecordChild }

func (self *RecordChildMatcher) String() string {
	return fmt.Sprintf("RecordChild %d #%d '%s'", self.ChildNo, self.ResultNo, self.WhatFor)
}

/** Cursor Movement **/

type MoveChildMatcher struct {
	Link
	ChildNo int
}

func NewMoveChild(childNo int) *MoveChildMatcher {
	return &MoveChildMatcher{ChildNo: childNo}
}

func (self *MoveChildMatcher) Kind() Kind     { return KindMoveChild }
func (self *MoveChildMatcher) String() string { return fmt.Sprintf("MoveChild %d", self.ChildNo) }

type MoveSiblingMatcher struct {
	Link
	SiblingNo int
}

func NewMoveSibling(siblingNo int) *MoveSiblingMatcher {
	return &MoveSiblingMatcher{SiblingNo: siblingNo}
}

func (self *MoveSiblingMatcher) Kind() Kind { return KindMoveSibling }

func (self *MoveSiblingMatcher) String() string {
	return fmt.Sprintf("MoveSibling %d", self.SiblingNo)
}

type MoveParentMatcher struct {
	Link
}

func NewMoveParent() *MoveParentMatcher {
	return &MoveParentMatcher{}
}

func (self *MoveParentMatcher) Kind() Kind     { return KindMoveParent }
func (self *MoveParentMatcher) String() string { return "MoveParent" }

/** Predicates **/

// CheckSameMatcher checks that the current node is recorded slot MatchNumber.
type CheckSameMatcher struct {
	Link
	MatchNumber int
}

func NewCheckSame(matchNumber int) *CheckSameMatcher {
	return &CheckSameMatcher{MatchNumber: matchNumber}
}

func (self *CheckSameMatcher) Kind() Kind { return KindCheckSame }

func (self *CheckSameMatcher) String() string {
	return fmt.Sprintf("CheckSame %d", self.MatchNumber)
}

type CheckChildSameMatcher struct {
	Link
	ChildNo     int
	MatchNumber int
}

func NewCheckChildSame(childNo int, matchNumber int) *CheckChildSameMatcher {
	return &CheckChildSameMatcher{ChildNo: childNo, MatchNumber: matchNumber}
}

func (self *CheckChildSameMatcher) Kind() Kind { return KindCheckChildSame }

func (self *CheckChildSameMatcher) String() string {
	return fmt.Sprintf("CheckChild%dSame %d", self.ChildNo, self.MatchNumber)
}

// CheckPatternPredicateMatcher checks a predicate that does not depend on the node.
type CheckPatternPredicateMatcher struct {
	Link
	Predicate string
}

func NewCheckPatternPredicate(pred string) *CheckPatternPredicateMatcher {
	return &CheckPatternPredicateMatcher{Predicate: pred}
}

func (self *CheckPatternPredicateMatcher) Kind() Kind { return KindCheckPatternPredicate }

func (self *CheckPatternPredicateMatcher) String() string {
	return fmt.Sprintf("CheckPatternPredicate %s", self.Predicate)
}

// CheckPredicateMatcher checks a named predicate on the current node.
type CheckPredicateMatcher struct {
	Link
	Predicate string
}

func NewCheckPredicate(pred string) *CheckPredicateMatcher {
	return &CheckPredicateMatcher{Predicate: pred}
}

func (self *CheckPredicateMatcher) Kind() Kind { return KindCheckPredicate }

func (self *CheckPredicateMatcher) String() string {
	return fmt.Sprintf("CheckPredicate %s", self.Predicate)
}

type CheckOpcodeMatcher struct {
	Link
	Opcode *NodeInfo
}

func NewCheckOpcode(opcode *NodeInfo) *CheckOpcodeMatcher {
	return &CheckOpcodeMatcher{Opcode: opcode}
}

func (self *CheckOpcodeMatcher) Kind() Kind { return KindCheckOpcode }

func (self *CheckOpcodeMatcher) String() string {
	return fmt.Sprintf("CheckOpcode %s", self.Opcode)
}

type CheckTypeMatcher struct {
	Link
	Type  ValueType
	ResNo int
}

func NewCheckType(vt ValueType, resNo int) *CheckTypeMatcher {
	return &CheckTypeMatcher{Type: vt, ResNo: resNo}
}

func (self *CheckTypeMatcher) Kind() Kind { return KindCheckType }

func (self *CheckTypeMatcher) String() string {
	return fmt.Sprintf("CheckType %s:%d", self.Type, self.ResNo)
}

type CheckChildTypeMatcher struct {
	Link
	ChildNo int
	Type    ValueType
}

func NewCheckChildType(childNo int, vt ValueType) *CheckChildTypeMatcher {
	return &CheckChildTypeMatcher{ChildNo: childNo, Type: vt}
}

func (self *CheckChildTypeMatcher) Kind() Kind { return KindCheckChildType }

func (self *CheckChildTypeMatcher) String() string {
	return fmt.Sprintf("CheckChild%dType %s", self.ChildNo, self.Type)
}

type CheckIntegerMatcher struct {
	Link
	Value int64
}

func NewCheckInteger(value int64) *CheckIntegerMatcher {
	return &CheckIntegerMatcher{Value: value}
}

func (self *CheckIntegerMatcher) Kind() Kind { return KindCheckInteger }

func (self *CheckIntegerMatcher) String() string {
	return fmt.Sprintf("CheckInteger %d", self.Value)
}

type CheckChildIntegerMatcher struct {
	Link
	ChildNo int
	Value   int64
}

func NewCheckChildInteger(childNo int, value int64) *CheckChildIntegerMatcher {
	return &CheckChildIntegerMatcher{ChildNo: childNo, Value: value}
}

func (self *CheckChildIntegerMatcher) Kind() Kind { return KindCheckChildInteger }

func (self *CheckChildIntegerMatcher) String() string {
	return fmt.Sprintf("CheckChild%dInteger %d", self.ChildNo, self.Value)
}

type CheckCondCodeMatcher struct {
	Link
	CondCode string
}

func NewCheckCondCode(cc string) *CheckCondCodeMatcher {
	return &CheckCondCodeMatcher{CondCode: cc}
}

func (self *CheckCondCodeMatcher) Kind() Kind { return KindCheckCondCode }

func (self *CheckCondCodeMatcher) String() string {
	return fmt.Sprintf("CheckCondCode %s", self.CondCode)
}

type CheckChild2CondCodeMatcher struct {
	Link
	CondCode string
}

func NewCheckChild2CondCode(cc string) *CheckChild2CondCodeMatcher {
	return &CheckChild2CondCodeMatcher{CondCode: cc}
}

func (self *CheckChild2CondCodeMatcher) Kind() Kind { return KindCheckChild2CondCode }

func (self *CheckChild2CondCodeMatcher) String() string {
	return fmt.Sprintf("CheckChild2CondCode %s", self.CondCode)
}

type CheckValueTypeMatcher struct {
	Link
	TypeName string
}

func NewCheckValueType(name string) *CheckValueTypeMatcher {
	return &CheckValueTypeMatcher{TypeName: name}
}

func (self *CheckValueTypeMatcher) Kind() Kind { return KindCheckValueType }

func (self *CheckValueTypeMatcher) String() string {
	return fmt.Sprintf("CheckValueType %s", self.TypeName)
}

type CheckAndImmMatcher struct {
	Link
	Value int64
}

func NewCheckAndImm(value int64) *CheckAndImmMatcher {
	return &CheckAndImmMatcher{Value: value}
}

func (self *CheckAndImmMatcher) Kind() Kind { return KindCheckAndImm }

func (self *CheckAndImmMatcher) String() string {
	return fmt.Sprintf("CheckAndImm %d", self.Value)
}

type CheckOrImmMatcher struct {
	Link
	Value int64
}

func NewCheckOrImm(value int64) *CheckOrImmMatcher {
	return &CheckOrImmMatcher{Value: value}
}

func (self *CheckOrImmMatcher) Kind() Kind { return KindCheckOrImm }

func (self *CheckOrImmMatcher) String() string {
	return fmt.Sprintf("CheckOrImm %d", self.Value)
}

type CheckImmAllOnesVMatcher struct {
	Link
}

func NewCheckImmAllOnesV() *CheckImmAllOnesVMatcher {
	return &CheckImmAllOnesVMatcher{}
}

func (self *CheckImmAllOnesVMatcher) Kind() Kind     { return KindCheckImmAllOnesV }
func (self *CheckImmAllOnesVMatcher) String() string { return "CheckImmAllOnesV" }

type CheckImmAllZerosVMatcher struct {
	Link
}

func NewCheckImmAllZerosV() *CheckImmAllZerosVMatcher {
	return &CheckImmAllZerosVMatcher{}
}

func (self *CheckImmAllZerosVMatcher) Kind() Kind     { return KindCheckImmAllZerosV }
func (self *CheckImmAllZerosVMatcher) String() string { return "CheckImmAllZerosV" }

type CheckFoldableChainNodeMatcher struct {
	Link
}

func NewCheckFoldableChainNode() *CheckFoldableChainNodeMatcher {
	return &CheckFoldableChainNodeMatcher{}
}

func (self *CheckFoldableChainNodeMatcher) Kind() Kind     { return KindCheckFoldableChainNode }
func (self *CheckFoldableChainNodeMatcher) String() string { return "CheckFoldableChainNode" }

/** Emission **/

// EmitIntegerMatcher creates a target constant and records it.
type EmitIntegerMatcher struct {
	Link
	Value int64
	Type  ValueType
}

func NewEmitInteger(value int64, vt ValueType) *EmitIntegerMatcher {
	return &EmitIntegerMatcher{Value: value, Type: vt}
}

func (self *EmitIntegerMatcher) Kind() Kind { return KindEmitInteger }

func (self *EmitIntegerMatcher) String() string {
	return fmt.Sprintf("EmitInteger %d VT=%s", self.Value, self.Type)
}

// EmitRegisterMatcher creates a register reference and records it.
type EmitRegisterMatcher struct {
	Link
	Reg  string
	Type ValueType
}

func NewEmitRegister(reg string, vt ValueType) *EmitRegisterMatcher {
	return &EmitRegisterMatcher{Reg: reg, Type: vt}
}

func (self *EmitRegisterMatcher) Kind() Kind { return KindEmitRegister }

func (self *EmitRegisterMatcher) String() string {
	return fmt.Sprintf("EmitRegister %s VT=%s", self.Reg, self.Type)
}

// EmitMergeInputChainsMatcher merges the chains of the listed recorded slots.
type EmitMergeInputChainsMatcher struct {
	Link
	ChainNodes []int
}

func NewEmitMergeInputChains(nodes ...int) *EmitMergeInputChainsMatcher {
	return &EmitMergeInputChainsMatcher{ChainNodes: nodes}
}

func (self *EmitMergeInputChainsMatcher) Kind() Kind { return KindEmitMergeInputChains }

func (self *EmitMergeInputChainsMatcher) String() string {
	return fmt.Sprintf("EmitMergeInputChains %v", self.ChainNodes)
}

// EmitInfo is what EmitNode and MorphNodeTo share.
type EmitInfo struct {
	Instruction           string
	VTs                   []ValueType
	Operands              []int
	HasChain              bool
	HasInGlue             bool
	HasOutGlue            bool
	HasMemRefs            bool
	NumFixedArityOperands int
}

func (self *EmitInfo) flags() string {
	var buf []string
	if self.HasChain {
		buf = append(buf, "Chain")
	}
	if self.HasInGlue {
		buf = append(buf, "InGlue")
	}
	if self.HasOutGlue {
		buf = append(buf, "OutGlue")
	}
	if self.HasMemRefs {
		buf = append(buf, "MemRefs")
	}
	return strings.Join(buf, "|")
}

func (self *EmitInfo) equal(other *EmitInfo) bool {
	return self.Instruction == other.Instruction &&
		self.HasChain == other.HasChain &&
		self.HasInGlue == other.HasInGlue &&
		self.HasOutGlue == other.HasOutGlue &&
		self.HasMemRefs == other.HasMemRefs &&
		self.NumFixedArityOperands == other.NumFixedArityOperands &&
		equalTypes(self.VTs, other.VTs) &&
		equalInts(self.Operands, other.Operands)
}

// EmitNodeMatcher creates a machine node. Its results are recorded
// starting at FirstResultSlot.
type EmitNodeMatcher struct {
	Link
	EmitInfo
	FirstResultSlot int
}

func NewEmitNode(info EmitInfo, firstResultSlot int) *EmitNodeMatcher {
	return &EmitNodeMatcher{EmitInfo: info, FirstResultSlot: firstResultSlot}
}

func (self *EmitNodeMatcher) Kind() Kind { return KindEmitNode }

func (self *EmitNodeMatcher) String() string {
	return fmt.Sprintf(
		"EmitNode %s VTs=%v Ops=%v <%s> Results=#%d",
		self.Instruction,
		self.VTs,
		self.Operands,
		self.flags(),
		self.FirstResultSlot,
	)
}

// MorphNodeToMatcher is EmitNode followed by CompleteMatch, reusing the
// matched root node.
type MorphNodeToMatcher struct {
	Link
	EmitInfo
	NumResults int
	Pattern    *Pattern
}

func NewMorphNodeTo(info EmitInfo, numResults int, pattern *Pattern) *MorphNodeToMatcher {
	return &MorphNodeToMatcher{EmitInfo: info, NumResults: numResults, Pattern: pattern}
}

func (self *MorphNodeToMatcher) Kind() Kind { return KindMorphNodeTo }

func (self *MorphNodeToMatcher) String() string {
	return fmt.Sprintf(
		"MorphNodeTo %s VTs=%v Ops=%v <%s> Results=%d Pattern=%s",
		self.Instruction,
		self.VTs,
		self.Operands,
		self.flags(),
		self.NumResults,
		self.Pattern,
	)
}

// CompleteMatchMatcher finishes the match, replacing the root with the
// listed recorded slots.
type CompleteMatchMatcher struct {
	Link
	Results []int
	Pattern *Pattern
}

func NewCompleteMatch(results []int, pattern *Pattern) *CompleteMatchMatcher {
	return &CompleteMatchMatcher{Results: results, Pattern: pattern}
}

func (self *CompleteMatchMatcher) Kind() Kind { return KindCompleteMatch }

func (self *CompleteMatchMatcher) String() string {
	return fmt.Sprintf("CompleteMatch %v Pattern=%s", self.Results, self.Pattern)
}

func equalInts(a []int, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalTypes(a []ValueType, b []ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
