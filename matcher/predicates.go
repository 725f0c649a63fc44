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

// IsSimplePredicate reports whether m is a test that neither moves the
// cursor nor has any side effect.
func IsSimplePredicate(m Matcher) bool {
	switch m.Kind() {
	case KindCheckSame,
		KindCheckChildSame,
		KindCheckPatternPredicate,
		KindCheckPredicate,
		KindCheckOpcode,
		KindCheckType,
		KindCheckChildType,
		KindCheckInteger,
		KindCheckChildInteger,
		KindCheckCondCode,
		KindCheckChild2CondCode,
		KindCheckValueType,
		KindCheckAndImm,
		KindCheckOrImm,
		KindCheckImmAllOnesV,
		KindCheckImmAllZerosV,
		KindCheckFoldableChainNode:
		return true
	default:
		return false
	}
}

func IsRecord(m Matcher) bool {
	k := m.Kind()
	return k == KindRecord || k == KindRecordChild
}

func IsSimplePredicateOrRecord(m Matcher) bool {
	return IsSimplePredicate(m) || IsRecord(m)
}

// IsTerminal reports whether m ends a successful match.
func IsTerminal(m Matcher) bool {
	k := m.Kind()
	return k == KindCompleteMatch || k == KindMorphNodeTo
}

// IsEqual reports whether a and b perform the same test or action,
// ignoring their successors.
func IsEqual(a Matcher, b Matcher) bool {
	if a.Kind() != b.Kind() {
		return false
	}

	/* same kind, compare the payload */
	switch x := a.(type) {
	case *ScopeMatcher:
		return false
	case *SwitchOpcodeMatcher:
		return false
	case *SwitchTypeMatcher:
		return false
	case *RecordMatcher:
		return true
	case *RecordChildMatcher:
		return x.ChildNo == b.(*RecordChildMatcher).ChildNo
	case *MoveChildMatcher:
		return x.ChildNo == b.(*MoveChildMatcher).ChildNo
	case *MoveSiblingMatcher:
		return x.SiblingNo == b.(*MoveSiblingMatcher).SiblingNo
	case *MoveParentMatcher:
		return true
	case *CheckSameMatcher:
		return x.MatchNumber == b.(*CheckSameMatcher).MatchNumber
	case *CheckChildSameMatcher:
		y := b.(*CheckChildSameMatcher)
		return x.ChildNo == y.ChildNo && x.MatchNumber == y.MatchNumber
	case *CheckPatternPredicateMatcher:
		return x.Predicate == b.(*CheckPatternPredicateMatcher).Predicate
	case *CheckPredicateMatcher:
		return x.Predicate == b.(*CheckPredicateMatcher).Predicate
	case *CheckOpcodeMatcher:
		return x.Opcode.EnumName == b.(*CheckOpcodeMatcher).Opcode.EnumName
	case *CheckTypeMatcher:
		y := b.(*CheckTypeMatcher)
		return x.Type == y.Type && x.ResNo == y.ResNo
	case *CheckChildTypeMatcher:
		y := b.(*CheckChildTypeMatcher)
		return x.ChildNo == y.ChildNo && x.Type == y.Type
	case *CheckIntegerMatcher:
		return x.Value == b.(*CheckIntegerMatcher).Value
	case *CheckChildIntegerMatcher:
		y := b.(*CheckChildIntegerMatcher)
		return x.ChildNo == y.ChildNo && x.Value == y.Value
	case *CheckCondCodeMatcher:
		return x.CondCode == b.(*CheckCondCodeMatcher).CondCode
	case *CheckChild2CondCodeMatcher:
		return x.CondCode == b.(*CheckChild2CondCodeMatcher).CondCode
	case *CheckValueTypeMatcher:
		return x.TypeName == b.(*CheckValueTypeMatcher).TypeName
	case *CheckAndImmMatcher:
		return x.Value == b.(*CheckAndImmMatcher).Value
	case *CheckOrImmMatcher:
		return x.Value == b.(*CheckOrImmMatcher).Value
	case *CheckImmAllOnesVMatcher:
		return true
	case *CheckImmAllZerosVMatcher:
		return true
	case *CheckFoldableChainNodeMatcher:
		return true
	case *EmitIntegerMatcher:
		y := b.(*EmitIntegerMatcher)
		return x.Value == y.Value && x.Type == y.Type
	case *EmitRegisterMatcher:
		y := b.(*EmitRegisterMatcher)
		return x.Reg == y.Reg && x.Type == y.Type
	case *EmitMergeInputChainsMatcher:
		return equalInts(x.ChainNodes, b.(*EmitMergeInputChainsMatcher).ChainNodes)
	case *EmitNodeMatcher:
		y := b.(*EmitNodeMatcher)
		return x.FirstResultSlot == y.FirstResultSlot && x.EmitInfo.equal(&y.EmitInfo)
	case *MorphNodeToMatcher:
		y := b.(*MorphNodeToMatcher)
		return x.Pattern == y.Pattern && x.NumResults == y.NumResults && x.EmitInfo.equal(&y.EmitInfo)
	case *CompleteMatchMatcher:
		y := b.(*CompleteMatchMatcher)
		return x.Pattern == y.Pattern && equalInts(x.Results, y.Results)
	default:
		panic("IsEqual: unknown matcher kind: " + a.Kind().String())
	}
}

// IsContradictory reports whether a and b can never both succeed on the
// same node. The relation is symmetric, so the pair is canonicalized with
// the lower kind first.
func IsContradictory(a Matcher, b Matcher) bool {
	if a.Kind() > b.Kind() {
		a, b = b, a
	}

	/* only a handful of kind pairs are related at all */
	switch x := a.(type) {
	case *CheckOpcodeMatcher:
		switch y := b.(type) {
		case *CheckOpcodeMatcher:
			return x.Opcode.EnumName != y.Opcode.EnumName
		case *CheckTypeMatcher:
			return opcodeContradictsType(x.Opcode, y)
		}
	case *CheckTypeMatcher:
		if y, ok := b.(*CheckTypeMatcher); ok {
			return x.ResNo == y.ResNo && TypesAreContradictory(x.Type, y.Type)
		}
	case *CheckChildTypeMatcher:
		if y, ok := b.(*CheckChildTypeMatcher); ok {
			return x.ChildNo == y.ChildNo && TypesAreContradictory(x.Type, y.Type)
		}
	case *CheckIntegerMatcher:
		if y, ok := b.(*CheckIntegerMatcher); ok {
			return x.Value != y.Value
		}
	case *CheckChildIntegerMatcher:
		if y, ok := b.(*CheckChildIntegerMatcher); ok {
			return x.ChildNo == y.ChildNo && x.Value != y.Value
		}
	case *CheckValueTypeMatcher:
		if y, ok := b.(*CheckValueTypeMatcher); ok {
			return x.TypeName != y.TypeName
		}
	case *CheckImmAllOnesVMatcher:
		return b.Kind() == KindCheckImmAllZerosV
	}
	return false
}

// A check for ISD::STORE can never succeed together with a check for an
// i32 result, the opcode fixes its result types.
func opcodeContradictsType(op *NodeInfo, ct *CheckTypeMatcher) bool {
	if ct.ResNo >= op.NumResults {
		return true
	} else if vt := op.KnownType(ct.ResNo); vt != Other {
		return TypesAreContradictory(vt, ct.Type)
	} else {
		return false
	}
}

func readsRecordedSlot(m Matcher) bool {
	k := m.Kind()
	return k == KindCheckSame || k == KindCheckChildSame
}

// CanMoveBeforeNode reports whether m may be placed immediately before
// other, i.e. swapped with it.
func CanMoveBeforeNode(m Matcher, other Matcher) bool {
	switch {
	case IsSimplePredicate(m) && readsRecordedSlot(m):
		return IsSimplePredicate(other)
	case IsSimplePredicate(m):
		return IsSimplePredicateOrRecord(other)
	case IsRecord(m):
		return IsSimplePredicate(other) && !readsRecordedSlot(other)
	default:
		return false
	}
}

// CanMoveBefore reports whether m, which must be reachable from other,
// can be moved in front of other without changing what the chain does.
func CanMoveBefore(m Matcher, other Matcher) bool {
	for ; other != nil; other = other.Next() {
		if other == m {
			return true
		}
		if !CanMoveBeforeNode(m, other) {
			return false
		}
	}
	panic(Invariantf(m, "CanMoveBefore: node is not reachable from the chain"))
}
