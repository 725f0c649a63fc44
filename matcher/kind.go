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
)

type Kind uint8

const (
	KindScope Kind = iota
	KindRecord
	KindRecordChild
	KindMoveChild
	KindMoveSibling
	KindMoveParent
	KindCheckSame
	KindCheckChildSame
	KindCheckPatternPredicate
	KindCheckPredicate
	KindCheckOpcode
	KindSwitchOpcode
	KindCheckType
	KindSwitchType
	KindCheckChildType
	KindCheckInteger
	KindCheckChildInteger
	KindCheckCondCode
	KindCheckChild2CondCode
	KindCheckValueType
	KindCheckAndImm
	KindCheckOrImm
	KindCheckImmAllOnesV
	KindCheckImmAllZerosV
	KindCheckFoldableChainNode
	KindEmitInteger
	KindEmitRegister
	KindEmitMergeInputChains
	KindEmitNode
	KindMorphNodeTo
	KindCompleteMatch
	_KindMax
)

var _KindNames = [_KindMax]string{
	KindScope:                  "Scope",
	KindRecord:                 "Record",
	KindRecordChild:            "RecordChild",
	KindMoveChild:              "MoveChild",
	KindMoveSibling:            "MoveSibling",
	KindMoveParent:             "MoveParent",
	KindCheckSame:              "CheckSame",
	KindCheckChildSame:         "CheckChildSame",
	KindCheckPatternPredicate:  "CheckPatternPredicate",
	KindCheckPredicate:         "CheckPredicate",
	KindCheckOpcode:            "CheckOpcode",
	KindSwitchOpcode:           "SwitchOpcode",
	KindCheckType:              "CheckType",
	KindSwitchType:             "SwitchType",
	KindCheckChildType:         "CheckChildType",
	KindCheckInteger:           "CheckInteger",
	KindCheckChildInteger:      "CheckChildInteger",
	KindCheckCondCode:          "CheckCondCode",
	KindCheckChild2CondCode:    "CheckChild2CondCode",
	KindCheckValueType:         "CheckValueType",
	KindCheckAndImm:            "CheckAndImm",
	KindCheckOrImm:             "CheckOrImm",
	KindCheckImmAllOnesV:       "CheckImmAllOnesV",
	KindCheckImmAllZerosV:      "CheckImmAllZerosV",
	KindCheckFoldableChainNode: "CheckFoldableChainNode",
	KindEmitInteger:            "EmitInteger",
	KindEmitRegister:           "EmitRegister",
	KindEmitMergeInputChains:   "EmitMergeInputChains",
	KindEmitNode:               "EmitNode",
	KindMorphNodeTo:            "MorphNodeTo",
	KindCompleteMatch:          "CompleteMatch",
}

func (self Kind) String() string {
	if self < _KindMax {
		return _KindNames[self]
	} else {
		return fmt.Sprintf("Kind(%d)", uint8(self))
	}
}

// Fusion limits: the fused "child" forms only exist for these child numbers.
const (
	MaxRecordChild       = 8 // RecordChild0...7
	MaxCheckChildType    = 8 // CheckChildType0...7
	MaxCheckChildSame    = 4 // CheckChildSame0...3
	MaxCheckChildInteger = 5 // CheckChildInteger0...4
	CondCodeChild        = 2 // only CheckChild2CondCode
)
