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

package randprog

import (
	"github.com/cloudwego/matchopt/matcher"
)

var (
	OpAdd      = &matcher.NodeInfo{Name: "add", EnumName: "ISD::ADD", NumResults: 1, Types: []matcher.ValueType{matcher.Other}}
	OpSub      = &matcher.NodeInfo{Name: "sub", EnumName: "ISD::SUB", NumResults: 1, Types: []matcher.ValueType{matcher.Other}}
	OpMul      = &matcher.NodeInfo{Name: "mul", EnumName: "ISD::MUL", NumResults: 1, Types: []matcher.ValueType{matcher.Other}}
	OpAnd      = &matcher.NodeInfo{Name: "and", EnumName: "ISD::AND", NumResults: 1, Types: []matcher.ValueType{matcher.Other}}
	OpSetCC    = &matcher.NodeInfo{Name: "setcc", EnumName: "ISD::SETCC", NumResults: 1, Types: []matcher.ValueType{matcher.I1}}
	OpFAdd     = &matcher.NodeInfo{Name: "fadd", EnumName: "ISD::FADD", NumResults: 1, Types: []matcher.ValueType{matcher.F32}}
	OpLoad     = &matcher.NodeInfo{Name: "ld", EnumName: "ISD::LOAD", NumResults: 2, Types: []matcher.ValueType{matcher.Other, matcher.Other}, Properties: matcher.HasChain | matcher.MemOperand}
	OpStore    = &matcher.NodeInfo{Name: "st", EnumName: "ISD::STORE", NumResults: 0, Properties: matcher.HasChain | matcher.MemOperand}
	OpConstant = &matcher.NodeInfo{Name: "imm", EnumName: "ISD::Constant", NumResults: 1, Types: []matcher.ValueType{matcher.Other}}
	OpCondCode = &matcher.NodeInfo{Name: "cond", EnumName: "ISD::CONDCODE", NumResults: 1, Types: []matcher.ValueType{matcher.Other}}
)

// Opcodes is the set of operations programs and DAGs are drawn from.
var Opcodes = []*matcher.NodeInfo{
	OpAdd,
	OpSub,
	OpMul,
	OpAnd,
	OpSetCC,
	OpFAdd,
	OpLoad,
	OpStore,
	OpConstant,
	OpCondCode,
}

var (
	checkTypes    = []matcher.ValueType{matcher.I1, matcher.I32, matcher.I64, matcher.F32, matcher.V4I32, matcher.IPTR}
	resultTypes   = []matcher.ValueType{matcher.I32, matcher.I64, matcher.F32, matcher.V4I32}
	condCodes     = []string{"SETEQ", "SETNE", "SETLT"}
	valueTypes    = []string{"i32", "i64"}
	nodePreds     = []string{"isSafeToFold", "hasOneUse"}
	patternPreds  = []string{"HasSSE2", "Is64Bit"}
	registers     = []string{"EAX", "ECX", "XMM0"}
	instructions  = []string{"ADD32rr", "SUB32ri", "MOV64rm", "ADDSSrr"}
	childChoices  = []int{0, 1, 2, 3, 4, 7, 8}
	maxImmediates = int64(3)
)
