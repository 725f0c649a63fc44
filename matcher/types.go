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

// ValueType is the machine value type of a DAG node result.
type ValueType uint8

const (
	Other ValueType = iota
	I1
	I8
	I16
	I32
	I64
	F32
	F64
	V4I32
	V2I64
	V4F32
	IPTR
)

var _ValueTypeNames = [...]string{
	Other: "Other",
	I1:    "i1",
	I8:    "i8",
	I16:   "i16",
	I32:   "i32",
	I64:   "i64",
	F32:   "f32",
	F64:   "f64",
	V4I32: "v4i32",
	V2I64: "v2i64",
	V4F32: "v4f32",
	IPTR:  "iPTR",
}

func (self ValueType) String() string {
	if int(self) < len(_ValueTypeNames) {
		return _ValueTypeNames[self]
	} else {
		return fmt.Sprintf("vt(%d)", uint8(self))
	}
}

// IsInteger reports whether the type is a scalar or vector integer type.
// iPTR counts as an integer.
func (self ValueType) IsInteger() bool {
	switch self {
	case I1, I8, I16, I32, I64, V4I32, V2I64, IPTR:
		return true
	default:
		return false
	}
}

func (self ValueType) IsVector() bool {
	switch self {
	case V4I32, V2I64, V4F32:
		return true
	default:
		return false
	}
}

// ParseValueType is the inverse of ValueType.String.
func ParseValueType(name string) (ValueType, bool) {
	for i, v := range _ValueTypeNames {
		if v == name {
			return ValueType(i), true
		}
	}
	return Other, false
}

// TypesAreContradictory reports whether no value can have both types at once.
// iPTR aliases every scalar integer type, so it only contradicts
// non-integer or vector types.
func TypesAreContradictory(t1 ValueType, t2 ValueType) bool {
	switch {
	case t1 == t2:
		return false
	case t1 == IPTR:
		return !t2.IsInteger() || t2.IsVector()
	case t2 == IPTR:
		return !t1.IsInteger() || t1.IsVector()
	default:
		return true
	}
}

// Property is a set of SelectionDAG node properties.
type Property uint8

const (
	HasChain Property = 1 << iota
	OutGlue
	InGlue
	OptInGlue
	MemOperand
)

var _PropertyNames = [...]string{
	"HasChain",
	"OutGlue",
	"InGlue",
	"OptInGlue",
	"MemOperand",
}

func (self Property) Has(p Property) bool {
	return self&p == p
}

func (self Property) String() string {
	var buf []string
	for i, v := range _PropertyNames {
		if self&(1<<i) != 0 {
			buf = append(buf, v)
		}
	}
	return "[" + strings.Join(buf, ",") + "]"
}

// ParseProperty is the inverse of a single Property name.
func ParseProperty(name string) (Property, bool) {
	for i, v := range _PropertyNames {
		if v == name || "SDNP"+v == name {
			return 1 << i, true
		}
	}
	return 0, false
}

// NodeInfo describes a DAG opcode.
type NodeInfo struct {
	Name       string
	EnumName   string
	NumResults int
	Types      []ValueType
	Properties Property
}

// KnownType returns the fixed type of result res, or Other when the
// opcode does not constrain it.
func (self *NodeInfo) KnownType(res int) ValueType {
	if res < len(self.Types) {
		return self.Types[res]
	} else {
		return Other
	}
}

func (self *NodeInfo) String() string {
	if self == nil {
		return "<nil>"
	} else {
		return self.EnumName
	}
}

// Pattern is the rewrite rule a completion node belongs to.
type Pattern struct {
	Name       string
	Source     *NodeInfo
	Complexity int
}

func (self *Pattern) String() string {
	if self == nil {
		return "<nil>"
	} else {
		return self.Name
	}
}

// PropertyOracle answers whether the source side of a pattern needs a
// property to be threaded through the selected node.
type PropertyOracle interface {
	PatternHasProperty(p *Pattern, prop Property) bool
}
