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

package interp

import (
	"fmt"
	"strings"

	"github.com/cloudwego/matchopt/matcher"
)

// Node is a node of the selection DAG the matcher runs on. Result types
// are always concrete, so an IPTR check is answered as an i64 check.
type Node struct {
	ID       int
	Opcode   string
	Types    []matcher.ValueType
	Children []*Node
	Const    bool
	Value    int64
	CondCode string
	VTName   string
	Preds    map[string]bool
	AllOnes  bool
	AllZeros bool
	Foldable bool
}

// Undef stands for a child that does not exist. It has no results and
// passes no checks, but the cursor can still move through it.
var Undef = &Node{ID: -1, Opcode: "<undef>"}

// NewNode creates a node with the result types taken from the opcode.
func NewNode(id int, op *matcher.NodeInfo, children ...*Node) *Node {
	return &Node{
		ID:       id,
		Opcode:   op.EnumName,
		Types:    append([]matcher.ValueType(nil), op.Types...),
		Children: children,
	}
}

// Child returns child i, or Undef if there is no such child.
func (self *Node) Child(i int) *Node {
	if self == nil || i < 0 || i >= len(self.Children) || self.Children[i] == nil {
		return Undef
	} else {
		return self.Children[i]
	}
}

// HasType reports whether result res of the node has type vt.
func (self *Node) HasType(res int, vt matcher.ValueType) bool {
	if res < 0 || res >= len(self.Types) {
		return false
	} else if vt == matcher.IPTR {
		return self.Types[res] == matcher.I64
	} else {
		return self.Types[res] == vt
	}
}

func (self *Node) String() string {
	if self == Undef {
		return "undef"
	} else {
		return fmt.Sprintf("n%d", self.ID)
	}
}

// Dump writes the DAG rooted at the node, one node per line.
func (self *Node) Dump() string {
	var sb strings.Builder
	self.dump(&sb, 0)
	return sb.String()
}

func (self *Node) dump(sb *strings.Builder, indent int) {
	fmt.Fprintf(sb, "%s%s %s %v", strings.Repeat("  ", indent), self, self.Opcode, self.Types)
	if self.Const {
		fmt.Fprintf(sb, " = %d", self.Value)
	}
	if self.CondCode != "" {
		fmt.Fprintf(sb, " cc=%s", self.CondCode)
	}
	sb.WriteByte('\n')
	for i := range self.Children {
		self.Child(i).dump(sb, indent+1)
	}
}
