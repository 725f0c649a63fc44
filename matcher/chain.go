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

// InvariantError reports a broken structural invariant of a matcher
// program. It is raised with panic by the passes, a bug in the pass rather
// than in its input.
type InvariantError struct {
	Node   string
	Reason string
}

func (self *InvariantError) Error() string {
	if self.Node == "" {
		return "matcher invariant violated: " + self.Reason
	} else {
		return fmt.Sprintf("matcher invariant violated at '%s': %s", self.Node, self.Reason)
	}
}

// Invariantf creates an InvariantError about node m, which may be nil.
func Invariantf(m Matcher, format string, args ...interface{}) *InvariantError {
	ret := &InvariantError{Reason: fmt.Sprintf(format, args...)}
	if m != nil {
		ret.Node = m.String()
	}
	return ret
}

// Chain links the nodes in order and returns the head. The last node keeps
// its own successor, so a chain can end with a Scope or an existing chain.
func Chain(nodes ...Matcher) Matcher {
	if len(nodes) == 0 {
		return nil
	}
	for i := len(nodes) - 2; i >= 0; i-- {
		nodes[i].SetNext(nodes[i+1])
	}
	return nodes[0]
}

// Len counts the nodes of a chain, not descending into children.
func Len(m Matcher) int {
	n := 0
	for ; m != nil; m = m.Next() {
		n++
	}
	return n
}

// Tail returns the last node of a chain.
func Tail(m Matcher) Matcher {
	if m == nil {
		return nil
	}
	for m.Next() != nil {
		m = m.Next()
	}
	return m
}

// FindNodeWithKind returns the first node of kind k in the chain, or nil.
func FindNodeWithKind(m Matcher, k Kind) Matcher {
	for ; m != nil; m = m.Next() {
		if m.Kind() == k {
			return m
		}
	}
	return nil
}

// UnlinkNode removes n from the chain headed by head, and returns the
// remaining chain. n keeps no successor afterwards.
func UnlinkNode(head Matcher, n Matcher) Matcher {
	if head == n {
		return head.TakeNext()
	}

	/* scan until we find the predecessor of n */
	p := head
	for p != nil && p.Next() != n {
		p = p.Next()
	}

	/* not reachable, the pass is broken */
	if p == nil {
		panic(Invariantf(n, "UnlinkNode: node is not reachable from '%s'", head))
	}

	/* splice it out */
	p.TakeNext()
	p.SetNext(n.TakeNext())
	return head
}
