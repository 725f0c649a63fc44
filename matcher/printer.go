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
	"io"
	"strings"

	"github.com/bytedance/gopkg/util/xxhash3"
)

// Dump writes the program rooted at m as an indented listing.
func Dump(w io.Writer, m Matcher) {
	dump(w, m, 0)
}

// Format returns the listing produced by Dump.
func Format(m Matcher) string {
	var sb strings.Builder
	Dump(&sb, m)
	return sb.String()
}

// Fingerprint hashes the listing of the program. Structurally identical
// programs have the same fingerprint; the converse only holds up to hash
// collisions.
func Fingerprint(m Matcher) uint64 {
	return xxhash3.HashString(Format(m))
}

func dump(w io.Writer, m Matcher, indent int) {
	pad := strings.Repeat("  ", indent)

	/* empty chains always fail */
	if m == nil {
		fmt.Fprintf(w, "%s<null>\n", pad)
		return
	}

	/* walk the chain, only children need recursion */
	for ; m != nil; m = m.Next() {
		fmt.Fprintf(w, "%s%s\n", pad, m)

		/* dump the children */
		switch p := m.(type) {
		case *ScopeMatcher:
			for i := 0; i < p.NumChildren(); i++ {
				fmt.Fprintf(w, "%s  /* %d */\n", pad, i)
				dump(w, p.Child(i), indent+2)
			}
		case *SwitchOpcodeMatcher:
			for _, c := range p.Cases {
				fmt.Fprintf(w, "%s  case %s:\n", pad, c.Opcode)
				dump(w, c.Body, indent+2)
			}
		case *SwitchTypeMatcher:
			for _, c := range p.Cases {
				fmt.Fprintf(w, "%s  case %s:\n", pad, c.Type)
				dump(w, c.Body, indent+2)
			}
		}
	}
}

// Size counts every node of the program, children included.
func Size(m Matcher) int {
	n := 0
	for ; m != nil; m = m.Next() {
		n++
		switch p := m.(type) {
		case *ScopeMatcher:
			for i := 0; i < p.NumChildren(); i++ {
				n += Size(p.Child(i))
			}
		case *SwitchOpcodeMatcher:
			for _, c := range p.Cases {
				n += Size(c.Body)
			}
		case *SwitchTypeMatcher:
			for _, c := range p.Cases {
				n += Size(c.Body)
			}
		}
	}
	return n
}
