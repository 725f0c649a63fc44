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

package trace

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCounter_Counts(t *testing.T) {
	c := NewCounter()
	c.Emit(Event{Kind: Fuse, Rule: "MoveChild+CheckType"})
	c.Emit(Event{Kind: Fuse, Rule: "MoveChild+CheckType"})
	c.Emit(Event{Kind: Merge})
	c.Emit(Event{Kind: _EventKindMax + 1})
	require.Equal(t, 2, c.Count(Fuse))
	require.Equal(t, 1, c.Count(Merge))
	require.Equal(t, 0, c.Count(Hoist))
	require.Equal(t, 0, c.Count(_EventKindMax+1))
	require.Equal(t, 2, c.Rule("MoveChild+CheckType"))

	/* the snapshot is detached */
	rules := c.Rules()
	rules["MoveChild+CheckType"] = 100
	require.Equal(t, 2, c.Rule("MoveChild+CheckType"))
}

func TestTee_Fanout(t *testing.T) {
	a, b := NewCounter(), NewCounter()
	var seen []EventKind
	s := Tee(a, b, Func(func(ev Event) { seen = append(seen, ev.Kind) }))
	s.Emit(Event{Kind: Hoist})
	s.Emit(Event{Kind: Collapse})
	require.Equal(t, 1, a.Count(Hoist))
	require.Equal(t, 1, b.Count(Collapse))
	require.Equal(t, []EventKind{Hoist, Collapse}, seen)
}

func TestIsDiscard(t *testing.T) {
	require.True(t, IsDiscard(Discard))
	require.True(t, IsDiscard(nil))
	require.False(t, IsDiscard(NewCounter()))
}

func TestSpew_Output(t *testing.T) {
	var buf bytes.Buffer
	Spew(&buf).Emit(Event{Pass: "Global Factoring", Kind: SwitchOpcode, Node: "Scope", Count: 3})
	out := buf.String()
	require.Contains(t, out, "[Global Factoring] SwitchOpcode ")
	require.Contains(t, out, `Node: (string) (len=5) "Scope"`)
	require.Contains(t, out, "Count: (int) 3")
}

func TestEventKind_String(t *testing.T) {
	require.Equal(t, "MergeFailed", MergeFailed.String())
	require.Equal(t, "EventKind(200)", EventKind(200).String())
}
