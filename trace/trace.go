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

// Package trace carries diagnostic events out of the matcher optimizer.
// A sink is passed in by the caller; nothing here is global.
package trace

import (
	"fmt"
	"io"
	"sync"

	"github.com/davecgh/go-spew/spew"
)

type EventKind uint8

const (
	PassBegin EventKind = iota
	PassEnd
	Fuse
	Eliminate
	Reorder
	Merge
	MergeFailed
	Hoist
	Collapse
	SwitchOpcode
	SwitchType
	_EventKindMax
)

var _EventNames = [_EventKindMax]string{
	PassBegin:    "PassBegin",
	PassEnd:      "PassEnd",
	Fuse:         "Fuse",
	Eliminate:    "Eliminate",
	Reorder:      "Reorder",
	Merge:        "Merge",
	MergeFailed:  "MergeFailed",
	Hoist:        "Hoist",
	Collapse:     "Collapse",
	SwitchOpcode: "SwitchOpcode",
	SwitchType:   "SwitchType",
}

func (self EventKind) String() string {
	if self < _EventKindMax {
		return _EventNames[self]
	} else {
		return fmt.Sprintf("EventKind(%d)", uint8(self))
	}
}

// Event is a single structured diagnostic.
type Event struct {
	Pass        string
	Kind        EventKind
	Rule        string
	Node        string
	Other       string
	Count       int
	Fingerprint uint64
}

// Sink receives events. Implementations need not be safe for concurrent
// use unless they are shared between optimizer runs.
type Sink interface {
	Emit(ev Event)
}

type discard struct{}

func (discard) Emit(Event) {}

// Discard drops every event.
var Discard Sink = discard{}

// IsDiscard reports whether s drops every event, so that callers can skip
// building expensive events.
func IsDiscard(s Sink) bool {
	_, ok := s.(discard)
	return s == nil || ok
}

// Func adapts a plain function into a Sink.
type Func func(ev Event)

func (self Func) Emit(ev Event) {
	self(ev)
}

// Counter counts events per kind and per rule.
type Counter struct {
	mu    sync.Mutex
	kinds [_EventKindMax]int
	rules map[string]int
}

func NewCounter() *Counter {
	return &Counter{rules: make(map[string]int)}
}

func (self *Counter) Emit(ev Event) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if ev.Kind < _EventKindMax {
		self.kinds[ev.Kind]++
	}
	if ev.Rule != "" {
		self.rules[ev.Rule]++
	}
}

// Count returns how many events of kind k have been seen.
func (self *Counter) Count(k EventKind) int {
	self.mu.Lock()
	defer self.mu.Unlock()
	if k < _EventKindMax {
		return self.kinds[k]
	} else {
		return 0
	}
}

// Rule returns how many times the named rewrite rule fired.
func (self *Counter) Rule(name string) int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.rules[name]
}

// Rules returns a copy of the per-rule counters.
func (self *Counter) Rules() map[string]int {
	self.mu.Lock()
	defer self.mu.Unlock()
	ret := make(map[string]int, len(self.rules))
	for k, v := range self.rules {
		ret[k] = v
	}
	return ret
}

// Tee sends every event to all of the sinks.
func Tee(sinks ...Sink) Sink {
	return Func(func(ev Event) {
		for _, s := range sinks {
			s.Emit(ev)
		}
	})
}

type spewSink struct {
	w   io.Writer
	cfg *spew.ConfigState
}

// Spew dumps every event to w.
func Spew(w io.Writer) Sink {
	return &spewSink{
		w: w,
		cfg: &spew.ConfigState{
			Indent:                  "    ",
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		},
	}
}

func (self *spewSink) Emit(ev Event) {
	fmt.Fprintf(self.w, "[%s] %s ", ev.Pass, ev.Kind)
	self.cfg.Fdump(self.w, ev)
}
