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

package opt

import (
	"github.com/cloudwego/matchopt/internal/opts"
	"github.com/cloudwego/matchopt/internal/verify"
	"github.com/cloudwego/matchopt/matcher"
	"github.com/cloudwego/matchopt/oracle"
	"github.com/cloudwego/matchopt/trace"
)

type Pass interface {
	Apply(ctx *Context, mp *matcher.Matcher)
}

type PassDescriptor struct {
	Pass Pass
	Name string
	Skip func(o *opts.Options) bool
}

var Passes = [...]PassDescriptor{
	{Name: "Local Contraction", Pass: new(Contract), Skip: func(o *opts.Options) bool { return !o.Contract }},
	{Name: "Global Factoring", Pass: new(Factor), Skip: func(o *opts.Options) bool { return !o.Factor }},
}

// Context is the state of one optimizer run, shared by all the passes.
type Context struct {
	pass     string
	oracle   matcher.PropertyOracle
	tracer   trace.Sink
	contract bool
	switches bool
}

func newContext(o *opts.Options) *Context {
	ctx := &Context{
		oracle:   o.Oracle,
		tracer:   o.Tracer,
		contract: o.Contract,
		switches: o.CanSwitch(),
	}

	/* fill in the defaults */
	if ctx.oracle == nil {
		ctx.oracle = oracle.Inferred{}
	}
	if ctx.tracer == nil {
		ctx.tracer = trace.Discard
	}
	return ctx
}

func (self *Context) emit(ev trace.Event) {
	ev.Pass = self.pass
	self.tracer.Emit(ev)
}

func (self *Context) stat(kind trace.EventKind, m matcher.Matcher) {
	if !trace.IsDiscard(self.tracer) {
		self.emit(trace.Event{Kind: kind, Count: matcher.Size(m), Fingerprint: matcher.Fingerprint(m)})
	}
}

func (self *Context) check(m matcher.Matcher) {
	if err := verify.Check(m); err != nil {
		panic(err)
	}
}

// Optimize runs every enabled pass over the program rooted at m, and
// returns the new root. m is consumed.
func Optimize(m matcher.Matcher, o opts.Options) matcher.Matcher {
	ctx := newContext(&o)

	/* the input must already be well-formed */
	if o.Verify {
		ctx.check(m)
	}

	/* run the passes in order */
	for _, p := range Passes {
		if p.Skip != nil && p.Skip(&o) {
			continue
		}

		/* apply the pass */
		ctx.pass = p.Name
		ctx.stat(trace.PassBegin, m)
		p.Pass.Apply(ctx, &m)
		ctx.stat(trace.PassEnd, m)

		/* check the invariants after every pass if needed */
		if o.Verify {
			ctx.check(m)
		}
	}

	/* all done */
	return m
}
