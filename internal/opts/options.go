/*
 * Copyright 2022 CloudWeGo Authors
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

package opts

import (
	"github.com/cloudwego/matchopt/matcher"
	"github.com/cloudwego/matchopt/oracle"
	"github.com/cloudwego/matchopt/trace"
)

type Options struct {
	Contract bool
	Factor   bool
	Switches bool
	Verify   bool
	Oracle   matcher.PropertyOracle
	Tracer   trace.Sink
}

func (self *Options) CanSwitch() bool {
	return self.Factor && self.Switches
}

func GetDefaultOptions() Options {
	return Options{
		Contract: !NoContract,
		Factor:   !NoFactor,
		Switches: !NoSwitch,
		Verify:   Verify,
		Oracle:   oracle.Inferred{},
		Tracer:   trace.Discard,
	}
}
