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

// Package oracle provides answers to "does the source pattern of this rule
// need a chain or glue" for the matcher optimizer.
package oracle

import (
	"github.com/cloudwego/matchopt/matcher"
)

// Inferred answers from the properties of the pattern's source root node.
type Inferred struct{}

func (Inferred) PatternHasProperty(p *matcher.Pattern, prop matcher.Property) bool {
	return p != nil && p.Source != nil && p.Source.Properties.Has(prop)
}

// Table is an explicit per-pattern property table. Patterns missing from
// the table are answered by Fallback, or reported as having no property
// when Fallback is nil.
type Table struct {
	Props    map[string]matcher.Property
	Fallback matcher.PropertyOracle
}

func NewTable(fallback matcher.PropertyOracle) *Table {
	return &Table{
		Props:    make(map[string]matcher.Property),
		Fallback: fallback,
	}
}

// Set records the properties of the named pattern, replacing any previous entry.
func (self *Table) Set(pattern string, props matcher.Property) {
	self.Props[pattern] = props
}

func (self *Table) PatternHasProperty(p *matcher.Pattern, prop matcher.Property) bool {
	if p == nil {
		return false
	} else if v, ok := self.Props[p.Name]; ok {
		return v.Has(prop)
	} else if self.Fallback != nil {
		return self.Fallback.PatternHasProperty(p, prop)
	} else {
		return false
	}
}
