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

package oracle

import (
	"fmt"
	"io"
	"os"

	"github.com/cloudwego/matchopt/matcher"
	"gopkg.in/yaml.v3"
)

type tableFile struct {
	Patterns map[string][]string `yaml:"patterns"`
}

// Load reads a property table in the following form, property names may
// carry the "SDNP" prefix:
//
//	patterns:
//	  STORE32mr: [HasChain, MemOperand]
//	  CMP32rr:   [OutGlue]
//
// The returned table falls back to Inferred for unknown patterns.
func Load(r io.Reader) (*Table, error) {
	var tf tableFile
	dec := yaml.NewDecoder(r)

	/* an empty document is an empty table */
	if err := dec.Decode(&tf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("oracle: cannot decode property table: %w", err)
	}

	/* convert every property list */
	ret := NewTable(Inferred{})
	for name, props := range tf.Patterns {
		var v matcher.Property
		for _, p := range props {
			if pv, ok := matcher.ParseProperty(p); !ok {
				return nil, fmt.Errorf("oracle: pattern %s: unknown property %q", name, p)
			} else {
				v |= pv
			}
		}
		ret.Set(name, v)
	}
	return ret, nil
}

// LoadFile is Load on the named file.
func LoadFile(path string) (*Table, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("oracle: %w", err)
	}
	defer fp.Close()
	return Load(fp)
}
