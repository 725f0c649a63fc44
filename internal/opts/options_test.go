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

package opts

import (
	"testing"

	"github.com/cloudwego/matchopt/oracle"
	"github.com/cloudwego/matchopt/trace"
	"github.com/stretchr/testify/require"
)

func TestOptions_Defaults(t *testing.T) {
	o := GetDefaultOptions()
	require.Equal(t, !NoContract, o.Contract)
	require.Equal(t, !NoFactor, o.Factor)
	require.Equal(t, Verify, o.Verify)
	require.Equal(t, oracle.Inferred{}, o.Oracle)
	require.True(t, trace.IsDiscard(o.Tracer))
}

func TestOptions_CanSwitch(t *testing.T) {
	o := Options{Factor: true, Switches: true}
	require.True(t, o.CanSwitch())
	o.Factor = false
	require.False(t, o.CanSwitch())
	o = Options{Factor: true}
	require.False(t, o.CanSwitch())
}
