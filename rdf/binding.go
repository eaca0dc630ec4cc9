// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rdf

import (
	"sort"
	"strings"
)

// A Binding maps variable names (without the leading '?') to the terms bound
// to them.
type Binding map[string]Term

// With returns a copy of the binding that additionally binds name to t. The
// receiver is not modified.
func (b Binding) With(name string, t Term) Binding {
	res := make(Binding, len(b)+1)
	for k, v := range b {
		res[k] = v
	}
	res[name] = t
	return res
}

// Clone returns a shallow copy of the binding. Cloning a nil Binding returns
// an empty, non-nil Binding.
func (b Binding) Clone() Binding {
	res := make(Binding, len(b))
	for k, v := range b {
		res[k] = v
	}
	return res
}

// String returns a string like "{?a=<x> ?b="y"}" with variables in name
// order.
func (b Binding) String() string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	var s strings.Builder
	s.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			s.WriteByte(' ')
		}
		s.WriteByte('?')
		s.WriteString(name)
		s.WriteByte('=')
		s.WriteString(b[name].String())
	}
	s.WriteByte('}')
	return s.String()
}
