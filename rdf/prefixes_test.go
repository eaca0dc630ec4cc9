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
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_PrefixMap(t *testing.T) {
	m := PrefixMap{
		"ex":   "http://example.org/",
		"exns": "http://example.org/ns#",
		"a":    "http://example.org/ns#",
	}
	tests := []struct {
		name      string
		in        string
		expanded  string
		shortened string
	}{
		{"prefixed", "ex:foo", "http://example.org/foo", "ex:foo"},
		{"full", "http://example.org/foo", "http://example.org/foo", "ex:foo"},
		{"bracketed", "<http://example.org/foo>", "http://example.org/foo", "ex:foo"},
		{"longest namespace wins", "http://example.org/ns#x", "http://example.org/ns#x", "a:x"},
		{"unknown prefix", "urn:sg:source", "urn:sg:source", "urn:sg:source"},
		{"scheme is not a prefix", "ex://host/x", "ex://host/x", "ex://host/x"},
		{"invalid local name", "http://example.org/a/b", "http://example.org/a/b", "http://example.org/a/b"},
		{"empty local name", "http://example.org/", "http://example.org/", "ex:"},
		{"no colon", "relative.json", "relative.json", "relative.json"},
		{"spaces", "  ex:foo ", "http://example.org/foo", "ex:foo"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expanded, m.Expand(test.in))
			assert.Equal(t, test.shortened, m.Normalize(test.in))
		})
	}
}

func Test_PrefixMapNil(t *testing.T) {
	var m PrefixMap
	assert.Equal(t, "ex:foo", m.Expand("ex:foo"))
	assert.Equal(t, "http://example.org/foo", m.Shorten("http://example.org/foo"))
	assert.Empty(t, m.Sorted())
}

func Test_PrefixMapSorted(t *testing.T) {
	m := PrefixMap{"b": "urn:b/", "a": "urn:a/", "c": "urn:c/"}
	assert.Equal(t, []Prefix{
		{Name: "a", Namespace: "urn:a/"},
		{Name: "b", Namespace: "urn:b/"},
		{Name: "c", Namespace: "urn:c/"},
	}, m.Sorted())
}

func Test_validLocalName(t *testing.T) {
	assert := assert.New(t)
	assert.True(validLocalName("foo"))
	assert.True(validLocalName("foo_bar-1.x"))
	assert.True(validLocalName("ça"))
	assert.False(validLocalName("-foo"))
	assert.False(validLocalName("foo."))
	assert.False(validLocalName("a/b"))
	assert.False(validLocalName("a#b"))
}
