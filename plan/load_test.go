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

package plan

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/ebay/sparqlgen/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePlan = `
base: http://example.org/base/
prefixes:
  ex: http://example.org/
  iter: http://w3id.org/sparql-generate/iter/
clauses:
  - source: <urn:sg:source>
    accept: application/json
    as: doc
  - iterator: iter:JSONListKeys
    arg: ?doc
    as: key
  - bind: '"v\n1"^^ex:type'
    as: ?label
template:
  - ['ex:thing', 'ex:hasKey', '?key']
  - ['_:b', '<rel>', '?label']
`

func Test_Parse(t *testing.T) {
	p, err := Parse([]byte(samplePlan))
	require.NoError(t, err)
	assert.Equal(t, "http://example.org/base/", p.Base())
	assert.Equal(t, rdf.PrefixMap{
		"ex":   "http://example.org/",
		"iter": "http://w3id.org/sparql-generate/iter/",
	}, p.Prefixes())
	assert.Equal(t, []Element{
		SourceElement{Source: rdf.IRI("urn:sg:source"), Accept: "application/json", Var: "doc"},
		IteratorElement{Function: listKeys, Arg: Variable("doc"), Var: "key"},
		BindElement{Value: Constant{rdf.Typed("v\n1", "http://example.org/type")}, Var: "label"},
	}, p.Elements())
	assert.Equal(t, []Pattern{
		{Constant{rdf.IRI(ex + "thing")}, Constant{rdf.IRI(ex + "hasKey")}, Variable("key")},
		{Constant{rdf.BlankNode("b")}, Constant{rdf.IRI(ex + "base/rel")}, Variable("label")},
	}, p.Template)
}

func Test_ParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{"unknown field", "clauses: []\nbogus: 1\n", "field bogus not found"},
		{"two kinds", "clauses:\n- {source: '<urn:a>', bind: '<urn:b>', as: x}\n",
			"clause 1: exactly one of source, iterator, and bind must be set"},
		{"no var", "clauses:\n- {source: '<urn:a>'}\n", "clause 1: missing variable name in 'as'"},
		{"unknown prefix", "clauses:\n- {bind: 'nope:x', as: x}\n", `clause 1: unknown prefix in "nope:x"`},
		{"mistyped prefix", "prefixes: {ex: 'http://example.org/'}\ntemplate:\n- ['exx:alice', 'ex:p', 'ex:o']\n",
			`template pattern 1: unknown prefix in "exx:alice"`},
		{"unbracketed IRI", "template:\n- ['http://example.org/s', '<urn:p>', '<urn:o>']\n",
			`template pattern 1: unknown prefix in "http://example.org/s"`},
		{"literal function", "clauses:\n- {iterator: '\"f\"', arg: '?x', as: y}\n",
			`clause 1: iterator function must be an IRI, got "f"`},
		{"short pattern", "template:\n- ['<urn:s>', '<urn:p>']\n", "template pattern 1: expected 3 terms, got 2"},
		{"unterminated literal", "template:\n- ['<urn:s>', '<urn:p>', '\"x']\n",
			`template pattern 1: unterminated literal "x`},
		{"bad suffix", "template:\n- ['<urn:s>', '<urn:p>', '\"x\"@en']\n",
			`template pattern 1: unexpected "@en" after literal`},
		{"empty var", "template:\n- ['?', '<urn:p>', '<urn:o>']\n", "template pattern 1: empty variable name"},
		{"bare word", "template:\n- [koala, '<urn:p>', '<urn:o>']\n", `template pattern 1: can't parse term "koala"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.input))
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tc.errMsg)
			}
		})
	}
}

func Test_LoadFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "plan")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	good := filepath.Join(dir, "plan.yaml")
	require.NoError(t, ioutil.WriteFile(good, []byte(samplePlan), 0644))
	p, err := LoadFile(good)
	require.NoError(t, err)
	assert.Len(t, p.Clauses, 3)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, ioutil.WriteFile(bad, []byte("template:\n- ['<urn:s>']\n"), 0644))
	_, err = LoadFile(bad)
	assert.EqualError(t, err, "error loading plan from "+bad+": template pattern 1: expected 3 terms, got 1")

	missing := filepath.Join(dir, "missing.yaml")
	_, err = LoadFile(missing)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "error loading plan from "+missing+": ")
	}
}
