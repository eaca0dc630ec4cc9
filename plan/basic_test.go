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
	"context"
	"strings"
	"testing"

	"github.com/ebay/sparqlgen/iterfn"
	"github.com/ebay/sparqlgen/rdf"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ex       = "http://example.org/"
	listKeys = rdf.IRI(iterfn.Namespace + "JSONListKeys")
)

// keysPlan returns a plan that emits one statement per key of the JSON object
// in the given source.
func keysPlan(source rdf.IRI) *Basic {
	return &Basic{
		PrefixMap: rdf.PrefixMap{"ex": ex},
		Clauses: []Element{
			SourceElement{Source: source, Accept: "application/json", Var: "doc"},
			IteratorElement{Function: listKeys, Arg: Variable("doc"), Var: "key"},
		},
		Template: []Pattern{{
			Subject:   Constant{rdf.IRI(ex + "thing")},
			Predicate: Constant{rdf.IRI(ex + "hasKey")},
			Object:    Variable("key"),
		}},
	}
}

// run evaluates p and returns the emitted statements, formatted.
func run(t *testing.T, p Plan, ectx *Context) ([]string, error) {
	var res []string
	err := p.Evaluate(context.Background(), EmptyDataset(), nil, ectx, func(s rdf.Statement) error {
		res = append(res, s.String())
		return nil
	})
	return res, err
}

func Test_BasicKeys(t *testing.T) {
	locator := MapLocator{
		"urn:sg:source": {Content: `{"b": 1, "a": 2, "c": 3}`},
	}
	res, err := run(t, keysPlan("urn:sg:source"), &Context{Locator: locator})
	require.NoError(t, err)
	assert.Equal(t, []string{
		`<http://example.org/thing> <http://example.org/hasKey> "b" .`,
		`<http://example.org/thing> <http://example.org/hasKey> "a" .`,
		`<http://example.org/thing> <http://example.org/hasKey> "c" .`,
	}, res)
}

func Test_BasicMissingSource(t *testing.T) {
	logger, hook := test.NewNullLogger()
	res, err := run(t, keysPlan("urn:sg:nowhere"), &Context{
		Locator: MapLocator{},
		Logger:  logger,
	})
	assert.NoError(t, err)
	assert.Empty(t, res)
	entry := hook.LastEntry()
	if assert.NotNil(t, entry) {
		assert.Equal(t, logrus.WarnLevel, entry.Level)
		assert.Equal(t, "Source not found, leaving variable unbound", entry.Message)
	}
}

func Test_BasicNoLocator(t *testing.T) {
	res, err := run(t, keysPlan("urn:sg:source"), nil)
	assert.NoError(t, err)
	assert.Empty(t, res)
}

type failingLocator struct{}

func (failingLocator) Open(ctx context.Context, iri string, accept string) (Document, error) {
	return Document{}, assert.AnError
}

func Test_BasicLocatorError(t *testing.T) {
	_, err := run(t, keysPlan("urn:sg:source"), &Context{Locator: failingLocator{}})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "loading source <urn:sg:source>")
	}
}

func Test_BasicNoEvaluation(t *testing.T) {
	locator := MapLocator{"urn:sg:source": {Content: `[1, 2]`}}
	p := keysPlan("urn:sg:source")

	res, err := run(t, p, &Context{Locator: locator})
	assert.NoError(t, err)
	assert.Empty(t, res)

	_, err = run(t, p, &Context{Locator: locator, StrictIterators: true})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected a JSON object")
}

func Test_BasicUnknownFunction(t *testing.T) {
	p := &Basic{
		Clauses: []Element{
			BindElement{Value: Constant{rdf.String("x")}, Var: "x"},
			IteratorElement{Function: ex + "nope", Arg: Variable("x"), Var: "y"},
		},
	}
	_, err := run(t, p, nil)
	assert.EqualError(t, err, "no iterator function registered as <http://example.org/nope>")
}

func Test_BasicSkipsUnboundAndInvalid(t *testing.T) {
	p := &Basic{
		Clauses: []Element{
			BindElement{Value: Constant{rdf.String("lit")}, Var: "lit"},
			BindElement{Value: Variable("missing"), Var: "alsoMissing"},
		},
		Template: []Pattern{
			{Constant{rdf.IRI(ex + "s")}, Constant{rdf.IRI(ex + "p")}, Variable("lit")},
			{Constant{rdf.IRI(ex + "s")}, Constant{rdf.IRI(ex + "p")}, Variable("alsoMissing")},
			{Variable("lit"), Constant{rdf.IRI(ex + "p")}, Constant{rdf.IRI(ex + "o")}},
		},
	}
	res, err := run(t, p, nil)
	assert.NoError(t, err)
	assert.Equal(t, []string{`<http://example.org/s> <http://example.org/p> "lit" .`}, res)
}

func Test_BasicFreshBlankNodes(t *testing.T) {
	locator := MapLocator{"urn:sg:source": {Content: `{"a": 1, "b": 2}`}}
	p := keysPlan("urn:sg:source")
	p.Template = []Pattern{
		{Constant{rdf.BlankNode("k")}, Constant{rdf.IRI(ex + "name")}, Variable("key")},
		{Constant{rdf.BlankNode("k")}, Constant{rdf.IRI(ex + "in")}, Constant{rdf.IRI(ex + "doc")}},
	}
	var statements []rdf.Statement
	err := p.Evaluate(context.Background(), nil, nil, &Context{Locator: locator}, func(s rdf.Statement) error {
		statements = append(statements, s)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, statements, 4)
	assert.Equal(t, statements[0].Subject, statements[1].Subject)
	assert.Equal(t, statements[2].Subject, statements[3].Subject)
	assert.NotEqual(t, statements[0].Subject, statements[2].Subject)
	assert.NotEqual(t, rdf.BlankNode("k"), statements[0].Subject)
}

func Test_BasicEmitErrorStops(t *testing.T) {
	locator := MapLocator{"urn:sg:source": {Content: `{"a": 1, "b": 2, "c": 3}`}}
	calls := 0
	err := keysPlan("urn:sg:source").Evaluate(context.Background(), nil, nil, &Context{Locator: locator},
		func(s rdf.Statement) error {
			calls++
			return assert.AnError
		})
	assert.Equal(t, assert.AnError, err)
	assert.Equal(t, 1, calls)
}

func Test_BasicCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	locator := MapLocator{"urn:sg:source": {Content: `{"a": 1}`}}
	err := keysPlan("urn:sg:source").Evaluate(ctx, nil, nil, &Context{Locator: locator},
		func(s rdf.Statement) error {
			t.Errorf("unexpected statement %v", s)
			return nil
		})
	assert.Equal(t, context.Canceled, err)
}

func Test_BasicSourceDatatype(t *testing.T) {
	locator := MapLocator{
		"urn:a": {Content: "a", MediaType: "text/csv"},
		"urn:b": {Content: "b"},
	}
	tests := []struct {
		source rdf.IRI
		accept string
		exp    rdf.Literal
	}{
		{"urn:a", "application/json", rdf.Typed("a", rdf.MediaType("application/json"))},
		{"urn:a", "", rdf.Typed("a", rdf.MediaType("text/csv"))},
		{"urn:b", "", rdf.String("b")},
	}
	for _, tc := range tests {
		t.Run(string(tc.source)+" "+tc.accept, func(t *testing.T) {
			p := &Basic{
				Clauses: []Element{
					SourceElement{Source: tc.source, Accept: tc.accept, Var: "doc"},
				},
				Template: []Pattern{
					{Constant{rdf.IRI(ex + "s")}, Constant{rdf.IRI(ex + "p")}, Variable("doc")},
				},
			}
			var got []rdf.Term
			err := p.Evaluate(context.Background(), nil, nil, &Context{Locator: locator}, func(s rdf.Statement) error {
				got = append(got, s.Object)
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, []rdf.Term{tc.exp}, got)
		})
	}
}

// countingLocator wraps a Locator and counts calls to Open.
type countingLocator struct {
	Locator
	opens int
}

func (l *countingLocator) Open(ctx context.Context, iri string, accept string) (Document, error) {
	l.opens++
	return l.Locator.Open(ctx, iri, accept)
}

func Test_BasicLoadsSourceOnce(t *testing.T) {
	locator := &countingLocator{Locator: MapLocator{
		"urn:list": {Content: `{"x": 1, "y": 2}`},
		"urn:doc":  {Content: "doc"},
	}}
	p := &Basic{
		Clauses: []Element{
			SourceElement{Source: rdf.IRI("urn:list"), Var: "list"},
			IteratorElement{Function: listKeys, Arg: Variable("list"), Var: "key"},
			SourceElement{Source: rdf.IRI("urn:doc"), Var: "doc"},
		},
		Template: []Pattern{
			{Constant{rdf.IRI(ex + "s")}, Constant{rdf.IRI(ex + "p")}, Variable("doc")},
		},
	}
	res, err := run(t, p, &Context{Locator: locator})
	require.NoError(t, err)
	assert.Len(t, res, 2)
	assert.Equal(t, 2, locator.opens)
}

func Test_BasicInitialBinding(t *testing.T) {
	p := &Basic{
		Template: []Pattern{
			{Variable("s"), Constant{rdf.IRI(ex + "p")}, Constant{rdf.String("o")}},
		},
	}
	initial := rdf.Binding{"s": rdf.IRI(ex + "x")}
	var res []string
	err := p.Evaluate(context.Background(), nil, initial, nil, func(s rdf.Statement) error {
		res = append(res, s.String())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{`<http://example.org/x> <http://example.org/p> "o" .`}, res)
	assert.Len(t, initial, 1)
}

func Test_BasicWithElements(t *testing.T) {
	p := keysPlan("urn:sg:source")
	replaced := p.WithElements([]Element{
		SourceElement{Source: rdf.IRI("file:///data/a.json"), Var: "doc"},
		p.Clauses[1],
	})
	assert.Equal(t, rdf.IRI("urn:sg:source"), p.Clauses[0].(SourceElement).Source)
	assert.Equal(t, rdf.IRI("file:///data/a.json"), replaced.Elements()[0].(SourceElement).Source)
	assert.Equal(t, p.Prefixes(), replaced.Prefixes())
	assert.Equal(t, p.Template, replaced.(*Basic).Template)
}

func Test_ElementStrings(t *testing.T) {
	assert.Equal(t, "SOURCE <urn:x> AS ?doc",
		SourceElement{Source: rdf.IRI("urn:x"), Var: "doc"}.String())
	assert.Equal(t, "SOURCE <urn:x> ACCEPT application/json AS ?doc",
		SourceElement{Source: rdf.IRI("urn:x"), Accept: "application/json", Var: "doc"}.String())
	assert.Equal(t, "ITERATOR <http://w3id.org/sparql-generate/iter/JSONListKeys>(?doc) AS ?key",
		IteratorElement{Function: listKeys, Arg: Variable("doc"), Var: "key"}.String())
	assert.Equal(t, `BIND("x" AS ?y)`, BindElement{Value: Constant{rdf.String("x")}, Var: "y"}.String())
	assert.True(t, strings.HasSuffix(Pattern{Variable("s"), Variable("p"), Variable("o")}.String(), "?o ."))
}

func Test_SourceIdentifier(t *testing.T) {
	prefixes := rdf.PrefixMap{"ex": ex}
	assert.Equal(t, "ex:doc", SourceElement{Source: rdf.IRI(ex + "doc")}.Identifier(prefixes))
	assert.Equal(t, "urn:sg:source", SourceElement{Source: rdf.IRI("urn:sg:source")}.Identifier(prefixes))
	assert.Equal(t, `"x"`, SourceElement{Source: rdf.String("x")}.Identifier(prefixes))
	assert.Equal(t, "", SourceElement{}.Identifier(prefixes))
}
