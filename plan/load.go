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
	"fmt"
	"io/ioutil"
	"net/url"
	"strconv"
	"strings"

	"github.com/ebay/sparqlgen/rdf"
	"gopkg.in/yaml.v2"
)

// planFile is the on-disk form of a Basic plan. JSON documents are accepted
// too, as YAML is a superset of JSON.
type planFile struct {
	Base     string            `yaml:"base"`
	Prefixes map[string]string `yaml:"prefixes"`
	Clauses  []clauseFile      `yaml:"clauses"`
	Template [][]string        `yaml:"template"`
}

// clauseFile holds one clause. Exactly one of Source, Iterator, and Bind must
// be set.
type clauseFile struct {
	Source   string `yaml:"source"`
	Accept   string `yaml:"accept"`
	Iterator string `yaml:"iterator"`
	Arg      string `yaml:"arg"`
	Bind     string `yaml:"bind"`
	As       string `yaml:"as"`
}

// LoadFile reads a Basic plan from the given YAML or JSON file. Upon error, the
// returned error includes the filename.
func LoadFile(filename string) (*Basic, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error loading plan from %v: %v", filename, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("error loading plan from %v: %v", filename, err)
	}
	return p, nil
}

// Parse decodes a Basic plan from a YAML or JSON document. Terms are written
// as in Turtle: "<iri>", "prefix:local", "_:label", `"lexical"^^<datatype>`,
// and "?var" for variables. A prefixed name must use a declared prefix.
func Parse(data []byte) (*Basic, error) {
	var f planFile
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, err
	}
	p := &Basic{
		PrefixMap: rdf.PrefixMap(f.Prefixes),
		BaseIRI:   f.Base,
	}
	terms := termParser{prefixes: p.PrefixMap, base: f.Base}
	for i, c := range f.Clauses {
		e, err := terms.clause(c)
		if err != nil {
			return nil, fmt.Errorf("clause %d: %v", i+1, err)
		}
		p.Clauses = append(p.Clauses, e)
	}
	for i, row := range f.Template {
		if len(row) != 3 {
			return nil, fmt.Errorf("template pattern %d: expected 3 terms, got %d", i+1, len(row))
		}
		var ops [3]Operand
		for j, text := range row {
			op, err := terms.operand(text)
			if err != nil {
				return nil, fmt.Errorf("template pattern %d: %v", i+1, err)
			}
			ops[j] = op
		}
		p.Template = append(p.Template, Pattern{Subject: ops[0], Predicate: ops[1], Object: ops[2]})
	}
	return p, nil
}

type termParser struct {
	prefixes rdf.PrefixMap
	base     string
}

func (tp termParser) clause(c clauseFile) (Element, error) {
	set := 0
	for _, s := range []string{c.Source, c.Iterator, c.Bind} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of source, iterator, and bind must be set")
	}
	name := strings.TrimPrefix(strings.TrimPrefix(c.As, "?"), "$")
	if name == "" {
		return nil, fmt.Errorf("missing variable name in 'as'")
	}
	switch {
	case c.Source != "":
		t, err := tp.term(c.Source)
		if err != nil {
			return nil, err
		}
		return SourceElement{Source: t, Accept: c.Accept, Var: name}, nil
	case c.Iterator != "":
		fn, err := tp.term(c.Iterator)
		if err != nil {
			return nil, err
		}
		iri, ok := fn.(rdf.IRI)
		if !ok {
			return nil, fmt.Errorf("iterator function must be an IRI, got %v", fn)
		}
		arg, err := tp.operand(c.Arg)
		if err != nil {
			return nil, err
		}
		return IteratorElement{Function: iri, Arg: arg, Var: name}, nil
	default:
		value, err := tp.operand(c.Bind)
		if err != nil {
			return nil, err
		}
		return BindElement{Value: value, Var: name}, nil
	}
}

// operand parses a variable or a term.
func (tp termParser) operand(text string) (Operand, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "?") || strings.HasPrefix(text, "$") {
		if len(text) == 1 {
			return nil, fmt.Errorf("empty variable name")
		}
		return Variable(text[1:]), nil
	}
	t, err := tp.term(text)
	if err != nil {
		return nil, err
	}
	return Constant{Term: t}, nil
}

// term parses an IRI, a prefixed name, a blank node, or a literal.
func (tp termParser) term(text string) (rdf.Term, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return nil, fmt.Errorf("empty term")
	case strings.HasPrefix(text, "<"):
		if !strings.HasSuffix(text, ">") {
			return nil, fmt.Errorf("unterminated IRI %s", text)
		}
		return tp.resolve(text[1 : len(text)-1])
	case strings.HasPrefix(text, "_:"):
		if len(text) == 2 {
			return nil, fmt.Errorf("empty blank node label")
		}
		return rdf.BlankNode(text[2:]), nil
	case strings.HasPrefix(text, `"`):
		return tp.literal(text)
	}
	colon := strings.IndexByte(text, ':')
	if colon < 0 {
		return nil, fmt.Errorf("can't parse term %q", text)
	}
	// Absolute IRIs are only accepted in angle brackets.
	if _, known := tp.prefixes[text[:colon]]; !known {
		return nil, fmt.Errorf("unknown prefix in %q", text)
	}
	return rdf.IRI(tp.prefixes.Expand(text)), nil
}

// resolve returns iri as an IRI term, resolved against the base IRI if it's
// relative.
func (tp termParser) resolve(iri string) (rdf.Term, error) {
	if tp.base == "" {
		return rdf.IRI(iri), nil
	}
	ref, err := url.Parse(iri)
	if err != nil {
		return nil, fmt.Errorf("invalid IRI <%s>: %v", iri, err)
	}
	if ref.IsAbs() {
		return rdf.IRI(iri), nil
	}
	base, err := url.Parse(tp.base)
	if err != nil {
		return nil, fmt.Errorf("invalid base IRI <%s>: %v", tp.base, err)
	}
	return rdf.IRI(base.ResolveReference(ref).String()), nil
}

// literal parses `"lexical"` with an optional `^^datatype` suffix.
func (tp termParser) literal(text string) (rdf.Term, error) {
	end := -1
	for i := 1; i < len(text); i++ {
		if text[i] == '\\' {
			i++
			continue
		}
		if text[i] == '"' {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, fmt.Errorf("unterminated literal %s", text)
	}
	lexical, err := strconv.Unquote(text[:end+1])
	if err != nil {
		return nil, fmt.Errorf("invalid literal %s: %v", text, err)
	}
	rest := text[end+1:]
	if rest == "" {
		return rdf.String(lexical), nil
	}
	if !strings.HasPrefix(rest, "^^") {
		return nil, fmt.Errorf("unexpected %q after literal", rest)
	}
	dt, err := tp.term(rest[2:])
	if err != nil {
		return nil, err
	}
	iri, ok := dt.(rdf.IRI)
	if !ok {
		return nil, fmt.Errorf("literal datatype must be an IRI, got %v", dt)
	}
	return rdf.Typed(lexical, string(iri)), nil
}
