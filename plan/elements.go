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

	"github.com/ebay/sparqlgen/rdf"
)

// An Element is a binding clause of a plan. Every Element type is a
// comparable value, so elements can be compared with ==.
type Element interface {
	String() string
	anElement()
}

// ImplementElement is a list of types that implement Element. This serves as
// documentation and as a compile-time check.
var ImplementElement = []Element{
	SourceElement{},
	IteratorElement{},
	BindElement{},
}

// A SourceElement declares an external document to be loaded and bound, as a
// literal, to a variable.
type SourceElement struct {
	// The document's identifier, usually an IRI.
	Source rdf.Term
	// The media type to request, like "application/json". May be empty.
	Accept string
	// The variable the document is bound to.
	Var string
}

func (SourceElement) anElement() {}

// String returns a string like "SOURCE <urn:x> ACCEPT application/json AS ?doc".
func (e SourceElement) String() string {
	if e.Accept == "" {
		return fmt.Sprintf("SOURCE %v AS ?%s", e.Source, e.Var)
	}
	return fmt.Sprintf("SOURCE %v ACCEPT %s AS ?%s", e.Source, e.Accept, e.Var)
}

// Identifier returns the normalized identifier of the source, using the given
// prefixes. Sources that are IRIs are compacted where possible; any other term
// is identified by its N-Triples form.
func (e SourceElement) Identifier(prefixes rdf.PrefixMap) string {
	if iri, ok := e.Source.(rdf.IRI); ok {
		return prefixes.Normalize(string(iri))
	}
	if e.Source == nil {
		return ""
	}
	return e.Source.String()
}

// An IteratorElement calls an iterator function on an operand and binds each
// of its results in turn to a variable.
type IteratorElement struct {
	Function rdf.IRI
	Arg      Operand
	Var      string
}

func (IteratorElement) anElement() {}

// String returns a string like "ITERATOR <fn>(?doc) AS ?key".
func (e IteratorElement) String() string {
	return fmt.Sprintf("ITERATOR %v(%v) AS ?%s", e.Function, e.Arg, e.Var)
}

// A BindElement binds the value of an operand to a variable.
type BindElement struct {
	Value Operand
	Var   string
}

func (BindElement) anElement() {}

// String returns a string like "BIND(?x AS ?y)".
func (e BindElement) String() string {
	return fmt.Sprintf("BIND(%v AS ?%s)", e.Value, e.Var)
}

// An Operand is a Variable or a Constant.
type Operand interface {
	String() string
	// resolve returns the value of the operand under the given binding, or
	// false if it's an unbound variable.
	resolve(rdf.Binding) (rdf.Term, bool)
}

// ImplementOperand is a list of types that implement Operand. This serves as
// documentation and as a compile-time check.
var ImplementOperand = []Operand{
	Variable(""),
	Constant{},
}

// A Variable is an Operand naming a variable, without the leading '?'.
type Variable string

// String returns a string like "?foo".
func (v Variable) String() string {
	return "?" + string(v)
}

func (v Variable) resolve(b rdf.Binding) (rdf.Term, bool) {
	t, ok := b[string(v)]
	return t, ok && t != nil
}

// A Constant is an Operand with a fixed value.
type Constant struct {
	Term rdf.Term
}

func (c Constant) String() string {
	return c.Term.String()
}

func (c Constant) resolve(rdf.Binding) (rdf.Term, bool) {
	return c.Term, c.Term != nil
}

// A Pattern is a template for one statement. It's instantiated once per
// solution.
type Pattern struct {
	Subject   Operand
	Predicate Operand
	Object    Operand
}

func (p Pattern) String() string {
	return fmt.Sprintf("%v %v %v .", p.Subject, p.Predicate, p.Object)
}
