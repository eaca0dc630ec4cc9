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

// Package rdf defines the values that generation plans produce: terms (IRIs,
// literals, and blank nodes) and the statements they compose into.
package rdf

import (
	"strings"
)

const (
	// XSDString is the datatype IRI of plain string literals.
	XSDString = "http://www.w3.org/2001/XMLSchema#string"
	// MediaTypePrefix is the namespace of datatype IRIs that name IANA media
	// types, such as MediaTypePrefix + "application/json".
	MediaTypePrefix = "http://www.iana.org/assignments/media-types/"
)

// A Term is an RDF value: an IRI, a Literal, or a BlankNode. All
// implementations are comparable value types, so two terms are structurally
// equal exactly when they are ==.
type Term interface {
	// String returns the N-Triples form of the term.
	String() string
	// Key writes a serialization of the term's identity to the given
	// strings.Builder. Keys of distinct terms never collide, and keys of terms
	// of different kinds never share a first byte.
	Key(*strings.Builder)
	aTerm()
}

// ImplementTerm is a list of types that implement Term. This serves as
// documentation and as a compile-time check.
var ImplementTerm = []Term{
	IRI(""),
	Literal{},
	BlankNode(""),
}

// An IRI is a Term that names a resource.
type IRI string

func (IRI) aTerm() {}

// String returns a string like "<http://example.org/a>".
func (iri IRI) String() string {
	return "<" + string(iri) + ">"
}

// Key implements Term.Key.
func (iri IRI) Key(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(string(iri))
	b.WriteByte('>')
}

// A Literal is a Term holding a lexical form and an optional datatype IRI. An
// empty Datatype means the datatype is absent.
type Literal struct {
	Lexical  string
	Datatype string
}

func (Literal) aTerm() {}

// String returns a string like `"42"^^<http://www.w3.org/2001/XMLSchema#int>`.
// The datatype is omitted when it's absent or xsd:string.
func (l Literal) String() string {
	var b strings.Builder
	writeQuoted(&b, l.Lexical)
	if l.Datatype != "" && l.Datatype != XSDString {
		b.WriteString("^^<")
		b.WriteString(l.Datatype)
		b.WriteByte('>')
	}
	return b.String()
}

// Key implements Term.Key. Unlike String, the key distinguishes an absent
// datatype from xsd:string.
func (l Literal) Key(b *strings.Builder) {
	writeQuoted(b, l.Lexical)
	b.WriteString("^^")
	b.WriteString(l.Datatype)
}

// String returns an xsd:string Literal with the given lexical form.
func String(lexical string) Literal {
	return Literal{Lexical: lexical, Datatype: XSDString}
}

// Typed returns a Literal with the given lexical form and datatype.
func Typed(lexical string, datatype string) Literal {
	return Literal{Lexical: lexical, Datatype: datatype}
}

// MediaType returns the datatype IRI naming the given media type, such as
// "application/json".
func MediaType(mediaType string) string {
	return MediaTypePrefix + mediaType
}

// A BlankNode is a Term identifying an anonymous resource. Its value is the
// label, without the leading "_:".
type BlankNode string

func (BlankNode) aTerm() {}

// String returns a string like "_:b0".
func (bn BlankNode) String() string {
	return "_:" + string(bn)
}

// Key implements Term.Key.
func (bn BlankNode) Key(b *strings.Builder) {
	b.WriteString("_:")
	b.WriteString(string(bn))
}

// GetKey returns the key of the given term as a string.
func GetKey(t Term) string {
	var b strings.Builder
	t.Key(&b)
	return b.String()
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	literalEscaper.WriteString(b, s)
	b.WriteByte('"')
}
