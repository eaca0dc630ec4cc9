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
	"fmt"
	"strings"
)

// A Statement is a subject-predicate-object triple. Statements are values:
// they're compared structurally and never modified once built.
type Statement struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewStatement returns a Statement after checking that the subject is an IRI
// or a BlankNode and that the predicate is an IRI. It returns an error if any
// component is nil or in a position it's not allowed in.
func NewStatement(subject, predicate, object Term) (Statement, error) {
	switch subject.(type) {
	case IRI, BlankNode:
	default:
		return Statement{}, fmt.Errorf("statement subject must be an IRI or blank node, got %v", describe(subject))
	}
	if _, ok := predicate.(IRI); !ok {
		return Statement{}, fmt.Errorf("statement predicate must be an IRI, got %v", describe(predicate))
	}
	if object == nil {
		return Statement{}, fmt.Errorf("statement object must not be nil")
	}
	return Statement{Subject: subject, Predicate: predicate, Object: object}, nil
}

// MustStatement is like NewStatement but panics on error. It's intended for
// tests and static data.
func MustStatement(subject, predicate, object Term) Statement {
	s, err := NewStatement(subject, predicate, object)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the N-Triples form of the statement, including the trailing
// " .".
func (s Statement) String() string {
	return Format(s, nil)
}

// Key writes the statement's identity to the given strings.Builder.
func (s Statement) Key(b *strings.Builder) {
	s.Subject.Key(b)
	b.WriteByte(0)
	s.Predicate.Key(b)
	b.WriteByte(0)
	s.Object.Key(b)
}

func describe(t Term) string {
	if t == nil {
		return "nil"
	}
	return fmt.Sprintf("%T %v", t, t)
}
