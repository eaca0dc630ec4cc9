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
	"strings"
)

// FormatTerm returns a textual form of t in which IRIs are compacted using
// prefixes where possible. With a nil or empty PrefixMap it's the same as
// t.String().
func FormatTerm(t Term, prefixes PrefixMap) string {
	var b strings.Builder
	writeTerm(&b, t, prefixes)
	return b.String()
}

// Format returns a line like `ex:a ex:b "c" .` for the statement, compacting
// IRIs using prefixes where possible. The line has no trailing newline.
func Format(s Statement, prefixes PrefixMap) string {
	var b strings.Builder
	AppendFormat(&b, s, prefixes)
	return b.String()
}

// AppendFormat writes the same text as Format to b.
func AppendFormat(b *strings.Builder, s Statement, prefixes PrefixMap) {
	writeTerm(b, s.Subject, prefixes)
	b.WriteByte(' ')
	writeTerm(b, s.Predicate, prefixes)
	b.WriteByte(' ')
	writeTerm(b, s.Object, prefixes)
	b.WriteString(" .")
}

func writeTerm(b *strings.Builder, t Term, prefixes PrefixMap) {
	switch t := t.(type) {
	case IRI:
		writeIRI(b, string(t), prefixes)
	case Literal:
		writeQuoted(b, t.Lexical)
		if t.Datatype != "" && t.Datatype != XSDString {
			b.WriteString("^^")
			writeIRI(b, t.Datatype, prefixes)
		}
	case nil:
		b.WriteString("<nil>")
	default:
		b.WriteString(t.String())
	}
}

func writeIRI(b *strings.Builder, iri string, prefixes PrefixMap) {
	if len(prefixes) > 0 {
		if short := prefixes.Shorten(iri); short != iri {
			b.WriteString(short)
			return
		}
	}
	b.WriteByte('<')
	b.WriteString(iri)
	b.WriteByte('>')
}
