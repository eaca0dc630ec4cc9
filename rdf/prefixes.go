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
	"unicode"
)

// A PrefixMap maps namespace prefixes (like "ex", without the colon) to
// namespace IRIs (like "http://example.org/"). A nil PrefixMap is valid and
// empty.
type PrefixMap map[string]string

// A Prefix is a single entry of a PrefixMap.
type Prefix struct {
	Name      string
	Namespace string
}

// Sorted returns the entries of the map ordered by prefix name.
func (m PrefixMap) Sorted() []Prefix {
	res := make([]Prefix, 0, len(m))
	for name, ns := range m {
		res = append(res, Prefix{Name: name, Namespace: ns})
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Name < res[j].Name
	})
	return res
}

// Expand returns the full IRI for an identifier. It strips angle brackets from
// "<iri>", replaces a known prefix in "prefix:local", and returns any other
// input unchanged.
func (m PrefixMap) Expand(id string) string {
	id = strings.TrimSpace(id)
	if len(id) >= 2 && id[0] == '<' && id[len(id)-1] == '>' {
		return id[1 : len(id)-1]
	}
	colon := strings.IndexByte(id, ':')
	if colon < 0 {
		return id
	}
	local := id[colon+1:]
	if strings.HasPrefix(local, "//") {
		return id
	}
	if ns, ok := m[id[:colon]]; ok {
		return ns + local
	}
	return id
}

// Shorten returns the compact "prefix:local" form of the given IRI if some
// namespace in the map covers it with a valid local name, or the IRI unchanged
// otherwise. When several namespaces match, the longest wins, and ties are
// broken by the smaller prefix name.
func (m PrefixMap) Shorten(iri string) string {
	bestName, bestNS, found := "", "", false
	for name, ns := range m {
		if ns == "" || !strings.HasPrefix(iri, ns) || !validLocalName(iri[len(ns):]) {
			continue
		}
		if !found || len(ns) > len(bestNS) || (len(ns) == len(bestNS) && name < bestName) {
			bestName, bestNS, found = name, ns, true
		}
	}
	if !found {
		return iri
	}
	return bestName + ":" + iri[len(bestNS):]
}

// Normalize returns the canonical form of an identifier: it's expanded and
// then shortened again. Two references to the same IRI, whether written in
// full, in angle brackets, or with a prefix, normalize to the same string.
func (m PrefixMap) Normalize(id string) string {
	return m.Shorten(m.Expand(id))
}

// validLocalName reports whether s can follow "prefix:" without escaping. This
// is a conservative subset of Turtle's PN_LOCAL.
func validLocalName(s string) bool {
	if s == "" {
		return true
	}
	if s[0] == '-' || s[0] == '.' || s[len(s)-1] == '.' {
		return false
	}
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
		case r == '_', r == '-', r == '.':
		default:
			return false
		}
	}
	return true
}
