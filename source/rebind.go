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

// Package source rewrites the external sources a plan reads. A user can
// redirect a source declared in a plan, such as "urn:sg:source", to another
// document, such as "file:///data/a.json", without editing the plan.
package source

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ebay/sparqlgen/plan"
	"github.com/ebay/sparqlgen/rdf"
)

// A Table maps normalized source identifiers to replacement IRIs. A nil Table
// is valid and has no entries. Tables are not modified after construction.
type Table struct {
	replacements map[string]rdf.IRI
}

// NewTable builds a Table from raw "from" to "to" pairs. Keys may be written
// in full, in angle brackets, or as prefixed names; they're normalized with the
// given prefixes. Replacements are expanded to full IRIs. It's an error for
// two keys that name the same source to have different replacements.
func NewTable(raw map[string]string, prefixes rdf.PrefixMap) (*Table, error) {
	froms := make([]string, 0, len(raw))
	for from := range raw {
		froms = append(froms, from)
	}
	sort.Strings(froms)
	t := &Table{replacements: make(map[string]rdf.IRI, len(raw))}
	keys := make(map[string]string, len(raw))
	for _, from := range froms {
		id := prefixes.Normalize(from)
		to := rdf.IRI(prefixes.Expand(raw[from]))
		if prev, dup := t.replacements[id]; dup && prev != to {
			return nil, fmt.Errorf("conflicting source overrides %q and %q: both redirect %s", keys[id], from, id)
		}
		t.replacements[id] = to
		keys[id] = from
	}
	return t, nil
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.replacements)
}

// Lookup returns the replacement for the given normalized identifier.
func (t *Table) Lookup(id string) (rdf.IRI, bool) {
	if t == nil {
		return "", false
	}
	to, ok := t.replacements[id]
	return to, ok
}

// A Replacement records one rewritten source element.
type Replacement struct {
	// Position of the element in the plan's clauses.
	Index int
	// Normalized identifier of the original source.
	From string
	To   rdf.IRI
}

func (r Replacement) String() string {
	return fmt.Sprintf("clause %d: %s -> %v", r.Index, r.From, r.To)
}

// Rebind returns a copy of elements in which every source element whose
// normalized identifier is in the table reads the replacement IRI instead. The
// accepted media type and the bound variable are kept. Other elements are
// copied unchanged, and table entries that match nothing are ignored. The
// input slice is not modified.
func Rebind(elements []plan.Element, prefixes rdf.PrefixMap, table *Table) ([]plan.Element, []Replacement) {
	res := make([]plan.Element, len(elements))
	copy(res, elements)
	if table.Len() == 0 {
		return res, nil
	}
	var replaced []Replacement
	for i, e := range elements {
		src, ok := e.(plan.SourceElement)
		if !ok {
			continue
		}
		id := src.Identifier(prefixes)
		to, ok := table.Lookup(id)
		if !ok {
			continue
		}
		res[i] = plan.SourceElement{Source: to, Accept: src.Accept, Var: src.Var}
		replaced = append(replaced, Replacement{Index: i, From: id, To: to})
	}
	return res, replaced
}

// Apply rebinds the sources of p using the table, returning a new plan. p is
// not modified. If the table is empty, p itself is returned.
func Apply(p plan.Plan, table *Table) (plan.Plan, []Replacement) {
	if table.Len() == 0 {
		return p, nil
	}
	elements, replaced := Rebind(p.Elements(), p.Prefixes(), table)
	return p.WithElements(elements), replaced
}

// ParseOverrides parses command-line overrides of the form "from=to". The
// value is everything after the first '='.
func ParseOverrides(args []string) (map[string]string, error) {
	res := make(map[string]string, len(args))
	for _, arg := range args {
		eq := strings.IndexByte(arg, '=')
		if eq < 0 {
			return nil, fmt.Errorf("invalid source override %q: expected uri=uri", arg)
		}
		from := strings.TrimSpace(arg[:eq])
		to := strings.TrimSpace(arg[eq+1:])
		if from == "" || to == "" {
			return nil, fmt.Errorf("invalid source override %q: expected uri=uri", arg)
		}
		res[from] = to
	}
	return res, nil
}
