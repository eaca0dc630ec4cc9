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

	"github.com/cespare/xxhash/v2"
	"github.com/google/btree"
)

// A Graph is a set of statements. Statements are deduplicated by structural
// equality and iterated in the order of their keys, which makes iteration
// deterministic. A Graph is not safe for concurrent modification.
type Graph struct {
	tree *btree.BTree
}

// graphItem values are stored in the btree, ordered by key.
type graphItem struct {
	key       string
	statement Statement
}

// Less is needed to order the btree.
func (item graphItem) Less(other btree.Item) bool {
	return item.key < other.(graphItem).key
}

// NewGraph returns a new empty Graph.
func NewGraph() *Graph {
	return &Graph{tree: btree.New(16)}
}

func statementKey(s Statement) string {
	var b strings.Builder
	s.Key(&b)
	return b.String()
}

// Add inserts s into the graph. It returns true if s was new, false if the
// graph already contained an equal statement.
func (g *Graph) Add(s Statement) bool {
	return g.tree.ReplaceOrInsert(graphItem{key: statementKey(s), statement: s}) == nil
}

// Contains returns true if the graph has a statement equal to s.
func (g *Graph) Contains(s Statement) bool {
	return g.tree.Has(graphItem{key: statementKey(s)})
}

// Len returns the number of distinct statements in the graph.
func (g *Graph) Len() int {
	return g.tree.Len()
}

// ForEach calls fn for each statement in key order, stopping early if fn
// returns false.
func (g *Graph) ForEach(fn func(Statement) bool) {
	g.tree.Ascend(func(item btree.Item) bool {
		return fn(item.(graphItem).statement)
	})
}

// Statements returns all the statements in key order.
func (g *Graph) Statements() []Statement {
	res := make([]Statement, 0, g.Len())
	g.ForEach(func(s Statement) bool {
		res = append(res, s)
		return true
	})
	return res
}

// Equal returns true if both graphs contain the same statements.
func (g *Graph) Equal(other *Graph) bool {
	if g.Len() != other.Len() {
		return false
	}
	keys := make([]string, 0, g.Len())
	g.tree.Ascend(func(item btree.Item) bool {
		keys = append(keys, item.(graphItem).key)
		return true
	})
	i := 0
	equal := true
	other.tree.Ascend(func(item btree.Item) bool {
		equal = keys[i] == item.(graphItem).key
		i++
		return equal
	})
	return equal
}

// Fingerprint returns a hash of the graph's contents. Equal graphs have equal
// fingerprints.
func (g *Graph) Fingerprint() uint64 {
	d := xxhash.New()
	g.tree.Ascend(func(item btree.Item) bool {
		d.WriteString(item.(graphItem).key)
		d.Write([]byte{'\n'})
		return true
	})
	return d.Sum64()
}
