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

// Package plan describes executable generation plans: the clauses that bind
// variables (including the external sources a plan reads) and the evaluation
// entry point that produces statements. It also provides Basic, a plan that
// instantiates a template of triple patterns for every solution of its
// clauses.
package plan

import (
	"context"
	"io/ioutil"

	"github.com/ebay/sparqlgen/iterfn"
	"github.com/ebay/sparqlgen/rdf"
	"github.com/sirupsen/logrus"
)

// Emit receives each statement a plan produces, in production order. If Emit
// returns an error, the plan must stop producing statements and return that
// error from Evaluate.
type Emit func(rdf.Statement) error

// A Plan is an executable generation query.
type Plan interface {
	// Elements returns the plan's binding clauses, in order. The caller must
	// not modify the returned slice.
	Elements() []Element
	// Prefixes returns the namespace prefixes declared by the plan. They're
	// used to normalize source identifiers and to compact output.
	Prefixes() rdf.PrefixMap
	// Base returns the plan's base IRI, or the empty string if it has none.
	Base() string
	// WithElements returns a copy of the plan whose binding clauses are
	// replaced by 'elements'. The receiver is not modified.
	WithElements(elements []Element) Plan
	// Evaluate runs the plan, passing every produced statement to emit. It's
	// the only producer of statements for a run.
	Evaluate(ctx context.Context, ds *Dataset, initial rdf.Binding, ectx *Context, emit Emit) error
}

// A Dataset is the RDF dataset a plan is evaluated against. The execution
// driver passes it through unchanged.
type Dataset struct {
	// The default graph. Never nil for datasets built by NewDataset or
	// EmptyDataset.
	Default *rdf.Graph
	// Named graphs, keyed by graph IRI.
	Named map[rdf.IRI]*rdf.Graph
}

// NewDataset returns a Dataset with the given default graph and no named
// graphs. A nil graph is replaced by an empty one.
func NewDataset(defaultGraph *rdf.Graph) *Dataset {
	if defaultGraph == nil {
		defaultGraph = rdf.NewGraph()
	}
	return &Dataset{Default: defaultGraph, Named: make(map[rdf.IRI]*rdf.Graph)}
}

// EmptyDataset returns a Dataset with no statements.
func EmptyDataset() *Dataset {
	return NewDataset(nil)
}

// Context carries the collaborators a plan needs while evaluating.
type Context struct {
	// Resolves source IRIs into documents. If nil, every source is missing.
	Locator Locator
	// The iterator functions available to the plan. If nil, the built-in
	// functions are used.
	Functions *iterfn.Registry
	// If true, an iterator function that can't evaluate its input aborts the
	// plan. Otherwise, that iteration produces no solutions.
	StrictIterators bool
	// Receives diagnostics. If nil, they are discarded.
	Logger logrus.FieldLogger
}

// logger returns ectx.Logger or a logger that discards everything.
func (ectx *Context) logger() logrus.FieldLogger {
	if ectx != nil && ectx.Logger != nil {
		return ectx.Logger
	}
	discard := logrus.New()
	discard.Out = ioutil.Discard
	return discard
}

// functions returns ectx.Functions or a registry of the built-ins.
func (ectx *Context) functions() *iterfn.Registry {
	if ectx != nil && ectx.Functions != nil {
		return ectx.Functions
	}
	return iterfn.NewRegistry(ectx.logger())
}
