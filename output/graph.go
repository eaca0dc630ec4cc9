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

package output

import (
	"github.com/ebay/sparqlgen/rdf"
	"github.com/pkg/errors"
)

// GraphSink is a Sink that collects statements into an rdf.Graph. Duplicate
// statements are collapsed.
type GraphSink struct {
	graph     *rdf.Graph
	base      string
	finished  bool
	discarded bool
}

// Ensures that GraphSink implements Sink.
var _ Sink = (*GraphSink)(nil)

// NewGraphSink returns an empty GraphSink.
func NewGraphSink() *GraphSink {
	return &GraphSink{graph: rdf.NewGraph()}
}

// Start implements Sink.Start.
func (g *GraphSink) Start() error {
	return nil
}

// Base implements Sink.Base. The base IRI is returned by BaseIRI.
func (g *GraphSink) Base(iri string) error {
	g.base = iri
	return nil
}

// Statement implements Sink.Statement.
func (g *GraphSink) Statement(s rdf.Statement) error {
	if g.finished {
		return sinkError("statement", ErrFinished)
	}
	if g.graph != nil {
		g.graph.Add(s)
	}
	return nil
}

// Finish implements Sink.Finish.
func (g *GraphSink) Finish() error {
	g.finished = true
	return nil
}

// Discard drops the collected statements. It's used after a failed run, so
// that a partial graph is never handed out.
func (g *GraphSink) Discard() {
	g.graph = nil
	g.discarded = true
}

// BaseIRI returns the base IRI given to Base, or the empty string.
func (g *GraphSink) BaseIRI() string {
	return g.base
}

// Graph returns the collected graph. It returns an error if the sink hasn't
// been finished yet or was discarded.
func (g *GraphSink) Graph() (*rdf.Graph, error) {
	switch {
	case g.discarded:
		return nil, errors.New("graph was discarded")
	case !g.finished:
		return nil, errors.New("graph is not finished")
	}
	return g.graph, nil
}
