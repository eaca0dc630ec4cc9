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

// Package output defines where generated statements go. A Sink receives a
// run's statements in production order; GraphSink collects them into an
// in-memory graph, and Stream writes them out as they arrive.
package output

import (
	"fmt"

	"github.com/ebay/sparqlgen/rdf"
	"github.com/pkg/errors"
)

// A Sink consumes the output of one generation run. The producer calls Start
// once, then Base at most once, then Statement for every statement, and
// finally Finish exactly once. Sinks are not safe for concurrent use.
type Sink interface {
	Start() error
	Base(iri string) error
	Statement(s rdf.Statement) error
	// Finish releases any resources held by the sink. Calling it again is a
	// no-op that returns nil.
	Finish() error
}

// ErrFinished is returned when a statement is written to a finished sink.
var ErrFinished = errors.New("sink is already finished")

// SinkError describes a failure to write to, flush, or close a sink's
// transport.
type SinkError struct {
	// One of "start", "base", "statement", "flush", or "close".
	Op  string
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("output %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SinkError) Unwrap() error {
	return e.Err
}

func sinkError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &SinkError{Op: op, Err: err}
}

// WriteGraph writes every statement of g to sink, in the graph's order,
// followed by Finish. Finish is called even if an earlier call fails; the
// first error is returned.
func WriteGraph(g *rdf.Graph, base string, sink Sink) error {
	err := sink.Start()
	if err == nil && base != "" {
		err = sink.Base(base)
	}
	if err == nil {
		g.ForEach(func(s rdf.Statement) bool {
			err = sink.Statement(s)
			return err == nil
		})
	}
	if finishErr := sink.Finish(); err == nil {
		err = finishErr
	}
	return err
}
