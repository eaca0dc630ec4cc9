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
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/ebay/sparqlgen/rdf"
	"github.com/pkg/errors"
)

// FlushThreshold is the number of statements a Stream buffers before flushing.
const FlushThreshold = 1000

// flusher is implemented by writers that buffer internally, like
// *bufio.Writer.
type flusher interface {
	Flush() error
}

// Format selects the syntax a Stream writes.
type Format string

const (
	// Turtle output starts with prefix and base declarations, and IRIs are
	// compacted with the prefixes.
	Turtle Format = "turtle"
	// NTriples output has no declarations, and every IRI is written in full.
	NTriples Format = "ntriples"
)

// ParseFormat returns the Format with the given name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case Turtle, NTriples:
		return f, nil
	}
	return "", errors.Errorf("unknown output format %q: expected turtle or ntriples", name)
}

// Stream is a Sink that writes statements in a line-based Turtle form as they
// arrive. Prefix declarations are written by Start, and each statement is
// written on its own line, compacted with the prefixes. Output is flushed
// every FlushThreshold statements and on Finish.
type Stream struct {
	out      *bufio.Writer
	dest     io.Writer
	closer   io.Closer
	prefixes rdf.PrefixMap
	format   Format
	// Statements written since the last flush.
	pending  int
	count    int
	started  bool
	finished bool
}

// Ensures that Stream implements Sink.
var _ Sink = (*Stream)(nil)

// NewStream returns a Stream writing to w. The caller keeps ownership of w:
// Finish flushes it but doesn't close it.
func NewStream(w io.Writer, prefixes rdf.PrefixMap) *Stream {
	return &Stream{
		out:      bufio.NewWriter(w),
		dest:     w,
		prefixes: prefixes,
		format:   Turtle,
	}
}

// SetFormat changes the syntax the Stream writes. It must be called before
// Start.
func (s *Stream) SetFormat(f Format) {
	s.format = f
	if f == NTriples {
		s.prefixes = nil
	}
}

// CreateStream opens the file at path and returns a Stream writing to it. The
// file is truncated unless appendTo is set. Finish closes the file.
func CreateStream(path string, appendTo bool, prefixes rdf.PrefixMap) (*Stream, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if appendTo {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, sinkError("open", err)
	}
	s := NewStream(f, prefixes)
	s.closer = f
	return s, nil
}

// Count returns the number of statements written so far.
func (s *Stream) Count() int {
	return s.count
}

// Start implements Sink.Start. Only the first call writes the prefix
// declarations.
func (s *Stream) Start() error {
	if s.started {
		return nil
	}
	s.started = true
	var b strings.Builder
	for _, p := range s.prefixes.Sorted() {
		b.WriteString("@prefix ")
		b.WriteString(p.Name)
		b.WriteString(": <")
		b.WriteString(p.Namespace)
		b.WriteString("> .\n")
	}
	_, err := s.out.WriteString(b.String())
	return sinkError("start", err)
}

// Base implements Sink.Base. N-Triples output has no base declaration.
func (s *Stream) Base(iri string) error {
	if s.format == NTriples {
		return nil
	}
	_, err := s.out.WriteString("@base <" + iri + "> .\n")
	return sinkError("base", err)
}

// Statement implements Sink.Statement.
func (s *Stream) Statement(st rdf.Statement) error {
	if s.finished {
		return sinkError("statement", ErrFinished)
	}
	var b strings.Builder
	rdf.AppendFormat(&b, st, s.prefixes)
	b.WriteByte('\n')
	if _, err := s.out.WriteString(b.String()); err != nil {
		return sinkError("statement", err)
	}
	s.count++
	s.pending++
	if s.pending >= FlushThreshold {
		return s.flush()
	}
	return nil
}

// flush pushes the buffered output to the destination writer, and flushes
// that too if it buffers.
func (s *Stream) flush() error {
	s.pending = 0
	if err := s.out.Flush(); err != nil {
		return sinkError("flush", err)
	}
	if f, ok := s.dest.(flusher); ok {
		return sinkError("flush", f.Flush())
	}
	return nil
}

// Finish implements Sink.Finish. It flushes any buffered output and closes the
// file if the Stream was created by CreateStream.
func (s *Stream) Finish() error {
	if s.finished {
		return nil
	}
	s.finished = true
	err := s.flush()
	if s.closer != nil {
		if closeErr := s.closer.Close(); err == nil {
			err = sinkError("close", closeErr)
		}
	}
	return err
}
