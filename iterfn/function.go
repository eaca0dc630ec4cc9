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

// Package iterfn defines iterator functions: pluggable capabilities that
// decompose a single input term, typically a literal holding a source
// document, into a lazily produced sequence of result terms.
package iterfn

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ebay/sparqlgen/rdf"
	"github.com/sirupsen/logrus"
)

// Namespace is the IRI namespace of the built-in iterator functions.
const Namespace = "http://w3id.org/sparql-generate/iter/"

// Yield receives one result term from an iterator function. Returning a
// non-nil error stops the function, which then returns that same error.
type Yield func(rdf.Term) error

// A Function is an iterator function. Implementations must be safe for
// concurrent use.
type Function interface {
	// IRI returns the name the function is registered and invoked under.
	IRI() rdf.IRI
	// Exec evaluates the function on arg, passing each result to yield in
	// order. If the input can't be evaluated, Exec returns a
	// *NoEvaluationError. Otherwise, it returns nil or the error from yield.
	Exec(ctx context.Context, arg rdf.Term, yield Yield) error
}

// Func adapts an ordinary function to the Function interface.
type Func struct {
	Name rdf.IRI
	Fn   func(ctx context.Context, arg rdf.Term, yield Yield) error
}

// IRI implements Function.IRI.
func (f Func) IRI() rdf.IRI {
	return f.Name
}

// Exec implements Function.Exec.
func (f Func) Exec(ctx context.Context, arg rdf.Term, yield Yield) error {
	return f.Fn(ctx, arg, yield)
}

// Registry is a name-keyed table of iterator functions. It's safe for
// concurrent use.
type Registry struct {
	lock   sync.RWMutex
	byName map[rdf.IRI]Function
}

// NewRegistry returns a Registry holding the built-in functions. The given
// logger receives the functions' diagnostics.
func NewRegistry(log logrus.FieldLogger) *Registry {
	r := &Registry{byName: make(map[rdf.IRI]Function)}
	r.Register(NewJSONListKeys(log))
	return r
}

// Register adds f to the registry, replacing any function previously
// registered under the same IRI.
func (r *Registry) Register(f Function) {
	r.lock.Lock()
	r.byName[f.IRI()] = f
	r.lock.Unlock()
}

// Lookup returns the function registered under the given IRI.
func (r *Registry) Lookup(iri rdf.IRI) (Function, error) {
	r.lock.RLock()
	f, ok := r.byName[iri]
	r.lock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no iterator function registered as %v", iri)
	}
	return f, nil
}

// Names returns the IRIs of all registered functions in sorted order.
func (r *Registry) Names() []rdf.IRI {
	r.lock.RLock()
	defer r.lock.RUnlock()
	res := make([]rdf.IRI, 0, len(r.byName))
	for name := range r.byName {
		res = append(res, name)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i] < res[j]
	})
	return res
}
