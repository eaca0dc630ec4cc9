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

package plan

import (
	"context"

	"github.com/ebay/sparqlgen/iterfn"
	"github.com/ebay/sparqlgen/rdf"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Basic is a Plan that evaluates its clauses in order, depth first, and
// instantiates its template once for every resulting solution. Solutions are
// produced lazily: statements for the first solution are emitted before the
// second solution is computed.
//
// Template patterns with an unbound variable, or whose instantiation is not a
// valid statement, are skipped for that solution. Blank nodes that appear as
// constants in the template are replaced by fresh blank nodes for every
// solution.
type Basic struct {
	PrefixMap rdf.PrefixMap
	BaseIRI   string
	Clauses   []Element
	Template  []Pattern
}

// Ensures that Basic implements Plan.
var _ Plan = (*Basic)(nil)

// Elements implements Plan.Elements.
func (p *Basic) Elements() []Element {
	return p.Clauses
}

// Prefixes implements Plan.Prefixes.
func (p *Basic) Prefixes() rdf.PrefixMap {
	return p.PrefixMap
}

// Base implements Plan.Base.
func (p *Basic) Base() string {
	return p.BaseIRI
}

// WithElements implements Plan.WithElements.
func (p *Basic) WithElements(elements []Element) Plan {
	clone := *p
	clone.Clauses = elements
	return &clone
}

// Evaluate implements Plan.Evaluate. The dataset is not consulted: Basic
// plans only read their declared sources.
func (p *Basic) Evaluate(ctx context.Context, ds *Dataset, initial rdf.Binding,
	ectx *Context, emit Emit) error {

	ev := evaluator{
		ctx:       ctx,
		plan:      p,
		log:       ectx.logger(),
		functions: ectx.functions(),
		emit:      emit,
		sources:   make(map[SourceElement]rdf.Term),
	}
	if ectx != nil {
		ev.locator = ectx.Locator
		ev.strict = ectx.StrictIterators
	}
	return ev.clause(0, initial.Clone())
}

// evaluator holds the state of one call to Basic.Evaluate.
type evaluator struct {
	ctx       context.Context
	plan      *Basic
	log       logrus.FieldLogger
	functions *iterfn.Registry
	locator   Locator
	strict    bool
	emit      Emit
	// Documents already loaded during this evaluation. A nil value records a
	// missing document.
	sources map[SourceElement]rdf.Term
}

// clause evaluates the clauses from index i onwards, extending the given
// solution.
func (ev *evaluator) clause(i int, solution rdf.Binding) error {
	if err := ev.ctx.Err(); err != nil {
		return err
	}
	if i == len(ev.plan.Clauses) {
		return ev.instantiate(solution)
	}
	switch e := ev.plan.Clauses[i].(type) {
	case SourceElement:
		doc, err := ev.load(e)
		if err != nil {
			return err
		}
		if doc == nil {
			return ev.clause(i+1, solution)
		}
		return ev.clause(i+1, solution.With(e.Var, doc))

	case IteratorElement:
		return ev.iterate(i, e, solution)

	case BindElement:
		value, ok := e.Value.resolve(solution)
		if !ok {
			return ev.clause(i+1, solution)
		}
		return ev.clause(i+1, solution.With(e.Var, value))
	}
	return errors.Errorf("unexpected element type %T in plan", ev.plan.Clauses[i])
}

// iterate evaluates the iterator clause at index i, continuing with the
// remaining clauses once per result.
func (ev *evaluator) iterate(i int, e IteratorElement, solution rdf.Binding) error {
	arg, ok := e.Arg.resolve(solution)
	if !ok {
		ev.log.WithFields(logrus.Fields{
			"clause": e.String(),
		}).Debug("Iterator argument is unbound, no iterations")
		return nil
	}
	fn, err := ev.functions.Lookup(e.Function)
	if err != nil {
		return err
	}
	// Errors from the rest of the plan pass through fn.Exec; they're kept
	// apart from the function's own failure.
	var downstream error
	err = fn.Exec(ev.ctx, arg, func(result rdf.Term) error {
		if err := ev.clause(i+1, solution.With(e.Var, result)); err != nil {
			downstream = err
			return err
		}
		return nil
	})
	if downstream != nil {
		return downstream
	}
	var noEval *iterfn.NoEvaluationError
	if errors.As(err, &noEval) && !ev.strict {
		ev.log.WithFields(logrus.Fields{
			"clause": e.String(),
			"error":  noEval.Err,
		}).Debug("Iterator function had no evaluation, skipping")
		return nil
	}
	return err
}

// load returns the document for the source element as a literal, or nil if
// the document could not be found.
func (ev *evaluator) load(e SourceElement) (rdf.Term, error) {
	if doc, cached := ev.sources[e]; cached {
		return doc, nil
	}
	doc, err := ev.open(e)
	if err != nil {
		return nil, err
	}
	ev.sources[e] = doc
	return doc, nil
}

func (ev *evaluator) open(e SourceElement) (rdf.Term, error) {
	fields := logrus.Fields{"source": e.Source, "var": e.Var}
	iri, ok := e.Source.(rdf.IRI)
	if !ok {
		ev.log.WithFields(fields).Warn("Source is not an IRI, leaving variable unbound")
		return nil, nil
	}
	if ev.locator == nil {
		ev.log.WithFields(fields).Warn("No locator configured, leaving variable unbound")
		return nil, nil
	}
	doc, err := ev.locator.Open(ev.ctx, string(iri), e.Accept)
	if errors.Is(err, ErrNotFound) {
		ev.log.WithFields(fields).WithError(err).Warn("Source not found, leaving variable unbound")
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading source %v", iri)
	}
	datatype := rdf.XSDString
	switch {
	case e.Accept != "":
		datatype = rdf.MediaType(e.Accept)
	case doc.MediaType != "":
		datatype = rdf.MediaType(doc.MediaType)
	}
	ev.log.WithFields(fields).WithField("bytes", len(doc.Content)).Debug("Loaded source")
	return rdf.Typed(doc.Content, datatype), nil
}

// instantiate emits the template's statements for one solution.
func (ev *evaluator) instantiate(solution rdf.Binding) error {
	blanks := make(map[rdf.BlankNode]rdf.BlankNode)
	for _, pattern := range ev.plan.Template {
		s, sOK := ev.value(pattern.Subject, solution, blanks)
		p, pOK := ev.value(pattern.Predicate, solution, blanks)
		o, oOK := ev.value(pattern.Object, solution, blanks)
		if !sOK || !pOK || !oOK {
			continue
		}
		statement, err := rdf.NewStatement(s, p, o)
		if err != nil {
			ev.log.WithFields(logrus.Fields{
				"pattern": pattern.String(),
				"error":   err,
			}).Debug("Skipping invalid statement")
			continue
		}
		if err := ev.emit(statement); err != nil {
			return err
		}
	}
	return nil
}

// value resolves the operand for a template position. Blank node constants
// are mapped to a fresh label, shared by all patterns for this solution.
func (ev *evaluator) value(op Operand, solution rdf.Binding, blanks map[rdf.BlankNode]rdf.BlankNode) (rdf.Term, bool) {
	t, ok := op.resolve(solution)
	if !ok {
		return nil, false
	}
	if _, isConst := op.(Constant); isConst {
		if bn, isBlank := t.(rdf.BlankNode); isBlank {
			fresh, exists := blanks[bn]
			if !exists {
				fresh = rdf.BlankNode("b" + uuid.New().String())
				blanks[bn] = fresh
			}
			return fresh, true
		}
	}
	return t, true
}
