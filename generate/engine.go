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

// Package generate runs generation plans. An Engine evaluates a plan either
// into a complete in-memory graph (RunToGraph) or into a sink that receives
// statements as they're produced, on a separate goroutine (RunToStream).
// Either way, the sources a plan reads can be redirected with overrides before
// it runs.
package generate

import (
	"context"
	"io/ioutil"
	"sync"
	"time"

	"github.com/ebay/sparqlgen/output"
	"github.com/ebay/sparqlgen/plan"
	"github.com/ebay/sparqlgen/rdf"
	"github.com/ebay/sparqlgen/source"
	"github.com/ebay/sparqlgen/util/clocks"
	"github.com/ebay/sparqlgen/util/parallel"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Options contains the settings of an Engine. The zero value is usable.
type Options struct {
	// Receives diagnostics, and is passed on to plans that don't have their own
	// logger. If nil, diagnostics are discarded.
	Logger logrus.FieldLogger
	// Used to measure run durations. Defaults to clocks.Wall.
	Clock clocks.Source
	// If set, the engine's metrics are registered here. Each Registerer may only
	// be given to one Engine.
	Registerer prometheus.Registerer
}

// Engine runs generation plans. It can be used concurrently to run multiple
// plans.
type Engine struct {
	log     logrus.FieldLogger
	clock   clocks.Source
	metrics *engineMetrics
}

// New creates a new Engine.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		discard := logrus.New()
		discard.Out = ioutil.Discard
		log = discard
	}
	clock := opts.Clock
	if clock == nil {
		clock = clocks.Wall
	}
	return &Engine{
		log:     log,
		clock:   clock,
		metrics: newMetrics(opts.Registerer),
	}
}

// Request describes one generation run.
type Request struct {
	// The plan to evaluate. Required.
	Plan plan.Plan
	// The dataset the plan is evaluated against. If nil, an empty dataset is
	// used.
	Dataset *plan.Dataset
	// Initial variable bindings. May be nil. It's not modified.
	Binding rdf.Binding
	// Collaborators for the plan. If nil, the plan gets a Context with only
	// the engine's logger.
	Context *plan.Context
	// Source overrides, from source identifier to replacement IRI. They're
	// applied to a copy of the plan.
	Overrides map[string]string
}

// Stats describes a run.
type Stats struct {
	// The number of statements delivered to the sink. In RunToGraph, this
	// counts duplicates that the graph collapses.
	Statements int
	// The number of plan sources redirected by overrides.
	Replacements int
	// How long the run took, from the start of the call through finishing the
	// sink, as measured by the engine's clock.
	Duration time.Duration
}

const (
	modeGraph  = "graph"
	modeStream = "stream"
)

// errStopped is returned to a plan that emits a statement after Evaluate has
// returned.
var errStopped = errors.New("statement emitted after plan evaluation returned")

// RunToGraph evaluates the plan to completion and returns the resulting graph.
// If evaluation fails, the partially built graph is discarded: the returned
// graph is nil and the error is an *EvaluationError or an *output.SinkError.
func (e *Engine) RunToGraph(ctx context.Context, req Request) (*rdf.Graph, Stats, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "run to graph")
	defer span.Finish()
	sink := output.NewGraphSink()
	r := e.newRun(modeGraph, sink)
	err := r.finish(r.produce(ctx, req))
	stats := r.snapshot()
	if err != nil {
		sink.Discard()
		return nil, stats, err
	}
	g, err := sink.Graph()
	if err != nil {
		return nil, stats, err
	}
	return g, stats, nil
}

// RunToStream starts evaluating the plan on a new goroutine and returns
// immediately. The sink receives Start, then Base if the plan has a base IRI,
// then every statement in production order. Finish is called exactly once when
// the run ends, whether it succeeds or fails, before the Completion resolves.
// After an error or the cancellation of ctx, the sink receives no more
// statements.
//
// The sink need not be safe for concurrent use: the engine serializes calls
// to it, even if the plan emits statements from several goroutines.
func (e *Engine) RunToStream(ctx context.Context, req Request, sink output.Sink) *Completion {
	r := e.newRun(modeStream, sink)
	wait, done := parallel.GoCaptureError(func() error {
		span, ctx := opentracing.StartSpanFromContext(ctx, "run to stream")
		defer span.Finish()
		return r.finish(r.produce(ctx, req))
	})
	return &Completion{run: r, wait: wait, done: done}
}

// Completion represents a run started by RunToStream.
type Completion struct {
	run  *run
	wait func() error
	done <-chan struct{}
}

// Wait blocks until the run ends, then returns its result: nil, an
// *EvaluationError, or an *output.SinkError. It's safe to call Wait more than
// once.
func (c *Completion) Wait() error {
	return c.wait()
}

// Done returns a channel that's closed when the run ends.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Stats returns the statistics of the run so far. They're final once Done is
// closed.
func (c *Completion) Stats() Stats {
	return c.run.snapshot()
}

// run holds the state of a single RunToGraph or RunToStream call.
type run struct {
	engine *Engine
	mode   string
	log    logrus.FieldLogger
	start  clocks.Time

	// lock serializes calls to the sink's Statement method and protects the
	// fields below.
	lock sync.Mutex
	sink output.Sink
	// The first error returned to the plan by emit.
	failure error
	// Set once the plan's Evaluate method has returned.
	stopped bool
	stats   Stats
}

func (e *Engine) newRun(mode string, sink output.Sink) *run {
	return &run{
		engine: e,
		mode:   mode,
		log:    e.log.WithField("mode", mode),
		start:  e.clock.Now(),
		sink:   sink,
	}
}

// produce rebinds and evaluates the plan, delivering its output to the sink.
// It doesn't finish the sink.
func (r *run) produce(ctx context.Context, req Request) error {
	if req.Plan == nil {
		return &EvaluationError{Err: errors.New("no plan given")}
	}
	p, err := r.rebind(ctx, req)
	if err != nil {
		return &EvaluationError{Err: err}
	}
	ds := req.Dataset
	if ds == nil {
		ds = plan.EmptyDataset()
	}
	if err := r.sink.Start(); err != nil {
		return err
	}
	if base := p.Base(); base != "" {
		if err := r.sink.Base(base); err != nil {
			return err
		}
	}

	span, ctx := opentracing.StartSpanFromContext(ctx, "evaluate plan")
	evalStart := r.engine.clock.Now()
	err = p.Evaluate(ctx, ds, req.Binding.Clone(), r.planContext(req.Context),
		func(s rdf.Statement) error {
			return r.emit(ctx, s)
		})
	r.engine.metrics.evaluatePlanDurationSeconds.Observe(
		clocks.Since(r.engine.clock, evalStart).Seconds())
	span.Finish()

	r.lock.Lock()
	r.stopped = true
	if err == nil {
		// The plan ignored an error from emit.
		err = r.failure
	}
	r.lock.Unlock()
	if err == nil {
		return nil
	}
	var sinkErr *output.SinkError
	if errors.As(err, &sinkErr) {
		return sinkErr
	}
	return &EvaluationError{Err: err}
}

// rebind returns the plan with the request's source overrides applied.
func (r *run) rebind(ctx context.Context, req Request) (plan.Plan, error) {
	if len(req.Overrides) == 0 {
		return req.Plan, nil
	}
	span, _ := opentracing.StartSpanFromContext(ctx, "rebind sources")
	defer span.Finish()
	start := r.engine.clock.Now()
	table, err := source.NewTable(req.Overrides, req.Plan.Prefixes())
	if err != nil {
		return nil, err
	}
	p, replaced := source.Apply(req.Plan, table)
	r.engine.metrics.rebindDurationSeconds.Observe(clocks.Since(r.engine.clock, start).Seconds())
	for _, rep := range replaced {
		r.log.WithFields(logrus.Fields{
			"clause": rep.Index,
			"from":   rep.From,
			"to":     rep.To,
		}).Info("Replaced source")
	}
	span.SetTag("replacements", len(replaced))
	r.engine.metrics.replacements.Add(float64(len(replaced)))
	r.lock.Lock()
	r.stats.Replacements = len(replaced)
	r.lock.Unlock()
	return p, nil
}

// planContext returns a copy of ectx that has a logger.
func (r *run) planContext(ectx *plan.Context) *plan.Context {
	var res plan.Context
	if ectx != nil {
		res = *ectx
	}
	if res.Logger == nil {
		res.Logger = r.log
	}
	return &res
}

// emit delivers a statement to the sink, unless the run has failed, been
// canceled, or stopped.
func (r *run) emit(ctx context.Context, s rdf.Statement) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.failure != nil {
		return r.failure
	}
	if r.stopped {
		return errStopped
	}
	if err := ctx.Err(); err != nil {
		r.failure = err
		return err
	}
	if err := r.sink.Statement(s); err != nil {
		r.failure = err
		return err
	}
	r.stats.Statements++
	return nil
}

// finish finishes the sink and records the outcome of the run. It returns err
// if it's not nil, and otherwise any error from finishing the sink.
func (r *run) finish(err error) error {
	finishErr := r.sink.Finish()
	if err == nil {
		err = finishErr
	} else if finishErr != nil {
		r.log.WithFields(logrus.Fields{
			"error": finishErr,
		}).Warn("Failed to finish sink after failed run")
	}

	r.lock.Lock()
	r.stats.Duration = clocks.Since(r.engine.clock, r.start)
	stats := r.stats
	r.lock.Unlock()

	m := r.engine.metrics
	m.statements.WithLabelValues(r.mode).Add(float64(stats.Statements))
	m.runDurationSeconds.WithLabelValues(r.mode).Observe(stats.Duration.Seconds())
	fields := logrus.Fields{
		"statements":   stats.Statements,
		"replacements": stats.Replacements,
		"duration":     stats.Duration,
	}
	if err != nil {
		m.runs.WithLabelValues(r.mode, "error").Inc()
		fields["error"] = err
		r.log.WithFields(fields).Warn("Generation run failed")
		return err
	}
	m.runs.WithLabelValues(r.mode, "ok").Inc()
	r.log.WithFields(fields).Debug("Generation run completed")
	return nil
}

// snapshot returns the run's current statistics.
func (r *run) snapshot() Stats {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.stats
}
