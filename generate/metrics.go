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

package generate

import (
	metricsutil "github.com/ebay/sparqlgen/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type engineMetrics struct {
	runs                        *prometheus.CounterVec
	statements                  *prometheus.CounterVec
	replacements                prometheus.Counter
	runDurationSeconds          *prometheus.SummaryVec
	rebindDurationSeconds       prometheus.Summary
	evaluatePlanDurationSeconds prometheus.Summary
}

var objectives = map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001}

func newMetrics(r prometheus.Registerer) *engineMetrics {
	mr := metricsutil.Registry{R: r}
	return &engineMetrics{
		runs: mr.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sparqlgen",
			Subsystem: "generate",
			Name:      "runs_total",
			Help: `The number of completed generation runs.

The "mode" label is "graph" or "stream", and the "outcome" label is "ok" or
"error".
`,
		}, []string{"mode", "outcome"}),
		statements: mr.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sparqlgen",
			Subsystem: "generate",
			Name:      "statements_total",
			Help:      `The number of statements delivered to sinks.`,
		}, []string{"mode"}),
		replacements: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "sparqlgen",
			Subsystem: "generate",
			Name:      "source_replacements_total",
			Help:      `The number of plan sources redirected by overrides.`,
		}),
		runDurationSeconds: mr.NewSummaryVec(prometheus.SummaryOpts{
			Namespace:  "sparqlgen",
			Subsystem:  "generate",
			Name:       "run_duration_seconds",
			Help:       `The time it takes to complete a generation run, including finishing the sink.`,
			Objectives: objectives,
		}, []string{"mode"}),
		rebindDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  "sparqlgen",
			Subsystem:  "generate",
			Name:       "rebind_duration_seconds",
			Help:       `The time it takes to apply source overrides to a plan.`,
			Objectives: objectives,
		}),
		evaluatePlanDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace: "sparqlgen",
			Subsystem: "generate",
			Name:      "evaluate_duration_seconds",
			Help: `The time it takes to evaluate a plan.

This includes loading sources and delivering statements to the sink, which may
block on output.
`,
			Objectives: objectives,
		}),
	}
}
