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

// Package config defines the settings of the sparqlgen command, as read from
// its configuration file.
package config

// Config is the root of the configuration file. Every field is optional.
type Config struct {
	// Base IRI used when the plan doesn't declare one.
	Base string `json:"base,omitempty" yaml:"base"`
	// Namespace prefixes added to those declared by the plan. The plan's own
	// declarations win.
	Prefixes map[string]string `json:"prefixes,omitempty" yaml:"prefixes"`
	// Default source overrides, from source identifier to replacement IRI.
	// Overrides given on the command line take precedence.
	Sources map[string]string `json:"sources,omitempty" yaml:"sources"`
	// Local copies of documents the plan reads.
	Documents []Document `json:"documents,omitempty" yaml:"documents"`
	// If true, an iterator function that can't evaluate its input aborts the
	// run.
	StrictIterators bool `json:"strictIterators,omitempty" yaml:"strictIterators"`
	// Minimum log level, like "debug". The command line overrides it.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel"`
	// If nil, tracing is disabled.
	Tracing *Tracing `json:"tracing,omitempty" yaml:"tracing"`
}

// Document maps an IRI to a local file.
type Document struct {
	URI string `json:"uri" yaml:"uri"`
	// Media type of the file, like "application/json". If empty, it's guessed
	// from the file extension.
	MediaType string `json:"mediaType,omitempty" yaml:"mediaType"`
	// Path of the file, relative to the plan's directory.
	Location string `json:"location" yaml:"location"`
}

// Tracing configures reporting OpenTracing traces to Jaeger.
type Tracing struct {
	// The "host:port" of the Jaeger agent, which accepts spans over UDP.
	Agent string `json:"agent" yaml:"agent"`
	// Fraction of runs to trace, between 0 and 1. Zero means every run.
	SampleRate float64 `json:"sampleRate,omitempty" yaml:"sampleRate"`
}
