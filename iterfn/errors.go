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

package iterfn

import (
	"fmt"

	"github.com/ebay/sparqlgen/rdf"
)

// NoEvaluationError is returned when an iterator function can't produce any
// output for its input, for example because the document is malformed. It's
// an expected outcome; the caller decides whether it fails the whole plan.
type NoEvaluationError struct {
	// The function that failed.
	Function rdf.IRI
	// The rendering of the offending input.
	Input string
	// The underlying parse or structural error.
	Err error
}

func (e *NoEvaluationError) Error() string {
	return fmt.Sprintf("no evaluation of %v for %s: %v", e.Function, e.Input, e.Err)
}

// Unwrap returns the underlying error.
func (e *NoEvaluationError) Unwrap() error {
	return e.Err
}

func noEvaluation(fn rdf.IRI, arg rdf.Term, err error) *NoEvaluationError {
	input := "<nil>"
	if arg != nil {
		input = arg.String()
	}
	return &NoEvaluationError{Function: fn, Input: input, Err: err}
}
