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

// Package parallel is a utility package for running concurrent tasks.
package parallel

// GoCaptureError is like the go keyword but returns a function that blocks
// until the goroutine exits. The error returned by run is the result of the
// wait function. It's safe to call wait multiple times, and from multiple
// goroutines: it always reports the same result.
func GoCaptureError(run func() error) (wait func() error, done <-chan struct{}) {
	doneCh := make(chan struct{})
	var resultErr error
	go func() {
		defer close(doneCh)
		resultErr = run()
	}()
	return func() error {
		<-doneCh
		return resultErr
	}, doneCh
}
