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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"strings"

	"github.com/ebay/sparqlgen/rdf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// JSONDatatype is the datatype IRI of literals holding JSON documents.
var JSONDatatype = rdf.MediaType("application/json")

// JSONListKeys is an iterator function that lists the top-level keys of a JSON
// object, as xsd:string literals in document order.
type JSONListKeys struct {
	log logrus.FieldLogger
}

// Ensures that JSONListKeys implements Function.
var _ Function = (*JSONListKeys)(nil)

// NewJSONListKeys returns the JSONListKeys function. It logs datatype warnings
// and evaluation failures to log; a nil log discards them.
func NewJSONListKeys(log logrus.FieldLogger) *JSONListKeys {
	if log == nil {
		discard := logrus.New()
		discard.Out = ioutil.Discard
		log = discard
	}
	return &JSONListKeys{log: log}
}

// IRI implements Function.IRI.
func (*JSONListKeys) IRI() rdf.IRI {
	return Namespace + "JSONListKeys"
}

// Exec implements Function.Exec. The argument should be a literal whose
// datatype is the JSON media type or xsd:string. Any other datatype only
// produces a warning: the lexical form is parsed regardless.
func (f *JSONListKeys) Exec(ctx context.Context, arg rdf.Term, yield Yield) error {
	lit, ok := arg.(rdf.Literal)
	if !ok {
		return f.fail(arg, fmt.Errorf("expected a literal, got %T", arg))
	}
	if lit.Datatype != "" && lit.Datatype != JSONDatatype && lit.Datatype != rdf.XSDString {
		f.log.WithFields(logrus.Fields{
			"function": f.IRI(),
			"datatype": lit.Datatype,
			"expected": []string{JSONDatatype, rdf.XSDString},
		}).Warn("Unexpected datatype for iterator function argument")
	}
	keys, err := objectKeys(lit.Lexical)
	if err != nil {
		return f.fail(arg, err)
	}
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := yield(rdf.String(key)); err != nil {
			return err
		}
	}
	return nil
}

func (f *JSONListKeys) fail(arg rdf.Term, err error) error {
	res := noEvaluation(f.IRI(), arg, err)
	f.log.WithError(err).WithField("function", f.IRI()).Debug("No evaluation for iterator function")
	return res
}

// objectKeys parses doc as a single JSON object and returns its keys in the
// order they appear. Duplicate keys and data after the object are errors.
func objectKeys(doc string) ([]string, error) {
	decoder := json.NewDecoder(strings.NewReader(doc))
	token, err := decoder.Token()
	if err == io.EOF {
		return nil, errors.New("empty JSON document")
	}
	if err != nil {
		return nil, errors.Wrap(err, "invalid JSON")
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %s", describeToken(token))
	}
	var keys []string
	seen := make(map[string]struct{})
	for decoder.More() {
		token, err = decoder.Token()
		if err != nil {
			return nil, errors.Wrap(err, "invalid JSON")
		}
		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key, got %s", describeToken(token))
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate key %q in JSON object", key)
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
		var value json.RawMessage
		if err := decoder.Decode(&value); err != nil {
			return nil, errors.Wrapf(err, "invalid JSON value for key %q", key)
		}
	}
	if _, err := decoder.Token(); err != nil {
		return nil, errors.Wrap(err, "invalid JSON")
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}
	return keys, nil
}

func describeToken(token json.Token) string {
	switch t := token.(type) {
	case nil:
		return "null"
	case json.Delim:
		return fmt.Sprintf("'%v'", t)
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	}
	return fmt.Sprintf("%T", token)
}
