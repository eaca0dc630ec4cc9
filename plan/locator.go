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
	"io/ioutil"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is returned (possibly wrapped) by a Locator that has no
// document for the requested IRI.
var ErrNotFound = errors.New("document not found")

// A Document is the content of a source.
type Document struct {
	Content string
	// The document's media type, like "application/json", if known.
	MediaType string
}

// A Locator resolves source identifiers into documents.
type Locator interface {
	// Open returns the document identified by iri. 'accept' is the media type
	// the plan asked for, or empty. Open returns an error wrapping ErrNotFound
	// if there's no such document.
	Open(ctx context.Context, iri string, accept string) (Document, error)
}

// MapLocator is a Locator that serves documents from memory, keyed by IRI.
type MapLocator map[string]Document

// Open implements Locator.Open.
func (m MapLocator) Open(ctx context.Context, iri string, accept string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	doc, ok := m[iri]
	if !ok {
		return Document{}, errors.Wrapf(ErrNotFound, "no document for <%s>", iri)
	}
	return doc, nil
}

// A Mapping redirects an IRI to a file.
type Mapping struct {
	// Path of the file. Relative paths are relative to the locator's Dir.
	Location string
	// Media type of the file. If empty, it's guessed from the file extension.
	MediaType string
}

// DirLocator is a Locator that reads files. It serves IRIs listed in Mappings,
// "file:" IRIs, and relative references, which are resolved against Dir.
type DirLocator struct {
	Dir      string
	Mappings map[string]Mapping
}

// Open implements Locator.Open.
func (l *DirLocator) Open(ctx context.Context, iri string, accept string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	path, mediaType, err := l.resolve(iri)
	if err != nil {
		return Document{}, err
	}
	content, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return Document{}, errors.Wrapf(ErrNotFound, "no file %v for <%s>", path, iri)
	}
	if err != nil {
		return Document{}, errors.Wrapf(err, "reading <%s>", iri)
	}
	if mediaType == "" {
		mediaType = guessMediaType(path)
	}
	return Document{Content: string(content), MediaType: mediaType}, nil
}

// resolve returns the file path and known media type for iri.
func (l *DirLocator) resolve(iri string) (string, string, error) {
	if m, ok := l.Mappings[iri]; ok {
		return l.inDir(m.Location), m.MediaType, nil
	}
	u, err := url.Parse(iri)
	if err != nil {
		return "", "", errors.Wrapf(ErrNotFound, "unparsable IRI <%s>", iri)
	}
	switch {
	case u.Scheme == "file":
		return filepath.FromSlash(u.Path), "", nil
	case u.Scheme == "" && u.Host == "":
		return l.inDir(filepath.FromSlash(u.Path)), "", nil
	}
	return "", "", errors.Wrapf(ErrNotFound, "unsupported IRI scheme for <%s>", iri)
}

func (l *DirLocator) inDir(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.Dir, path)
}

// guessMediaType returns the media type for the file's extension, without any
// parameters, or the empty string.
func guessMediaType(path string) string {
	mediaType := mime.TypeByExtension(filepath.Ext(path))
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.TrimSpace(mediaType)
}
