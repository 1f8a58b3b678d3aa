package lspserver

import (
	"sync"

	"github.com/sargunv/jvl/internal/protocol"
)

// document is one open text document tracked by the server.
type document struct {
	URI     protocol.DocumentUri
	Version int32
	Text    string
}

// documentStore holds every currently-open document, keyed by URI. All
// access goes through its methods, which take the store's own lock —
// callers never see or hold document pointers across a mutation, so a
// concurrent didChange can't race a hover read.
type documentStore struct {
	mu   sync.RWMutex
	docs map[protocol.DocumentUri]*document
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: make(map[protocol.DocumentUri]*document)}
}

func (s *documentStore) open(uri protocol.DocumentUri, version int32, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = &document{URI: uri, Version: version, Text: text}
}

// update replaces a document's text and version, returning a copy of the
// updated state for the caller to hand off to the validation pipeline.
func (s *documentStore) update(uri protocol.DocumentUri, version int32, text string) (document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return document{}, false
	}
	doc.Version = version
	doc.Text = text
	return *doc, true
}

func (s *documentStore) close(uri protocol.DocumentUri) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

func (s *documentStore) get(uri protocol.DocumentUri) (document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	if !ok {
		return document{}, false
	}
	return *doc, true
}

// currentVersion reports whether version is still the version of the
// currently-open document at uri — the authoritative check the
// validation pipeline uses before publishing a diagnostic set, so a
// slow validation for an old edit never clobbers a newer one.
func (s *documentStore) currentVersion(uri protocol.DocumentUri, version int32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	return ok && doc.Version == version
}

// uris returns every currently-open document's URI, for re-validating
// the whole workspace after a config change.
func (s *documentStore) uris() []protocol.DocumentUri {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]protocol.DocumentUri, 0, len(s.docs))
	for uri := range s.docs {
		out = append(out, uri)
	}
	return out
}
