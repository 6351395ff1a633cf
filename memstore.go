package main

import (
	"context"
	"encoding/json"
	"sync"
)

// MemStore is an in-memory Store used by the test suite. Documents are
// round-tripped through JSON on the way in and out, so callers never share
// memory with the stored copy.
type MemStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{collections: make(map[string]map[string]Document)}
}

// Insert stores a new document under a generated id.
func (s *MemStore) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	body, err := deepCopy(doc)
	if err != nil {
		return "", err
	}
	delete(body, fieldID)

	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collections[collection]
	if col == nil {
		col = make(map[string]Document)
		s.collections[collection] = col
	}
	id := newObjectID()
	col[id] = body
	return id, nil
}

// Get retrieves a document by id.
func (s *MemStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	body, ok := s.collections[collection][id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return withID(id, body)
}

// Replace overwrites the document at id.
func (s *MemStore) Replace(ctx context.Context, collection, id string, doc Document) error {
	body, err := deepCopy(doc)
	if err != nil {
		return err
	}
	delete(body, fieldID)

	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collections[collection]
	if _, ok := col[id]; !ok {
		return ErrNotFound
	}
	col[id] = body
	return nil
}

// Delete removes the document at id.
func (s *MemStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collections[collection]
	if _, ok := col[id]; !ok {
		return ErrNotFound
	}
	delete(col, id)
	return nil
}

// DeleteAll removes every document in the collection.
func (s *MemStore) DeleteAll(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, collection)
	return nil
}

// List returns all documents in the collection.
func (s *MemStore) List(ctx context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col := s.collections[collection]
	docs := make([]Document, 0, len(col))
	for id, body := range col {
		doc, err := withID(id, body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// FindByFields returns the first document matching all given fields.
func (s *MemStore) FindByFields(ctx context.Context, collection string, fields map[string]string) (Document, error) {
	docs, err := s.ListByFields(ctx, collection, fields)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

// ListByFields returns every document matching all given fields.
func (s *MemStore) ListByFields(ctx context.Context, collection string, fields map[string]string) ([]Document, error) {
	docs, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	matched := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if matchFields(doc, fields) {
			matched = append(matched, doc)
		}
	}
	return matched, nil
}

// deepCopy clones a document through JSON so stored documents never alias
// caller memory.
func deepCopy(doc Document) (Document, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// withID returns a copy of the stored body with its id attached.
func withID(id string, body Document) (Document, error) {
	doc, err := deepCopy(body)
	if err != nil {
		return nil, err
	}
	doc[fieldID] = id
	return doc, nil
}
