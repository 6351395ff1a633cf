package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Resources is the optimistic-concurrency CRUD service shared by cheeses and
// zones. Every stored document carries an opaque version token; updates must
// present the token they last read, and every successful write mints a fresh
// one. Only the current token is kept.
type Resources struct {
	store      Store
	collection string
	schema     *jsonschema.Schema
}

// NewCheeses creates the cheese resource service.
func NewCheeses(store Store) *Resources {
	return &Resources{store: store, collection: colCheeses, schema: cheeseSchema}
}

// NewZones creates the zone resource service.
func NewZones(store Store) *Resources {
	return &Resources{store: store, collection: colZones, schema: zoneSchema}
}

// newVersion mints an unguessable version token.
func newVersion() string {
	return uuid.NewString()
}

// Create validates the payload, stamps a fresh version token and inserts.
// Returns the new id and the token.
func (r *Resources) Create(ctx context.Context, payload Document) (string, string, error) {
	if err := validateDocument(r.schema, payload); err != nil {
		return "", "", err
	}
	doc := payload.clone()
	version := newVersion()
	doc[fieldVersion] = version
	id, err := r.store.Insert(ctx, r.collection, doc)
	if err != nil {
		return "", "", err
	}
	return id, version, nil
}

// Get returns the document at id, version token included.
func (r *Resources) Get(ctx context.Context, id string) (Document, error) {
	return r.store.Get(ctx, r.collection, id)
}

// Update replaces the document at id wholesale. The stored version must equal
// expected or the update is rejected with ErrVersionConflict and nothing is
// written. Fields absent from payload are dropped; this is a replace, not a
// merge. Returns the freshly minted version token.
func (r *Resources) Update(ctx context.Context, id string, payload Document, expected string) (string, error) {
	if err := validateDocument(r.schema, payload); err != nil {
		return "", err
	}
	if expected == "" {
		return "", ErrPreconditionMissing
	}
	current, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		return "", err
	}
	if current.stringField(fieldVersion) != expected {
		return "", ErrVersionConflict
	}
	doc := payload.clone()
	version := newVersion()
	doc[fieldVersion] = version
	if err := r.store.Replace(ctx, r.collection, id, doc); err != nil {
		return "", err
	}
	return version, nil
}

// Delete removes the document at id, or returns ErrNotFound.
func (r *Resources) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, r.collection, id)
}

// DeleteAll removes every document. Always succeeds, even when empty.
func (r *Resources) DeleteAll(ctx context.Context) error {
	return r.store.DeleteAll(ctx, r.collection)
}

// List returns all documents; order is store-dependent.
func (r *Resources) List(ctx context.Context) ([]Document, error) {
	return r.store.List(ctx, r.collection)
}
