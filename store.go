package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collections held in the store.
const (
	colCheeses     = "cheeses"
	colZones       = "zones"
	colAssignments = "zone_assignments"
	colRequests    = "zone_assignment_requests"
)

// Store is the document-collection contract every service depends on. It is
// injected so tests can substitute MemStore for Redis. Documents returned by
// Get, List and the find methods carry their id under "_id"; the id is never
// part of the stored body.
type Store interface {
	// Insert stores a new document and returns its generated id.
	Insert(ctx context.Context, collection string, doc Document) (string, error)
	// Get returns the document at id, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Replace overwrites the document at id wholesale, or returns ErrNotFound.
	Replace(ctx context.Context, collection, id string, doc Document) error
	// Delete removes the document at id, or returns ErrNotFound.
	Delete(ctx context.Context, collection, id string) error
	// DeleteAll removes every document in the collection; never ErrNotFound.
	DeleteAll(ctx context.Context, collection string) error
	// List returns all documents in the collection, order unspecified.
	List(ctx context.Context, collection string) ([]Document, error)
	// FindByFields returns the first document whose named string fields all
	// match, or ErrNotFound.
	FindByFields(ctx context.Context, collection string, fields map[string]string) (Document, error)
	// ListByFields returns every document whose named string fields all match.
	ListByFields(ctx context.Context, collection string, fields map[string]string) ([]Document, error)
}

// newObjectID generates a store-style 24-hex-character identifier.
func newObjectID() string {
	return primitive.NewObjectID().Hex()
}

// validObjectID reports whether s is a well-formed 24-hex-character id.
func validObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}

// RedisStore provides document persistence in Redis. Each document lives at
// "{collection}:{id}" with the collection's ids tracked in a set named after
// the collection.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func docKey(collection, id string) string {
	return fmt.Sprintf("%s:%s", collection, id)
}

// Insert stores a new document under a generated id.
func (s *RedisStore) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	id := newObjectID()
	data, err := marshalDoc(doc)
	if err != nil {
		return "", err
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, docKey(collection, id), data, 0)
	pipe.SAdd(ctx, collection, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// Get retrieves a document by id.
func (s *RedisStore) Get(ctx context.Context, collection, id string) (Document, error) {
	data, err := s.client.Get(ctx, docKey(collection, id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return unmarshalDoc(id, []byte(data))
}

// Replace overwrites the document at id.
func (s *RedisStore) Replace(ctx context.Context, collection, id string, doc Document) error {
	n, err := s.client.Exists(ctx, docKey(collection, id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	data, err := marshalDoc(doc)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, docKey(collection, id), data, 0).Err()
}

// Delete removes a document by id.
func (s *RedisStore) Delete(ctx context.Context, collection, id string) error {
	n, err := s.client.Exists(ctx, docKey(collection, id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	pipe := s.client.Pipeline()
	pipe.Del(ctx, docKey(collection, id))
	pipe.SRem(ctx, collection, id)
	_, err = pipe.Exec(ctx)
	return err
}

// DeleteAll removes every document in the collection. An empty collection is
// not an error.
func (s *RedisStore) DeleteAll(ctx context.Context, collection string) error {
	ids, err := s.client.SMembers(ctx, collection).Result()
	if err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	for _, id := range ids {
		pipe.Del(ctx, docKey(collection, id))
	}
	pipe.Del(ctx, collection)
	_, err = pipe.Exec(ctx)
	return err
}

// List returns all documents in the collection.
func (s *RedisStore) List(ctx context.Context, collection string) ([]Document, error) {
	ids, err := s.client.SMembers(ctx, collection).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Document{}, nil
	}
	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, docKey(collection, id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}
	docs := make([]Document, 0, len(ids))
	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, err
		}
		doc, err := unmarshalDoc(ids[i], []byte(data))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// FindByFields returns the first document matching all given fields.
func (s *RedisStore) FindByFields(ctx context.Context, collection string, fields map[string]string) (Document, error) {
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
func (s *RedisStore) ListByFields(ctx context.Context, collection string, fields map[string]string) ([]Document, error) {
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

// matchFields reports whether every given field equals the document's string
// value for that field.
func matchFields(doc Document, fields map[string]string) bool {
	for k, v := range fields {
		if doc.stringField(k) != v {
			return false
		}
	}
	return true
}

// marshalDoc serializes a document body, excluding the id.
func marshalDoc(doc Document) ([]byte, error) {
	body := doc.clone()
	delete(body, fieldID)
	return json.Marshal(body)
}

// unmarshalDoc deserializes a document body and attaches its id.
func unmarshalDoc(id string, data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	doc[fieldID] = id
	return doc, nil
}
