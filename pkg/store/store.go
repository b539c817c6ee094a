// Package store persists block documents.
//
// This package defines the storage contract for saved programs, with
// implementations for different backends:
//   - memory: In-memory storage for development/testing
//   - file: File-based storage for CLI applications
//   - redis: Redis-backed storage for multi-instance deployments
//   - mongo: MongoDB-backed storage with queryable document payloads
//   - postgres: PostgreSQL-backed storage with JSONB payloads
//
// # Architecture
//
// Documents are stored as [Record] values: the serialized program plus
// identity and bookkeeping timestamps. The [Store] interface supports:
//   - Save (upsert with ID generation and timestamping)
//   - Load by ID
//   - List of summaries, newest first
//   - Delete by ID
//
// All operations take a context and return [ErrNotFound] when the target
// does not exist. Payloads cross the boundary by value: backends hand out
// fresh copies, so callers can mutate results freely.
//
// # Usage
//
// Create a store:
//
//	// Development
//	st := store.NewMemoryStore()
//
//	// CLI
//	st, err := store.NewFileStore("")  // Uses ~/.config/blockpad/documents/
//
//	// Production
//	st, err := store.NewRedisStore(ctx, store.RedisConfig{Addr: "localhost:6379"})
//
// Save and reload a document:
//
//	rec := &store.Record{Name: "my program", Document: doc}
//	if err := st.Save(ctx, rec); err != nil {
//	    return err
//	}
//	got, err := st.Load(ctx, rec.ID)
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/blockpad/pkg/document"
	apperrors "github.com/matzehuels/blockpad/pkg/errors"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidID is returned when an ID is empty or unsafe for the backend.
	ErrInvalidID = errors.New("invalid document id")
)

// Record is a stored document with identity and bookkeeping.
type Record struct {
	ID        string             `json:"id" bson:"_id"`
	Name      string             `json:"name" bson:"name"`
	Document  *document.Document `json:"document" bson:"document"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Info is a listing entry: record identity without the document payload.
type Info struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store is the interface for document storage backends.
type Store interface {
	// Save upserts a record. An empty ID is replaced with a generated one,
	// CreatedAt is set on first save, and UpdatedAt is set on every save.
	Save(ctx context.Context, rec *Record) error

	// Load retrieves a record by ID.
	// Returns ErrNotFound if the document doesn't exist.
	Load(ctx context.Context, id string) (*Record, error)

	// List returns summaries of all stored documents, newest first.
	List(ctx context.Context) ([]Info, error)

	// Delete removes a document.
	// Returns ErrNotFound if the document doesn't exist.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// NewID generates a fresh document ID.
func NewID() string { return uuid.NewString() }

// stamp fills in identity and timestamps before a save.
func stamp(rec *Record) {
	if rec.ID == "" {
		rec.ID = NewID()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
}

// checkID rejects IDs that are empty or could escape a backend namespace.
func checkID(id string) error {
	if err := apperrors.ValidateDocumentID(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, apperrors.UserMessage(err))
	}
	return nil
}

// info extracts the listing entry for a record.
func (r *Record) info() Info {
	return Info{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}
