// Package cloud defines the ports through which the sync engine talks to the
// remote document store and the per-user encryption codec. Both are external
// collaborators; the engine only depends on these interfaces.
package cloud

import (
	"context"
	"time"
)

// EntityKind names one of the four synchronized collections. It doubles as
// the collection identifier in the remote namespace users/{uid}/{kind}.
type EntityKind string

const (
	KindAccounts     EntityKind = "accounts"
	KindTransactions EntityKind = "transactions"
	KindCategories   EntityKind = "categories"
	KindBudgets      EntityKind = "budgets"
)

// Document is the remote representation of one entity: an opaque encrypted
// payload plus the unencrypted fields the store needs for identity and
// ordered range queries.
type Document struct {
	// ID is the entity identifier, also used as the remote document key.
	ID string

	// Payload is the encrypted record, base64 encoded.
	Payload string

	// CreatedAt is the unencrypted creation timestamp carried by transaction
	// and budget documents for since-filtered queries. Zero for kinds that
	// sort by name.
	CreatedAt time.Time

	// Name is the unencrypted sort key carried by category documents.
	Name string
}

// ListOptions narrows a download query.
type ListOptions struct {
	// Since restricts results to documents created strictly after the given
	// time. Nil fetches everything.
	Since *time.Time
}

// Store is a per-user namespaced document store with atomic batched writes.
// Each user's data lives under users/{uid}/{kind}; no cross-user access is
// possible by construction.
type Store interface {
	// ListDocumentIDs fetches the identifiers of every document currently
	// present in the user's collection.
	ListDocumentIDs(ctx context.Context, userID string, kind EntityKind) (map[string]struct{}, error)

	// ListDocuments fetches documents ordered by the kind's sort field:
	// creation time descending, or name ascending for categories.
	ListDocuments(ctx context.Context, userID string, kind EntityKind, opts ListOptions) ([]Document, error)

	// CommitBatch writes all documents as a single atomic batch. Writes are
	// idempotent keyed overwrites: committing the same document twice leaves
	// one copy. Callers must keep batches within MaxBatchOps.
	CommitBatch(ctx context.Context, userID string, kind EntityKind, docs []Document) error
}

// MaxBatchOps is the per-batch operation ceiling callers must respect, a
// safety margin under the remote store's hard limit of 500 operations.
const MaxBatchOps = 450

// Codec is the symmetric transform between plaintext records and opaque
// payloads, keyed by user identity.
type Codec interface {
	// Seal encrypts plaintext for the given user and returns the payload.
	Seal(userID string, plaintext []byte) (string, error)

	// Open decrypts a payload for the given user. It fails on corrupt or
	// foreign-keyed payloads; callers treat that as loss of the one record.
	Open(userID string, payload string) ([]byte, error)
}
