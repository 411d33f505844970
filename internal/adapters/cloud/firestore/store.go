// Package firestore implements the remote document store port on top of the
// Firestore REST API. Each user's data lives under the document path
// users/{uid}, with one subcollection per entity kind, so per-user isolation
// is structural rather than filtered.
package firestore

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/ajudi46/expense-tracker-server/internal/core/ports/cloud"
	firestore "google.golang.org/api/firestore/v1"
	"google.golang.org/api/option"
)

const listPageSize = 300

type store struct {
	svc      *firestore.Service
	database string
}

// NewStore creates a Firestore-backed cloud store for the given project,
// using the (default) database. Credentials come from the environment unless
// overridden by options.
func NewStore(ctx context.Context, projectID string, opts ...option.ClientOption) (cloud.Store, error) {
	svc, err := firestore.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore service: %w", err)
	}
	return &store{
		svc:      svc,
		database: fmt.Sprintf("projects/%s/databases/(default)", projectID),
	}, nil
}

var _ cloud.Store = (*store)(nil)

func (s *store) userParent(userID string) string {
	return s.database + "/documents/users/" + userID
}

func (s *store) docName(userID string, kind cloud.EntityKind, docID string) string {
	return s.userParent(userID) + "/" + string(kind) + "/" + docID
}

// orderFieldFor returns the server-side sort for a kind: creation time
// descending for timestamped kinds, name ascending for categories.
func orderFieldFor(kind cloud.EntityKind) string {
	if kind == cloud.KindCategories {
		return "name"
	}
	return "createdAt desc"
}

func (s *store) ListDocumentIDs(ctx context.Context, userID string, kind cloud.EntityKind) (map[string]struct{}, error) {
	ids := map[string]struct{}{}
	pageToken := ""
	for {
		call := s.svc.Projects.Databases.Documents.List(s.userParent(userID), string(kind)).
			PageSize(listPageSize).
			MaskFieldPaths("__name__").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list %s document ids: %w", kind, err)
		}
		for _, doc := range resp.Documents {
			ids[path.Base(doc.Name)] = struct{}{}
		}
		if resp.NextPageToken == "" {
			return ids, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (s *store) ListDocuments(ctx context.Context, userID string, kind cloud.EntityKind, opts cloud.ListOptions) ([]cloud.Document, error) {
	docs := []cloud.Document{}
	pageToken := ""
	for {
		call := s.svc.Projects.Databases.Documents.List(s.userParent(userID), string(kind)).
			PageSize(listPageSize).
			OrderBy(orderFieldFor(kind)).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list %s documents: %w", kind, err)
		}
		for _, raw := range resp.Documents {
			doc, err := fromRemote(raw)
			if err != nil {
				return nil, fmt.Errorf("malformed %s document %s: %w", kind, path.Base(raw.Name), err)
			}
			// The list API cannot filter by field, so the since cut is
			// applied here against the unencrypted creation timestamp.
			if opts.Since != nil && !doc.CreatedAt.After(*opts.Since) {
				continue
			}
			docs = append(docs, doc)
		}
		if resp.NextPageToken == "" {
			return docs, nil
		}
		pageToken = resp.NextPageToken
	}
}

// CommitBatch writes all documents in one atomic BatchWrite. The remote API
// rejects batches over 500 operations; callers stay under cloud.MaxBatchOps.
func (s *store) CommitBatch(ctx context.Context, userID string, kind cloud.EntityKind, docs []cloud.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if len(docs) > cloud.MaxBatchOps {
		return fmt.Errorf("batch of %d documents exceeds the %d operation ceiling", len(docs), cloud.MaxBatchOps)
	}

	writes := make([]*firestore.Write, 0, len(docs))
	for _, doc := range docs {
		writes = append(writes, &firestore.Write{
			Update: &firestore.Document{
				Name:   s.docName(userID, kind, doc.ID),
				Fields: toRemoteFields(doc),
			},
		})
	}

	resp, err := s.svc.Projects.Databases.Documents.
		BatchWrite(s.database, &firestore.BatchWriteRequest{Writes: writes}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to commit %s batch: %w", kind, err)
	}
	// BatchWrite is non-transactional at the API level; surface the first
	// per-write failure so the caller treats the chunk as failed.
	for i, status := range resp.Status {
		if status != nil && status.Code != 0 {
			return fmt.Errorf("write %d of %s batch failed: %s", i, kind, status.Message)
		}
	}
	return nil
}

func toRemoteFields(doc cloud.Document) map[string]firestore.Value {
	fields := map[string]firestore.Value{
		"payload": {StringValue: doc.Payload},
	}
	if !doc.CreatedAt.IsZero() {
		fields["createdAt"] = firestore.Value{TimestampValue: doc.CreatedAt.UTC().Format(time.RFC3339Nano)}
	}
	if doc.Name != "" {
		fields["name"] = firestore.Value{StringValue: doc.Name}
	}
	return fields
}

func fromRemote(raw *firestore.Document) (cloud.Document, error) {
	doc := cloud.Document{ID: path.Base(raw.Name)}

	payload, ok := raw.Fields["payload"]
	if !ok {
		return cloud.Document{}, fmt.Errorf("missing payload field")
	}
	doc.Payload = payload.StringValue

	if created, ok := raw.Fields["createdAt"]; ok && created.TimestampValue != "" {
		t, err := time.Parse(time.RFC3339Nano, created.TimestampValue)
		if err != nil {
			return cloud.Document{}, fmt.Errorf("bad createdAt timestamp: %w", err)
		}
		doc.CreatedAt = t
	}
	if name, ok := raw.Fields["name"]; ok {
		doc.Name = name.StringValue
	}
	return doc, nil
}
