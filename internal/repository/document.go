package repository

import (
	"context"
	"errors"
	"fmt"
	"net"

	"travel-discovery-backend/internal/baas"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository stores documents as jsonb rows keyed by collection and id
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// GetDocument retrieves a document. The stored revision is exposed as the
// revision field.
func (r *DocumentRepository) GetDocument(ctx context.Context, collection, id string) (baas.Document, bool, error) {
	query := `
		SELECT data, revision
		FROM documents
		WHERE collection = $1 AND id = $2
	`
	var (
		raw      []byte
		revision int64
	)
	err := r.db.QueryRow(ctx, query, collection, id).Scan(&raw, &revision)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get document: %w", classify(err))
	}

	doc := baas.Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, fmt.Errorf("failed to decode document: %w", err)
	}
	doc[baas.RevisionField] = revision
	return doc, true, nil
}

// SetDocument writes a document. Merge writes use jsonb concatenation so
// top-level keys of data replace stored keys and all others survive.
func (r *DocumentRepository) SetDocument(ctx context.Context, collection, id string, data baas.Document, opts baas.SetOptions) error {
	payload := make(baas.Document, len(data))
	for k, v := range data {
		if k != baas.RevisionField {
			payload[k] = v
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	merge := `EXCLUDED.data`
	if opts.Merge {
		merge = `documents.data || EXCLUDED.data`
	}
	query := `
		INSERT INTO documents (collection, id, data, revision, updated_at)
		VALUES ($1, $2, $3::jsonb, 1, now())
		ON CONFLICT (collection, id) DO UPDATE
		SET data = ` + merge + `,
		    revision = documents.revision + 1,
		    updated_at = now()
	`
	args := []any{collection, id, raw}
	if opts.ExpectedRevision != nil {
		query += ` WHERE documents.revision = $4`
		args = append(args, *opts.ExpectedRevision)
	}

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set document: %w", classify(err))
	}
	// A conditional upsert that skipped the update touches no rows. A first
	// write with ExpectedRevision 0 inserts and therefore succeeds.
	if opts.ExpectedRevision != nil && result.RowsAffected() == 0 {
		return baas.ErrRevisionConflict
	}
	return nil
}

// classify marks connection-level failures as unavailable so callers can
// tell offline conditions apart from query errors
func classify(err error) error {
	var (
		connectErr *pgconn.ConnectError
		netErr     net.Error
	)
	if errors.As(err, &connectErr) || errors.As(err, &netErr) || pgconn.Timeout(err) {
		return baas.Unavailable(err)
	}
	return err
}
