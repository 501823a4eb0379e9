package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
)

// DrawStore implements driven.DrawStore. Upsert merges the incoming record
// into the stored one under the non-regression rule.
type DrawStore struct {
	store  *Store
	schema domain.Schema
	now    func() time.Time
}

var _ driven.DrawStore = (*DrawStore)(nil)

func newDrawStore(s *Store, schema domain.Schema) *DrawStore {
	return &DrawStore{store: s, schema: schema, now: time.Now}
}

const drawColumns = `date, source, prizes, amounts, complete, warnings,
	doc_kind, doc_origin, doc_id, doc_sha256, doc_size, doc_blob_path, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Get retrieves the record for a date.
func (s *DrawStore) Get(ctx context.Context, date string) (*domain.DrawRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+drawColumns+` FROM draws WHERE date = ?`, date)
	rec, err := scanDraw(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return rec, err
}

// Upsert merges rec into the stored record for its date in one transaction
// and reports whether anything changed. Unchanged records are not rewritten.
func (s *DrawStore) Upsert(ctx context.Context, rec *domain.DrawRecord) (*domain.DrawRecord, bool, error) {
	if rec == nil || rec.Date == "" {
		return nil, false, domain.ErrInvalidInput
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	row := tx.QueryRowContext(ctx, `SELECT `+drawColumns+` FROM draws WHERE date = ?`, rec.Date)
	existing, err := scanDraw(row)
	if errors.Is(err, sql.ErrNoRows) {
		existing = nil
	} else if err != nil {
		return nil, false, err
	}

	merged, changed := s.schema.Merge(existing, rec.Date, rec.AsExtraction(), s.now().UTC())
	if !changed {
		return merged, false, nil
	}

	if err := writeDraw(ctx, tx, merged); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("committing draw %s: %w", rec.Date, err)
	}
	return merged, true, nil
}

// ListSince returns records dated on or after cutoff, newest first.
func (s *DrawStore) ListSince(ctx context.Context, cutoff string, limit, offset int) ([]domain.DrawRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+drawColumns+`
		FROM draws
		WHERE date >= ?
		ORDER BY date DESC
		LIMIT ? OFFSET ?
	`, cutoff, limit, max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("querying draws: %w", err)
	}
	defer rows.Close()

	var records []domain.DrawRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanDraw(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating draws: %w", err)
	}
	return records, nil
}

func writeDraw(ctx context.Context, tx *sql.Tx, rec *domain.DrawRecord) error {
	prizesJSON, err := json.Marshal(rec.Prizes)
	if err != nil {
		return fmt.Errorf("marshalling prizes: %w", err)
	}
	var amountsJSON any
	if rec.Amounts != nil {
		b, err := json.Marshal(rec.Amounts)
		if err != nil {
			return fmt.Errorf("marshalling amounts: %w", err)
		}
		amountsJSON = string(b)
	}
	warnings := rec.Diagnostics.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("marshalling warnings: %w", err)
	}

	var kind, origin, id, sha, blobPath, size any
	if doc := rec.Document; doc != nil {
		kind, origin, id, sha, blobPath, size = string(doc.Kind), doc.Origin, doc.ID, doc.SHA256, doc.BlobPath, doc.Size
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO draws (`+drawColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			source = excluded.source,
			prizes = excluded.prizes,
			amounts = excluded.amounts,
			complete = excluded.complete,
			warnings = excluded.warnings,
			doc_kind = excluded.doc_kind,
			doc_origin = excluded.doc_origin,
			doc_id = excluded.doc_id,
			doc_sha256 = excluded.doc_sha256,
			doc_size = excluded.doc_size,
			doc_blob_path = excluded.doc_blob_path,
			updated_at = excluded.updated_at
	`, rec.Date, string(rec.Source), string(prizesJSON), amountsJSON,
		boolToInt(rec.Diagnostics.Complete), string(warningsJSON),
		kind, origin, id, sha, size, blobPath,
		rec.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving draw %s: %w", rec.Date, err)
	}
	return nil
}

func scanDraw(row rowScanner) (*domain.DrawRecord, error) {
	var rec domain.DrawRecord
	var source, prizesJSON, warningsJSON, updatedAt string
	var amountsJSON, kind, origin, id, sha, blobPath sql.NullString
	var size sql.NullInt64
	var complete int

	if err := row.Scan(&rec.Date, &source, &prizesJSON, &amountsJSON, &complete, &warningsJSON,
		&kind, &origin, &id, &sha, &size, &blobPath, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning draw: %w", err)
	}

	rec.Source = domain.Provenance(source)
	if err := json.Unmarshal([]byte(prizesJSON), &rec.Prizes); err != nil {
		return nil, fmt.Errorf("unmarshaling prizes of %s: %w", rec.Date, err)
	}
	if amountsJSON.Valid {
		if err := json.Unmarshal([]byte(amountsJSON.String), &rec.Amounts); err != nil {
			return nil, fmt.Errorf("unmarshaling amounts of %s: %w", rec.Date, err)
		}
	}
	if err := json.Unmarshal([]byte(warningsJSON), &rec.Diagnostics.Warnings); err != nil {
		return nil, fmt.Errorf("unmarshaling warnings of %s: %w", rec.Date, err)
	}
	if len(rec.Diagnostics.Warnings) == 0 {
		rec.Diagnostics.Warnings = nil
	}
	rec.Diagnostics.Complete = complete == 1

	if kind.Valid {
		rec.Document = &domain.DocumentRef{
			Kind:     domain.Provenance(kind.String),
			Origin:   origin.String,
			ID:       id.String,
			SHA256:   sha.String,
			Size:     size.Int64,
			BlobPath: blobPath.String,
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		rec.UpdatedAt = t
	}
	return &rec, nil
}
