package documents

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateWithFields inserts the document and its fields in a single transaction.
func (r *PGRepo) CreateWithFields(ctx context.Context, doc Document, fields []Field) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const docQuery = `
INSERT INTO documents (id, user_id, file_name, document_type, pdf_url, processed_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	var pdfURL sql.NullString
	if doc.PDFURL != "" {
		pdfURL = sql.NullString{String: doc.PDFURL, Valid: true}
	}

	if _, err := tx.ExecContext(ctx, docQuery,
		doc.ID,
		doc.UserID,
		doc.FileName,
		doc.DocumentType,
		pdfURL,
		doc.ProcessedAt,
	); err != nil {
		return translateUnique(err)
	}

	const fieldQuery = `
INSERT INTO data_points (id, document_id, user_id, field_name, field_value)
VALUES ($1, $2, $3, $4, $5)`

	for _, f := range fields {
		if _, err := tx.ExecContext(ctx, fieldQuery,
			f.ID,
			f.DocumentID,
			f.UserID,
			f.Name,
			f.Value,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ExistsByUserAndName reports whether a document already exists for the pair.
func (r *PGRepo) ExistsByUserAndName(ctx context.Context, userID, fileName string) (bool, error) {
	const query = `
SELECT 1 FROM documents WHERE user_id = $1 AND file_name = $2 LIMIT 1`

	var one int
	err := r.DB.QueryRowContext(ctx, query, userID, fileName).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListByUser lists documents newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	const query = `
SELECT id, user_id, file_name, document_type, pdf_url, processed_at
FROM documents
WHERE user_id = $1
ORDER BY processed_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		var pdfURL sql.NullString
		if err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&doc.FileName,
			&doc.DocumentType,
			&pdfURL,
			&doc.ProcessedAt,
		); err != nil {
			return nil, err
		}
		if pdfURL.Valid {
			doc.PDFURL = pdfURL.String
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// ListFieldsByUser lists all extracted fields owned by the user.
func (r *PGRepo) ListFieldsByUser(ctx context.Context, userID string) ([]Field, error) {
	const query = `
SELECT id, document_id, user_id, field_name, field_value
FROM data_points
WHERE user_id = $1`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Field
	for rows.Next() {
		var f Field
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.UserID, &f.Name, &f.Value); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicate
	}
	return err
}

var _ Repo = (*PGRepo)(nil)
