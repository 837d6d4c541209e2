package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/cvmaker/internal/types"
)

// ListResumes returns all resumes of owner, most recently created first.
func (db *DB) ListResumes(ctx context.Context, ownerID uuid.UUID) ([]types.ResumeRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+resumeColumns+` FROM resumes
		 WHERE owner_id = $1
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	records := []types.ResumeRecord{}
	for rows.Next() {
		rec, err := scanResume(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	return records, nil
}

// GetResume returns one resume of owner, or nil when it does not exist.
func (db *DB) GetResume(ctx context.Context, ownerID uuid.UUID, id int64) (*types.ResumeRecord, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	rec, err := scanResume(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return rec, nil
}

// UpsertResume replaces the owner's most recently created resume, or creates the first one.
func (db *DB) UpsertResume(ctx context.Context, ownerID uuid.UUID, templateID, data string) (*types.ResumeRecord, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// serializes saves of one owner, including the first one when no row exists to lock
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, ownerID.String()); err != nil {
		return nil, fmt.Errorf("failed to lock owner resumes: %w", err)
	}

	var existing int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM resumes WHERE owner_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1
		 FOR UPDATE`,
		ownerID,
	).Scan(&existing)

	var row pgx.Row
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		row = tx.QueryRow(ctx,
			`INSERT INTO resumes (owner_id, template_id, data)
			 VALUES ($1, $2, $3)
			 RETURNING `+resumeColumns,
			ownerID, templateID, data,
		)
	case err != nil:
		return nil, fmt.Errorf("failed to find existing resume: %w", err)
	default:
		row = tx.QueryRow(ctx,
			`UPDATE resumes SET template_id = $1, data = $2, updated_at = NOW()
			 WHERE id = $3
			 RETURNING `+resumeColumns,
			templateID, data, existing,
		)
	}

	rec, err := scanResume(row)
	if err != nil {
		return nil, fmt.Errorf("failed to save resume: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit resume: %w", err)
	}
	return rec, nil
}

// DeleteResume removes one resume of owner.
func (db *DB) DeleteResume(ctx context.Context, ownerID uuid.UUID, id int64) error {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM resumes WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &ResumeNotFoundError{OwnerID: ownerID, ID: id}
	}
	return nil
}

func scanResume(row pgx.Row) (*types.ResumeRecord, error) {
	var rec types.ResumeRecord
	if err := row.Scan(&rec.ID, &rec.OwnerID, &rec.TemplateID, &rec.Data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}
