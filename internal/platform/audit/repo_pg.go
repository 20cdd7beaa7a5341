package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository stores submission events in the submission_event table.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Insert(ctx context.Context, event *SubmissionEvent) error {
	const query = `
		INSERT INTO submission_event (id, request_id, kind, form_name, subject_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		event.ID, event.RequestID, event.Kind, event.FormName,
		event.SubjectID, event.Detail, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert submission event: %w", err)
	}
	return nil
}

func (r *PGRepository) List(ctx context.Context, limit, offset int) ([]*SubmissionEvent, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM submission_event`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count submission events: %w", err)
	}

	const query = `
		SELECT id, request_id, kind, form_name, subject_id, detail, created_at
		FROM submission_event
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list submission events: %w", err)
	}
	defer rows.Close()

	var events []*SubmissionEvent
	for rows.Next() {
		var e SubmissionEvent
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Kind, &e.FormName, &e.SubjectID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan submission event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
