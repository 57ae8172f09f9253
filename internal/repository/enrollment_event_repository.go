package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/unierp-backend/internal/model"
)

// EnrollmentEventRepository persists the enrollment audit trail.
type EnrollmentEventRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentEventRepository creates a new EnrollmentEventRepository.
func NewEnrollmentEventRepository(pool *pgxpool.Pool) *EnrollmentEventRepository {
	return &EnrollmentEventRepository{pool: pool}
}

// InsertBatch writes all events in one statement.
func (r *EnrollmentEventRepository) InsertBatch(ctx context.Context, events []model.EnrollmentEvent) error {
	students := make([]uuid.UUID, len(events))
	offerings := make([]uuid.UUID, len(events))
	actions := make([]string, len(events))
	details := make([]string, len(events))
	times := make([]time.Time, len(events))
	for i, e := range events {
		students[i] = e.StudentID
		offerings[i] = e.OfferingID
		actions[i] = string(e.Action)
		details[i] = e.Detail
		times[i] = e.OccurredAt
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO enrollment_events (student_id, offering_id, action, detail, occurred_at)
		 SELECT * FROM UNNEST($1::uuid[], $2::uuid[], $3::text[], $4::text[], $5::timestamptz[])`,
		students, offerings, actions, details, times)
	return err
}

// Insert writes a single event.
func (r *EnrollmentEventRepository) Insert(ctx context.Context, e model.EnrollmentEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO enrollment_events (student_id, offering_id, action, detail, occurred_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.StudentID, e.OfferingID, e.Action, e.Detail, e.OccurredAt)
	return mapError(err)
}

// ListByStudent returns a student's most recent events.
func (r *EnrollmentEventRepository) ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]model.EnrollmentEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT student_id, offering_id, action, detail, occurred_at
		 FROM enrollment_events WHERE student_id = $1
		 ORDER BY occurred_at DESC LIMIT $2`, studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.EnrollmentEvent{}
	for rows.Next() {
		var e model.EnrollmentEvent
		if err := rows.Scan(&e.StudentID, &e.OfferingID, &e.Action, &e.Detail, &e.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
