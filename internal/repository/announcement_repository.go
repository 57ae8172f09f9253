package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/unierp-backend/internal/model"
)

// AnnouncementRepository handles announcement data access.
type AnnouncementRepository struct {
	pool *pgxpool.Pool
}

// NewAnnouncementRepository creates a new AnnouncementRepository.
func NewAnnouncementRepository(pool *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{pool: pool}
}

const announcementSelect = `
	SELECT an.id, an.offering_id, c.code, an.author_id, u.name, an.title, an.body, an.created_at
	FROM announcements an
	JOIN users u ON u.id = an.author_id
	LEFT JOIN course_offerings o ON o.id = an.offering_id
	LEFT JOIN courses c ON c.id = o.course_id`

func (r *AnnouncementRepository) list(ctx context.Context, query string, args ...any) ([]model.Announcement, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Announcement{}
	for rows.Next() {
		var a model.Announcement
		if err := rows.Scan(&a.ID, &a.OfferingID, &a.CourseCode, &a.AuthorID, &a.AuthorName,
			&a.Title, &a.Body, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListForStudent returns campus-wide announcements plus those of the student's enrolled offerings.
func (r *AnnouncementRepository) ListForStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]model.Announcement, error) {
	return r.list(ctx, announcementSelect+`
		WHERE an.offering_id IS NULL
		   OR an.offering_id IN (SELECT offering_id FROM enrollments WHERE student_id = $1 AND status = 'enrolled')
		ORDER BY an.created_at DESC LIMIT $2`, studentID, limit)
}

// ListForProfessor returns campus-wide announcements plus those of the professor's offerings.
func (r *AnnouncementRepository) ListForProfessor(ctx context.Context, professorID uuid.UUID, limit int) ([]model.Announcement, error) {
	return r.list(ctx, announcementSelect+`
		WHERE an.offering_id IS NULL OR o.professor_id = $1
		ORDER BY an.created_at DESC LIMIT $2`, professorID, limit)
}

// ListByOffering returns an offering's announcements, newest first.
func (r *AnnouncementRepository) ListByOffering(ctx context.Context, offeringID uuid.UUID, limit int) ([]model.Announcement, error) {
	return r.list(ctx, announcementSelect+` WHERE an.offering_id = $1 ORDER BY an.created_at DESC LIMIT $2`, offeringID, limit)
}

// ListAll returns every announcement, newest first.
func (r *AnnouncementRepository) ListAll(ctx context.Context, limit int) ([]model.Announcement, error) {
	return r.list(ctx, announcementSelect+` ORDER BY an.created_at DESC LIMIT $1`, limit)
}

// Create inserts a new announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, a *model.Announcement) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO announcements (offering_id, author_id, title, body)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		a.OfferingID, a.AuthorID, a.Title, a.Body,
	).Scan(&a.ID, &a.CreatedAt)
	return mapError(err)
}

// GetAuthor returns the author of an announcement.
func (r *AnnouncementRepository) GetAuthor(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var author uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT author_id FROM announcements WHERE id = $1`, id).Scan(&author)
	return author, mapError(err)
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
