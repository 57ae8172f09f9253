package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/unierp-backend/internal/model"
)

// DashboardRepository handles dashboard aggregate queries.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummaryCounts retrieves the high-level totals for the admin dashboard.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (d model.AdminDashboard, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'student'),
			(SELECT COUNT(*) FROM users WHERE role = 'professor'),
			(SELECT COUNT(*) FROM courses),
			(SELECT COUNT(*) FROM course_offerings),
			(SELECT COUNT(*) FROM enrollments WHERE status = 'enrolled')`,
	).Scan(&d.Students, &d.Professors, &d.Courses, &d.Offerings, &d.ActiveEnrollments)
	return
}

// GetEnrollmentStatusCounts retrieves the distribution of enrollments by status.
func (r *DashboardRepository) GetEnrollmentStatusCounts(ctx context.Context) (map[model.EnrollmentStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM enrollments GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[model.EnrollmentStatus]int{
		model.EnrollmentEnrolled:  0,
		model.EnrollmentCompleted: 0,
		model.EnrollmentDropped:   0,
	}
	for rows.Next() {
		var status model.EnrollmentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// GetFullestOfferings lists offerings ordered by how close they are to capacity.
func (r *DashboardRepository) GetFullestOfferings(ctx context.Context, limit int) ([]model.OfferingFill, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT o.id, c.code, o.semester, o.year, COUNT(e.id), o.max_students
		 FROM course_offerings o
		 JOIN courses c ON c.id = o.course_id
		 LEFT JOIN enrollments e ON e.offering_id = o.id AND e.status = 'enrolled'
		 GROUP BY o.id, c.code
		 ORDER BY COUNT(e.id)::float / o.max_students DESC, c.code
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.OfferingFill{}
	for rows.Next() {
		var f model.OfferingFill
		if err := rows.Scan(&f.OfferingID, &f.CourseCode, &f.Semester, &f.Year, &f.EnrolledCount, &f.MaxStudents); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// GetTaughtOfferings lists a professor's offerings with their enrolled counts.
func (r *DashboardRepository) GetTaughtOfferings(ctx context.Context, professorID uuid.UUID) ([]model.TaughtOffering, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT o.id, c.code, c.name, o.semester, o.year, COUNT(e.id), o.max_students
		 FROM course_offerings o
		 JOIN courses c ON c.id = o.course_id
		 LEFT JOIN enrollments e ON e.offering_id = o.id AND e.status = 'enrolled'
		 WHERE o.professor_id = $1
		 GROUP BY o.id, c.code, c.name
		 ORDER BY o.year DESC, o.semester, c.code`, professorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.TaughtOffering{}
	for rows.Next() {
		var t model.TaughtOffering
		if err := rows.Scan(&t.OfferingID, &t.CourseCode, &t.CourseName, &t.Semester, &t.Year, &t.EnrolledCount, &t.MaxStudents); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountEnrolledCourses counts a student's active enrollments.
func (r *DashboardRepository) CountEnrolledCourses(ctx context.Context, studentID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE student_id = $1 AND status = 'enrolled'`, studentID,
	).Scan(&n)
	return n, err
}
