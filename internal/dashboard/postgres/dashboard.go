package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/atokschool/archiving-portal/internal/dashboard"
)

type DashboardRepository struct {
	db *sqlx.DB
}

func NewDashboardRepository(db *sqlx.DB) dashboard.Repository {
	return &DashboardRepository{db: db}
}

// Counts gathers the four headline totals in one round trip.
func (r *DashboardRepository) Counts(ctx context.Context) (*dashboard.Counts, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM students)        AS students,
			(SELECT COUNT(*) FROM personnel)       AS personnel,
			(SELECT COUNT(*) FROM student_records) AS student_records,
			(SELECT COUNT(*) FROM school_forms)    AS school_forms`

	var counts dashboard.Counts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, err
	}
	return &counts, nil
}
