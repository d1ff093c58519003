package postgres

import (
	"context"
	"errors"

	"github.com/atokschool/archiving-portal/internal/records"
	"gorm.io/gorm"
)

// RecordRepository implements records.Repository using GORM. Each kind
// builds one filter scope shared by its count and page queries.
type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) records.Repository {
	return &RecordRepository{db: db}
}

// --- student records ---

func studentScope(q records.StudentSearchQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			term := "%" + q.Search + "%"
			db = db.Where("(s.first_name LIKE ? OR s.last_name LIKE ? OR s.lrn LIKE ?)", term, term, term)
		}
		if q.SchoolYear != "" {
			db = db.Where("sr.school_year = ?", q.SchoolYear)
		}
		if q.GradeLevel != "" {
			db = db.Where("sr.grade_level = ?", q.GradeLevel)
		}
		if q.RecordType != "" {
			db = db.Where("sr.record_type = ?", q.RecordType)
		}
		return db
	}
}

func (r *RecordRepository) studentBase(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("student_records sr").
		Joins("JOIN students s ON sr.student_id = s.id")
}

func (r *RecordRepository) CountStudentRecords(ctx context.Context, q records.StudentSearchQuery) (int64, error) {
	var count int64
	err := r.studentBase(ctx).Scopes(studentScope(q)).Count(&count).Error
	return count, err
}

func (r *RecordRepository) SearchStudentRecords(ctx context.Context, q records.StudentSearchQuery, limit, offset int) ([]*records.StudentRecordRow, error) {
	var rows []*records.StudentRecordRow

	err := r.studentBase(ctx).
		Select("sr.*, s.first_name, s.last_name, s.lrn, u.full_name AS uploaded_by_name").
		Joins("JOIN users u ON sr.uploaded_by = u.id").
		Scopes(studentScope(q)).
		Order("sr.uploaded_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error

	return rows, err
}

func (r *RecordRepository) GetStudentRecord(ctx context.Context, id int64) (*records.StudentRecordRow, error) {
	var row records.StudentRecordRow

	err := r.studentBase(ctx).
		Select("sr.*, s.first_name, s.last_name, s.lrn").
		Where("sr.id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, records.ErrRecordNotFound
		}
		return nil, err
	}

	return &row, nil
}

func (r *RecordRepository) CreateStudentRecord(ctx context.Context, rec *records.StudentRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// --- personnel records ---

func personnelScope(q records.PersonnelSearchQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			term := "%" + q.Search + "%"
			db = db.Where("(p.first_name LIKE ? OR p.last_name LIKE ? OR p.employee_id LIKE ?)", term, term, term)
		}
		if q.Position != "" {
			db = db.Where("p.position = ?", q.Position)
		}
		if q.Status != "" {
			db = db.Where("p.status = ?", q.Status)
		}
		if q.RecordType != "" {
			db = db.Where("pr.record_type = ?", q.RecordType)
		}
		return db
	}
}

func (r *RecordRepository) personnelBase(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("personnel_records pr").
		Joins("JOIN personnel p ON pr.personnel_id = p.id")
}

func (r *RecordRepository) CountPersonnelRecords(ctx context.Context, q records.PersonnelSearchQuery) (int64, error) {
	var count int64
	err := r.personnelBase(ctx).Scopes(personnelScope(q)).Count(&count).Error
	return count, err
}

func (r *RecordRepository) SearchPersonnelRecords(ctx context.Context, q records.PersonnelSearchQuery, limit, offset int) ([]*records.PersonnelRecordRow, error) {
	var rows []*records.PersonnelRecordRow

	err := r.personnelBase(ctx).
		Select("pr.*, p.first_name, p.last_name, p.employee_id, p.position, p.status, u.full_name AS uploaded_by_name").
		Joins("JOIN users u ON pr.uploaded_by = u.id").
		Scopes(personnelScope(q)).
		Order("pr.uploaded_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error

	return rows, err
}

func (r *RecordRepository) GetPersonnelRecord(ctx context.Context, id int64) (*records.PersonnelRecordRow, error) {
	var row records.PersonnelRecordRow

	err := r.personnelBase(ctx).
		Select("pr.*, p.first_name, p.last_name, p.employee_id, p.position, p.status").
		Where("pr.id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, records.ErrRecordNotFound
		}
		return nil, err
	}

	return &row, nil
}

func (r *RecordRepository) CreatePersonnelRecord(ctx context.Context, rec *records.PersonnelRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// --- school forms ---

func formScope(q records.FormSearchQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			term := "%" + q.Search + "%"
			db = db.Where("sf.document_title LIKE ?", term)
		}
		if q.SchoolYear != "" {
			db = db.Where("sf.school_year = ?", q.SchoolYear)
		}
		if q.FormType != "" {
			db = db.Where("sf.form_type = ?", q.FormType)
		}
		return db
	}
}

func (r *RecordRepository) formBase(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("school_forms sf")
}

func (r *RecordRepository) CountSchoolForms(ctx context.Context, q records.FormSearchQuery) (int64, error) {
	var count int64
	err := r.formBase(ctx).Scopes(formScope(q)).Count(&count).Error
	return count, err
}

func (r *RecordRepository) SearchSchoolForms(ctx context.Context, q records.FormSearchQuery, limit, offset int) ([]*records.SchoolFormRow, error) {
	var rows []*records.SchoolFormRow

	err := r.formBase(ctx).
		Select("sf.*, u.full_name AS uploaded_by_name").
		Joins("JOIN users u ON sf.uploaded_by = u.id").
		Scopes(formScope(q)).
		Order("sf.uploaded_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error

	return rows, err
}

func (r *RecordRepository) GetSchoolForm(ctx context.Context, id int64) (*records.SchoolFormRow, error) {
	var row records.SchoolFormRow

	err := r.formBase(ctx).
		Where("sf.id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, records.ErrRecordNotFound
		}
		return nil, err
	}

	return &row, nil
}

func (r *RecordRepository) CreateSchoolForm(ctx context.Context, rec *records.SchoolForm) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// --- subjects ---

func (r *RecordRepository) ListStudents(ctx context.Context) ([]*records.Student, error) {
	var students []*records.Student
	err := r.db.WithContext(ctx).
		Order("last_name, first_name").
		Find(&students).Error
	return students, err
}

func (r *RecordRepository) ListPersonnel(ctx context.Context) ([]*records.Personnel, error) {
	var personnel []*records.Personnel
	err := r.db.WithContext(ctx).
		Order("last_name, first_name").
		Find(&personnel).Error
	return personnel, err
}
