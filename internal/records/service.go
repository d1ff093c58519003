package records

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/atokschool/archiving-portal/internal/activity"
	"github.com/atokschool/archiving-portal/internal/auth"
	"github.com/atokschool/archiving-portal/internal/storage"
)

// Repository is the data access surface for the three record catalogs.
// Count and search for one kind share a single filter predicate in the
// implementation, so the page math can never drift from the result set.
type Repository interface {
	CountStudentRecords(ctx context.Context, q StudentSearchQuery) (int64, error)
	SearchStudentRecords(ctx context.Context, q StudentSearchQuery, limit, offset int) ([]*StudentRecordRow, error)
	GetStudentRecord(ctx context.Context, id int64) (*StudentRecordRow, error)
	CreateStudentRecord(ctx context.Context, rec *StudentRecord) error

	CountPersonnelRecords(ctx context.Context, q PersonnelSearchQuery) (int64, error)
	SearchPersonnelRecords(ctx context.Context, q PersonnelSearchQuery, limit, offset int) ([]*PersonnelRecordRow, error)
	GetPersonnelRecord(ctx context.Context, id int64) (*PersonnelRecordRow, error)
	CreatePersonnelRecord(ctx context.Context, rec *PersonnelRecord) error

	CountSchoolForms(ctx context.Context, q FormSearchQuery) (int64, error)
	SearchSchoolForms(ctx context.Context, q FormSearchQuery, limit, offset int) ([]*SchoolFormRow, error)
	GetSchoolForm(ctx context.Context, id int64) (*SchoolFormRow, error)
	CreateSchoolForm(ctx context.Context, rec *SchoolForm) error

	ListStudents(ctx context.Context) ([]*Student, error)
	ListPersonnel(ctx context.Context) ([]*Personnel, error)
}

// FileStore is the upload pipeline the catalog writes through.
type FileStore interface {
	Save(file multipart.File, header *multipart.FileHeader, subdir string) (*storage.StoredFile, error)
	Delete(path string) error
	Exists(path string) bool
}

type ActivityLogger interface {
	LogWithRecord(ctx context.Context, userID int64, action, description string, recordID *int64, ip string)
	LogDownload(ctx context.Context, userID int64, recordKind string, recordID int64, ip string)
}

type Service struct {
	repo     Repository
	store    FileStore
	activity ActivityLogger
	logger   *slog.Logger
}

func NewService(repo Repository, store FileStore, activityLog ActivityLogger, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		store:    store,
		activity: activityLog,
		logger:   logger,
	}
}

// --- student records ---

func (s *Service) SearchStudents(ctx context.Context, q StudentSearchQuery) (*StudentRecordPage, error) {
	total, err := s.repo.CountStudentRecords(ctx, q)
	if err != nil {
		s.logger.Error("failed to count student records", "error", err)
		return nil, err
	}

	p := Paginate(total, DefaultPerPage, q.Page)

	rows, err := s.repo.SearchStudentRecords(ctx, q, p.PerPage, p.Offset)
	if err != nil {
		s.logger.Error("failed to search student records", "error", err)
		return nil, err
	}

	return &StudentRecordPage{Records: rows, Pagination: p}, nil
}

func (s *Service) UploadStudentRecord(ctx context.Context, user *auth.User, dto UploadStudentRecordDTO, file multipart.File, header *multipart.FileHeader, ip string) (*StudentRecord, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	subdir := fmt.Sprintf("students/%d/%s", dto.StudentID, dto.SchoolYear)
	stored, err := s.store.Save(file, header, subdir)
	if err != nil {
		return nil, err
	}

	rec := &StudentRecord{
		StudentID:    dto.StudentID,
		SchoolYear:   dto.SchoolYear,
		GradeLevel:   dto.GradeLevel,
		Section:      dto.Section,
		RecordType:   dto.RecordType,
		FileName:     stored.Filename,
		OriginalName: stored.OriginalName,
		FilePath:     stored.Path,
		FileSize:     stored.Size,
		UploadedBy:   user.ID,
		UploadedAt:   time.Now(),
	}

	if err := s.repo.CreateStudentRecord(ctx, rec); err != nil {
		s.logger.Error("failed to insert student record", "error", err, "student_id", dto.StudentID)
		s.compensate(stored.Path)
		return nil, ErrStorageFailed
	}

	s.activity.LogWithRecord(ctx, user.ID, activity.ActionUpload,
		fmt.Sprintf("Uploaded %s for student ID: %d", dto.RecordType, dto.StudentID), &rec.ID, ip)

	s.logger.Info("student record uploaded",
		"record_id", rec.ID,
		"student_id", dto.StudentID,
		"school_year", dto.SchoolYear,
		"uploaded_by", user.ID)

	return rec, nil
}

func (s *Service) DownloadStudentRecord(ctx context.Context, user *auth.User, recordID int64, ip string) (*Download, error) {
	row, err := s.repo.GetStudentRecord(ctx, recordID)
	if err != nil {
		return nil, ErrRecordNotFound
	}

	// File existence is verified before anything is logged: a dead record
	// must not produce download log rows.
	if !s.store.Exists(row.FilePath) {
		s.logger.Warn("student record file missing from disk", "record_id", recordID, "path", row.FilePath)
		return nil, ErrFileMissing
	}

	s.activity.LogWithRecord(ctx, user.ID, activity.ActionDownload,
		fmt.Sprintf("Downloaded %s for %s %s", row.RecordType, row.FirstName, row.LastName), &recordID, ip)
	s.activity.LogDownload(ctx, user.ID, KindStudent, recordID, ip)

	return &Download{Path: row.FilePath, OriginalName: row.OriginalName, Size: row.FileSize}, nil
}

// --- personnel records ---

func (s *Service) SearchPersonnel(ctx context.Context, q PersonnelSearchQuery) (*PersonnelRecordPage, error) {
	total, err := s.repo.CountPersonnelRecords(ctx, q)
	if err != nil {
		s.logger.Error("failed to count personnel records", "error", err)
		return nil, err
	}

	p := Paginate(total, DefaultPerPage, q.Page)

	rows, err := s.repo.SearchPersonnelRecords(ctx, q, p.PerPage, p.Offset)
	if err != nil {
		s.logger.Error("failed to search personnel records", "error", err)
		return nil, err
	}

	return &PersonnelRecordPage{Records: rows, Pagination: p}, nil
}

func (s *Service) UploadPersonnelRecord(ctx context.Context, user *auth.User, dto UploadPersonnelRecordDTO, file multipart.File, header *multipart.FileHeader, ip string) (*PersonnelRecord, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	subdir := fmt.Sprintf("personnel/%d", dto.PersonnelID)
	stored, err := s.store.Save(file, header, subdir)
	if err != nil {
		return nil, err
	}

	rec := &PersonnelRecord{
		PersonnelID:   dto.PersonnelID,
		RecordType:    dto.RecordType,
		DocumentTitle: dto.DocumentTitle,
		FileName:      stored.Filename,
		OriginalName:  stored.OriginalName,
		FilePath:      stored.Path,
		FileSize:      stored.Size,
		UploadedBy:    user.ID,
		UploadedAt:    time.Now(),
	}

	if err := s.repo.CreatePersonnelRecord(ctx, rec); err != nil {
		s.logger.Error("failed to insert personnel record", "error", err, "personnel_id", dto.PersonnelID)
		s.compensate(stored.Path)
		return nil, ErrStorageFailed
	}

	s.activity.LogWithRecord(ctx, user.ID, activity.ActionUpload,
		fmt.Sprintf("Uploaded %s for personnel ID: %d", dto.RecordType, dto.PersonnelID), &rec.ID, ip)

	s.logger.Info("personnel record uploaded",
		"record_id", rec.ID,
		"personnel_id", dto.PersonnelID,
		"uploaded_by", user.ID)

	return rec, nil
}

func (s *Service) DownloadPersonnelRecord(ctx context.Context, user *auth.User, recordID int64, ip string) (*Download, error) {
	row, err := s.repo.GetPersonnelRecord(ctx, recordID)
	if err != nil {
		return nil, ErrRecordNotFound
	}

	if !s.store.Exists(row.FilePath) {
		s.logger.Warn("personnel record file missing from disk", "record_id", recordID, "path", row.FilePath)
		return nil, ErrFileMissing
	}

	s.activity.LogWithRecord(ctx, user.ID, activity.ActionDownload,
		fmt.Sprintf("Downloaded %s for %s %s", row.RecordType, row.FirstName, row.LastName), &recordID, ip)
	s.activity.LogDownload(ctx, user.ID, KindPersonnel, recordID, ip)

	return &Download{Path: row.FilePath, OriginalName: row.OriginalName, Size: row.FileSize}, nil
}

// --- school forms ---

func (s *Service) SearchForms(ctx context.Context, q FormSearchQuery) (*SchoolFormPage, error) {
	total, err := s.repo.CountSchoolForms(ctx, q)
	if err != nil {
		s.logger.Error("failed to count school forms", "error", err)
		return nil, err
	}

	p := Paginate(total, DefaultPerPage, q.Page)

	rows, err := s.repo.SearchSchoolForms(ctx, q, p.PerPage, p.Offset)
	if err != nil {
		s.logger.Error("failed to search school forms", "error", err)
		return nil, err
	}

	return &SchoolFormPage{Records: rows, Pagination: p}, nil
}

func (s *Service) UploadForm(ctx context.Context, user *auth.User, dto UploadFormDTO, file multipart.File, header *multipart.FileHeader, ip string) (*SchoolForm, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	subdir := fmt.Sprintf("forms/%s", dto.SchoolYear)
	stored, err := s.store.Save(file, header, subdir)
	if err != nil {
		return nil, err
	}

	rec := &SchoolForm{
		FormType:      dto.FormType,
		SchoolYear:    dto.SchoolYear,
		DocumentTitle: dto.DocumentTitle,
		FileName:      stored.Filename,
		OriginalName:  stored.OriginalName,
		FilePath:      stored.Path,
		FileSize:      stored.Size,
		UploadedBy:    user.ID,
		UploadedAt:    time.Now(),
	}

	if err := s.repo.CreateSchoolForm(ctx, rec); err != nil {
		s.logger.Error("failed to insert school form", "error", err, "form_type", dto.FormType)
		s.compensate(stored.Path)
		return nil, ErrStorageFailed
	}

	s.activity.LogWithRecord(ctx, user.ID, activity.ActionUpload,
		fmt.Sprintf("Uploaded %s form: %s", dto.FormType, dto.DocumentTitle), &rec.ID, ip)

	return rec, nil
}

func (s *Service) DownloadForm(ctx context.Context, user *auth.User, recordID int64, ip string) (*Download, error) {
	row, err := s.repo.GetSchoolForm(ctx, recordID)
	if err != nil {
		return nil, ErrRecordNotFound
	}

	if !s.store.Exists(row.FilePath) {
		s.logger.Warn("school form file missing from disk", "record_id", recordID, "path", row.FilePath)
		return nil, ErrFileMissing
	}

	s.activity.LogWithRecord(ctx, user.ID, activity.ActionDownload,
		fmt.Sprintf("Downloaded %s form: %s", row.FormType, row.DocumentTitle), &recordID, ip)
	s.activity.LogDownload(ctx, user.ID, KindForm, recordID, ip)

	return &Download{Path: row.FilePath, OriginalName: row.OriginalName, Size: row.FileSize}, nil
}

// --- subjects for the upload forms ---

func (s *Service) ListStudents(ctx context.Context) ([]*Student, error) {
	return s.repo.ListStudents(ctx)
}

func (s *Service) ListPersonnel(ctx context.Context) ([]*Personnel, error) {
	return s.repo.ListPersonnel(ctx)
}

// compensate removes a stored file whose record row failed to insert, so
// a failed upload leaves no orphan on disk.
func (s *Service) compensate(path string) {
	if err := s.store.Delete(path); err != nil {
		s.logger.Error("failed to remove orphaned upload", "error", err, "path", path)
	}
}
