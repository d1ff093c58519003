package records_test

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/atokschool/archiving-portal/internal/auth"
	"github.com/atokschool/archiving-portal/internal/records"
	"github.com/atokschool/archiving-portal/internal/storage"
)

// MockRepository implements records.Repository in memory.
type MockRepository struct {
	studentRecords   map[int64]*records.StudentRecordRow
	personnelRecords map[int64]*records.PersonnelRecordRow
	schoolForms      map[int64]*records.SchoolFormRow
	nextID           int64
	failCreate       bool
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		studentRecords:   make(map[int64]*records.StudentRecordRow),
		personnelRecords: make(map[int64]*records.PersonnelRecordRow),
		schoolForms:      make(map[int64]*records.SchoolFormRow),
		nextID:           1,
	}
}

func (m *MockRepository) CountStudentRecords(_ context.Context, _ records.StudentSearchQuery) (int64, error) {
	return int64(len(m.studentRecords)), nil
}

func (m *MockRepository) SearchStudentRecords(_ context.Context, _ records.StudentSearchQuery, limit, offset int) ([]*records.StudentRecordRow, error) {
	var rows []*records.StudentRecordRow
	for _, r := range m.studentRecords {
		rows = append(rows, r)
	}
	return rows, nil
}

func (m *MockRepository) GetStudentRecord(_ context.Context, id int64) (*records.StudentRecordRow, error) {
	row, ok := m.studentRecords[id]
	if !ok {
		return nil, records.ErrRecordNotFound
	}
	return row, nil
}

func (m *MockRepository) CreateStudentRecord(_ context.Context, rec *records.StudentRecord) error {
	if m.failCreate {
		return errors.New("insert failed")
	}
	rec.ID = m.nextID
	m.nextID++
	m.studentRecords[rec.ID] = &records.StudentRecordRow{
		ID:           rec.ID,
		StudentID:    rec.StudentID,
		SchoolYear:   rec.SchoolYear,
		RecordType:   rec.RecordType,
		FilePath:     rec.FilePath,
		OriginalName: rec.OriginalName,
		FileSize:     rec.FileSize,
	}
	return nil
}

func (m *MockRepository) CountPersonnelRecords(_ context.Context, _ records.PersonnelSearchQuery) (int64, error) {
	return int64(len(m.personnelRecords)), nil
}

func (m *MockRepository) SearchPersonnelRecords(_ context.Context, _ records.PersonnelSearchQuery, limit, offset int) ([]*records.PersonnelRecordRow, error) {
	var rows []*records.PersonnelRecordRow
	for _, r := range m.personnelRecords {
		rows = append(rows, r)
	}
	return rows, nil
}

func (m *MockRepository) GetPersonnelRecord(_ context.Context, id int64) (*records.PersonnelRecordRow, error) {
	row, ok := m.personnelRecords[id]
	if !ok {
		return nil, records.ErrRecordNotFound
	}
	return row, nil
}

func (m *MockRepository) CreatePersonnelRecord(_ context.Context, rec *records.PersonnelRecord) error {
	if m.failCreate {
		return errors.New("insert failed")
	}
	rec.ID = m.nextID
	m.nextID++
	m.personnelRecords[rec.ID] = &records.PersonnelRecordRow{
		ID:           rec.ID,
		PersonnelID:  rec.PersonnelID,
		RecordType:   rec.RecordType,
		FilePath:     rec.FilePath,
		OriginalName: rec.OriginalName,
	}
	return nil
}

func (m *MockRepository) CountSchoolForms(_ context.Context, _ records.FormSearchQuery) (int64, error) {
	return int64(len(m.schoolForms)), nil
}

func (m *MockRepository) SearchSchoolForms(_ context.Context, _ records.FormSearchQuery, limit, offset int) ([]*records.SchoolFormRow, error) {
	var rows []*records.SchoolFormRow
	for _, r := range m.schoolForms {
		rows = append(rows, r)
	}
	return rows, nil
}

func (m *MockRepository) GetSchoolForm(_ context.Context, id int64) (*records.SchoolFormRow, error) {
	row, ok := m.schoolForms[id]
	if !ok {
		return nil, records.ErrRecordNotFound
	}
	return row, nil
}

func (m *MockRepository) CreateSchoolForm(_ context.Context, rec *records.SchoolForm) error {
	if m.failCreate {
		return errors.New("insert failed")
	}
	rec.ID = m.nextID
	m.nextID++
	m.schoolForms[rec.ID] = &records.SchoolFormRow{
		ID:            rec.ID,
		FormType:      rec.FormType,
		DocumentTitle: rec.DocumentTitle,
		FilePath:      rec.FilePath,
		OriginalName:  rec.OriginalName,
	}
	return nil
}

func (m *MockRepository) ListStudents(_ context.Context) ([]*records.Student, error) {
	return []*records.Student{{ID: 1, FirstName: "Juan", LastName: "Dela Cruz", LRN: "136514100001"}}, nil
}

func (m *MockRepository) ListPersonnel(_ context.Context) ([]*records.Personnel, error) {
	return []*records.Personnel{{ID: 1, FirstName: "Liza", LastName: "Garcia", EmployeeID: "EMP-0001"}}, nil
}

// MockFileStore implements records.FileStore against a real temp dir so
// Exists and Delete behave like the local store.
type MockFileStore struct {
	dir      string
	saved    []string
	deleted  []string
	failSave error
}

func (m *MockFileStore) Save(_ multipart.File, header *multipart.FileHeader, subdir string) (*storage.StoredFile, error) {
	if m.failSave != nil {
		return nil, m.failSave
	}
	dest := filepath.Join(m.dir, filepath.FromSlash(subdir))
	Expect(os.MkdirAll(dest, 0o755)).To(Succeed())
	path := filepath.Join(dest, "stored_"+header.Filename)
	Expect(os.WriteFile(path, []byte("content"), 0o644)).To(Succeed())
	m.saved = append(m.saved, path)
	return &storage.StoredFile{
		Filename:     "stored_" + header.Filename,
		OriginalName: header.Filename,
		Size:         header.Size,
		Path:         path,
	}, nil
}

func (m *MockFileStore) Delete(path string) error {
	m.deleted = append(m.deleted, path)
	return os.Remove(path)
}

func (m *MockFileStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// MockRecordActivityLogger captures audit calls.
type MockRecordActivityLogger struct {
	actions   []string
	downloads []int64
}

func (m *MockRecordActivityLogger) LogWithRecord(_ context.Context, _ int64, action, _ string, _ *int64, _ string) {
	m.actions = append(m.actions, action)
}

func (m *MockRecordActivityLogger) LogDownload(_ context.Context, _ int64, _ string, recordID int64, _ string) {
	m.downloads = append(m.downloads, recordID)
}

var _ = Describe("Records Service", func() {
	var (
		repo    *MockRepository
		store   *MockFileStore
		audit   *MockRecordActivityLogger
		service *records.Service
		user    *auth.User
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		dir, err := os.MkdirTemp("", "records")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		store = &MockFileStore{dir: dir}
		audit = &MockRecordActivityLogger{}
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = records.NewService(repo, store, audit, lg)
		user = &auth.User{ID: 5, Username: "registrar", Role: auth.RoleRegistrar}
	})

	validDTO := records.UploadStudentRecordDTO{
		StudentID:  1,
		SchoolYear: "2025-2026",
		GradeLevel: "Grade 3",
		RecordType: "Form 137",
	}

	header := &multipart.FileHeader{Filename: "form137.pdf", Size: 128}

	Describe("UploadStudentRecord", func() {
		It("should store the file, insert the row and record the upload", func() {
			rec, err := service.UploadStudentRecord(context.Background(), user, validDTO, nil, header, "10.0.0.1")

			Expect(err).NotTo(HaveOccurred())
			Expect(rec.ID).To(Equal(int64(1)))
			Expect(rec.UploadedBy).To(Equal(int64(5)))
			Expect(store.saved).To(HaveLen(1))
			Expect(store.saved[0]).To(ContainSubstring(filepath.Join("students", "1", "2025-2026")))
			Expect(audit.actions).To(ContainElement("upload"))
		})

		It("should reject missing required fields before storing anything", func() {
			dto := validDTO
			dto.SchoolYear = ""

			_, err := service.UploadStudentRecord(context.Background(), user, dto, nil, header, "10.0.0.1")
			Expect(err).To(MatchError(records.ErrMissingFields))
			Expect(store.saved).To(BeEmpty())
			Expect(audit.actions).To(BeEmpty())
		})

		It("should propagate storage rejections untouched", func() {
			store.failSave = storage.ErrFileTooLarge

			_, err := service.UploadStudentRecord(context.Background(), user, validDTO, nil, header, "10.0.0.1")
			Expect(err).To(MatchError(storage.ErrFileTooLarge))
		})

		It("should remove the stored file when the insert fails", func() {
			repo.failCreate = true

			_, err := service.UploadStudentRecord(context.Background(), user, validDTO, nil, header, "10.0.0.1")
			Expect(err).To(MatchError(records.ErrStorageFailed))
			Expect(store.saved).To(HaveLen(1))
			Expect(store.deleted).To(Equal(store.saved))
			Expect(store.Exists(store.saved[0])).To(BeFalse())
			Expect(audit.actions).To(BeEmpty())
		})
	})

	Describe("DownloadStudentRecord", func() {
		var recordID int64

		BeforeEach(func() {
			rec, err := service.UploadStudentRecord(context.Background(), user, validDTO, nil, header, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			recordID = rec.ID
			audit.actions = nil
		})

		It("should resolve the file and write both audit entries", func() {
			d, err := service.DownloadStudentRecord(context.Background(), user, recordID, "10.0.0.1")

			Expect(err).NotTo(HaveOccurred())
			Expect(d.OriginalName).To(Equal("form137.pdf"))
			Expect(store.Exists(d.Path)).To(BeTrue())
			Expect(audit.actions).To(ContainElement("download"))
			Expect(audit.downloads).To(ContainElement(recordID))
		})

		It("should report not found for an unknown record and log nothing", func() {
			_, err := service.DownloadStudentRecord(context.Background(), user, 999, "10.0.0.1")

			Expect(err).To(MatchError(records.ErrRecordNotFound))
			Expect(audit.actions).To(BeEmpty())
			Expect(audit.downloads).To(BeEmpty())
		})

		It("should report a missing backing file and log nothing", func() {
			row, err := repo.GetStudentRecord(context.Background(), recordID)
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Remove(row.FilePath)).To(Succeed())

			_, err = service.DownloadStudentRecord(context.Background(), user, recordID, "10.0.0.1")

			Expect(err).To(MatchError(records.ErrFileMissing))
			Expect(audit.actions).To(BeEmpty())
			Expect(audit.downloads).To(BeEmpty())
		})
	})

	Describe("SearchStudents", func() {
		It("should return records with pagination", func() {
			_, err := service.UploadStudentRecord(context.Background(), user, validDTO, nil, header, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())

			page, err := service.SearchStudents(context.Background(), records.StudentSearchQuery{Page: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Records).To(HaveLen(1))
			Expect(page.Pagination.TotalRecords).To(Equal(int64(1)))
			Expect(page.Pagination.CurrentPage).To(Equal(1))
		})
	})

	Describe("UploadForm", func() {
		It("should store under the school year directory", func() {
			dto := records.UploadFormDTO{
				FormType:      "SF1",
				SchoolYear:    "2025-2026",
				DocumentTitle: "School Register",
			}

			rec, err := service.UploadForm(context.Background(), user, dto, nil, header, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.ID).NotTo(BeZero())
			Expect(store.saved[0]).To(ContainSubstring(filepath.Join("forms", "2025-2026")))
		})
	})

	Describe("UploadPersonnelRecord", func() {
		It("should store under the personnel directory", func() {
			dto := records.UploadPersonnelRecordDTO{
				PersonnelID:   3,
				RecordType:    "Appointment",
				DocumentTitle: "Original Appointment",
			}

			_, err := service.UploadPersonnelRecord(context.Background(), user, dto, nil, header, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			Expect(store.saved[0]).To(ContainSubstring(filepath.Join("personnel", "3")))
		})
	})
})
