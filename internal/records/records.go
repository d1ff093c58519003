package records

import (
	"errors"
	"time"
)

// Record kinds, as tagged in download_logs.
const (
	KindStudent   = "student"
	KindPersonnel = "personnel"
	KindForm      = "school_form"
)

// Student is a read-only subject entity owned by the enrollment system.
type Student struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	FirstName string `json:"first_name" gorm:"column:first_name"`
	LastName  string `json:"last_name" gorm:"column:last_name"`
	LRN       string `json:"lrn" gorm:"column:lrn"`
	Status    string `json:"status"`
}

func (Student) TableName() string {
	return "students"
}

// Personnel is a read-only subject entity owned by the HR system.
type Personnel struct {
	ID         int64  `json:"id" gorm:"primaryKey"`
	FirstName  string `json:"first_name" gorm:"column:first_name"`
	LastName   string `json:"last_name" gorm:"column:last_name"`
	EmployeeID string `json:"employee_id" gorm:"column:employee_id"`
	Position   string `json:"position"`
	Status     string `json:"status"`
}

func (Personnel) TableName() string {
	return "personnel"
}

// StudentRecord links one stored document to a student. Immutable after
// creation.
type StudentRecord struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	StudentID    int64     `json:"student_id" gorm:"column:student_id;not null"`
	SchoolYear   string    `json:"school_year" gorm:"column:school_year;not null"`
	GradeLevel   string    `json:"grade_level" gorm:"column:grade_level;not null"`
	Section      string    `json:"section"`
	RecordType   string    `json:"record_type" gorm:"column:record_type;not null"`
	FileName     string    `json:"file_name" gorm:"column:file_name;not null"`
	OriginalName string    `json:"original_name" gorm:"column:original_name;not null"`
	FilePath     string    `json:"file_path" gorm:"column:file_path;not null"`
	FileSize     int64     `json:"file_size" gorm:"column:file_size"`
	UploadedBy   int64     `json:"uploaded_by" gorm:"column:uploaded_by;not null"`
	UploadedAt   time.Time `json:"uploaded_at" gorm:"column:uploaded_at"`
}

func (StudentRecord) TableName() string {
	return "student_records"
}

// PersonnelRecord links one stored document to a personnel member.
type PersonnelRecord struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	PersonnelID   int64     `json:"personnel_id" gorm:"column:personnel_id;not null"`
	RecordType    string    `json:"record_type" gorm:"column:record_type;not null"`
	DocumentTitle string    `json:"document_title" gorm:"column:document_title;not null"`
	FileName      string    `json:"file_name" gorm:"column:file_name;not null"`
	OriginalName  string    `json:"original_name" gorm:"column:original_name;not null"`
	FilePath      string    `json:"file_path" gorm:"column:file_path;not null"`
	FileSize      int64     `json:"file_size" gorm:"column:file_size"`
	UploadedBy    int64     `json:"uploaded_by" gorm:"column:uploaded_by;not null"`
	UploadedAt    time.Time `json:"uploaded_at" gorm:"column:uploaded_at"`
}

func (PersonnelRecord) TableName() string {
	return "personnel_records"
}

// SchoolForm is a stored school-level document with no subject entity.
type SchoolForm struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	FormType      string    `json:"form_type" gorm:"column:form_type;not null"`
	SchoolYear    string    `json:"school_year" gorm:"column:school_year;not null"`
	DocumentTitle string    `json:"document_title" gorm:"column:document_title;not null"`
	FileName      string    `json:"file_name" gorm:"column:file_name;not null"`
	OriginalName  string    `json:"original_name" gorm:"column:original_name;not null"`
	FilePath      string    `json:"file_path" gorm:"column:file_path;not null"`
	FileSize      int64     `json:"file_size" gorm:"column:file_size"`
	UploadedBy    int64     `json:"uploaded_by" gorm:"column:uploaded_by;not null"`
	UploadedAt    time.Time `json:"uploaded_at" gorm:"column:uploaded_at"`
}

func (SchoolForm) TableName() string {
	return "school_forms"
}

// StudentRecordRow is a listing row joined with subject and uploader.
type StudentRecordRow struct {
	ID             int64     `json:"id"`
	StudentID      int64     `json:"student_id" gorm:"column:student_id"`
	SchoolYear     string    `json:"school_year" gorm:"column:school_year"`
	GradeLevel     string    `json:"grade_level" gorm:"column:grade_level"`
	Section        string    `json:"section"`
	RecordType     string    `json:"record_type" gorm:"column:record_type"`
	FileName       string    `json:"file_name" gorm:"column:file_name"`
	OriginalName   string    `json:"original_name" gorm:"column:original_name"`
	FilePath       string    `json:"file_path" gorm:"column:file_path"`
	FileSize       int64     `json:"file_size" gorm:"column:file_size"`
	UploadedBy     int64     `json:"uploaded_by" gorm:"column:uploaded_by"`
	UploadedAt     time.Time `json:"uploaded_at" gorm:"column:uploaded_at"`
	FirstName      string    `json:"first_name" gorm:"column:first_name"`
	LastName       string    `json:"last_name" gorm:"column:last_name"`
	LRN            string    `json:"lrn" gorm:"column:lrn"`
	UploadedByName string    `json:"uploaded_by_name" gorm:"column:uploaded_by_name"`
}

// PersonnelRecordRow is a listing row joined with subject and uploader.
type PersonnelRecordRow struct {
	ID             int64     `json:"id"`
	PersonnelID    int64     `json:"personnel_id" gorm:"column:personnel_id"`
	RecordType     string    `json:"record_type" gorm:"column:record_type"`
	DocumentTitle  string    `json:"document_title" gorm:"column:document_title"`
	FileName       string    `json:"file_name" gorm:"column:file_name"`
	OriginalName   string    `json:"original_name" gorm:"column:original_name"`
	FilePath       string    `json:"file_path" gorm:"column:file_path"`
	FileSize       int64     `json:"file_size" gorm:"column:file_size"`
	UploadedBy     int64     `json:"uploaded_by" gorm:"column:uploaded_by"`
	UploadedAt     time.Time `json:"uploaded_at" gorm:"column:uploaded_at"`
	FirstName      string    `json:"first_name" gorm:"column:first_name"`
	LastName       string    `json:"last_name" gorm:"column:last_name"`
	EmployeeID     string    `json:"employee_id" gorm:"column:employee_id"`
	Position       string    `json:"position"`
	Status         string    `json:"status"`
	UploadedByName string    `json:"uploaded_by_name" gorm:"column:uploaded_by_name"`
}

// SchoolFormRow is a listing row joined with the uploader.
type SchoolFormRow struct {
	ID             int64     `json:"id"`
	FormType       string    `json:"form_type" gorm:"column:form_type"`
	SchoolYear     string    `json:"school_year" gorm:"column:school_year"`
	DocumentTitle  string    `json:"document_title" gorm:"column:document_title"`
	FileName       string    `json:"file_name" gorm:"column:file_name"`
	OriginalName   string    `json:"original_name" gorm:"column:original_name"`
	FilePath       string    `json:"file_path" gorm:"column:file_path"`
	FileSize       int64     `json:"file_size" gorm:"column:file_size"`
	UploadedBy     int64     `json:"uploaded_by" gorm:"column:uploaded_by"`
	UploadedAt     time.Time `json:"uploaded_at" gorm:"column:uploaded_at"`
	UploadedByName string    `json:"uploaded_by_name" gorm:"column:uploaded_by_name"`
}

// Download is a resolved, verified file ready to stream.
type Download struct {
	Path         string
	OriginalName string
	Size         int64
}

// Domain errors
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrFileMissing    = errors.New("backing file missing from disk")
	ErrMissingFields  = errors.New("please fill in all required fields")
	ErrStorageFailed  = errors.New("failed to save record to database")
)
