package records

import "strings"

// StudentSearchQuery carries the free-text term and the optional equality
// filters for the student records listing. Empty filters match all.
type StudentSearchQuery struct {
	Search     string
	SchoolYear string
	GradeLevel string
	RecordType string
	Page       int
}

type PersonnelSearchQuery struct {
	Search     string
	Position   string
	Status     string
	RecordType string
	Page       int
}

type FormSearchQuery struct {
	Search     string
	SchoolYear string
	FormType   string
	Page       int
}

// UploadStudentRecordDTO is the classification metadata accompanying a
// student document upload. Section is the only optional field.
type UploadStudentRecordDTO struct {
	StudentID  int64
	SchoolYear string
	GradeLevel string
	Section    string
	RecordType string
}

func (dto UploadStudentRecordDTO) Validate() error {
	if dto.StudentID <= 0 ||
		strings.TrimSpace(dto.SchoolYear) == "" ||
		strings.TrimSpace(dto.GradeLevel) == "" ||
		strings.TrimSpace(dto.RecordType) == "" {
		return ErrMissingFields
	}
	return nil
}

type UploadPersonnelRecordDTO struct {
	PersonnelID   int64
	RecordType    string
	DocumentTitle string
}

func (dto UploadPersonnelRecordDTO) Validate() error {
	if dto.PersonnelID <= 0 ||
		strings.TrimSpace(dto.RecordType) == "" ||
		strings.TrimSpace(dto.DocumentTitle) == "" {
		return ErrMissingFields
	}
	return nil
}

type UploadFormDTO struct {
	FormType      string
	SchoolYear    string
	DocumentTitle string
}

func (dto UploadFormDTO) Validate() error {
	if strings.TrimSpace(dto.FormType) == "" ||
		strings.TrimSpace(dto.SchoolYear) == "" ||
		strings.TrimSpace(dto.DocumentTitle) == "" {
		return ErrMissingFields
	}
	return nil
}

// Result pages returned by the search operations.

type StudentRecordPage struct {
	Records    []*StudentRecordRow `json:"records"`
	Pagination Pagination          `json:"pagination"`
}

type PersonnelRecordPage struct {
	Records    []*PersonnelRecordRow `json:"records"`
	Pagination Pagination            `json:"pagination"`
}

type SchoolFormPage struct {
	Records    []*SchoolFormRow `json:"records"`
	Pagination Pagination       `json:"pagination"`
}
