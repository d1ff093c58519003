package dashboard

// Counts are the headline numbers on the dashboard.
type Counts struct {
	Students       int64 `json:"students" db:"students"`
	Personnel      int64 `json:"personnel" db:"personnel"`
	StudentRecords int64 `json:"student_records" db:"student_records"`
	SchoolForms    int64 `json:"school_forms" db:"school_forms"`
}
