package activity

import "time"

// Action tags recorded in the audit trail.
const (
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionUpload         = "upload"
	ActionDownload       = "download"
	ActionCreateUser     = "create_user"
	ActionUpdateUser     = "update_user"
	ActionChangePassword = "change_password"
	ActionCreateBackup   = "create_backup"
	ActionDownloadBackup = "download_backup"
)

// Log is one append-only audit trail row. Rows are never mutated or
// deleted.
type Log struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	UserID      int64     `json:"user_id" gorm:"column:user_id;not null"`
	Action      string    `json:"action" gorm:"not null"`
	Description string    `json:"description"`
	RecordID    *int64    `json:"record_id,omitempty" gorm:"column:record_id"`
	IPAddress   string    `json:"ip_address" gorm:"column:ip_address"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Log) TableName() string {
	return "activity_logs"
}

// LogWithUser is a trail row joined with the acting user's full name,
// as listed on the dashboard.
type LogWithUser struct {
	Log
	FullName string `json:"full_name"`
}

// DownloadLog records one file download, separate from the activity trail.
type DownloadLog struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	UserID     int64     `json:"user_id" gorm:"column:user_id;not null"`
	RecordKind string    `json:"record_kind" gorm:"column:record_kind;not null"`
	RecordID   int64     `json:"record_id" gorm:"column:record_id;not null"`
	IPAddress  string    `json:"ip_address" gorm:"column:ip_address"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at"`
}

func (DownloadLog) TableName() string {
	return "download_logs"
}
