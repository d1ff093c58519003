package backup

import (
	"errors"
	"time"
)

// Backup scopes. A full backup archives the whole upload tree, the
// others archive one catalog subtree.
const (
	TypeFull      = "full"
	TypeStudents  = "students"
	TypePersonnel = "personnel"
	TypeForms     = "forms"
)

var (
	ErrInvalidType    = errors.New("invalid backup type")
	ErrBackupNotFound = errors.New("backup not found")
	ErrFileMissing    = errors.New("backup file is missing from disk")
	ErrNothingToBack  = errors.New("no files to back up")
)

func ValidType(t string) bool {
	switch t {
	case TypeFull, TypeStudents, TypePersonnel, TypeForms:
		return true
	}
	return false
}

// Log is one completed backup archive.
type Log struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	BackupType string    `json:"backup_type" gorm:"column:backup_type"`
	FileName   string    `json:"file_name" gorm:"column:file_name"`
	FilePath   string    `json:"file_path" gorm:"column:file_path"`
	FileSize   int64     `json:"file_size" gorm:"column:file_size"`
	FileCount  int       `json:"file_count" gorm:"column:file_count"`
	CreatedBy  int64     `json:"created_by" gorm:"column:created_by"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Log) TableName() string {
	return "backup_logs"
}

// Stats summarizes the backup history for the backup page.
type Stats struct {
	TotalBackups int64 `json:"total_backups"`
	TotalSize    int64 `json:"total_size"`
	LastSevenDay int64 `json:"backups_last_7_days"`
}

type Download struct {
	Path     string
	FileName string
	Size     int64
}
