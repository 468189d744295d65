package models

import "gorm.io/gorm"

// Upload is one persisted document batch. Unlike a session it is backed by one
// row per file, so a batch can be updated incrementally by re-running the same
// traversal and upserting changed files.
type Upload struct {
	gorm.Model

	UserID uint   `gorm:"index;not null"`
	Name   string `gorm:"size:255;not null"`

	Files []UploadFile `gorm:"constraint:OnDelete:CASCADE"`
}

// UploadFile is one file row within an upload. The payload itself lives in
// object storage under ObjectKey; Extraction caches the extracted plain text
// so re-opening a batch does not re-parse every document.
type UploadFile struct {
	gorm.Model

	UploadID    uint   `gorm:"uniqueIndex:idx_upload_path;not null"`
	FilePath    string `gorm:"uniqueIndex:idx_upload_path;size:512;not null"`
	ContentType string `gorm:"size:255"`
	ObjectKey   string `gorm:"size:1024;not null"`
	Size        int64  `gorm:"not null"`
	Extraction  string `gorm:"type:longtext"`
}

func (Upload) TableName() string {
	return "uploads"
}

func (UploadFile) TableName() string {
	return "upload_files"
}
