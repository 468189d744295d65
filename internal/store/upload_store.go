package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dealscope/internal/models"
)

// FileInput is one file of an upload batch: its tree path, payload, and the
// extracted text to cache alongside it.
type FileInput struct {
	Path        string
	ContentType string
	Data        []byte
	Extraction  string
}

// CreateUpload persists a new batch: one upload row plus one row per file,
// with payloads in object storage. Rows are written in a single transaction
// after every payload has been stored, so a failed batch never leaves
// dangling file rows.
func (s *Store) CreateUpload(ctx context.Context, userID uint, name string, files []FileInput) (uint, error) {
	rows, err := s.storePayloads(ctx, files)
	if err != nil {
		return 0, err
	}

	upload := &models.Upload{UserID: userID, Name: name}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(upload).Error; err != nil {
			return err
		}
		for i := range rows {
			rows[i].UploadID = upload.ID
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return 0, fmt.Errorf("create upload: %w", err)
	}
	return upload.ID, nil
}

// UpdateUpload re-runs a batch traversal against an existing upload,
// upserting file rows by (upload_id, file_path). Unchanged files may simply
// be resubmitted; their rows are overwritten in place.
func (s *Store) UpdateUpload(ctx context.Context, uploadID uint, files []FileInput) error {
	var upload models.Upload
	if err := s.db.WithContext(ctx).First(&upload, uploadID).Error; err != nil {
		return notFound(err)
	}

	rows, err := s.storePayloads(ctx, files)
	if err != nil {
		return err
	}
	for i := range rows {
		rows[i].UploadID = uploadID
	}
	if len(rows) == 0 {
		return nil
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "upload_id"}, {Name: "file_path"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"content_type", "object_key", "size", "extraction", "updated_at",
		}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("update upload: %w", err)
	}
	return nil
}

// ListUploads returns a user's uploads with their file rows.
func (s *Store) ListUploads(ctx context.Context, userID uint) ([]models.Upload, error) {
	var uploads []models.Upload
	err := s.db.WithContext(ctx).
		Preload("Files").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&uploads).Error
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	return uploads, nil
}

// GetUpload loads one upload with its file rows, scoped to its owner.
func (s *Store) GetUpload(ctx context.Context, uploadID, userID uint) (*models.Upload, error) {
	var upload models.Upload
	err := s.db.WithContext(ctx).
		Preload("Files").
		Where("id = ? AND user_id = ?", uploadID, userID).
		First(&upload).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &upload, nil
}

// DeleteUpload removes the upload row and its file rows in one transaction,
// then clears the stored payloads.
func (s *Store) DeleteUpload(ctx context.Context, uploadID, userID uint) error {
	var files []models.UploadFile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", uploadID, userID).Delete(&models.Upload{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("upload_id = ?", uploadID).Find(&files).Error; err != nil {
			return err
		}
		return tx.Where("upload_id = ?", uploadID).Delete(&models.UploadFile{}).Error
	})
	if err != nil {
		return err
	}

	for _, f := range files {
		if err := s.objects.RemoveObject(ctx, s.bucket, f.ObjectKey, minio.RemoveObjectOptions{}); err != nil && !objectMissing(err) {
			s.log.WithField("object", f.ObjectKey).WithError(err).Warn("failed to remove upload payload")
		}
	}
	return nil
}

// ReadFilePayload fetches one stored file payload.
func (s *Store) ReadFilePayload(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := s.objects.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("load payload: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if objectMissing(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return data, nil
}

// storePayloads writes every payload to object storage and returns the file
// rows referencing them.
func (s *Store) storePayloads(ctx context.Context, files []FileInput) ([]models.UploadFile, error) {
	rows := make([]models.UploadFile, 0, len(files))
	for _, f := range files {
		key := "uploads/" + uuid.New().String()
		_, err := s.objects.PutObject(ctx, s.bucket, key,
			bytes.NewReader(f.Data), int64(len(f.Data)),
			minio.PutObjectOptions{ContentType: f.ContentType})
		if err != nil {
			return nil, fmt.Errorf("store payload %q: %w", f.Path, err)
		}
		rows = append(rows, models.UploadFile{
			FilePath:    f.Path,
			ContentType: f.ContentType,
			ObjectKey:   key,
			Size:        int64(len(f.Data)),
			Extraction:  f.Extraction,
		})
	}
	return rows, nil
}
