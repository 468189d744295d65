package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"

	"dealscope/internal/models"
)

func heavyDataKey(sessionID uint) string {
	return fmt.Sprintf("sessions/%d.json", sessionID)
}

// CreateSession inserts a new session row for a user.
func (s *Store) CreateSession(ctx context.Context, userID uint, name string) (*models.AnalysisSession, error) {
	session := &models.AnalysisSession{UserID: userID, Name: name}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// GetSession loads a session row, scoped to its owner.
func (s *Store) GetSession(ctx context.Context, sessionID, userID uint) (*models.AnalysisSession, error) {
	var session models.AnalysisSession
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}

// ListSessions returns a user's sessions, newest first.
func (s *Store) ListSessions(ctx context.Context, userID uint) ([]models.AnalysisSession, error) {
	var sessions []models.AnalysisSession
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// DeleteSession removes the session row and its heavy blob. The row delete is
// transactional; the blob delete follows and a leftover blob is only logged,
// since an orphaned object is harmless while a dangling row is not.
func (s *Store) DeleteSession(ctx context.Context, sessionID, userID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", sessionID, userID).
			Delete(&models.AnalysisSession{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.objects.RemoveObject(ctx, s.bucket, heavyDataKey(sessionID), minio.RemoveObjectOptions{}); err != nil && !objectMissing(err) {
		s.log.WithField("session", sessionID).WithError(err).Warn("failed to remove session blob")
	}
	return nil
}

// SaveHeavyData serializes the session's derived data and writes it to object
// storage under the session's key, replacing any previous blob.
func (s *Store) SaveHeavyData(ctx context.Context, sessionID uint, data *models.SessionData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("serialize session data: %w", err)
	}

	_, err = s.objects.PutObject(ctx, s.bucket, heavyDataKey(sessionID),
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("store session data: %w", err)
	}
	return nil
}

// LoadHeavyData reads a session's derived data blob. ErrNotFound when the
// session has never been saved.
func (s *Store) LoadHeavyData(ctx context.Context, sessionID uint) (*models.SessionData, error) {
	obj, err := s.objects.GetObject(ctx, s.bucket, heavyDataKey(sessionID), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("load session data: %w", err)
	}
	defer obj.Close()

	payload, err := io.ReadAll(obj)
	if err != nil {
		if objectMissing(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read session data: %w", err)
	}

	var data models.SessionData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("parse session data: %w", err)
	}
	return &data, nil
}
