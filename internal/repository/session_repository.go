// internal/repository/session_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"go_5_study_engine/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *model.StudySession) error
	FindByID(ctx context.Context, db *gorm.DB, sessionID uuid.UUID) (*model.StudySession, error)
	FindActiveByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, setID *uuid.UUID) ([]*model.StudySession, error)
	UpdateSnapshot(ctx context.Context, db *gorm.DB, sessionID uuid.UUID, snapshot model.Snapshot, currentIndex int) error
	// Complete は completed=false のセッションのみを条件付きで更新します。
	// 既に完了している場合は model.ErrAlreadyCompleted を返します (二重完了の防止)。
	Complete(ctx context.Context, db *gorm.DB, sessionID uuid.UUID, score *float64, completedAt time.Time) error
}

type gormSessionRepository struct {
	// DB接続はService層から渡される想定
}

func NewGormSessionRepository() SessionRepository {
	return &gormSessionRepository{}
}

func (r *gormSessionRepository) Create(ctx context.Context, tx *gorm.DB, session *model.StudySession) error {
	// UUIDはService層で設定済み想定
	result := tx.WithContext(ctx).Create(session)
	return result.Error
}

func (r *gormSessionRepository) FindByID(ctx context.Context, db *gorm.DB, sessionID uuid.UUID) (*model.StudySession, error) {
	var session model.StudySession
	result := db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &session, nil
}

func (r *gormSessionRepository) FindActiveByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, setID *uuid.UUID) ([]*model.StudySession, error) {
	var sessions []*model.StudySession

	query := db.WithContext(ctx).
		Where("tenant_id = ? AND completed = ?", tenantID, false).
		Order("started_at DESC")
	if setID != nil {
		query = query.Where("set_id = ?", *setID)
	}

	result := query.Find(&sessions)
	if result.Error != nil {
		return nil, result.Error
	}
	return sessions, nil
}

func (r *gormSessionRepository) UpdateSnapshot(ctx context.Context, db *gorm.DB, sessionID uuid.UUID, snapshot model.Snapshot, currentIndex int) error {
	// スナップショットは丸ごと置換 (last-write-wins)。マージやバージョン管理は行わない。
	result := db.WithContext(ctx).
		Model(&model.StudySession{}).
		Where("session_id = ? AND completed = ?", sessionID, false).
		Updates(map[string]interface{}{
			"snapshot":      snapshot,
			"current_index": currentIndex,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// 存在チェックはService層で実施済みのため、ここで0件なら完了済みとの競合
		return model.ErrAlreadyCompleted
	}
	return nil
}

func (r *gormSessionRepository) Complete(ctx context.Context, db *gorm.DB, sessionID uuid.UUID, score *float64, completedAt time.Time) error {
	// 条件付き1行更新 (completed=false のときのみ成功)。
	// ほぼ同時の2つの完了リクエストが両方成功してスコアを二重確定させないためのガード。
	result := db.WithContext(ctx).
		Model(&model.StudySession{}).
		Where("session_id = ? AND completed = ?", sessionID, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": completedAt,
			"score":        score,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrAlreadyCompleted
	}
	return nil
}
