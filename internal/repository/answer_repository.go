// internal/repository/answer_repository.go
package repository

import (
	"context"

	"go_5_study_engine/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnswerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, answer *model.Answer) error // トランザクション対応
	FindBySession(ctx context.Context, db *gorm.DB, sessionID uuid.UUID) ([]*model.Answer, error)
	CountBySession(ctx context.Context, db *gorm.DB, sessionID uuid.UUID) (int64, error)
}

type gormAnswerRepository struct {
	// DB接続はService層から渡される想定
}

func NewGormAnswerRepository() AnswerRepository {
	return &gormAnswerRepository{}
}

func (r *gormAnswerRepository) Create(ctx context.Context, tx *gorm.DB, answer *model.Answer) error {
	// 追記専用。同一 (session, flashcard) の重複回答も許容するため一意制約は張らない。
	result := tx.WithContext(ctx).Create(answer)
	return result.Error
}

func (r *gormAnswerRepository) FindBySession(ctx context.Context, db *gorm.DB, sessionID uuid.UUID) ([]*model.Answer, error) {
	var answers []*model.Answer
	result := db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("recorded_at ASC").
		Find(&answers)
	if result.Error != nil {
		return nil, result.Error
	}
	return answers, nil
}

func (r *gormAnswerRepository) CountBySession(ctx context.Context, db *gorm.DB, sessionID uuid.UUID) (int64, error) {
	var count int64
	result := db.WithContext(ctx).
		Model(&model.Answer{}).
		Where("session_id = ?", sessionID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}
