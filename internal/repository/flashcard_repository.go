// internal/repository/flashcard_repository.go
package repository

import (
	"context"
	"errors"

	"go_5_study_engine/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FlashcardRepository は外部のセット管理システムが所有するカードデータへの
// 読み取り専用アクセスです。このエンジンからの書き込みは行いません。
type FlashcardRepository interface {
	FindByID(ctx context.Context, db *gorm.DB, flashcardID uuid.UUID) (*model.Flashcard, error)
	FindBySet(ctx context.Context, db *gorm.DB, setID uuid.UUID) ([]*model.Flashcard, error)
}

type gormFlashcardRepository struct{}

func NewGormFlashcardRepository() FlashcardRepository {
	return &gormFlashcardRepository{}
}

func (r *gormFlashcardRepository) FindByID(ctx context.Context, db *gorm.DB, flashcardID uuid.UUID) (*model.Flashcard, error) {
	var card model.Flashcard
	result := db.WithContext(ctx).Where("flashcard_id = ?", flashcardID).First(&card)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &card, nil
}

func (r *gormFlashcardRepository) FindBySet(ctx context.Context, db *gorm.DB, setID uuid.UUID) ([]*model.Flashcard, error) {
	var cards []*model.Flashcard
	result := db.WithContext(ctx).
		Where("set_id = ?", setID).
		Order("created_at ASC").
		Find(&cards)
	if result.Error != nil {
		return nil, result.Error
	}
	return cards, nil
}
