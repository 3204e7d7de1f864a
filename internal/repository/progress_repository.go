// internal/repository/progress_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"go_5_study_engine/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQLの一意制約違反エラーコード
const pgUniqueViolationCode = "23505"

type ProgressRepository interface {
	Create(ctx context.Context, tx *gorm.DB, progress *model.CardProgress) error // トランザクション対応
	FindByFlashcard(ctx context.Context, db *gorm.DB, tenantID, flashcardID uuid.UUID) (*model.CardProgress, error)
	Update(ctx context.Context, tx *gorm.DB, progress *model.CardProgress) error // トランザクション対応
	FindDueByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, now time.Time, limit int) ([]*model.CardProgress, error)
}

type gormProgressRepository struct {
	// DB接続はService層から渡される想定
}

func NewGormProgressRepository() ProgressRepository {
	return &gormProgressRepository{}
}

func (r *gormProgressRepository) Create(ctx context.Context, tx *gorm.DB, progress *model.CardProgress) error {
	result := tx.WithContext(ctx).Create(progress)
	if result.Error != nil {
		// (tenant_id, flashcard_id) の複合ユニーク制約違反は競合として返す
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return model.ErrConflict
		}
		return result.Error
	}
	return nil
}

func (r *gormProgressRepository) FindByFlashcard(ctx context.Context, db *gorm.DB, tenantID, flashcardID uuid.UUID) (*model.CardProgress, error) {
	var progress model.CardProgress
	result := db.WithContext(ctx).
		Where("tenant_id = ? AND flashcard_id = ?", tenantID, flashcardID).
		First(&progress)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &progress, nil
}

func (r *gormProgressRepository) Update(ctx context.Context, tx *gorm.DB, progress *model.CardProgress) error {
	// progress オブジェクト全体を渡して更新。事前の存在確認はService層で実施済み想定。
	result := tx.WithContext(ctx).Save(progress)
	return result.Error
}

func (r *gormProgressRepository) FindDueByTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID, now time.Time, limit int) ([]*model.CardProgress, error) {
	var progresses []*model.CardProgress

	// Flashcard も Preload して正解面を表示できるようにする
	result := db.WithContext(ctx).
		Preload("Flashcard").
		Joins("JOIN flashcards ON flashcards.flashcard_id = card_progress.flashcard_id").
		Where("card_progress.tenant_id = ? AND card_progress.next_review_at <= ?", tenantID, now).
		Order("card_progress.next_review_at ASC, card_progress.repetitions ASC").
		Limit(limit).
		Find(&progresses)
	if result.Error != nil {
		return nil, result.Error
	}

	return progresses, nil
}
