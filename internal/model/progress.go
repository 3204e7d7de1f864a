// internal/model/progress.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// SM-2アルゴリズムのデフォルト値
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// CardProgress はユーザー×フラッシュカードごとの間隔反復の進捗を表します。
// 最初の復習時に作成され、以後 ReviewScheduler のみが更新します。
// このエンジンからは削除されません (履歴・統計は外部コラボレータの責務)。
type CardProgress struct {
	ProgressID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID       uuid.UUID `gorm:"type:uuid;not null;index:idx_tenant_flashcard,unique"` // 複合ユニークインデックスの一部
	FlashcardID    uuid.UUID `gorm:"type:uuid;not null;index:idx_tenant_flashcard,unique"` // 複合ユニークインデックスの一部
	EaseFactor     float64   `gorm:"not null;default:2.5"`
	IntervalDays   int       `gorm:"not null;default:0"`
	Repetitions    int       `gorm:"not null;default:0"`
	NextReviewAt   time.Time `gorm:"not null;index"`
	LastReviewedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// 関連 (Preload用)
	Flashcard *Flashcard `gorm:"foreignKey:FlashcardID;references:FlashcardID" json:"-"`
}

func (CardProgress) TableName() string {
	return "card_progress"
}

// ProgressResponse は回答送信後に返す進捗DTO
type ProgressResponse struct {
	FlashcardID  uuid.UUID  `json:"flashcard_id"`
	EaseFactor   float64    `json:"ease_factor"`
	IntervalDays int        `json:"interval_days"`
	Repetitions  int        `json:"repetitions"`
	NextReviewAt time.Time  `json:"next_review_at"`
	LastReviewed *time.Time `json:"last_reviewed_at,omitempty"`
	IsCorrect    bool       `json:"is_correct"`
	Quality      int        `json:"quality"`
}

// DueCardResponse は復習期限が来たカードのレスポンスDTO
type DueCardResponse struct {
	FlashcardID  uuid.UUID `json:"flashcard_id"`
	Front        string    `json:"front"`
	Back         string    `json:"back"` // 正解表示用に含める
	IntervalDays int       `json:"interval_days"`
	Repetitions  int       `json:"repetitions"`
	NextReviewAt time.Time `json:"next_review_at"`
}
