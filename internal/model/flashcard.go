// internal/model/flashcard.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Flashcard はセット管理システム(外部)が所有するカードデータです。
// このエンジンは読み取り専用で利用します (出題順の確定と正解テキストの参照)。
type Flashcard struct {
	FlashcardID uuid.UUID `gorm:"type:uuid;primaryKey" json:"flashcard_id"`
	SetID       uuid.UUID `gorm:"type:uuid;not null;index" json:"set_id"`
	Front       string    `gorm:"not null" json:"front"` // 問題面
	Back        string    `gorm:"not null" json:"back"`  // 正解面
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Flashcard) TableName() string {
	return "flashcards"
}
