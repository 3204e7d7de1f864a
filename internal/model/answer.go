// internal/model/answer.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Answer は1回の回答イベントを表します。追記専用。
// 同一セッション内で同じカードに複数回回答することは許容されます
// (matchモードや再出題で同じカードが2回出ることがある)。
type Answer struct {
	AnswerID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionID   uuid.UUID `gorm:"type:uuid;not null;index"`
	FlashcardID uuid.UUID `gorm:"type:uuid;not null"`
	IsCorrect   bool      `gorm:"not null"`
	TimeSpentMs *int
	RecordedAt  time.Time `gorm:"not null"`
}

func (Answer) TableName() string {
	return "answers"
}
