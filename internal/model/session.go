// internal/model/session.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StudyMode は学習セッションの種類を表します
type StudyMode string

const (
	ModeFlashcard StudyMode = "flashcard"
	ModeQuiz      StudyMode = "quiz"
	ModeWriting   StudyMode = "writing"
	ModeMatch     StudyMode = "match"
)

// IsValid は既知のモードかどうかを返します
func (m StudyMode) IsValid() bool {
	switch m {
	case ModeFlashcard, ModeQuiz, ModeWriting, ModeMatch:
		return true
	}
	return false
}

// CardOrder はセッション作成時に確定するカードの出題順です。
// JSON文字列としてDBに保存します (要素はフラッシュカードID)。
type CardOrder []uuid.UUID

// Value は driver.Valuer の実装 (GORMがINSERT/UPDATE時に呼ぶ)
func (o CardOrder) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	b, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan は sql.Scanner の実装 (GORMがSELECT時に呼ぶ)
func (o *CardOrder) Scan(value interface{}) error {
	if value == nil {
		*o = CardOrder{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, o)
	case string:
		return json.Unmarshal([]byte(v), o)
	default:
		return fmt.Errorf("unsupported type for CardOrder: %T", value)
	}
}

// Contains は指定されたカードが出題順に含まれるかを返します
func (o CardOrder) Contains(flashcardID uuid.UUID) bool {
	for _, id := range o {
		if id == flashcardID {
			return true
		}
	}
	return false
}

// Snapshot は中断・再開用の不透明なセッション状態です。
// エンジンは中身を解釈せず、そのまま保存して返却するだけです。
type Snapshot json.RawMessage

func (s Snapshot) Value() (driver.Value, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return string(s), nil
}

func (s *Snapshot) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*s = Snapshot(append([]byte(nil), v...))
		return nil
	case string:
		*s = Snapshot(v)
		return nil
	default:
		return fmt.Errorf("unsupported type for Snapshot: %T", value)
	}
}

// MarshalJSON / UnmarshalJSON は json.RawMessage と同じ振る舞いにする
func (s Snapshot) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return s, nil
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	if s == nil {
		return errors.New("model.Snapshot: UnmarshalJSON on nil pointer")
	}
	*s = Snapshot(append([]byte(nil), data...))
	return nil
}

// StudySession は1回の学習セッションを表します。
// 状態は Active → Completed の一方向のみ。Cancelled 状態は存在せず、
// 放置されたセッションは Active のまま残ります (掃除は外部のリテンションジョブの責務)。
type StudySession struct {
	SessionID    uuid.UUID  `gorm:"type:uuid;primaryKey" json:"session_id"`
	TenantID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"` // セッションの所有者
	SetID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"set_id"`
	Mode         StudyMode  `gorm:"type:varchar(20);not null" json:"mode"`
	TotalCards   int        `gorm:"not null" json:"total_cards"`
	CardOrder    CardOrder  `gorm:"type:text;not null" json:"card_order"`
	CurrentIndex int        `gorm:"not null;default:0" json:"current_index"`
	Snapshot     Snapshot   `gorm:"type:text" json:"snapshot,omitempty"`
	Completed    bool       `gorm:"not null;default:false;index" json:"completed"`
	Score        *float64   `json:"score,omitempty"` // 完了時のみ設定される
	StartedAt    time.Time  `gorm:"not null;index" json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}

func (StudySession) TableName() string {
	return "study_sessions"
}

// セッション作成リクエストDTO
type CreateSessionRequest struct {
	SetID string `json:"set_id" validate:"required,uuid4"`
	Mode  string `json:"mode" validate:"required,oneof=flashcard quiz writing match"`
}

// 回答送信リクエストDTO。
// is_correct か answer_text のどちらかが必須 (両方指定時は is_correct を優先)。
type RecordAnswerRequest struct {
	FlashcardID string  `json:"flashcard_id" validate:"required,uuid4"`
	IsCorrect   *bool   `json:"is_correct,omitempty"`
	AnswerText  *string `json:"answer_text,omitempty"`
	TimeSpentMs *int    `json:"time_spent_ms,omitempty" validate:"omitempty,min=0"`
}

// スナップショット更新リクエストDTO。スナップショットは丸ごと置換 (last-write-wins)。
type UpdateSnapshotRequest struct {
	CurrentIndex *int     `json:"current_index" validate:"required,min=0"`
	Snapshot     Snapshot `json:"snapshot"`
}

// セッション完了リクエストDTO。score は省略可能 (省略時はnullのまま確定)。
type CompleteSessionRequest struct {
	Score *float64 `json:"score,omitempty" validate:"omitempty,min=0,max=100"`
}
