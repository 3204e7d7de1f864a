// internal/model/error.go
package model

import (
	"errors"
	"fmt"
)

// アプリケーション固有のエラー
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInternalServer   = errors.New("internal server error")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("resource conflict") // 重複エラー用
	ErrAlreadyCompleted = errors.New("session already completed")
	ErrEmptySet         = errors.New("set has no flashcards")
)

// ErrorDetail はAPIエラーレスポンスに含める詳細情報
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// APIErrorResponse はAPIエラーレスポンスの構造体
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// APIError はシンプルなエラーレスポンスの構造体 (開発用ミドルウェアなどで使用)
type APIError struct {
	Message string `json:"message"`
}

// AppError はエラーコードとクライアント向けメッセージを持つカスタムエラー型。
// Err に上記のセンチネルエラーをラップすることで、HTTPステータスへの変換を可能にする。
type AppError struct {
	Detail ErrorDetail
	Err    error
}

func NewAppError(code, message, field string, err error) *AppError {
	return &AppError{
		Detail: ErrorDetail{
			Code:    code,
			Message: message,
			Field:   field,
		},
		Err: err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Detail.Code, e.Detail.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Detail.Code, e.Detail.Message)
}

// Unwrap は errors.Is / errors.As でセンチネルエラーを判定できるようにする
func (e *AppError) Unwrap() error {
	return e.Err
}
