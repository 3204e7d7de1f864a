// internal/model/context.go
package model

// ContextKey はコンテキストに値を格納するためのキー型
type ContextKey string

const (
	// TenantIDKey は認証ミドルウェアが設定する認証済みユーザーIDのキー。
	// エンジンはこのIDを requesterId として信頼し、再導出しません。
	TenantIDKey ContextKey = "tenantID"
)
