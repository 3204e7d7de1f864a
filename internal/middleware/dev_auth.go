// internal/middleware/dev_auth.go
package middleware

import (
	"context"
	"log"
	"net/http"

	"go_5_study_engine/internal/model"
	"go_5_study_engine/internal/webutil"

	"github.com/google/uuid"
)

// DevTenantContextMiddleware は開発・テスト用ミドルウェアです。
// X-Tenant-ID ヘッダーからUUIDを抽出し、コンテキストに設定します。
// DBでのユーザー存在チェックは行いません。
func DevTenantContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantIDStr := r.Header.Get("X-Tenant-ID")
		if tenantIDStr == "" {
			log.Println("[DEV AUTH] Failed: X-Tenant-ID header missing")
			webutil.RespondWithError(w, http.StatusUnauthorized, "[DEV] Unauthorized: Missing X-Tenant-ID header")
			return
		}

		tenantID, err := uuid.Parse(tenantIDStr)
		if err != nil {
			log.Printf("[DEV AUTH] Failed: Invalid X-Tenant-ID format: %s", tenantIDStr)
			webutil.RespondWithError(w, http.StatusUnauthorized, "[DEV] Unauthorized: Invalid X-Tenant-ID format")
			return
		}

		// DB検証はスキップ
		ctx := context.WithValue(r.Context(), model.TenantIDKey, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
