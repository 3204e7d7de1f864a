// internal/config/constants.go
package config

// アプリケーション情報
const (
	AppName    = "StudySessionEngine"
	AppVersion = "1.0.0"
)

// デフォルト設定値
const (
	DefaultServerPort          = ":8080"
	DefaultLogLevel            = "info"
	DefaultAppDueLimit         = 20
	DefaultSimilarityThreshold = 90.0
	DefaultAuthEnabled         = true
)
