// internal/srs/quality.go
package srs

import "errors"

// ErrNegativeTime は回答時間に負の値が指定された場合のエラー
var ErrNegativeTime = errors.New("time spent must not be negative")

// 回答時間から品質を決めるための閾値 (ミリ秒)
const (
	easyTimeMs = 3000
	goodTimeMs = 6000
)

// Evaluate は正誤と回答時間から0〜5の品質を導出します。
//
//   - 不正解: 時間に関わらず0 (完全な忘却として扱う)
//   - 正解で時間なし: 4 (デフォルトの "good")
//   - 正解で 3000ms 未満: 5 ("easy")
//   - 正解で 6000ms 未満: 4
//   - 正解で 6000ms 以上: 3 ("hard but correct")
//
// 6秒以上はすべて3にマップされます (それ以上時間でスケールさせない)。
func Evaluate(isCorrect bool, timeSpentMs *int) (Quality, error) {
	if timeSpentMs != nil && *timeSpentMs < 0 {
		return 0, ErrNegativeTime
	}

	if !isCorrect {
		return QualityBlackout, nil
	}

	if timeSpentMs == nil {
		return QualityGood, nil
	}

	switch {
	case *timeSpentMs < easyTimeMs:
		return QualityEasy, nil
	case *timeSpentMs < goodTimeMs:
		return QualityGood, nil
	default:
		return QualityHard, nil
	}
}
