// internal/srs/sm2.go
package srs

import (
	"math"
	"time"
)

// SM-2アルゴリズムの定数
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// Quality は0〜5の想起品質です。
// 0: 完全な忘却, 3: 正解だが困難, 4: 正解, 5: 容易に正解。
type Quality int

const (
	QualityBlackout Quality = 0
	QualityHard     Quality = 3
	QualityGood     Quality = 4
	QualityEasy     Quality = 5
)

// IsValid は品質が0〜5の範囲内かを返します
func (q Quality) IsValid() bool {
	return q >= 0 && q <= 5
}

// State はカード1枚分の間隔反復の状態です
type State struct {
	EaseFactor   float64
	IntervalDays int
	Repetitions  int
	NextReviewAt time.Time
}

// NewState は初回復習前のデフォルト状態を返します
func NewState() State {
	return State{
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: 0,
		Repetitions:  0,
	}
}

// Apply はSM-2アルゴリズムで次の状態を計算します。
// 決定的な純粋関数であり、同じ入力に対して常に同じ出力を返します
// (nowを引数で受け取るのはテストの再現性のため)。
//
//  1. ease' = ease + (0.1 - (5-q) * (0.08 + (5-q)*0.02))、下限1.3
//  2. q < 3 なら忘却: repetitions' = 0, interval' = 1
//  3. それ以外: repetitions'++。interval' は 1回目=1, 2回目=6,
//     3回目以降 = round(interval * ease')
//  4. nextReviewAt' = now + interval' 日
func Apply(s State, q Quality, now time.Time) State {
	if q < 0 {
		q = 0
	}
	if q > 5 {
		q = 5
	}

	qf := float64(q)
	newEase := s.EaseFactor + (0.1 - (5-qf)*(0.08+(5-qf)*0.02))
	if newEase < MinEaseFactor {
		newEase = MinEaseFactor
	}

	var newReps, newInterval int
	if q < QualityHard {
		// 忘却: 繰り返し回数をリセットし、翌日に再出題
		newReps = 0
		newInterval = 1
	} else {
		newReps = s.Repetitions + 1
		switch newReps {
		case 1:
			newInterval = 1
		case 2:
			newInterval = 6
		default:
			newInterval = int(math.Round(float64(s.IntervalDays) * newEase))
		}
	}

	return State{
		EaseFactor:   newEase,
		IntervalDays: newInterval,
		Repetitions:  newReps,
		NextReviewAt: now.AddDate(0, 0, newInterval),
	}
}
