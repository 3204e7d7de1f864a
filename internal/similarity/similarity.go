// internal/similarity/similarity.go
package similarity

import (
	"math"
	"strings"
)

// DefaultThreshold は自由記述の回答を正解とみなす類似度の既定値 (0〜100)
const DefaultThreshold = 90.0

// accentFolds はよく使われるラテン文字のアクセントを基底文字に畳み込むための対応表。
// a/e/i/o/u/c/n の各ファミリーのみ対象とする。
var accentFolds = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ä': 'a', 'ã': 'a', 'å': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'ö': 'o', 'õ': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c',
	'ñ': 'n',
}

// strippedPunct は比較前に除去する句読点
var strippedPunct = map[rune]bool{
	'.': true, ',': true, '!': true, '?': true, ';': true, ':': true,
	'(': true, ')': true, '[': true, ']': true, '{': true, '}': true,
	'\'': true, '"': true,
}

// Normalize は比較用に文字列を正規化します。
// 小文字化 → アクセント畳み込み → 句読点除去 → 空白の連続を1つに圧縮 → 前後の空白除去。
// 冪等: Normalize(Normalize(s)) == Normalize(s)。
func Normalize(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if folded, ok := accentFolds[r]; ok {
			r = folded
		}
		if strippedPunct[r] {
			continue
		}
		b.WriteRune(r)
	}

	// 空白の連続を1つのスペースに圧縮しつつ前後をトリム
	return strings.Join(strings.Fields(b.String()), " ")
}

// Distance は正規化済み文字列間の編集距離 (挿入・削除・置換コスト各1) を返します。
// rune単位で比較します。
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// 2行のDPテーブルで計算する
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, minInt(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// Score は2つの文字列の類似度を0〜100で返します。
// 両方とも正規化後に空なら100、片方だけ空なら0。
// それ以外は (maxLen - distance) / maxLen * 100 を小数第2位に丸めた値。
// 対称性: Score(a, b) == Score(b, a)。
func Score(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)

	lenA := len([]rune(na))
	lenB := len([]rune(nb))

	if lenA == 0 && lenB == 0 {
		return 100
	}
	if lenA == 0 || lenB == 0 {
		return 0
	}

	maxLen := lenA
	if lenB > maxLen {
		maxLen = lenB
	}

	dist := Distance(na, nb)
	score := float64(maxLen-dist) / float64(maxLen) * 100

	// 小数第2位に丸める
	return math.Round(score*100) / 100
}

// IsAcceptable はユーザーの回答が正解と十分に近いかを判定します
func IsAcceptable(user, correct string, threshold float64) bool {
	return Score(user, correct) >= threshold
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
