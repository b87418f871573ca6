package textseg

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

func isCJKTerminator(r rune) bool {
	return r == '。' || r == '？' || r == '！'
}

func isLatinTerminator(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}

// SplitSentences 半角句末标点后面紧跟空白才断句（避免 3.14 被切开），全角句末标点直接断句。
// 每句去掉首尾空白；一句都切不出来时整段作为一句
func SplitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0
	flush := func(end int) {
		s := strings.TrimSpace(string(runes[start:end]))
		if s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}
	for i, r := range runes {
		switch {
		case isCJKTerminator(r):
			flush(i + 1)
		case isLatinTerminator(r) && i+1 < len(runes) && unicode.IsSpace(runes[i+1]):
			flush(i + 1)
		}
	}
	flush(len(runes))
	if len(sentences) == 0 {
		return []string{text}
	}
	return sentences
}

// SentenceForCharOffset 逐句累加字符数（每句 +1 近似被去掉的分隔空白），
// 第一个累计值 >= charIndex 的句子即当前句。返回值与 current 不同时 changed 为 true
func SentenceForCharOffset(sentences []string, charIndex, current int) (index int, changed bool) {
	count := 0
	for i, s := range sentences {
		count += utf8.RuneCountInString(s) + 1
		if count >= charIndex {
			return i, i != current
		}
	}
	return current, false
}
