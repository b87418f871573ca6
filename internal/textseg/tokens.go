package textseg

import (
	"strings"
	"unicode"
)

// Token 英文/日文逐词高亮的最小单位，Start/Length 以字符（rune）计
type Token struct {
	ID     int    `json:"id"`
	Text   string `json:"text"`
	Start  int    `json:"start"`
	Length int    `json:"length"`
	IsWord bool   `json:"isWord"`
}

// End 不含
func (t Token) End() int {
	return t.Start + t.Length
}

// Span 分词器给出的词区间 [Start, End)，rune 偏移
type Span struct {
	Start int
	End   int
}

// Segmenter 按语言切出词的位置
type Segmenter interface {
	Words(text string) []Span
}

// BuildTokens 词与词之间的非空白间隙（通常是标点）成为填充 token，纯空白间隙直接丢弃
func BuildTokens(text string, seg Segmenter) []Token {
	if text == "" || seg == nil {
		return nil
	}
	runes := []rune(text)
	tokens := make([]Token, 0, len(runes)/2+1)
	cursor := 0

	appendGap := func(from, to int) {
		// 去掉两端空白，中间保持原样
		for from < to && unicode.IsSpace(runes[from]) {
			from++
		}
		for to > from && unicode.IsSpace(runes[to-1]) {
			to--
		}
		if from >= to {
			return
		}
		tokens = append(tokens, Token{
			ID:     len(tokens),
			Text:   string(runes[from:to]),
			Start:  from,
			Length: to - from,
		})
	}

	for _, sp := range seg.Words(text) {
		if sp.Start < cursor || sp.End <= sp.Start || sp.End > len(runes) {
			continue
		}
		appendGap(cursor, sp.Start)
		tokens = append(tokens, Token{
			ID:     len(tokens),
			Text:   string(runes[sp.Start:sp.End]),
			Start:  sp.Start,
			Length: sp.End - sp.Start,
			IsWord: true,
		})
		cursor = sp.End
	}
	appendGap(cursor, len(runes))
	return tokens
}

// TokenIndexForCharOffset 找到包含或位于 charIndex 之前的最后一个词；
// charIndex 在第一个词之前时返回其后的第一个词。没有任何词时返回 -1
func TokenIndexForCharOffset(charIndex int, tokens []Token) int {
	last := -1
	for i, t := range tokens {
		if !t.IsWord {
			continue
		}
		if t.Start <= charIndex {
			last = i
			continue
		}
		if last == -1 {
			return i
		}
		break
	}
	return last
}

// hasWordRune 片段中含字母或数字才算词
func hasWordRune(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}
