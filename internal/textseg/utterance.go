package textseg

import (
	"unicode/utf8"

	"anan/internal/lang"
)

// Utterance 当前朗读的一整段回答。分词结果在构建后只读，播放期间不会再变
type Utterance struct {
	Text      string
	Language  lang.Language
	Weights   *CharWeights // 仅中文
	Tokens    []Token      // 英文/日文
	Sentences []string

	length int
}

// Len 文本字符数（rune）
func (u *Utterance) Len() int {
	if u == nil {
		return 0
	}
	return u.length
}

// WordCount 可高亮的词数
func (u *Utterance) WordCount() int {
	n := 0
	for _, t := range u.Tokens {
		if t.IsWord {
			n++
		}
	}
	return n
}

// LastWordToken 最后一个词 token 的下标，没有词时为 -1
func (u *Utterance) LastWordToken() int {
	for i := len(u.Tokens) - 1; i >= 0; i-- {
		if u.Tokens[i].IsWord {
			return i
		}
	}
	return -1
}

// UsesWeights 中文走逐字权重
func (u *Utterance) UsesWeights() bool {
	return u.Weights != nil
}

// NewUtterance 按语言构建分词结构
func NewUtterance(text string, l lang.Language, cfg WeightConfig, seg Segmenter) *Utterance {
	u := &Utterance{
		Text:      text,
		Language:  l,
		Sentences: SplitSentences(text),
		length:    utf8.RuneCountInString(text),
	}
	if l == lang.Chinese {
		u.Weights = BuildWeights(text, cfg)
		return u
	}
	if seg == nil {
		seg = SegmenterFor(l)
	}
	u.Tokens = BuildTokens(text, seg)
	return u
}
