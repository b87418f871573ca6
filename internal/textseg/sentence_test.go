package textseg

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"

	"anan/internal/lang"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"latin", "A. B? C!", []string{"A.", "B?", "C!"}},
		{"decimal kept", "Pi is 3.14 today. Nice!", []string{"Pi is 3.14 today.", "Nice!"}},
		{"newline counts as whitespace", "Hi! I am Teacher An-An.\nWhat would you like to know?",
			[]string{"Hi!", "I am Teacher An-An.", "What would you like to know?"}},
		{"cjk", "你好。世界真大！對嗎？", []string{"你好。", "世界真大！", "對嗎？"}},
		{"japanese", "空(そら)は青(あお)い。なぜかな？", []string{"空(そら)は青(あお)い。", "なぜかな？"}},
		{"no terminator", "no terminator here", []string{"no terminator here"}},
		{"blank", "   ", []string{"   "}},
		{"empty", "", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.in))
		})
	}
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func TestSplitSentencesCoverage(t *testing.T) {
	texts := []string{
		"Why is the sky blue? Sunlight bounces around!  The blue light bounces the most. ",
		"嗨！我是安安老師～\n小朋友你想知道什麼呢？",
		"Mr. Owl says hi",
	}
	for _, text := range texts {
		got := SplitSentences(text)
		assert.GreaterOrEqual(t, len(got), 1)
		assert.Equal(t, stripSpace(text), stripSpace(strings.Join(got, " ")))
	}
}

func TestSentenceForCharOffset(t *testing.T) {
	sentences := []string{"A.", "B?", "C!"}
	// 累计：3, 6, 9
	idx, changed := SentenceForCharOffset(sentences, 0, 0)
	assert.Equal(t, 0, idx)
	assert.False(t, changed)

	idx, changed = SentenceForCharOffset(sentences, 4, 0)
	assert.Equal(t, 1, idx)
	assert.True(t, changed)

	idx, changed = SentenceForCharOffset(sentences, 6, 1)
	assert.Equal(t, 1, idx)
	assert.False(t, changed)

	idx, changed = SentenceForCharOffset(sentences, 100, 1)
	assert.Equal(t, 1, idx)
	assert.False(t, changed)
}

func TestTokenizerCachesUtterance(t *testing.T) {
	tk := NewTokenizer(DefaultWeightConfig(), 2)

	zh := tk.Tokenize("你好，世界！", lang.Chinese)
	assert.True(t, zh.UsesWeights())
	assert.Empty(t, zh.Tokens)
	assert.Equal(t, 6, zh.Len())
	assert.Same(t, zh, tk.Tokenize("你好，世界！", lang.Chinese))

	en := tk.Tokenize("Hi there!", lang.English)
	assert.False(t, en.UsesWeights())
	assert.Equal(t, 2, en.WordCount())
	assert.Equal(t, 1, en.LastWordToken())
	assert.Equal(t, []string{"Hi there!"}, en.Sentences)

	// 同一文本不同语言是不同快照
	assert.NotSame(t, zh, tk.Tokenize("你好，世界！", lang.English))
}
