package textseg

import (
	"sync"
	"unicode/utf8"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
	"github.com/rivo/uniseg"
	"github.com/sirupsen/logrus"

	"anan/internal/lang"
)

// WordSegmenter 基于 Unicode UAX #29 的词边界，用于英文
type WordSegmenter struct{}

func (WordSegmenter) Words(text string) []Span {
	var spans []Span
	state := -1
	offset := 0
	rest := text
	for len(rest) > 0 {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		n := utf8.RuneCountInString(word)
		if hasWordRune(word) {
			spans = append(spans, Span{Start: offset, End: offset + n})
		}
		offset += n
	}
	return spans
}

// MorphSegmenter 基于 kagome 形态素分析的日文分词
type MorphSegmenter struct {
	once sync.Once
	tk   *tokenizer.Tokenizer
	err  error
}

// NewMorphSegmenter 词典在第一次使用时加载
func NewMorphSegmenter() *MorphSegmenter {
	return &MorphSegmenter{}
}

func (m *MorphSegmenter) load() error {
	m.once.Do(func() {
		m.tk, m.err = tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
		if m.err != nil {
			logrus.Warnf("textseg: kagome init failed, falling back to uax29: %v", m.err)
		}
	})
	return m.err
}

func (m *MorphSegmenter) Words(text string) []Span {
	if err := m.load(); err != nil {
		return WordSegmenter{}.Words(text)
	}
	var spans []Span
	for _, kt := range m.tk.Tokenize(text) {
		if kt.End <= kt.Start || !hasWordRune(kt.Surface) {
			continue
		}
		spans = append(spans, Span{Start: kt.Start, End: kt.End})
	}
	return spans
}

var (
	defaultMorph     *MorphSegmenter
	defaultMorphOnce sync.Once
)

// SegmenterFor 日文用形态素分析，其余语言用 UAX #29
func SegmenterFor(l lang.Language) Segmenter {
	if l == lang.Japanese {
		defaultMorphOnce.Do(func() {
			defaultMorph = NewMorphSegmenter()
		})
		return defaultMorph
	}
	return WordSegmenter{}
}
