package textseg

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"anan/internal/lang"
)

const DefaultCacheSize = 64

type cacheKey struct {
	lang lang.Language
	text string
}

// Tokenizer 构建 Utterance，并缓存最近的结果（重播、再讲一次时不用重新分词）
type Tokenizer struct {
	cfg   WeightConfig
	cache *lru.Cache[cacheKey, *Utterance]
}

// NewTokenizer cacheSize <= 0 时使用默认大小
func NewTokenizer(cfg WeightConfig, cacheSize int) *Tokenizer {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[cacheKey, *Utterance](cacheSize)
	if err != nil {
		logrus.Warnf("textseg: utterance cache disabled: %v", err)
	}
	return &Tokenizer{cfg: cfg, cache: cache}
}

// Tokenize 对同一语言同一文本返回同一个只读快照
func (t *Tokenizer) Tokenize(text string, l lang.Language) *Utterance {
	key := cacheKey{lang: l, text: text}
	if t.cache != nil {
		if u, ok := t.cache.Get(key); ok {
			return u
		}
	}
	u := NewUtterance(text, l, t.cfg, SegmenterFor(l))
	if t.cache != nil {
		t.cache.Add(key, u)
	}
	return u
}
