package tts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"

	"anan/internal/metrics"
)

// CachedSynthesizer 相同文本复用已合成的音频，"再讲一遍"不会重复请求后端
type CachedSynthesizer struct {
	next  Synthesizer
	cache *cache.Cache
}

func NewCachedSynthesizer(next Synthesizer, ttl time.Duration) *CachedSynthesizer {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CachedSynthesizer{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// CacheKey 文本的 sha256
func CacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (c *CachedSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	key := CacheKey(text)
	if v, ok := c.cache.Get(key); ok {
		metrics.TTSCacheTotal.WithLabelValues("hit").Inc()
		return v.([]byte), nil
	}
	metrics.TTSCacheTotal.WithLabelValues("miss").Inc()

	data, err := c.next.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, data, cache.DefaultExpiration)
	return data, nil
}

// Len 当前缓存条目数
func (c *CachedSynthesizer) Len() int {
	return c.cache.ItemCount()
}

func (c *CachedSynthesizer) Flush() {
	c.cache.Flush()
}
