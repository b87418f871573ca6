package textseg

import (
	"sort"
	"unicode"
)

// WeightConfig 每类字符对朗读时长的估计权重
type WeightConfig struct {
	Whitespace  float64 `toml:"whitespace"`
	LightPause  float64 `toml:"light_pause"` // ，,：:；;
	MidPause    float64 `toml:"mid_pause"`   // 、
	Period      float64 `toml:"period"`
	Question    float64 `toml:"question"`
	Exclamation float64 `toml:"exclamation"`
	Speakable   float64 `toml:"speakable"`
	Other       float64 `toml:"other"`
}

// DefaultWeightConfig 句末停顿：句号 > 问号 > 感叹号
func DefaultWeightConfig() WeightConfig {
	return WeightConfig{
		Whitespace:  0,
		LightPause:  0.25,
		MidPause:    0.5,
		Period:      0.9,
		Question:    0.8,
		Exclamation: 0.7,
		Speakable:   1.0,
		Other:       0.2,
	}
}

// CharWeights 中文逐字权重表及其前缀和
type CharWeights struct {
	Weights    []float64
	Cumulative []float64 // len(Weights)+1，Cumulative[0] == 0
	Speakable  []bool
	Total      float64
}

// Len 字符数
func (w *CharWeights) Len() int {
	if w == nil {
		return 0
	}
	return len(w.Weights)
}

// IsCJKIdeograph 只认 CJK 统一汉字基本区
func IsCJKIdeograph(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

// IsSpeakable 汉字、字母、数字视为会被读出来的字符
func IsSpeakable(r rune) bool {
	return IsCJKIdeograph(r) || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (c WeightConfig) weightOf(r rune) float64 {
	switch {
	case unicode.IsSpace(r):
		return c.Whitespace
	case r == ',' || r == '，' || r == ':' || r == '：' || r == ';' || r == '；':
		return c.LightPause
	case r == '、':
		return c.MidPause
	case r == '。' || r == '.' || r == '．':
		return c.Period
	case r == '?' || r == '？':
		return c.Question
	case r == '!' || r == '！':
		return c.Exclamation
	case IsSpeakable(r):
		return c.Speakable
	default:
		return c.Other
	}
}

// BuildWeights 构建权重表。空文本返回空表，Total 为 0 时调用方需退回线性映射
func BuildWeights(text string, cfg WeightConfig) *CharWeights {
	runes := []rune(text)
	w := &CharWeights{
		Weights:    make([]float64, len(runes)),
		Cumulative: make([]float64, len(runes)+1),
		Speakable:  make([]bool, len(runes)),
	}
	for i, r := range runes {
		v := cfg.weightOf(r)
		if v < 0 || v != v {
			v = 0
		}
		w.Weights[i] = v
		w.Speakable[i] = IsSpeakable(r)
		w.Cumulative[i+1] = w.Cumulative[i] + v
	}
	w.Total = w.Cumulative[len(runes)]
	return w
}

// IndexForProgress 二分查找第一个累计权重 >= progress*total 的位置，减一后夹到 [0, N-1]
func IndexForProgress(progress float64, cumulative []float64) int {
	n := len(cumulative) - 1
	if n <= 0 {
		return 0
	}
	progress = clamp01(progress)
	target := progress * cumulative[n]
	pos := sort.Search(len(cumulative), func(i int) bool {
		return cumulative[i] >= target
	})
	return clampInt(pos-1, 0, n-1)
}

// NearestSpeakable 高亮不落在空白或标点上：先往下标小的方向找，再往大的方向找
func NearestSpeakable(from int, mask []bool) int {
	if len(mask) == 0 {
		return 0
	}
	from = clampInt(from, 0, len(mask)-1)
	if mask[from] {
		return from
	}
	for i := from - 1; i >= 0; i-- {
		if mask[i] {
			return i
		}
	}
	for i := from + 1; i < len(mask); i++ {
		if mask[i] {
			return i
		}
	}
	return from
}

func clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
