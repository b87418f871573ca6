package progress

import (
	"math"

	"anan/internal/textseg"
)

// Position 一次映射的结果。中文 Token 恒为 -1
type Position struct {
	Char     int `json:"char"`
	Token    int `json:"token"`
	Sentence int `json:"sentence"`
}

// Mapper 单次播放会话的平滑进度，只由同步驱动持有
type Mapper struct {
	cfg      Config
	duration float64
	silence  Silence
	alpha    float64
	smoothed float64
}

// NewMapper chars 为可显示字符数，用来估计语速
func NewMapper(cfg Config, duration float64, chars int) *Mapper {
	return &Mapper{
		cfg:      cfg,
		duration: duration,
		silence:  cfg.EstimateSilence(duration),
		alpha:    cfg.AlphaFor(duration, chars),
	}
}

// Alpha 本次会话使用的平滑系数
func (m *Mapper) Alpha() float64 {
	return m.alpha
}

// Progress 当前平滑进度
func (m *Mapper) Progress() float64 {
	return m.smoothed
}

// Advance 输入播放器已播放时间，返回更新后的平滑进度
func (m *Mapper) Advance(elapsed float64) float64 {
	raw := m.cfg.RawProgress(elapsed, m.duration, m.silence)
	adjusted := m.cfg.TrimEdges(raw)
	next := clamp01(m.smoothed*(1-m.alpha) + adjusted*m.alpha)
	if m.cfg.StrictForward && next < m.smoothed {
		next = m.smoothed
	}
	m.smoothed = next
	return next
}

// Locate 把进度映射到字符、词和句子下标。current 用于句子只在变化时更新
func Locate(u *textseg.Utterance, p float64, current Position) Position {
	n := u.Len()
	p = clamp01(p)
	pos := Position{Token: -1, Sentence: current.Sentence}
	if n == 0 {
		pos.Sentence = 0
		return pos
	}

	if u.UsesWeights() {
		var idx int
		if u.Weights.Total > 0 {
			idx = textseg.IndexForProgress(p, u.Weights.Cumulative)
		} else {
			idx = clampInt(int(math.Floor(float64(n)*p)), 0, n-1)
		}
		pos.Char = textseg.NearestSpeakable(idx, u.Weights.Speakable)
	} else {
		pos.Char = clampInt(int(math.Floor(float64(n)*p)), 0, n)
		pos.Token = textseg.TokenIndexForCharOffset(pos.Char, u.Tokens)
	}

	if s, changed := textseg.SentenceForCharOffset(u.Sentences, pos.Char, current.Sentence); changed {
		pos.Sentence = s
	}
	return pos
}

// Final 播放结束时的终态：全文高亮、最后一句、最后一个词
func Final(u *textseg.Utterance) Position {
	last := len(u.Sentences) - 1
	if last < 0 {
		last = 0
	}
	return Position{
		Char:     u.Len(),
		Token:    u.LastWordToken(),
		Sentence: last,
	}
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
