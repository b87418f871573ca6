package progress

// EstimateSilence 按时长分档返回首尾静音估计，不解码音频
func (c Config) EstimateSilence(duration float64) Silence {
	switch {
	case duration < c.ShortClip:
		return c.ShortSilence
	case duration < c.LongClip:
		return c.MediumSilence
	default:
		return c.LongSilence
	}
}

// RawProgress 扣除首尾静音后的播放比例，夹到 [0,1]
func (c Config) RawProgress(elapsed, duration float64, s Silence) float64 {
	adjustedElapsed := elapsed - s.Leading
	if adjustedElapsed < 0 {
		adjustedElapsed = 0
	}
	adjustedDuration := duration - s.Leading - s.Trailing
	if adjustedDuration < c.Epsilon {
		adjustedDuration = c.Epsilon
	}
	return clamp01(adjustedElapsed / adjustedDuration)
}

// TrimEdges 首尾裁剪并把中间部分线性拉伸到 [0,1]
func (c Config) TrimEdges(raw float64) float64 {
	raw = clamp01(raw)
	if raw < c.TrimStart {
		return 0
	}
	if raw > c.TrimEnd {
		return 1
	}
	span := c.TrimEnd - c.TrimStart
	if span <= 0 {
		return raw
	}
	return clamp01((raw - c.TrimStart) / span)
}

// AlphaFor 语速越快平滑系数越大（跟得更紧），越慢越小（更平滑）
func (c Config) AlphaFor(duration float64, chars int) float64 {
	if chars <= 0 || duration <= 0 {
		return c.AlphaDefault
	}
	rate := duration / float64(chars)
	switch {
	case rate < c.FastRate:
		return c.AlphaFast
	case rate > c.SlowRate:
		return c.AlphaSlow
	default:
		return c.AlphaDefault
	}
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
