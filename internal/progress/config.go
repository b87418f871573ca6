package progress

// Silence 合成语音首尾的静音估计（秒）
type Silence struct {
	Leading  float64 `toml:"leading"`
	Trailing float64 `toml:"trailing"`
}

// Config 进度映射的经验常数，集中在这里方便重新标定
type Config struct {
	// 时长分档：< ShortClip、[ShortClip, LongClip)、>= LongClip
	ShortClip     float64 `toml:"short_clip"`
	LongClip      float64 `toml:"long_clip"`
	ShortSilence  Silence `toml:"short_silence"`
	MediumSilence Silence `toml:"medium_silence"`
	LongSilence   Silence `toml:"long_silence"`

	// 首尾裁剪：低于 TrimStart 记为 0，高于 TrimEnd 记为 1
	TrimStart float64 `toml:"trim_start"`
	TrimEnd   float64 `toml:"trim_end"`

	// 平滑系数按语速（秒/字）选择，系数越大高亮跟得越紧
	AlphaFast    float64 `toml:"alpha_fast"` // 语速快于 FastRate 时使用，应大于 AlphaDefault
	AlphaDefault float64 `toml:"alpha_default"`
	AlphaSlow    float64 `toml:"alpha_slow"` // 语速慢于 SlowRate 时使用，应小于 AlphaDefault
	FastRate     float64 `toml:"fast_rate"`
	SlowRate     float64 `toml:"slow_rate"`

	Epsilon float64 `toml:"epsilon"`

	// StrictForward 平滑值不允许回退。默认关闭，允许时钟抖动带来的轻微回退
	StrictForward bool `toml:"strict_forward"`
}

// DefaultConfig 默认参数
func DefaultConfig() Config {
	return Config{
		ShortClip:     2,
		LongClip:      5,
		ShortSilence:  Silence{Leading: 0.15, Trailing: 0.1},
		MediumSilence: Silence{Leading: 0.25, Trailing: 0.2},
		LongSilence:   Silence{Leading: 0.35, Trailing: 0.3},
		TrimStart:     0.03,
		TrimEnd:       0.95,
		AlphaFast:     0.35,
		AlphaDefault:  0.25,
		AlphaSlow:     0.15,
		FastRate:      0.08,
		SlowRate:      0.3,
		Epsilon:       1e-3,
	}
}
