package tts

// VoiceProfile 表示后端支持的一个音色
type VoiceProfile struct {
	Name        string  // 请求里使用的音色名，如 "nova"
	Gender      string  // "male"、"female"、"neutral"
	Description string  // 简短描述
	Speed       float64 // 默认语速，0 表示沿用引擎配置
}

// SpeedOr 音色没有默认语速时使用 fallback
func (v VoiceProfile) SpeedOr(fallback float64) float64 {
	if v.Speed > 0 {
		return v.Speed
	}
	return fallback
}
