package tts

import "sort"

// 预定义音色库，后端兼容 OpenAI speech 接口
var (
	VoiceNova = VoiceProfile{
		Name:        "nova",
		Gender:      "female",
		Description: "明亮温和的女声，适合给孩子讲解",
		Speed:       0.88,
	}

	VoiceShimmer = VoiceProfile{
		Name:        "shimmer",
		Gender:      "female",
		Description: "柔和女声",
	}

	VoiceAlloy = VoiceProfile{
		Name:        "alloy",
		Gender:      "neutral",
		Description: "中性声音",
	}

	VoiceEcho = VoiceProfile{
		Name:        "echo",
		Gender:      "male",
		Description: "沉稳男声",
	}

	VoiceFable = VoiceProfile{
		Name:        "fable",
		Gender:      "male",
		Description: "讲故事的声音",
	}

	VoiceOnyx = VoiceProfile{
		Name:        "onyx",
		Gender:      "male",
		Description: "低沉男声",
	}
)

// VoiceRegistry 音色注册表，用于通过名称快速查找音色
var VoiceRegistry = map[string]VoiceProfile{
	VoiceNova.Name:    VoiceNova,
	VoiceShimmer.Name: VoiceShimmer,
	VoiceAlloy.Name:   VoiceAlloy,
	VoiceEcho.Name:    VoiceEcho,
	VoiceFable.Name:   VoiceFable,
	VoiceOnyx.Name:    VoiceOnyx,
}

// GetVoice 根据名称获取音色配置
func GetVoice(name string) (VoiceProfile, bool) {
	voice, ok := VoiceRegistry[name]
	return voice, ok
}

// ListVoices 列出所有已注册的音色名称（已排序）
func ListVoices() []string {
	names := make([]string, 0, len(VoiceRegistry))
	for name := range VoiceRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
