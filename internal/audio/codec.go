package audio

import "bytes"

const (
	EncodingPCM = "pcm"
	EncodingWAV = "wav"
	EncodingMP3 = "mp3"
)

// CodecOption 原始 PCM 没有文件头时按这里的参数解释
type CodecOption struct {
	Encoding   string `json:"encoding" toml:"encoding" default:"mp3"`
	SampleRate int    `json:"sampleRate" toml:"sample_rate" default:"24000"`
	Channels   int    `json:"channels" toml:"channels" default:"1"`
	BitDepth   int    `json:"bitDepth" toml:"bit_depth" default:"16"`
}

// DefaultCodecOption TTS 后端默认返回 mp3
func DefaultCodecOption() CodecOption {
	return CodecOption{
		Encoding:   EncodingMP3,
		SampleRate: 24000,
		Channels:   1,
		BitDepth:   16,
	}
}

// DetectEncoding 通过文件头判断编码，判断不出来时使用 fallback
func DetectEncoding(data []byte, fallback string) string {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return EncodingWAV
	case len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")):
		return EncodingMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return EncodingMP3
	}
	if fallback == "" {
		return EncodingPCM
	}
	return fallback
}
