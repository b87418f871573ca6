package tts

import (
	"anan/internal/audio"
	"anan/internal/highlight"
)

// Start 以 highlight.Player 的形式返回播放
func (s *Speaker) Start(data []byte) (highlight.Player, error) {
	p, err := s.Play(data)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SilentOutput 只解码出时长，用墙钟驱动高亮。用于没有声卡的机器
type SilentOutput struct {
	Codec audio.CodecOption
}

func (o SilentOutput) Start(data []byte) (highlight.Player, error) {
	src, format, err := audio.Decode(data, o.Codec)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return NewClockPlayer(format.SampleRate.D(src.Len())), nil
}
