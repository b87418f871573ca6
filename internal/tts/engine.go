package tts

import (
	"context"
	"errors"
)

var (
	ErrEmptyText    = errors.New("empty text")
	ErrNoAudio      = errors.New("no audio returned")
	ErrUnknownVoice = errors.New("unknown voice")
)

// Synthesizer 把一段文本合成为完整的音频字节。
// 传入的文本必须与后续高亮使用的文本完全一致
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type SynthesizerFunc func(ctx context.Context, text string) ([]byte, error)

func (f SynthesizerFunc) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return f(ctx, text)
}
