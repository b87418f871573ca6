package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

var (
	ErrEmptyAudio          = errors.New("empty audio")
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
)

// Decode 把 TTS 返回的整段音频解码成可定位的 beep 流
func Decode(data []byte, codec CodecOption) (beep.StreamSeekCloser, beep.Format, error) {
	if len(data) == 0 {
		return nil, beep.Format{}, ErrEmptyAudio
	}

	encoding := DetectEncoding(data, codec.Encoding)
	switch encoding {
	case EncodingWAV:
		s, format, err := wav.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("audio: decode wav: %w", err)
		}
		return s, format, nil
	case EncodingMP3:
		s, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("audio: decode mp3: %w", err)
		}
		return s, format, nil
	case EncodingPCM:
		s, err := NewPCMStreamer(data, codec)
		if err != nil {
			return nil, beep.Format{}, err
		}
		return s, s.Format(), nil
	}
	return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, encoding)
}
