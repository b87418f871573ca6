package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/gopxl/beep"
)

// PCMStreamer 内存中的 16bit 小端 PCM，实现 beep.StreamSeekCloser
type PCMStreamer struct {
	format beep.Format
	data   []byte
	pos    int // 以帧计
	closed bool
}

// NewPCMStreamer 只支持 16bit 单声道/双声道
func NewPCMStreamer(data []byte, codec CodecOption) (*PCMStreamer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}
	if codec.BitDepth != 0 && codec.BitDepth != 16 {
		return nil, fmt.Errorf("%w: pcm bit depth %d", ErrUnsupportedEncoding, codec.BitDepth)
	}
	channels := codec.Channels
	if channels <= 0 {
		channels = 1
	}
	if channels > 2 {
		return nil, fmt.Errorf("%w: pcm channels %d", ErrUnsupportedEncoding, channels)
	}
	sampleRate := codec.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &PCMStreamer{
		format: beep.Format{
			SampleRate:  beep.SampleRate(sampleRate),
			NumChannels: channels,
			Precision:   2,
		},
		data: data,
	}, nil
}

func (s *PCMStreamer) Format() beep.Format {
	return s.format
}

func (s *PCMStreamer) frameSize() int {
	return s.format.NumChannels * s.format.Precision
}

func (s *PCMStreamer) Len() int {
	return len(s.data) / s.frameSize()
}

func (s *PCMStreamer) Position() int {
	return s.pos
}

func (s *PCMStreamer) Seek(p int) error {
	if p < 0 || p > s.Len() {
		return fmt.Errorf("audio: seek position %d out of range [0, %d]", p, s.Len())
	}
	s.pos = p
	return nil
}

func (s *PCMStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.closed || s.pos >= s.Len() {
		return 0, false
	}
	frameSize := s.frameSize()
	n := 0
	for n < len(samples) && s.pos < s.Len() {
		offset := s.pos * frameSize
		if s.format.NumChannels == 1 {
			v := pcm16ToFloat(s.data[offset:])
			samples[n][0] = v
			samples[n][1] = v
		} else {
			samples[n][0] = pcm16ToFloat(s.data[offset:])
			samples[n][1] = pcm16ToFloat(s.data[offset+2:])
		}
		s.pos++
		n++
	}
	return n, true
}

func (s *PCMStreamer) Err() error {
	return nil
}

func (s *PCMStreamer) Close() error {
	s.closed = true
	return nil
}

func pcm16ToFloat(b []byte) float64 {
	if len(b) < 2 {
		return 0
	}
	v := int16(binary.LittleEndian.Uint16(b))
	return float64(v) / 32768.0
}
