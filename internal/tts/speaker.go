package tts

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/sirupsen/logrus"

	"anan/internal/audio"
)

type SpeakerOption struct {
	SampleRate int               `toml:"sample_rate"`
	Buffer     time.Duration     `toml:"buffer"`
	Codec      audio.CodecOption `toml:"codec"`
}

func DefaultSpeakerOption() SpeakerOption {
	return SpeakerOption{
		SampleRate: 24000,
		Buffer:     100 * time.Millisecond,
		Codec:      audio.DefaultCodecOption(),
	}
}

// Speaker 持有本机音频输出，同一时间只播放一段
type Speaker struct {
	opt        SpeakerOption
	sampleRate beep.SampleRate
	queue      *StreamQueue

	initOnce sync.Once
	initErr  error
}

func NewSpeaker(opt SpeakerOption) *Speaker {
	if opt.SampleRate <= 0 {
		opt.SampleRate = 24000
	}
	if opt.Buffer <= 0 {
		opt.Buffer = 100 * time.Millisecond
	}
	return &Speaker{
		opt:        opt,
		sampleRate: beep.SampleRate(opt.SampleRate),
		queue:      NewStreamQueue(),
	}
}

// 第一次播放时才打开声卡
func (s *Speaker) init() error {
	s.initOnce.Do(func() {
		s.initErr = speaker.Init(s.sampleRate, s.sampleRate.N(s.opt.Buffer))
		if s.initErr != nil {
			logrus.Errorf("speaker: init failed: %v", s.initErr)
			return
		}
		speaker.Play(s.queue)
	})
	return s.initErr
}

// Play 解码并播放一段音频，先停掉正在播放的那段
func (s *Speaker) Play(data []byte) (*Playback, error) {
	src, format, err := audio.Decode(data, s.opt.Codec)
	if err != nil {
		return nil, err
	}
	if err := s.init(); err != nil {
		src.Close()
		return nil, err
	}

	p := newPlayback(src, format, s.sampleRate)
	speaker.Lock()
	s.queue.Replace(p)
	speaker.Unlock()

	logrus.Debugf("speaker: playing %.2fs of %s audio", p.Duration(), audio.DetectEncoding(data, s.opt.Codec.Encoding))
	return p, nil
}

// 停止播放当前 playback
func (s *Speaker) Stop() {
	speaker.Lock()
	s.queue.StopCurrent()
	speaker.Unlock()
}

// Current 正在播放的 playback，没有时为 nil
func (s *Speaker) Current() *Playback {
	return s.queue.Current()
}

// Close 停止播放并释放声卡
func (s *Speaker) Close() {
	s.Stop()
	if s.initErr == nil {
		speaker.Clear()
	}
}
