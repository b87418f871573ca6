package tts

import (
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"
	"github.com/sirupsen/logrus"
)

// Playback 一次播放，对外提供播放器时钟（已播放时间、总时长、是否在播）。
// Stream 由 beep speaker 的回调协程调用，其余方法可在任意协程调用
type Playback struct {
	src    beep.StreamSeekCloser
	out    beep.Streamer // src 或重采样后的 src
	format beep.Format
	length float64

	played  atomic.Int64 // 已播放的源采样帧
	stopped atomic.Bool
	ended   atomic.Bool

	closeOnce sync.Once
	done      chan struct{}
}

func newPlayback(src beep.StreamSeekCloser, format beep.Format, target beep.SampleRate) *Playback {
	p := &Playback{
		src:    src,
		out:    src,
		format: format,
		length: format.SampleRate.D(src.Len()).Seconds(),
		done:   make(chan struct{}),
	}
	if target > 0 && format.SampleRate != target {
		p.out = beep.Resample(4, format.SampleRate, target, src)
	}
	return p
}

func (p *Playback) Stream(samples [][2]float64) (int, bool) {
	if p.stopped.Load() || p.ended.Load() {
		p.close()
		return 0, false
	}

	n, ok := p.out.Stream(samples)
	p.played.Store(int64(p.src.Position()))
	if !ok {
		if err := p.src.Err(); err != nil {
			logrus.Warnf("playback: stream error: %v", err)
		}
		p.ended.Store(true)
		p.close()
	}
	return n, ok
}

func (p *Playback) Err() error {
	return p.src.Err()
}

func (p *Playback) close() {
	p.closeOnce.Do(func() {
		if err := p.src.Close(); err != nil {
			logrus.Warnf("playback: close source: %v", err)
		}
		close(p.done)
	})
}

// CurrentTime 已播放时间（秒）
func (p *Playback) CurrentTime() float64 {
	t := p.format.SampleRate.D(int(p.played.Load())).Seconds()
	if d := p.Duration(); d > 0 && t > d {
		return d
	}
	return t
}

// Duration 总时长（秒）
func (p *Playback) Duration() float64 {
	return p.length
}

func (p *Playback) IsPlaying() bool {
	return !p.stopped.Load() && !p.ended.Load()
}

// Stop 标记停止，speaker 下一次拉取时移除
func (p *Playback) Stop() {
	p.stopped.Store(true)
}

// Done 播放结束或被停止并释放资源后关闭
func (p *Playback) Done() <-chan struct{} {
	return p.done
}
