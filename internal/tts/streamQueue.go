package tts

import (
	"sync"
)

// StreamQueue 挂在 beep speaker 上的唯一数据源，同一时间只有一个 Playback
type StreamQueue struct {
	mu      sync.Mutex
	current *Playback
}

func NewStreamQueue() *StreamQueue {
	return &StreamQueue{}
}

// Current 获取当前正在播放的 Playback
func (q *StreamQueue) Current() *Playback {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current
}

// Replace 停掉旧的 Playback 再换上新的
func (q *StreamQueue) Replace(p *Playback) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current != nil && q.current != p {
		q.current.Stop()
		q.current.close()
	}
	q.current = p
}

// StopCurrent 停止当前正在播放的 stream
func (q *StreamQueue) StopCurrent() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current != nil {
		q.current.Stop()
		q.current.close()
		q.current = nil
	}
}

func (q *StreamQueue) Stream(samples [][2]float64) (n int, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.current == nil {
		silence(samples)
		return len(samples), true // 暂时无数据，不停止播放
	}

	n, ok = q.current.Stream(samples)
	if !ok {
		q.current = nil
		n = 0
	}
	silence(samples[n:])
	return len(samples), true
}

func (q *StreamQueue) Err() error { return nil }

func silence(samples [][2]float64) {
	for i := range samples {
		samples[i] = [2]float64{}
	}
}
