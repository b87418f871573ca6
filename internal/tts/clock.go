package tts

import (
	"sync"
	"time"
)

// ClockPlayer 不发声，只按墙钟走完已知时长。用于无声卡环境
type ClockPlayer struct {
	mu       sync.Mutex
	start    time.Time
	duration time.Duration
	stopped  bool
	now      func() time.Time
}

func NewClockPlayer(duration time.Duration) *ClockPlayer {
	return newClockPlayer(duration, time.Now)
}

func newClockPlayer(duration time.Duration, now func() time.Time) *ClockPlayer {
	return &ClockPlayer{start: now(), duration: duration, now: now}
}

func (c *ClockPlayer) elapsed() time.Duration {
	e := c.now().Sub(c.start)
	if e > c.duration {
		return c.duration
	}
	return e
}

func (c *ClockPlayer) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed().Seconds()
}

func (c *ClockPlayer) Duration() float64 {
	return c.duration.Seconds()
}

func (c *ClockPlayer) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.stopped && c.elapsed() < c.duration
}

func (c *ClockPlayer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
}
