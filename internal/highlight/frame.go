package highlight

import (
	"fmt"

	"anan/internal/progress"
)

type State int32

const (
	Idle State = iota
	Starting
	Playing
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Playing:
		return "playing"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for _, v := range []State{Idle, Starting, Playing, Stopped} {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("highlight: unknown state %q", text)
}

// Player 播放器时钟，只被轮询
type Player interface {
	CurrentTime() float64
	Duration() float64
	IsPlaying() bool
}

// Stopper 播放器可选实现，驱动停止会话时调用
type Stopper interface {
	Stop()
}

// Frame 发布给 UI 的一次高亮状态
type Frame struct {
	Session   string  `json:"session"`
	State     State   `json:"state"`
	Char      int     `json:"char"`
	Token     int     `json:"token"`
	Sentence  int     `json:"sentence"`
	Progress  float64 `json:"progress"`
	Finished  bool    `json:"finished"`
	Cancelled bool    `json:"cancelled,omitempty"`
	Failed    bool    `json:"failed,omitempty"`
}

func (f Frame) Position() progress.Position {
	return progress.Position{Char: f.Char, Token: f.Token, Sentence: f.Sentence}
}

// Terminal 会话的最后一帧
func (f Frame) Terminal() bool {
	return f.Finished || f.Failed
}

type Publisher interface {
	Publish(Frame)
}

type PublisherFunc func(Frame)

func (f PublisherFunc) Publish(frame Frame) {
	f(frame)
}
