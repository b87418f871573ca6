package highlight

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"anan/internal/metrics"
	"anan/internal/progress"
	"anan/internal/textseg"
)

// Config 同步驱动参数
type Config struct {
	TickInterval   time.Duration   `toml:"tick_interval"`
	JumpThreshold  float64         `toml:"jump_threshold"`   // 秒，不超过该时长的音频直接跳到终态
	ShortClipDelay time.Duration   `toml:"short_clip_delay"` // 时长未知时的跳转延迟
	Progress       progress.Config `toml:"progress"`
}

func DefaultConfig() Config {
	return Config{
		TickInterval:   100 * time.Millisecond,
		JumpThreshold:  0.2,
		ShortClipDelay: 200 * time.Millisecond,
		Progress:       progress.DefaultConfig(),
	}
}

const (
	minTick = 50 * time.Millisecond
	maxTick = 100 * time.Millisecond
)

const (
	outcomeFinished  = "finished"
	outcomeCancelled = "cancelled"
	outcomeFailed    = "failed"
	outcomeShort     = "short"
)

type session struct {
	id     string
	player Player
	u      *textseg.Utterance
	mapper *progress.Mapper
	pos    progress.Position
	state  State

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Driver 播放器和计时器的唯一持有者，同一时间只有一个会话
type Driver struct {
	cfg Config
	pub Publisher

	ctl     sync.Mutex // 串行化 Start/Stop/Fail
	mu      sync.Mutex
	current *session

	state     atomic.Int32
	scrolling atomic.Bool
}

func NewDriver(cfg Config, pub Publisher) *Driver {
	if cfg.TickInterval < minTick {
		cfg.TickInterval = minTick
	}
	if cfg.TickInterval > maxTick {
		cfg.TickInterval = maxTick
	}
	return &Driver{cfg: cfg, pub: pub}
}

func (d *Driver) State() State {
	return State(d.state.Load())
}

// SetUserScrolling 用户手动滚动期间只计算不发布。会话开始或结束时复位
func (d *Driver) SetUserScrolling(scrolling bool) {
	d.scrolling.Store(scrolling)
}

func (d *Driver) UserScrolling() bool {
	return d.scrolling.Load()
}

// Session 当前会话 id，没有会话时为空
func (d *Driver) Session() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return ""
	}
	return d.current.id
}

// Start 为一段文本的播放开启新会话，先结束旧会话
func (d *Driver) Start(player Player, u *textseg.Utterance) string {
	d.ctl.Lock()
	defer d.ctl.Unlock()

	d.stopLocked()
	d.scrolling.Store(false)
	if player == nil || u == nil {
		return d.failLocked(u)
	}

	duration := player.Duration()
	s := &session{
		id:     uuid.New().String(),
		player: player,
		u:      u,
		mapper: progress.NewMapper(d.cfg.Progress, duration, u.Len()),
		pos:    progress.Position{Token: -1},
		state:  Starting,
		done:   make(chan struct{}),
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	d.mu.Lock()
	d.current = s
	d.mu.Unlock()
	d.state.Store(int32(Starting))

	logrus.WithFields(logrus.Fields{
		"session":  s.id,
		"lang":     u.Language,
		"chars":    u.Len(),
		"duration": duration,
		"alpha":    s.mapper.Alpha(),
	}).Debug("highlight: session started")

	if duration <= d.cfg.JumpThreshold {
		delay := time.Duration(duration * float64(time.Second))
		if delay <= 0 {
			delay = d.cfg.ShortClipDelay
		}
		go d.jump(ctx, s, delay)
	} else {
		go d.run(ctx, s)
	}
	return s.id
}

// Stop 同步停止当前会话，返回后不会再有该会话的 tick
func (d *Driver) Stop() {
	d.ctl.Lock()
	defer d.ctl.Unlock()
	d.stopLocked()
}

// Fail 音频不可用：不启动计时器，直接发布失败终态
func (d *Driver) Fail(u *textseg.Utterance) string {
	d.ctl.Lock()
	defer d.ctl.Unlock()
	d.stopLocked()
	return d.failLocked(u)
}

func (d *Driver) failLocked(u *textseg.Utterance) string {
	id := uuid.New().String()
	d.state.Store(int32(Stopped))
	metrics.HighlightSessionsTotal.WithLabelValues(outcomeFailed).Inc()

	log := logrus.WithField("session", id)
	if u != nil {
		log = log.WithFields(logrus.Fields{"lang": u.Language, "chars": u.Len()})
	}
	log.Warn("highlight: no playable audio")

	d.emit(Frame{Session: id, State: Stopped, Token: -1, Failed: true})
	return id
}

func (d *Driver) stopLocked() {
	d.mu.Lock()
	s := d.current
	d.current = nil
	d.mu.Unlock()
	if s == nil {
		return
	}

	s.cancel()
	<-s.done
	if stopper, ok := s.player.(Stopper); ok {
		stopper.Stop()
	}
	d.finish(s, outcomeCancelled)
	d.state.Store(int32(Stopped))
	d.scrolling.Store(false)
}

func (d *Driver) run(ctx context.Context, s *session) {
	defer close(s.done)

	ticker := time.NewTicker(d.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if d.step(s) {
				d.finish(s, outcomeFinished)
				d.release(s)
				return
			}
		}
	}
}

func (d *Driver) jump(ctx context.Context, s *session, delay time.Duration) {
	defer close(s.done)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
		d.finish(s, outcomeShort)
		d.release(s)
	}
}

// step 一次 tick，返回 true 表示播放已结束
func (d *Driver) step(s *session) bool {
	player := s.player
	if player == nil || !player.IsPlaying() {
		return true
	}

	elapsed := player.CurrentTime()
	if s.state == Starting {
		if elapsed <= 0 {
			return false
		}
		s.state = Playing
		d.state.Store(int32(Playing))
	}

	metrics.HighlightTicksTotal.Inc()
	p := s.mapper.Advance(elapsed)
	s.pos = progress.Locate(s.u, p, s.pos)

	d.publish(Frame{
		Session:  s.id,
		State:    Playing,
		Char:     s.pos.Char,
		Token:    s.pos.Token,
		Sentence: s.pos.Sentence,
		Progress: p,
	})
	return false
}

// finish 每个会话只执行一次：位置强制到终态
func (d *Driver) finish(s *session, outcome string) {
	s.once.Do(func() {
		s.state = Stopped
		s.player = nil
		pos := progress.Final(s.u)
		s.pos = pos

		metrics.HighlightSessionsTotal.WithLabelValues(outcome).Inc()
		logrus.WithFields(logrus.Fields{
			"session": s.id,
			"outcome": outcome,
		}).Debug("highlight: session ended")

		d.emit(Frame{
			Session:   s.id,
			State:     Stopped,
			Char:      pos.Char,
			Token:     pos.Token,
			Sentence:  pos.Sentence,
			Progress:  1,
			Finished:  true,
			Cancelled: outcome == outcomeCancelled,
		})
	})
}

// release 自然结束的会话从驱动中摘除
func (d *Driver) release(s *session) {
	d.mu.Lock()
	if d.current == s {
		d.current = nil
		d.state.Store(int32(Stopped))
		d.scrolling.Store(false)
	}
	d.mu.Unlock()
}

func (d *Driver) publish(frame Frame) {
	if d.scrolling.Load() {
		metrics.HighlightSuppressedTotal.Inc()
		return
	}
	d.emit(frame)
}

func (d *Driver) emit(frame Frame) {
	if d.pub != nil {
		d.pub.Publish(frame)
	}
}
