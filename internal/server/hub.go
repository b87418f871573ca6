package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"anan/internal/conversation"
	"anan/internal/highlight"
	"anan/internal/lang"
	"anan/internal/metrics"
	"anan/pkg/ws"
)

// Commander 界面可以发出的命令
type Commander interface {
	Ask(ctx context.Context, question string) error
	ExplainAgain(ctx context.Context) error
	Stop()
	SetUserScrolling(scrolling bool)
	SwitchLanguage(l lang.Language)
	Language() lang.Language
}

// Hub 把高亮帧和对话事件广播给所有连接的界面，同时接收界面命令
type Hub struct {
	mu      sync.RWMutex
	clients map[*ws.Conn]struct{}
	last    *UtterancePayload

	cmd   Commander
	tasks *taskRunner
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*ws.Conn]struct{})}
}

// Attach 绑定命令处理方，需在接收连接前调用
func (h *Hub) Attach(cmd Commander, tasks *taskRunner) {
	h.cmd = cmd
	h.tasks = tasks
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		logrus.Errorf("hub: marshal %s: %v", env.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if err := c.SendText(data); err != nil {
			logrus.Debugf("hub: drop %s for %s: %v", env.Type, c.RemoteAddr(), err)
		}
	}
}

// Publish 实现 highlight.Publisher
func (h *Hub) Publish(frame highlight.Frame) {
	h.broadcast(Envelope{Type: TypeHighlight, Task: frame.Session, Data: frame})
}

func (h *Hub) Asked(task, text string) {
	h.broadcast(Envelope{Type: TypeAsked, Task: task, Data: text})
}

func (h *Hub) Thinking(task string, thinking bool) {
	h.broadcast(Envelope{Type: TypeThinking, Task: task, Data: thinking})
}

func (h *Hub) Answered(reply conversation.Reply) {
	u := reply.Utterance
	payload := &UtterancePayload{
		Question:  reply.Question,
		Text:      u.Text,
		Language:  u.Language,
		Length:    u.Len(),
		Tokens:    u.Tokens,
		Sentences: u.Sentences,
		Ruby:      reply.Ruby,
	}
	h.mu.Lock()
	h.last = payload
	h.mu.Unlock()
	h.broadcast(Envelope{Type: TypeUtterance, Task: reply.Task, Data: payload})
}

func (h *Hub) LanguageChanged(l lang.Language, greeting string) {
	h.mu.Lock()
	h.last = nil
	h.mu.Unlock()
	h.broadcast(Envelope{Type: TypeLanguage, Data: LanguagePayload{Language: l, Greeting: greeting}})
}

// Failed 只给出通用的重试提示，细节留在日志里
func (h *Hub) Failed(task string, err error) {
	h.broadcast(Envelope{Type: TypeError, Task: task, Data: ErrorPayload{Message: "playback failed, please try again"}})
}

func (h *Hub) OnOpen(c *ws.Conn) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	last := h.last
	h.mu.Unlock()
	metrics.ClientsConnected.Inc()
	logrus.Infof("hub: client %s connected", c.RemoteAddr())

	hello := HelloPayload{Utterance: last}
	if h.cmd != nil {
		hello.Language = h.cmd.Language()
	}
	if err := c.SendJSON(Envelope{Type: TypeHello, Data: hello}); err != nil {
		logrus.Warnf("hub: hello to %s: %v", c.RemoteAddr(), err)
	}
}

func (h *Hub) OnMessage(c *ws.Conn, msgType int, msg []byte) {
	var cmd Command
	if err := json.Unmarshal(msg, &cmd); err != nil {
		_ = c.SendJSON(Envelope{Type: TypeError, Data: ErrorPayload{Message: "invalid command"}})
		return
	}
	if err := h.dispatch(cmd); err != nil {
		_ = c.SendJSON(Envelope{Type: TypeError, Data: ErrorPayload{Message: err.Error()}})
	}
}

func (h *Hub) OnError(c *ws.Conn, err error) {
	logrus.Warnf("hub: client %s: %v", c.RemoteAddr(), err)
}

func (h *Hub) OnClose(c *ws.Conn) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		metrics.ClientsConnected.Dec()
	}
	logrus.Infof("hub: client %s disconnected", c.RemoteAddr())
}

// Close 断开所有连接
func (h *Hub) Close() {
	h.mu.RLock()
	conns := make([]*ws.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	for _, c := range conns {
		c.Close()
	}
}
