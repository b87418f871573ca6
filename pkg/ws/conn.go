package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrClosed     = errors.New("connection closed")
	ErrBufferFull = errors.New("write buffer full")
)

// EventHandler 定义 WS 消息事件回调
type EventHandler interface {
	OnOpen(c *Conn)
	OnMessage(c *Conn, msgType int, msg []byte)
	OnError(c *Conn, err error)
	OnClose(c *Conn)
}

// Config 连接参数，零值使用默认值
type Config struct {
	Headers          http.Header
	DialTimeout      time.Duration
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	PingInterval     time.Duration // 0 表示不发 ping
	BufferSize       int
}

func (c Config) withDefaults() Config {
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 100
	}
	return c
}

// Conn 通用 WebSocket 连接，服务端和客户端共用同一套读写循环
type Conn struct {
	conn      *websocket.Conn
	handler   EventHandler
	cfg       Config
	ctx       context.Context
	cancel    context.CancelFunc
	writeCh   chan wsMessage
	closeOnce sync.Once
}

type wsMessage struct {
	msgType int
	data    []byte
}

// Dial 连接到服务端
func Dial(ctx context.Context, url string, cfg Config, handler EventHandler) (*Conn, error) {
	cfg = cfg.withDefaults()
	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(dialCtx, url, cfg.Headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial websocket: %w, status: %s", err, resp.Status)
		}
		return nil, fmt.Errorf("dial websocket: %w", err)
	}
	return start(conn, cfg, handler), nil
}

// Accept 把 HTTP 请求升级为 WebSocket 连接
func Accept(w http.ResponseWriter, r *http.Request, upgrader *websocket.Upgrader, cfg Config, handler EventHandler) (*Conn, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("upgrade websocket: %w", err)
	}
	return start(conn, cfg.withDefaults(), handler), nil
}

func start(conn *websocket.Conn, cfg Config, handler EventHandler) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Conn{
		conn:    conn,
		handler: handler,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		writeCh: make(chan wsMessage, cfg.BufferSize), // 缓冲写队列
	}

	handler.OnOpen(c)

	go c.readLoop()
	go c.writeLoop()

	return c
}

// readLoop 持续读取消息
func (c *Conn) readLoop() {
	for {
		msgType, msg, err := c.conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.handler.OnError(c, err)
			}
			c.Close()
			return
		}
		c.handler.OnMessage(c, msgType, msg)
	}
}

// writeLoop 持续写消息，按需发送 ping
func (c *Conn) writeLoop() {
	var ping <-chan time.Time
	if c.cfg.PingInterval > 0 {
		ticker := time.NewTicker(c.cfg.PingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ping:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.handler.OnError(c, err)
				c.Close()
				return
			}
		case msg := <-c.writeCh:
			if err := c.write(msg.msgType, msg.data); err != nil {
				c.handler.OnError(c, err)
				c.Close()
				return
			}
		}
	}
}

func (c *Conn) write(msgType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.conn.WriteMessage(msgType, data)
}

// send 不阻塞：缓冲满时丢弃，慢连接不拖住广播方
func (c *Conn) send(msgType int, data []byte) error {
	if c.ctx.Err() != nil {
		return ErrClosed
	}
	select {
	case c.writeCh <- wsMessage{msgType: msgType, data: data}:
		return nil
	case <-c.ctx.Done():
		return ErrClosed
	default:
		return ErrBufferFull
	}
}

func (c *Conn) SendText(data []byte) error {
	return c.send(websocket.TextMessage, data)
}

func (c *Conn) SendBinary(data []byte) error {
	return c.send(websocket.BinaryMessage, data)
}

func (c *Conn) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.SendText(data)
}

// Done 连接关闭后关闭
func (c *Conn) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Close 优雅关闭连接，确保只关闭一次
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		deadline := time.Now().Add(time.Second)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = c.conn.Close()
		c.handler.OnClose(c)
	})
}
