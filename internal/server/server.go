package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"anan/pkg/ws"
)

type Config struct {
	Addr            string        `toml:"addr"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	PingInterval    time.Duration `toml:"ping_interval"`
}

func DefaultConfig() Config {
	return Config{
		Addr:            ":8090",
		ShutdownTimeout: 5 * time.Second,
		PingInterval:    30 * time.Second,
	}
}

// Server 给远程界面用的 HTTP + WebSocket 接口
type Server struct {
	cfg      Config
	hub      *Hub
	tasks    *taskRunner
	upgrader *websocket.Upgrader
}

// New hub 必须已经作为 Publisher/Listener 接入对话
func New(cfg Config, hub *Hub, cmd Commander) *Server {
	tasks := newTaskRunner()
	hub.Attach(cmd, tasks)
	return &Server{
		cfg:   cfg,
		hub:   hub,
		tasks: tasks,
		upgrader: &websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/ask", s.command(func(r *http.Request) (Command, error) {
		var body struct {
			Question string `json:"question"`
		}
		err := decode(r, &body)
		return Command{Type: CmdAsk, Question: body.Question}, err
	}))
	mux.HandleFunc("/api/again", s.command(func(*http.Request) (Command, error) {
		return Command{Type: CmdAgain}, nil
	}))
	mux.HandleFunc("/api/stop", s.command(func(*http.Request) (Command, error) {
		return Command{Type: CmdStop}, nil
	}))
	mux.HandleFunc("/api/scroll", s.command(func(r *http.Request) (Command, error) {
		var body struct {
			Scrolling bool `json:"scrolling"`
		}
		err := decode(r, &body)
		return Command{Type: CmdScroll, Scrolling: body.Scrolling}, err
	}))
	mux.HandleFunc("/api/language", s.command(func(r *http.Request) (Command, error) {
		var body struct {
			Language string `json:"language"`
		}
		err := decode(r, &body)
		return Command{Type: CmdLanguage, Language: body.Language}, err
	}))
	return mux
}

// Run 监听直到 ctx 结束，然后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("server: listening on %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	logrus.Info("server: stopped")
	return err
}

// Close 取消后台任务并断开所有 WebSocket
func (s *Server) Close() {
	s.tasks.Close()
	s.hub.Close()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": s.hub.Clients(),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if _, err := ws.Accept(w, r, s.upgrader, ws.Config{PingInterval: s.cfg.PingInterval}, s.hub); err != nil {
		logrus.Warnf("server: %v", err)
	}
}

var errBadRequest = errors.New("invalid request body")

func (s *Server) command(parse func(r *http.Request) (Command, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, ErrorPayload{Message: "method not allowed"})
			return
		}
		cmd, err := parse(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorPayload{Message: err.Error()})
			return
		}
		if err := s.hub.dispatch(cmd); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorPayload{Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "command": cmd.Type})
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(v); err != nil {
		return errBadRequest
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("server: write response: %v", err)
	}
}
