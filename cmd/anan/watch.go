package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"anan/internal/highlight"
	"anan/internal/server"
	"anan/internal/termview"
	"anan/internal/textseg"
	"anan/pkg/ws"
)

var (
	watchURL   string
	watchWidth int
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Connect to a running server and follow the highlight in the terminal",
		RunE:  runWatchCmd,
	}
	cmd.Flags().StringVar(&watchURL, "url", "", "websocket url (default ws://<server.addr>/ws)")
	cmd.Flags().IntVar(&watchWidth, "width", 60, "wrap width in columns")
	return cmd
}

// watcher 把服务端推送的回答和高亮帧画到终端
type watcher struct {
	out   io.Writer
	width int

	mu   sync.Mutex
	view *termview.View
}

func (w *watcher) OnOpen(*ws.Conn) {
	fmt.Fprintln(w.out, "connected")
}

func (w *watcher) OnMessage(_ *ws.Conn, _ int, msg []byte) {
	var env struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		logrus.Warnf("watch: bad message: %v", err)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch env.Type {
	case server.TypeUtterance:
		var p server.UtterancePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return
		}
		u := textseg.NewTokenizer(cfg.Weights, 1).Tokenize(p.Text, p.Language)
		w.view = termview.New(u, w.width)
		fmt.Fprintf(w.out, "%s> %s\n", clearScreen, p.Question)
	case server.TypeHighlight:
		var f highlight.Frame
		if err := json.Unmarshal(env.Data, &f); err != nil || w.view == nil {
			return
		}
		fmt.Fprint(w.out, clearScreen+w.view.Render(f)+"\n")
	case server.TypeThinking:
		if strings.TrimSpace(string(env.Data)) == "true" {
			fmt.Fprintln(w.out, "thinking...")
		}
	case server.TypeLanguage:
		var p server.LanguagePayload
		if err := json.Unmarshal(env.Data, &p); err == nil {
			fmt.Fprintf(w.out, "%s[%s] %s\n", clearScreen, p.Language, p.Greeting)
		}
	case server.TypeError:
		var p server.ErrorPayload
		if err := json.Unmarshal(env.Data, &p); err == nil {
			fmt.Fprintf(w.out, "error: %s\n", p.Message)
		}
	}
}

func (w *watcher) OnError(_ *ws.Conn, err error) {
	logrus.Warnf("watch: %v", err)
}

func (w *watcher) OnClose(*ws.Conn) {
	fmt.Fprintln(w.out, "disconnected")
}

func runWatchCmd(cmd *cobra.Command, _ []string) error {
	url := watchURL
	if url == "" {
		host := cfg.Server.Addr
		if strings.HasPrefix(host, ":") {
			host = "localhost" + host
		}
		url = "ws://" + host + "/ws"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := ws.Dial(ctx, url, ws.Config{}, &watcher{out: cmd.OutOrStdout(), width: watchWidth})
	if err != nil {
		return err
	}
	defer conn.Close()

	select {
	case <-ctx.Done():
	case <-conn.Done():
	}
	return nil
}
