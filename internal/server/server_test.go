package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anan/internal/conversation"
	"anan/internal/highlight"
	"anan/internal/lang"
	"anan/internal/textseg"
	"anan/pkg/ws"
)

type fakeCommander struct {
	mu        sync.Mutex
	questions []string
	agains    int
	stops     int
	scrolling bool
	language  lang.Language
}

func (f *fakeCommander) Ask(ctx context.Context, q string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions = append(f.questions, q)
	return nil
}

func (f *fakeCommander) ExplainAgain(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.agains++
	return conversation.ErrNothingToExplain
}

func (f *fakeCommander) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeCommander) SetUserScrolling(s bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrolling = s
}

func (f *fakeCommander) SwitchLanguage(l lang.Language) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.language = l
}

func (f *fakeCommander) Language() lang.Language {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.language == "" {
		return lang.Chinese
	}
	return f.language
}

type commanderState struct {
	questions []string
	agains    int
	stops     int
	scrolling bool
	language  lang.Language
}

func (f *fakeCommander) snapshot() commanderState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return commanderState{
		questions: append([]string(nil), f.questions...),
		agains:    f.agains,
		stops:     f.stops,
		scrolling: f.scrolling,
		language:  f.language,
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *Hub, *fakeCommander) {
	t.Helper()
	hub := NewHub()
	cmd := &fakeCommander{}
	s := New(DefaultConfig(), hub, cmd)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		srv.Close()
	})
	return srv, hub, cmd
}

func post(t *testing.T, url, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	data, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(data, &out)
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestMetrics(t *testing.T) {
	srv, _, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "anan_ws_clients_connected")
}

func TestCommands(t *testing.T) {
	srv, _, cmd := newTestServer(t)

	code, _ := post(t, srv.URL+"/api/ask", `{"question":"  Why is snow white? "}`)
	assert.Equal(t, http.StatusAccepted, code)
	require.Eventually(t, func() bool { return len(cmd.snapshot().questions) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "Why is snow white?", cmd.snapshot().questions[0])

	code, _ = post(t, srv.URL+"/api/again", ``)
	assert.Equal(t, http.StatusAccepted, code)
	require.Eventually(t, func() bool { return cmd.snapshot().agains == 1 }, time.Second, 10*time.Millisecond)

	code, _ = post(t, srv.URL+"/api/stop", ``)
	assert.Equal(t, http.StatusAccepted, code)
	code, _ = post(t, srv.URL+"/api/scroll", `{"scrolling":true}`)
	assert.Equal(t, http.StatusAccepted, code)
	code, _ = post(t, srv.URL+"/api/language", `{"language":"ja"}`)
	assert.Equal(t, http.StatusAccepted, code)

	snap := cmd.snapshot()
	assert.Equal(t, 1, snap.stops)
	assert.True(t, snap.scrolling)
	assert.Equal(t, lang.Japanese, snap.language)
}

func TestCommandErrors(t *testing.T) {
	srv, _, _ := newTestServer(t)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"bad json", "/api/ask", `{`, http.StatusBadRequest},
		{"empty question", "/api/ask", `{"question":"  "}`, http.StatusBadRequest},
		{"unknown language", "/api/language", `{"language":"fr"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := post(t, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.want, code)
			assert.NotEmpty(t, body["message"])
		})
	}

	resp, err := http.Get(srv.URL + "/api/stop")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

type clientHandler struct {
	mu       sync.Mutex
	received []Envelope
}

func (h *clientHandler) OnOpen(*ws.Conn) {}

func (h *clientHandler) OnMessage(_ *ws.Conn, _ int, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, env)
}

func (h *clientHandler) OnError(*ws.Conn, error) {}
func (h *clientHandler) OnClose(*ws.Conn)        {}

func (h *clientHandler) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, e := range h.received {
		out = append(out, e.Type)
	}
	return out
}

func dial(t *testing.T, srv *httptest.Server) (*ws.Conn, *clientHandler) {
	t.Helper()
	h := &clientHandler{}
	c, err := ws.Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", ws.Config{}, h)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	require.Eventually(t, func() bool { return len(h.types()) > 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, TypeHello, h.types()[0])
	return c, h
}

func TestWebSocketBroadcast(t *testing.T) {
	srv, hub, _ := newTestServer(t)
	_, h := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	u := textseg.NewTokenizer(textseg.DefaultWeightConfig(), 4).Tokenize("Hi there!", lang.English)
	hub.Thinking("t1", true)
	hub.Answered(conversation.Reply{Task: "t1", Question: "hello", Utterance: u})
	hub.Publish(highlight.Frame{Session: "s1", State: highlight.Playing, Char: 3, Token: 1})
	hub.Failed("t1", errors.New("secret detail"))

	require.Eventually(t, func() bool { return len(h.types()) == 5 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{TypeHello, TypeThinking, TypeUtterance, TypeHighlight, TypeError}, h.types())

	h.mu.Lock()
	defer h.mu.Unlock()
	utt := h.received[2].Data.(map[string]any)
	assert.Equal(t, "Hi there!", utt["text"])
	assert.Len(t, utt["tokens"], 3)

	frame := h.received[3].Data.(map[string]any)
	assert.Equal(t, "playing", frame["state"])
	assert.EqualValues(t, 3, frame["char"])

	errPayload := h.received[4].Data.(map[string]any)
	assert.NotContains(t, errPayload["message"], "secret")
}

func TestWebSocketCommands(t *testing.T) {
	srv, _, cmd := newTestServer(t)
	c, h := dial(t, srv)

	require.NoError(t, c.SendJSON(Command{Type: CmdAsk, Question: "What is a cloud?"}))
	require.NoError(t, c.SendJSON(Command{Type: CmdScroll, Scrolling: true}))
	require.NoError(t, c.SendJSON(Command{Type: "dance"}))

	require.Eventually(t, func() bool {
		s := cmd.snapshot()
		return len(s.questions) == 1 && s.scrolling
	}, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		types := h.types()
		return types[len(types)-1] == TypeError
	}, time.Second, 10*time.Millisecond)
}

func TestHelloCarriesLastUtterance(t *testing.T) {
	srv, hub, _ := newTestServer(t)
	u := textseg.NewTokenizer(textseg.DefaultWeightConfig(), 4).Tokenize("你好", lang.Chinese)
	hub.Answered(conversation.Reply{Task: "t", Utterance: u})

	_, h := dial(t, srv)
	h.mu.Lock()
	defer h.mu.Unlock()
	hello := h.received[0].Data.(map[string]any)
	require.NotNil(t, hello["utterance"])
	assert.Equal(t, "你好", hello["utterance"].(map[string]any)["text"])
	assert.Equal(t, "zh-TW", hello["language"])
}
