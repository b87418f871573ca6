package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anan/internal/chat"
	"anan/internal/highlight"
	"anan/internal/lang"
	"anan/internal/textseg"
	"anan/internal/tts"
)

type answerFunc func(ctx context.Context, l lang.Language, history []chat.Turn, question string) (string, error)

func (f answerFunc) Answer(ctx context.Context, l lang.Language, history []chat.Turn, question string) (string, error) {
	return f(ctx, l, history, question)
}

type outputFunc func(data []byte) (highlight.Player, error)

func (f outputFunc) Start(data []byte) (highlight.Player, error) {
	return f(data)
}

type stubPlayer struct{}

func (stubPlayer) CurrentTime() float64 { return 0 }
func (stubPlayer) Duration() float64    { return 3 }
func (stubPlayer) IsPlaying() bool      { return true }

type fakeDriver struct {
	mu        sync.Mutex
	started   []*textseg.Utterance
	failed    []*textseg.Utterance
	stops     int
	scrolling bool
}

func (d *fakeDriver) Start(_ highlight.Player, u *textseg.Utterance) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started = append(d.started, u)
	return fmt.Sprintf("session-%d", len(d.started))
}

func (d *fakeDriver) Fail(u *textseg.Utterance) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failed = append(d.failed, u)
	return "failed"
}

func (d *fakeDriver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stops++
}

func (d *fakeDriver) SetUserScrolling(s bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scrolling = s
}

func (d *fakeDriver) startedTexts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, u := range d.started {
		out = append(out, u.Text)
	}
	return out
}

type event struct {
	kind string
	text string
}

type recordingListener struct {
	mu      sync.Mutex
	events  []event
	replies []Reply
	errs    []error
}

func (l *recordingListener) add(kind, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event{kind, text})
}

func (l *recordingListener) Asked(_, text string) { l.add("asked", text) }

func (l *recordingListener) Thinking(_ string, thinking bool) {
	l.add("thinking", fmt.Sprint(thinking))
}

func (l *recordingListener) Answered(r Reply) {
	l.mu.Lock()
	l.replies = append(l.replies, r)
	l.mu.Unlock()
	l.add("answered", r.Utterance.Text)
}

func (l *recordingListener) LanguageChanged(lg lang.Language, greeting string) {
	l.add("language", string(lg))
}

func (l *recordingListener) Failed(_ string, err error) {
	l.mu.Lock()
	l.errs = append(l.errs, err)
	l.mu.Unlock()
	l.add("failed", err.Error())
}

func (l *recordingListener) kinds() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.events {
		out = append(out, e.kind)
	}
	return out
}

type harness struct {
	conv     *Conversation
	driver   *fakeDriver
	listener *recordingListener
}

func newHarness(answerer Answerer, synth tts.Synthesizer, out Output, l lang.Language) *harness {
	h := &harness{driver: &fakeDriver{}, listener: &recordingListener{}}
	if synth == nil {
		synth = tts.SynthesizerFunc(func(ctx context.Context, text string) ([]byte, error) {
			return []byte("audio"), nil
		})
	}
	if out == nil {
		out = outputFunc(func([]byte) (highlight.Player, error) { return stubPlayer{}, nil })
	}
	opt := DefaultOptions()
	opt.Language = l
	h.conv = New(Deps{
		Answerer:    answerer,
		Synthesizer: synth,
		Output:      out,
		Driver:      h.driver,
		Tokenizer:   textseg.NewTokenizer(textseg.DefaultWeightConfig(), 8),
		Listener:    h.listener,
	}, opt)
	return h
}

func staticAnswer(answer string) Answerer {
	return answerFunc(func(context.Context, lang.Language, []chat.Turn, string) (string, error) {
		return answer, nil
	})
}

func TestAsk(t *testing.T) {
	h := newHarness(staticAnswer("The sky is blue because of sunlight."), nil, nil, lang.English)

	require.NoError(t, h.conv.Ask(context.Background(), "  Why is the sky blue? "))
	assert.Equal(t, []string{"The sky is blue because of sunlight."}, h.driver.startedTexts())
	assert.Equal(t, []string{"asked", "thinking", "thinking", "answered"}, h.listener.kinds())
	assert.Equal(t, "true", h.listener.events[1].text)
	assert.Equal(t, "false", h.listener.events[2].text)

	history := h.conv.History()
	require.Len(t, history, 1)
	assert.Equal(t, "Why is the sky blue?", history[0].Question)

	reply := h.listener.replies[0]
	assert.Equal(t, "Why is the sky blue?", reply.Question)
	assert.Nil(t, reply.Ruby)
	assert.NotEmpty(t, reply.Utterance.Tokens)
}

func TestAskEmpty(t *testing.T) {
	h := newHarness(staticAnswer("x"), nil, nil, lang.English)
	assert.ErrorIs(t, h.conv.Ask(context.Background(), " \t"), ErrEmptyQuestion)
	assert.Empty(t, h.listener.kinds())
}

func TestAskJapaneseSpeaksPlainText(t *testing.T) {
	var spoken string
	synth := tts.SynthesizerFunc(func(ctx context.Context, text string) ([]byte, error) {
		spoken = text
		return []byte("audio"), nil
	})
	h := newHarness(staticAnswer("空(そら)は青(あお)いです。"), synth, nil, lang.Japanese)

	require.NoError(t, h.conv.Ask(context.Background(), "空は何色？"))
	assert.Equal(t, "空は青いです。", spoken)
	assert.Equal(t, []string{"空は青いです。"}, h.driver.startedTexts())

	reply := h.listener.replies[0]
	require.NotEmpty(t, reply.Ruby)
	assert.Equal(t, "そら", reply.Ruby[0].Ruby)
}

func TestAskChineseHasBopomofo(t *testing.T) {
	h := newHarness(staticAnswer("你好！"), nil, nil, lang.Chinese)
	require.NoError(t, h.conv.Ask(context.Background(), "嗨"))

	reply := h.listener.replies[0]
	require.Len(t, reply.Ruby, 3)
	assert.Equal(t, "ㄋㄧˇ", reply.Ruby[0].Ruby)
	assert.True(t, reply.Utterance.UsesWeights())
}

func TestAskSupersedesPrevious(t *testing.T) {
	entered := make(chan struct{})
	answerer := answerFunc(func(ctx context.Context, l lang.Language, _ []chat.Turn, q string) (string, error) {
		if q == "first" {
			close(entered)
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "second answer", nil
	})
	h := newHarness(answerer, nil, nil, lang.English)

	firstErr := make(chan error, 1)
	go func() { firstErr <- h.conv.Ask(context.Background(), "first") }()
	<-entered

	require.NoError(t, h.conv.Ask(context.Background(), "second"))

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("first task did not exit")
	}

	assert.Equal(t, []string{"second answer"}, h.driver.startedTexts())
	assert.Empty(t, h.listener.errs, "cancellation is silent")
	history := h.conv.History()
	require.Len(t, history, 1)
	assert.Equal(t, "second", history[0].Question)
}

func TestStopBeforePlayback(t *testing.T) {
	entered := make(chan struct{})
	var h *harness
	synth := tts.SynthesizerFunc(func(ctx context.Context, text string) ([]byte, error) {
		close(entered)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	h = newHarness(staticAnswer("answer"), synth, nil, lang.English)

	done := make(chan error, 1)
	go func() { done <- h.conv.Ask(context.Background(), "q") }()
	<-entered
	h.conv.Stop()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Empty(t, h.driver.startedTexts())
	assert.Empty(t, h.listener.errs)

	kinds := h.listener.kinds()
	assert.Equal(t, "thinking", kinds[len(kinds)-1])
}

func TestAskFailures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("answer", func(t *testing.T) {
		h := newHarness(answerFunc(func(context.Context, lang.Language, []chat.Turn, string) (string, error) {
			return "", boom
		}), nil, nil, lang.English)
		assert.ErrorIs(t, h.conv.Ask(context.Background(), "q"), boom)
		assert.Equal(t, []string{"asked", "thinking", "thinking", "failed"}, h.listener.kinds())
		assert.Empty(t, h.driver.failed)
		assert.Empty(t, h.conv.History())
	})

	t.Run("synthesis", func(t *testing.T) {
		synth := tts.SynthesizerFunc(func(context.Context, string) ([]byte, error) { return nil, boom })
		h := newHarness(staticAnswer("answer"), synth, nil, lang.English)
		assert.ErrorIs(t, h.conv.Ask(context.Background(), "q"), boom)
		assert.Len(t, h.driver.failed, 1)
		assert.Empty(t, h.driver.started)
		assert.Equal(t, []string{"asked", "thinking", "thinking", "answered", "failed"}, h.listener.kinds())
	})

	t.Run("decode", func(t *testing.T) {
		out := outputFunc(func([]byte) (highlight.Player, error) { return nil, boom })
		h := newHarness(staticAnswer("answer"), nil, out, lang.English)
		assert.ErrorIs(t, h.conv.Ask(context.Background(), "q"), boom)
		require.Len(t, h.driver.failed, 1)
		assert.Equal(t, "answer", h.driver.failed[0].Text)
		assert.Empty(t, h.driver.started)
	})
}

func TestExplainAgain(t *testing.T) {
	var prompts []string
	var histories [][]chat.Turn
	answerer := answerFunc(func(_ context.Context, _ lang.Language, history []chat.Turn, q string) (string, error) {
		prompts = append(prompts, q)
		histories = append(histories, history)
		return "answer " + q, nil
	})
	h := newHarness(answerer, nil, nil, lang.English)

	assert.ErrorIs(t, h.conv.ExplainAgain(context.Background()), ErrNothingToExplain)

	require.NoError(t, h.conv.Ask(context.Background(), "What is rain?"))
	require.NoError(t, h.conv.ExplainAgain(context.Background()))

	require.Len(t, prompts, 2)
	assert.Equal(t, lang.English.ExplainAgainPrompt(), prompts[1])
	require.Len(t, histories[1], 1)
	assert.Equal(t, "What is rain?", histories[1][0].Question)
	assert.Equal(t, lang.English.ExplainAgainLabel(), h.listener.replies[1].Question)
}

func TestHistoryIsBounded(t *testing.T) {
	h := newHarness(staticAnswer("a"), nil, nil, lang.English)
	for i := 0; i < 10; i++ {
		require.NoError(t, h.conv.Ask(context.Background(), fmt.Sprintf("q%d", i)))
	}
	history := h.conv.History()
	require.Len(t, history, DefaultOptions().MaxHistory)
	assert.Equal(t, "q9", history[len(history)-1].Question)
}

func TestSwitchLanguage(t *testing.T) {
	h := newHarness(staticAnswer("a"), nil, nil, lang.English)
	require.NoError(t, h.conv.Ask(context.Background(), "q"))
	stops := h.driver.stops

	h.conv.SwitchLanguage(lang.Japanese)
	assert.Equal(t, lang.Japanese, h.conv.Language())
	assert.Empty(t, h.conv.History())
	assert.Greater(t, h.driver.stops, stops)

	kinds := h.listener.kinds()
	assert.Equal(t, "language", kinds[len(kinds)-1])
}

func TestSetUserScrolling(t *testing.T) {
	h := newHarness(staticAnswer("a"), nil, nil, lang.English)
	h.conv.SetUserScrolling(true)
	assert.True(t, h.driver.scrolling)
}
