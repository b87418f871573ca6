package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"anan/internal/chat"
	"anan/internal/highlight"
	"anan/internal/lang"
	"anan/internal/metrics"
	"anan/internal/ruby"
	"anan/internal/textseg"
	"anan/internal/tts"
)

var (
	ErrEmptyQuestion    = errors.New("empty question")
	ErrNothingToExplain = errors.New("nothing to explain again")
)

type Answerer interface {
	Answer(ctx context.Context, l lang.Language, history []chat.Turn, question string) (string, error)
}

// Output 把音频字节变成正在播放的播放器
type Output interface {
	Start(data []byte) (highlight.Player, error)
}

type Driver interface {
	Start(player highlight.Player, u *textseg.Utterance) string
	Fail(u *textseg.Utterance) string
	Stop()
	SetUserScrolling(scrolling bool)
}

// Reply 一次回答：朗读并高亮的文本和注音
type Reply struct {
	Task      string             `json:"task"`
	Question  string             `json:"question"`
	Utterance *textseg.Utterance `json:"-"`
	Ruby      []ruby.Segment     `json:"ruby,omitempty"`
}

// Listener UI 事件。回调在 Conversation 内部锁中执行，不能再调用 Conversation
type Listener interface {
	Asked(task, text string)
	Thinking(task string, thinking bool)
	Answered(reply Reply)
	LanguageChanged(l lang.Language, greeting string)
	Failed(task string, err error)
}

type Options struct {
	Language   lang.Language `toml:"language"`
	MaxHistory int           `toml:"max_history"`
}

func DefaultOptions() Options {
	return Options{Language: lang.Chinese, MaxHistory: 6}
}

type Deps struct {
	Answerer    Answerer
	Synthesizer tts.Synthesizer
	Output      Output
	Driver      Driver
	Tokenizer   *textseg.Tokenizer
	Listener    Listener
}

// Conversation 同一时间最多一个"回答并朗读"任务，新问题会取消旧任务
type Conversation struct {
	deps Deps
	opt  Options

	mu      sync.Mutex
	lang    lang.Language
	history []chat.Turn
	gen     uint64
	cancel  context.CancelFunc
	running string // 进行中任务的 id
}

func New(deps Deps, opt Options) *Conversation {
	if opt.Language == "" {
		opt.Language = lang.Chinese
	}
	if opt.MaxHistory <= 0 {
		opt.MaxHistory = 6
	}
	if deps.Listener == nil {
		deps.Listener = NopListener{}
	}
	return &Conversation{deps: deps, opt: opt, lang: opt.Language}
}

func (c *Conversation) Language() lang.Language {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lang
}

func (c *Conversation) History() []chat.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]chat.Turn, len(c.history))
	copy(out, c.history)
	return out
}

// Ask 回答问题并朗读，返回时播放已经开始（或失败、被取消）
func (c *Conversation) Ask(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return ErrEmptyQuestion
	}
	return c.run(ctx, question, question)
}

// ExplainAgain 请模型用更简单的方式把上一个回答再讲一遍
func (c *Conversation) ExplainAgain(ctx context.Context) error {
	c.mu.Lock()
	l := c.lang
	empty := len(c.history) == 0
	c.mu.Unlock()
	if empty {
		return ErrNothingToExplain
	}
	return c.run(ctx, l.ExplainAgainPrompt(), l.ExplainAgainLabel())
}

// SwitchLanguage 停止当前任务，清空上下文，并给出新语言的开场白
func (c *Conversation) SwitchLanguage(l lang.Language) {
	c.mu.Lock()
	c.abortLocked()
	c.lang = l
	c.history = nil
	c.deps.Driver.Stop()
	c.deps.Listener.LanguageChanged(l, l.Greeting())
	c.mu.Unlock()
	logrus.Infof("conversation: language switched to %s", l)
}

// Stop 取消进行中的任务并停止朗读
func (c *Conversation) Stop() {
	c.mu.Lock()
	task := c.abortLocked()
	c.deps.Driver.Stop()
	if task != "" {
		c.deps.Listener.Thinking(task, false)
	}
	c.mu.Unlock()
}

func (c *Conversation) SetUserScrolling(scrolling bool) {
	c.deps.Driver.SetUserScrolling(scrolling)
}

type task struct {
	id     string
	gen    uint64
	lang   lang.Language
	prompt string
	label  string
}

// abortLocked 取消当前任务，返回被取消任务的 id
func (c *Conversation) abortLocked() string {
	c.gen++
	if c.cancel == nil {
		return ""
	}
	c.cancel()
	c.cancel = nil
	return c.running
}

func (c *Conversation) run(parent context.Context, prompt, label string) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	c.mu.Lock()
	c.abortLocked()
	t := task{
		id:     uuid.New().String(),
		gen:    c.gen,
		lang:   c.lang,
		prompt: prompt,
		label:  label,
	}
	history := make([]chat.Turn, len(c.history))
	copy(history, c.history)
	c.cancel = cancel
	c.running = t.id
	c.deps.Driver.Stop()
	c.deps.Listener.Asked(t.id, label)
	c.deps.Listener.Thinking(t.id, true)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.gen == t.gen {
			c.cancel = nil
			c.running = ""
		}
		c.mu.Unlock()
	}()

	log := logrus.WithFields(logrus.Fields{"task": t.id, "lang": t.lang})

	if ctx.Err() != nil {
		return c.cancelled(ctx, t, log)
	}
	answer, err := c.deps.Answerer.Answer(ctx, t.lang, history, prompt)
	if ctx.Err() != nil {
		return c.cancelled(ctx, t, log)
	}
	if err != nil {
		return c.fail(t, nil, err, log)
	}

	reply := c.reply(t, answer)
	c.remember(t, prompt, answer)

	if ctx.Err() != nil {
		return c.cancelled(ctx, t, log)
	}
	data, err := c.deps.Synthesizer.Synthesize(ctx, reply.Utterance.Text)
	if ctx.Err() != nil {
		return c.cancelled(ctx, t, log)
	}
	if err != nil {
		return c.fail(t, &reply, err, log)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != t.gen || ctx.Err() != nil {
		return c.cancelled(ctx, t, log)
	}
	player, err := c.deps.Output.Start(data)
	if err != nil {
		return c.failLocked(t, &reply, err, log)
	}
	c.deps.Listener.Thinking(t.id, false)
	c.deps.Listener.Answered(reply)
	session := c.deps.Driver.Start(player, reply.Utterance)

	metrics.QuestionsTotal.WithLabelValues("answered").Inc()
	log.WithField("session", session).Infof("conversation: speaking %d chars", reply.Utterance.Len())
	return nil
}

// reply 日文去掉振假名后朗读，注音单独给界面；中文附带拼音
func (c *Conversation) reply(t task, answer string) Reply {
	spoken := answer
	var segments []ruby.Segment
	switch t.lang {
	case lang.Japanese:
		segments = ruby.ParseFurigana(answer)
		spoken = ruby.Plain(segments)
	case lang.Chinese:
		segments = ruby.Bopomofo(answer)
	}
	return Reply{
		Task:      t.id,
		Question:  t.label,
		Utterance: c.deps.Tokenizer.Tokenize(spoken, t.lang),
		Ruby:      segments,
	}
}

func (c *Conversation) remember(t task, prompt, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != t.gen || c.lang != t.lang {
		return
	}
	c.history = append(c.history, chat.Turn{Question: prompt, Answer: answer})
	if len(c.history) > c.opt.MaxHistory {
		c.history = c.history[len(c.history)-c.opt.MaxHistory:]
	}
}

// cancelled 被取消的任务静默退出，不产生任何界面事件
func (c *Conversation) cancelled(ctx context.Context, t task, log *logrus.Entry) error {
	metrics.QuestionsTotal.WithLabelValues("cancelled").Inc()
	log.Debug("conversation: task cancelled")
	if err := ctx.Err(); err != nil {
		return err
	}
	return context.Canceled
}

func (c *Conversation) fail(t task, reply *Reply, err error, log *logrus.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != t.gen {
		return c.cancelled(context.Background(), t, log)
	}
	return c.failLocked(t, reply, err, log)
}

func (c *Conversation) failLocked(t task, reply *Reply, err error, log *logrus.Entry) error {
	metrics.QuestionsTotal.WithLabelValues("failed").Inc()
	log.Errorf("conversation: task failed: %v", err)

	c.deps.Listener.Thinking(t.id, false)
	if reply != nil {
		c.deps.Listener.Answered(*reply)
		c.deps.Driver.Fail(reply.Utterance)
	}
	c.deps.Listener.Failed(t.id, err)
	return err
}
