package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"anan/internal/conversation"
	"anan/internal/highlight"
	"anan/internal/lang"
	"anan/internal/termview"
)

const askHelp = `commands:
  :again        explain the last answer again
  :stop         stop speaking
  :lang <code>  switch language (zh, en, ja)
  :quit         exit`

var askWidth int

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Ask questions from the terminal and follow the answer as it is read aloud",
		RunE:  runAskCmd,
	}
	cmd.Flags().IntVar(&askWidth, "width", 60, "wrap width in columns")
	return cmd
}

// terminal 终端版 UI：既是 Listener 也是高亮 Publisher
type terminal struct {
	out   io.Writer
	width int

	mu   sync.Mutex
	view *termview.View
}

var (
	_ conversation.Listener = (*terminal)(nil)
	_ highlight.Publisher   = (*terminal)(nil)
)

func (t *terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

func (t *terminal) Asked(_ string, text string) {
	t.printf("> %s\n", text)
}

func (t *terminal) Thinking(_ string, thinking bool) {
	if thinking {
		t.printf("thinking...\n")
	}
}

func (t *terminal) Answered(reply conversation.Reply) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.view = termview.New(reply.Utterance, t.width)
}

func (t *terminal) LanguageChanged(l lang.Language, greeting string) {
	t.printf("[%s] %s\n", l, greeting)
}

func (t *terminal) Failed(_ string, err error) {
	t.printf("error: %v\n", err)
}

func (t *terminal) Publish(f highlight.Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.view == nil {
		return
	}
	fmt.Fprint(t.out, clearScreen+t.view.Render(f)+"\n")
}

func runAskCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	term := &terminal{out: cmd.OutOrStdout(), width: askWidth}
	p, err := buildPipeline(ctx, term, term)
	if err != nil {
		return err
	}
	defer p.close()

	l := p.conv.Language()
	term.printf("[%s] %s\n%s\n", l, l.Greeting(), askHelp)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := handleAskLine(ctx, p.conv, term, &wg, strings.TrimSpace(line)); quit {
				return nil
			}
		}
	}
}

// handleAskLine 返回 true 表示退出
func handleAskLine(ctx context.Context, conv *conversation.Conversation, term *terminal, wg *sync.WaitGroup, line string) bool {
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ":") {
		runAsync(wg, func() error { return conv.Ask(ctx, line) })
		return false
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true
	case ":again":
		runAsync(wg, func() error { return conv.ExplainAgain(ctx) })
	case ":stop":
		conv.Stop()
	case ":lang":
		if len(fields) < 2 {
			term.printf("usage: :lang <zh|en|ja>\n")
			return false
		}
		l, err := lang.Parse(fields[1])
		if err != nil {
			term.printf("error: %v\n", err)
			return false
		}
		conv.SwitchLanguage(l)
	default:
		term.printf("%s\n", askHelp)
	}
	return false
}

func runAsync(wg *sync.WaitGroup, fn func() error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := fn(); err != nil && !errors.Is(err, context.Canceled) {
			logrus.Debugf("ask: %v", err)
		}
	}()
}
