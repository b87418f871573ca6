package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"anan/internal/conversation"
	"anan/internal/lang"
)

var errUnknownCommand = errors.New("unknown command")

// taskRunner 在后台执行耗时命令，关闭时取消并等待
type taskRunner struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newTaskRunner() *taskRunner {
	ctx, cancel := context.WithCancel(context.Background())
	return &taskRunner{ctx: ctx, cancel: cancel}
}

func (r *taskRunner) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		err := fn(r.ctx)
		switch {
		case err == nil, errors.Is(err, context.Canceled):
		case errors.Is(err, conversation.ErrNothingToExplain):
			logrus.Infof("server: %s: %v", name, err)
		default:
			logrus.Warnf("server: %s: %v", name, err)
		}
	}()
}

func (r *taskRunner) Close() {
	r.cancel()
	r.wg.Wait()
}

// dispatch 执行一条界面命令，WebSocket 和 HTTP 共用
func (h *Hub) dispatch(cmd Command) error {
	if h.cmd == nil {
		return errors.New("no conversation attached")
	}
	switch cmd.Type {
	case CmdAsk:
		question := strings.TrimSpace(cmd.Question)
		if question == "" {
			return conversation.ErrEmptyQuestion
		}
		h.tasks.Go(CmdAsk, func(ctx context.Context) error {
			return h.cmd.Ask(ctx, question)
		})
	case CmdAgain:
		h.tasks.Go(CmdAgain, h.cmd.ExplainAgain)
	case CmdStop:
		h.cmd.Stop()
	case CmdScroll:
		h.cmd.SetUserScrolling(cmd.Scrolling)
	case CmdLanguage:
		l, err := lang.Parse(cmd.Language)
		if err != nil {
			return err
		}
		h.cmd.SwitchLanguage(l)
	default:
		return fmt.Errorf("%w: %q", errUnknownCommand, cmd.Type)
	}
	return nil
}
