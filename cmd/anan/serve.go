package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"anan/internal/chat"
	"anan/internal/conversation"
	"anan/internal/highlight"
	"anan/internal/server"
	"anan/internal/textseg"
	"anan/internal/tts"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP/WebSocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// pipeline 一次对话所需的全部组件
type pipeline struct {
	conv   *conversation.Conversation
	driver *highlight.Driver
	close  func()
}

// buildPipeline 按配置组装 chat、tts、输出和高亮驱动
func buildPipeline(ctx context.Context, pub highlight.Publisher, listener conversation.Listener) (*pipeline, error) {
	engine, err := tts.NewHTTPEngine(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("failed to create tts engine: %w", err)
	}

	answerer, err := chat.NewAnswerer(ctx, cfg.Chat,
		chat.NewWikipediaTool(cfg.Chat.WikipediaURL, cfg.Chat.Timeout),
		chat.NewTodayTool(cfg.Chat.TimeZone),
	)
	if err != nil {
		return nil, err
	}

	closeOutput := func() {}
	var output conversation.Output
	if cfg.Audio.Silent {
		output = tts.SilentOutput{Codec: cfg.Audio.Codec}
	} else {
		speaker := tts.NewSpeaker(cfg.Audio.SpeakerOption)
		closeOutput = speaker.Close
		output = speaker
	}

	driver := highlight.NewDriver(cfg.Sync, pub)
	conv := conversation.New(conversation.Deps{
		Answerer:    answerer,
		Synthesizer: tts.NewCachedSynthesizer(engine, cfg.Cache.AudioTTL),
		Output:      output,
		Driver:      driver,
		Tokenizer:   textseg.NewTokenizer(cfg.Weights, cfg.Cache.Utterances),
		Listener:    listener,
	}, cfg.Conversation)

	logrus.WithFields(logrus.Fields{
		"model":    cfg.Chat.Model,
		"voice":    engine.Voice().Name,
		"language": conv.Language(),
		"silent":   cfg.Audio.Silent,
	}).Info("anan: pipeline ready")

	return &pipeline{
		conv:   conv,
		driver: driver,
		close: func() {
			conv.Stop()
			closeOutput()
		},
	}, nil
}

func runServe(ctx context.Context) error {
	hub := server.NewHub()
	p, err := buildPipeline(ctx, hub, hub)
	if err != nil {
		return err
	}
	defer p.close()

	return server.New(cfg.Server, hub, p.conv).Run(ctx)
}
