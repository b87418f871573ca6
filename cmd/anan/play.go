package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"anan/internal/highlight"
	"anan/internal/lang"
	"anan/internal/termview"
	"anan/internal/textseg"
	"anan/internal/tts"
)

const clearScreen = "\033[H\033[2J"

var (
	playAudio  string
	playText   string
	playLang   string
	playSilent bool
	playWidth  int
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play an audio file and highlight its text in the terminal",
		RunE:  runPlayCmd,
	}
	cmd.Flags().StringVar(&playAudio, "audio", "", "audio file (wav, mp3 or raw pcm)")
	cmd.Flags().StringVar(&playText, "text", "", "spoken text, or @file to read it from a file")
	cmd.Flags().StringVar(&playLang, "lang", "zh", "text language: zh, en or ja")
	cmd.Flags().BoolVar(&playSilent, "silent", false, "do not use the sound card, follow a wall clock")
	cmd.Flags().IntVar(&playWidth, "width", 60, "wrap width in columns")
	_ = cmd.MarkFlagRequired("audio")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

// readText 支持 @path 形式从文件读取
func readText(v string) (string, error) {
	if !strings.HasPrefix(v, "@") {
		return v, nil
	}
	data, err := os.ReadFile(strings.TrimPrefix(v, "@"))
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	l, err := lang.Parse(playLang)
	if err != nil {
		return err
	}
	text, err := readText(playText)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(playAudio)
	if err != nil {
		return fmt.Errorf("failed to read audio: %w", err)
	}

	u := textseg.NewTokenizer(cfg.Weights, 1).Tokenize(text, l)
	view := termview.New(u, playWidth)
	out := cmd.OutOrStdout()

	done := make(chan highlight.Frame, 1)
	driver := highlight.NewDriver(cfg.Sync, highlight.PublisherFunc(func(f highlight.Frame) {
		fmt.Fprint(out, clearScreen+view.Render(f)+"\n")
		if f.Terminal() {
			select {
			case done <- f:
			default:
			}
		}
	}))

	var player highlight.Player
	if playSilent || cfg.Audio.Silent {
		player, err = tts.SilentOutput{Codec: cfg.Audio.Codec}.Start(data)
	} else {
		speaker := tts.NewSpeaker(cfg.Audio.SpeakerOption)
		defer speaker.Close()
		player, err = speaker.Start(data)
	}
	if err != nil {
		driver.Fail(u)
		return fmt.Errorf("failed to start playback: %w", err)
	}
	driver.Start(player, u)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case <-done:
	case <-sig:
		driver.Stop()
	}
	// 让声卡把缓冲里的尾音放完
	time.Sleep(cfg.Audio.Buffer)
	return nil
}
