package tts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"anan/internal/metrics"
)

const speechPath = "/api/speech"

type HTTPEngineOption struct {
	BaseURL string        `toml:"base_url"`
	Model   string        `toml:"model"`
	Voice   string        `toml:"voice"`
	Speed   float64       `toml:"speed"`
	Timeout time.Duration `toml:"timeout"`
}

func DefaultHTTPEngineOption() HTTPEngineOption {
	return HTTPEngineOption{
		BaseURL: "http://localhost:8080",
		Model:   "tts-1-hd",
		Voice:   VoiceNova.Name,
		Speed:   0.88,
		Timeout: 60 * time.Second,
	}
}

type speechRequest struct {
	Model string  `json:"model"`
	Input string  `json:"input"`
	Voice string  `json:"voice"`
	Speed float64 `json:"speed"`
}

// HTTPEngine 通过后端 /api/speech 合成整段音频
type HTTPEngine struct {
	opt    HTTPEngineOption
	voice  VoiceProfile
	client *resty.Client
}

func NewHTTPEngine(opt HTTPEngineOption) (*HTTPEngine, error) {
	voice, ok := GetVoice(opt.Voice)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVoice, opt.Voice)
	}
	if opt.Speed <= 0 {
		opt.Speed = voice.SpeedOr(1.0)
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opt.BaseURL, "/")).
		SetHeader("Content-Type", "application/json")
	if opt.Timeout > 0 {
		client.SetTimeout(opt.Timeout)
	}

	return &HTTPEngine{opt: opt, voice: voice, client: client}, nil
}

func (e *HTTPEngine) Voice() VoiceProfile {
	return e.voice
}

func (e *HTTPEngine) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	start := time.Now()
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(speechRequest{
			Model: e.opt.Model,
			Input: text,
			Voice: e.voice.Name,
			Speed: e.opt.Speed,
		}).
		Post(speechPath)
	metrics.TTSRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("tts: request speech: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tts: speech backend returned %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	data := resp.Body()
	if len(data) == 0 {
		return nil, ErrNoAudio
	}
	logrus.Debugf("tts: synthesized %d bytes for %d chars in %s", len(data), len([]rune(text)), time.Since(start))
	return data, nil
}
