package tts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anan/internal/audio"
)

func pcmPlayback(t *testing.T, frames int) *Playback {
	t.Helper()
	codec := audio.CodecOption{Encoding: audio.EncodingPCM, SampleRate: 16000, Channels: 1, BitDepth: 16}
	src, err := audio.NewPCMStreamer(make([]byte, frames*2), codec)
	require.NoError(t, err)
	return newPlayback(src, src.Format(), 16000)
}

func TestPlaybackClock(t *testing.T) {
	p := pcmPlayback(t, 1600)
	assert.InDelta(t, 0.1, p.Duration(), 1e-9)
	assert.Zero(t, p.CurrentTime())
	assert.True(t, p.IsPlaying())

	buf := make([][2]float64, 800)
	n, ok := p.Stream(buf)
	require.True(t, ok)
	assert.Equal(t, 800, n)
	assert.InDelta(t, 0.05, p.CurrentTime(), 1e-9)

	_, ok = p.Stream(buf)
	require.True(t, ok)
	_, ok = p.Stream(buf)
	assert.False(t, ok)
	assert.False(t, p.IsPlaying())
	assert.InDelta(t, 0.1, p.CurrentTime(), 1e-9)

	select {
	case <-p.Done():
	default:
		t.Fatalf("playback should be released at the end")
	}
}

func TestPlaybackStop(t *testing.T) {
	p := pcmPlayback(t, 1600)
	p.Stop()
	assert.False(t, p.IsPlaying())

	n, ok := p.Stream(make([][2]float64, 10))
	assert.False(t, ok)
	assert.Zero(t, n)
	<-p.Done()
}

func TestStreamQueueReplace(t *testing.T) {
	q := NewStreamQueue()
	buf := make([][2]float64, 100)

	n, ok := q.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, 100, n, "idle queue plays silence")

	first := pcmPlayback(t, 1600)
	q.Replace(first)
	q.Stream(buf)
	assert.Greater(t, first.CurrentTime(), 0.0)

	second := pcmPlayback(t, 1600)
	q.Replace(second)
	assert.False(t, first.IsPlaying())
	assert.Same(t, second, q.Current())

	q.StopCurrent()
	assert.False(t, second.IsPlaying())
	assert.Nil(t, q.Current())
}

func TestStreamQueueDropsFinished(t *testing.T) {
	q := NewStreamQueue()
	p := pcmPlayback(t, 50)
	q.Replace(p)

	buf := make([][2]float64, 100)
	n, ok := q.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, 100, n)
	assert.Same(t, p, q.Current())

	q.Stream(buf)
	assert.Nil(t, q.Current())
	assert.False(t, p.IsPlaying())
}

func TestClockPlayer(t *testing.T) {
	now := time.Unix(0, 0)
	c := newClockPlayer(2*time.Second, func() time.Time { return now })
	assert.Equal(t, 2.0, c.Duration())
	assert.True(t, c.IsPlaying())

	now = now.Add(500 * time.Millisecond)
	assert.InDelta(t, 0.5, c.CurrentTime(), 1e-9)

	now = now.Add(5 * time.Second)
	assert.Equal(t, 2.0, c.CurrentTime())
	assert.False(t, c.IsPlaying())

	c2 := newClockPlayer(time.Second, func() time.Time { return now })
	c2.Stop()
	assert.False(t, c2.IsPlaying())
}

func TestSpeakerPlayRejectsEmptyAudio(t *testing.T) {
	s := NewSpeaker(DefaultSpeakerOption())
	_, err := s.Play(nil)
	assert.ErrorIs(t, err, audio.ErrEmptyAudio)
	assert.Nil(t, s.Current())
}

func TestSilentOutput(t *testing.T) {
	out := SilentOutput{Codec: audio.CodecOption{Encoding: audio.EncodingPCM, SampleRate: 16000, Channels: 1, BitDepth: 16}}
	player, err := out.Start(make([]byte, 32000))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, player.Duration(), 1e-9)
	assert.True(t, player.IsPlaying())

	_, err = out.Start(nil)
	assert.ErrorIs(t, err, audio.ErrEmptyAudio)
}
