package chat

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anan/internal/lang"
)

func TestTodayTool(t *testing.T) {
	tl := NewTodayTool("UTC")
	tl.now = func() time.Time { return time.Date(2024, time.March, 5, 9, 30, 0, 0, time.UTC) }

	info, err := tl.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TodayToolName, info.Name)

	tests := []struct {
		name    string
		lang    lang.Language
		weekday string
	}{
		{"chinese", lang.Chinese, "星期二"},
		{"english", lang.English, "Tuesday"},
		{"japanese", lang.Japanese, "火曜日"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tl.InvokableRun(WithLanguage(context.Background(), tt.lang), "{}")
			require.NoError(t, err)

			var got todayResult
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Equal(t, "2024-03-05", got.Date)
			assert.Equal(t, "09:30", got.Time)
			assert.Equal(t, tt.weekday, got.Weekday)
			assert.Equal(t, "UTC", got.TimeZone)
		})
	}
}

func TestTodayToolBadZone(t *testing.T) {
	tl := NewTodayTool("Nowhere/Atlantis")
	assert.Equal(t, "UTC+8", tl.loc.String())
}
