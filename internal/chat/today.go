package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"anan/internal/lang"
	"anan/internal/metrics"
)

const TodayToolName = "get_today"

var weekdayNames = map[lang.Language][7]string{
	lang.Chinese:  {"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"},
	lang.Japanese: {"日曜日", "月曜日", "火曜日", "水曜日", "木曜日", "金曜日", "土曜日"},
}

type todayResult struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Day      int    `json:"day"`
	Weekday  string `json:"weekday"`
	TimeZone string `json:"timezone"`
}

// TodayTool 回答“今天几号、星期几”这类问题
type TodayTool struct {
	loc *time.Location
	now func() time.Time
}

// NewTodayTool 时区无法加载时退回 UTC+8
func NewTodayTool(timeZone string) *TodayTool {
	loc, err := time.LoadLocation(timeZone)
	if err != nil || timeZone == "" {
		logrus.Warnf("chat: time zone %q unavailable, using UTC+8", timeZone)
		loc = time.FixedZone("UTC+8", 8*3600)
	}
	return &TodayTool{loc: loc, now: time.Now}
}

var _ tool.InvokableTool = (*TodayTool)(nil)

func (t *TodayTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: TodayToolName,
		Desc: "Get today's date, the current time and the day of the week. Use it for questions about today, dates, weekdays or the current time.",
	}, nil
}

func (t *TodayTool) InvokableRun(ctx context.Context, _ string, _ ...tool.Option) (string, error) {
	now := t.now().In(t.loc)
	weekday := now.Weekday().String()
	if names, ok := weekdayNames[LanguageFrom(ctx)]; ok {
		weekday = names[now.Weekday()]
	}

	data, err := json.Marshal(todayResult{
		Date:     now.Format("2006-01-02"),
		Time:     now.Format("15:04"),
		Year:     now.Year(),
		Month:    int(now.Month()),
		Day:      now.Day(),
		Weekday:  weekday,
		TimeZone: t.loc.String(),
	})
	if err != nil {
		metrics.ToolCallsTotal.WithLabelValues(TodayToolName, "error").Inc()
		return "", fmt.Errorf("chat: encode today: %w", err)
	}
	metrics.ToolCallsTotal.WithLabelValues(TodayToolName, "ok").Inc()
	return string(data), nil
}
