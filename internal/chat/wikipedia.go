package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"anan/internal/metrics"
)

const (
	WikipediaToolName = "search_wikipedia"
	// DefaultWikipediaURL %s 为语言代码
	DefaultWikipediaURL = "https://%s.wikipedia.org/w/api.php"

	maxExtractRunes = 800
)

type wikiArgs struct {
	Query string `json:"query"`
}

type wikiResponse struct {
	Query struct {
		Pages map[string]wikiPage `json:"pages"`
	} `json:"query"`
}

type wikiPage struct {
	PageID  int    `json:"pageid"`
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

// WikipediaTool 查询维基百科条目摘要
type WikipediaTool struct {
	urlTemplate string
	client      *resty.Client
}

func NewWikipediaTool(urlTemplate string, timeout time.Duration) *WikipediaTool {
	if urlTemplate == "" {
		urlTemplate = DefaultWikipediaURL
	}
	client := resty.New().SetHeader("User-Agent", "anan/1.0 (children's encyclopedia)")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &WikipediaTool{urlTemplate: urlTemplate, client: client}
}

func (w *WikipediaTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: WikipediaToolName,
		Desc: "Search Wikipedia for facts about animals, places, science or history. Use it when you are not sure about a fact.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Desc:     "the article title or keyword to look up",
				Type:     schema.String,
				Required: true,
			},
		}),
	}, nil
}

func (w *WikipediaTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	l := LanguageFrom(ctx)

	var args wikiArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		metrics.ToolCallsTotal.WithLabelValues(WikipediaToolName, "bad_args").Inc()
		return "", fmt.Errorf("chat: parse %s arguments: %w", WikipediaToolName, err)
	}
	query := strings.TrimSpace(args.Query)
	if query == "" {
		metrics.ToolCallsTotal.WithLabelValues(WikipediaToolName, "bad_args").Inc()
		return l.NotFound(), nil
	}

	extract, err := w.lookup(ctx, l.WikiCode(), query)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// 查询失败不打断回答，让模型凭已有知识回答
		logrus.Warnf("chat: wikipedia lookup %q failed: %v", query, err)
		metrics.ToolCallsTotal.WithLabelValues(WikipediaToolName, "error").Inc()
		return l.NotFound(), nil
	}
	if extract == "" {
		metrics.ToolCallsTotal.WithLabelValues(WikipediaToolName, "not_found").Inc()
		return l.NotFound(), nil
	}
	metrics.ToolCallsTotal.WithLabelValues(WikipediaToolName, "ok").Inc()
	return truncateRunes(extract, maxExtractRunes), nil
}

func (w *WikipediaTool) lookup(ctx context.Context, code, query string) (string, error) {
	var result wikiResponse
	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"action":      "query",
			"format":      "json",
			"prop":        "extracts",
			"exintro":     "true",
			"explaintext": "true",
			"redirects":   "1",
			"titles":      query,
		}).
		SetResult(&result).
		Get(fmt.Sprintf(w.urlTemplate, code))
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("status %d", resp.StatusCode())
	}

	// 页面按 id 排序后取第一个有摘要的，缺失条目的 id 为负数
	ids := make([]string, 0, len(result.Query.Pages))
	for id := range result.Query.Pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if extract := strings.TrimSpace(result.Query.Pages[id].Extract); extract != "" {
			return extract, nil
		}
	}
	return "", nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
