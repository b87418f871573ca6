package chat

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anan/internal/lang"
)

func wikiServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *WikipediaTool {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)
	return NewWikipediaTool(srv.URL+"/%s/w/api.php", 0)
}

func writeExtract(w http.ResponseWriter, extract string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	fmt.Fprintf(w, `{"batchcomplete":"","query":{"pages":{"123":{"pageid":123,"ns":0,"title":"T","extract":%q}}}}`, extract)
}

func TestWikipediaToolInfo(t *testing.T) {
	info, err := NewWikipediaTool("", 0).Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, WikipediaToolName, info.Name)
	assert.NotNil(t, info.ParamsOneOf)
}

func TestWikipediaToolLookup(t *testing.T) {
	var path, titles, prop string
	w := wikiServer(t, func(rw http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		titles = r.URL.Query().Get("titles")
		prop = r.URL.Query().Get("prop")
		writeExtract(rw, "The Moon is Earth's only natural satellite.")
	})

	ctx := WithLanguage(context.Background(), lang.English)
	got, err := w.InvokableRun(ctx, `{"query":"Moon"}`)
	require.NoError(t, err)
	assert.Equal(t, "The Moon is Earth's only natural satellite.", got)
	assert.Equal(t, "/en/w/api.php", path)
	assert.Equal(t, "Moon", titles)
	assert.Equal(t, "extracts", prop)
}

func TestWikipediaToolTruncates(t *testing.T) {
	long := strings.Repeat("月", 1000)
	w := wikiServer(t, func(rw http.ResponseWriter, r *http.Request) {
		writeExtract(rw, long)
	})

	got, err := w.InvokableRun(WithLanguage(context.Background(), lang.Chinese), `{"query":"月亮"}`)
	require.NoError(t, err)
	assert.Equal(t, maxExtractRunes, utf8.RuneCountInString(got))
}

func TestWikipediaToolNotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler func(w http.ResponseWriter, r *http.Request)
	}{
		{"missing page", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"query":{"pages":{"-1":{"ns":0,"title":"Zzz","missing":""}}}}`)
		}},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusBadGateway)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := wikiServer(t, tt.handler)
			got, err := w.InvokableRun(WithLanguage(context.Background(), lang.Japanese), `{"query":"Zzz"}`)
			require.NoError(t, err)
			assert.Equal(t, lang.Japanese.NotFound(), got)
		})
	}
}

func TestWikipediaToolBadArgs(t *testing.T) {
	w := NewWikipediaTool("", 0)
	_, err := w.InvokableRun(context.Background(), `not json`)
	assert.Error(t, err)

	got, err := w.InvokableRun(context.Background(), `{"query":"  "}`)
	require.NoError(t, err)
	assert.Equal(t, lang.Chinese.NotFound(), got)
}

func TestWikipediaToolInToolsNode(t *testing.T) {
	w := wikiServer(t, func(rw http.ResponseWriter, r *http.Request) {
		writeExtract(rw, "Pandas eat bamboo.")
	})

	ctx := context.Background()
	node, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{Tools: []tool.BaseTool{w}})
	require.NoError(t, err)

	out, err := node.Invoke(WithLanguage(ctx, lang.English), toolCallMessage(WikipediaToolName, `{"query":"Panda"}`))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, schema.Tool, out[0].Role)
	assert.Equal(t, "Pandas eat bamboo.", out[0].Content)
	assert.Equal(t, "call_1", out[0].ToolCallID)
}
