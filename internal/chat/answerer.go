package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino-ext/components/tool/duckduckgo/v2"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"anan/internal/lang"
	"anan/internal/metrics"
)

var (
	ErrEmptyAnswer      = errors.New("empty answer")
	ErrMaxIterations    = errors.New("max iterations reached")
	ErrEmptyQuestion    = errors.New("empty question")
	errNoToolsAvailable = errors.New("model requested tools but none are bound")
)

// Turn 一问一答，作为下一次提问的上下文
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type modelFunc func(ctx context.Context, messages []*schema.Message) (*schema.Message, error)
type toolsFunc func(ctx context.Context, msg *schema.Message) ([]*schema.Message, error)

// Answerer ChatModel -> ToolsNode（有 tool call 时）-> ChatModel 循环
type Answerer struct {
	model         modelFunc
	tools         toolsFunc
	modelName     string
	maxIterations int
}

// NewAnswerer 创建 openai ChatModel，绑定工具并编译 chain
func NewAnswerer(ctx context.Context, cfg Config, tools ...tool.BaseTool) (*Answerer, error) {
	if cfg.WebSearch {
		searchTool, err := duckduckgo.NewTextSearchTool(ctx, &duckduckgo.Config{})
		if err != nil {
			return nil, fmt.Errorf("chat: create search tool: %w", err)
		}
		tools = append(tools, searchTool)
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("chat: create chat model: %w", err)
	}

	var runTools toolsFunc
	if len(tools) > 0 {
		// 获取工具信息并绑定到 ChatModel
		toolInfos := make([]*schema.ToolInfo, 0, len(tools))
		for _, t := range tools {
			info, err := t.Info(ctx)
			if err != nil {
				return nil, fmt.Errorf("chat: tool info: %w", err)
			}
			toolInfos = append(toolInfos, info)
		}
		if err := chatModel.BindTools(toolInfos); err != nil {
			return nil, fmt.Errorf("chat: bind tools: %w", err)
		}

		toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{Tools: tools})
		if err != nil {
			return nil, fmt.Errorf("chat: create tools node: %w", err)
		}
		runTools = func(ctx context.Context, msg *schema.Message) ([]*schema.Message, error) {
			return toolsNode.Invoke(ctx, msg)
		}
	}

	chain := compose.NewChain[[]*schema.Message, *schema.Message]()
	chain.AppendChatModel(chatModel, compose.WithNodeName("chat_model"))
	agent, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("chat: compile chain: %w", err)
	}

	return newAnswerer(func(ctx context.Context, messages []*schema.Message) (*schema.Message, error) {
		return agent.Invoke(ctx, messages)
	}, runTools, cfg), nil
}

func newAnswerer(model modelFunc, tools toolsFunc, cfg Config) *Answerer {
	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = 10
	}
	return &Answerer{
		model:         model,
		tools:         tools,
		modelName:     cfg.Model,
		maxIterations: maxIterations,
	}
}

// Messages 系统提示词 + 历史 + 本次问题
func Messages(l lang.Language, history []Turn, question string) []*schema.Message {
	messages := make([]*schema.Message, 0, 2+2*len(history))
	messages = append(messages, schema.SystemMessage(l.SystemPrompt()))
	for _, turn := range history {
		messages = append(messages,
			schema.UserMessage(turn.Question),
			schema.AssistantMessage(turn.Answer, nil),
		)
	}
	return append(messages, schema.UserMessage(question))
}

// Answer 返回模型的最终文本回答
func (a *Answerer) Answer(ctx context.Context, l lang.Language, history []Turn, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}

	start := time.Now()
	defer func() {
		metrics.ChatRequestDuration.WithLabelValues(a.modelName).Observe(time.Since(start).Seconds())
	}()

	ctx = WithLanguage(ctx, l)
	msg, err := a.invokeAgent(ctx, Messages(l, history, question))
	if err != nil {
		return "", err
	}

	answer := strings.TrimSpace(msg.Content)
	if answer == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}

// invokeAgent 手动实现 agent 循环逻辑
func (a *Answerer) invokeAgent(ctx context.Context, messages []*schema.Message) (*schema.Message, error) {
	for i := 0; i < a.maxIterations; i++ {
		chatMsg, err := a.model(ctx, messages)
		if err != nil {
			return nil, fmt.Errorf("chat: model invoke failed: %w", err)
		}

		if chatMsg.Role != schema.Assistant || len(chatMsg.ToolCalls) == 0 {
			return chatMsg, nil
		}
		if a.tools == nil {
			return nil, errNoToolsAvailable
		}

		for _, call := range chatMsg.ToolCalls {
			logrus.Debugf("chat: tool call %s(%s)", call.Function.Name, call.Function.Arguments)
		}
		toolResp, err := a.tools(ctx, chatMsg)
		if err != nil {
			return nil, fmt.Errorf("chat: tools invoke failed: %w", err)
		}

		// 将 ChatModel 和 ToolsNode 的响应都添加到消息历史，让 ChatModel 处理 tool 的结果
		messages = append(messages, chatMsg)
		messages = append(messages, toolResp...)
	}
	return nil, ErrMaxIterations
}
