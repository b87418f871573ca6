package server

import (
	"anan/internal/lang"
	"anan/internal/ruby"
	"anan/internal/textseg"
)

// 服务端推送的消息类型
const (
	TypeHello     = "hello"
	TypeAsked     = "asked"
	TypeThinking  = "thinking"
	TypeUtterance = "utterance"
	TypeHighlight = "highlight"
	TypeLanguage  = "language"
	TypeError     = "error"
)

// 客户端命令类型，与 HTTP 接口一一对应
const (
	CmdAsk      = "ask"
	CmdAgain    = "again"
	CmdStop     = "stop"
	CmdScroll   = "scroll"
	CmdLanguage = "language"
)

type Envelope struct {
	Type string `json:"type"`
	Task string `json:"task,omitempty"`
	Data any    `json:"data,omitempty"`
}

type Command struct {
	Type      string `json:"type"`
	Question  string `json:"question,omitempty"`
	Scrolling bool   `json:"scrolling,omitempty"`
	Language  string `json:"language,omitempty"`
}

type UtterancePayload struct {
	Question  string          `json:"question"`
	Text      string          `json:"text"`
	Language  lang.Language   `json:"language"`
	Length    int             `json:"length"`
	Tokens    []textseg.Token `json:"tokens,omitempty"`
	Sentences []string        `json:"sentences"`
	Ruby      []ruby.Segment  `json:"ruby,omitempty"`
}

type LanguagePayload struct {
	Language lang.Language `json:"language"`
	Greeting string        `json:"greeting"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type HelloPayload struct {
	Language  lang.Language     `json:"language"`
	Utterance *UtterancePayload `json:"utterance,omitempty"`
}
