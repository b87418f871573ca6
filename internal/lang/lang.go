package lang

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownLanguage = errors.New("unknown language")

// Language 对话语言标签，决定分词与同步策略
type Language string

const (
	Chinese  Language = "zh-TW"
	English  Language = "en-US"
	Japanese Language = "ja-JP"
)

// All 返回支持的全部语言
func All() []Language {
	return []Language{Chinese, English, Japanese}
}

// Parse 解析语言标签，支持完整标签和简写（zh/en/ja），不区分大小写
func Parse(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zh-tw", "zh", "zh-hant", "chinese":
		return Chinese, nil
	case "en-us", "en", "english":
		return English, nil
	case "ja-jp", "ja", "jp", "japanese":
		return Japanese, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
}

func (l Language) String() string {
	return string(l)
}

// IsCJK 中文与日文走全角标点断句
func (l Language) IsCJK() bool {
	return l == Chinese || l == Japanese
}

// WikiCode 维基百科子站点代码
func (l Language) WikiCode() string {
	switch l {
	case English:
		return "en"
	case Japanese:
		return "ja"
	default:
		return "zh"
	}
}
