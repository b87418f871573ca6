package chat

import (
	"context"

	"anan/internal/lang"
)

type languageKey struct{}

// WithLanguage 工具调用时按提问的语言查询
func WithLanguage(ctx context.Context, l lang.Language) context.Context {
	return context.WithValue(ctx, languageKey{}, l)
}

func LanguageFrom(ctx context.Context) lang.Language {
	if l, ok := ctx.Value(languageKey{}).(lang.Language); ok {
		return l
	}
	return lang.Chinese
}
