package conversation

import "anan/internal/lang"

type NopListener struct{}

func (NopListener) Asked(string, string) {}

func (NopListener) Thinking(string, bool) {}

func (NopListener) Answered(Reply) {}

func (NopListener) LanguageChanged(lang.Language, string) {}

func (NopListener) Failed(string, error) {}
