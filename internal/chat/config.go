package chat

import "time"

type Config struct {
	BaseURL       string        `toml:"base_url"`
	Model         string        `toml:"model"`
	APIKey        string        `toml:"api_key"`
	Timeout       time.Duration `toml:"timeout"`
	MaxIterations int           `toml:"max_iterations"`
	WebSearch     bool          `toml:"web_search"` // 额外挂载 DuckDuckGo 搜索
	WikipediaURL  string        `toml:"wikipedia_url"`
	TimeZone      string        `toml:"time_zone"` // today 工具使用的时区
}

func DefaultConfig() Config {
	return Config{
		BaseURL:       "http://localhost:8080/api",
		Model:         "gpt-4o-mini",
		Timeout:       60 * time.Second,
		MaxIterations: 10,
		WikipediaURL:  DefaultWikipediaURL,
		TimeZone:      "Asia/Taipei",
	}
}
