package factory

import (
	"fmt"
	"time"

	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/config"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/search"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/searxng"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/tavily"
)

// NewSearcher 根据配置创建搜索 API 实例；html 抓取方式不走 Searcher
func NewSearcher(cfg config.SearchConfig, timeout time.Duration) (search.Searcher, error) {
	switch cfg.Provider {
	case "tavily":
		if cfg.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return tavily.NewClient(cfg.Tavily.APIKey, tavily.WithTimeout(timeout)), nil

	case "searxng":
		if cfg.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.SearXNG.BaseURL, cfg.SearXNG.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", cfg.Provider)
	}
}
