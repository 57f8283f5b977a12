package source

import (
	"fmt"

	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/config"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/search/factory"
)

// Build 按配置的固定顺序（search -> review -> social）创建已启用的数据源
func Build(cfg *config.Config) ([]Adapter, error) {
	var adapters []Adapter
	for _, name := range cfg.EnabledSources() {
		a, err := newAdapter(name, cfg)
		if err != nil {
			return nil, fmt.Errorf("init source %s: %w", name, err)
		}
		adapters = append(adapters, a)
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no source enabled")
	}
	return adapters, nil
}

func newAdapter(name string, cfg *config.Config) (Adapter, error) {
	switch name {
	case config.SourceSearch:
		if cfg.Search.Provider == "html" {
			return NewHTMLAdapter(name, cfg.Search.HTML, cfg.HTTPTimeout)
		}
		searcher, err := factory.NewSearcher(cfg.Search, cfg.HTTPTimeout)
		if err != nil {
			return nil, err
		}
		return NewSearchAdapter(name, searcher, cfg.Search.MaxResults, cfg.Search.FetchFullText), nil

	case config.SourceReview:
		return NewHTMLAdapter(name, cfg.Review.HTML, cfg.HTTPTimeout)

	case config.SourceSocial:
		if cfg.Social.BearerToken == "" {
			return nil, fmt.Errorf("bearer token is missing")
		}
		return NewSocialAdapter(name, cfg.Social.BearerToken, "", cfg.Social.MaxResults, cfg.HTTPTimeout), nil

	default:
		return nil, fmt.Errorf("unknown source: %s", name)
	}
}
