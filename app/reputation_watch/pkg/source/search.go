package source

import (
	"context"
	"strings"
	"time"

	"github.com/bytedance/gg/gson"
	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/logger"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/search"
)

// 摘要短于该长度时尝试抓取原文
const minSnippetLen = 100

// SearchAdapter 把搜索 API 的结果摘要作为文本片段
type SearchAdapter struct {
	name          string
	searcher      search.Searcher
	maxResults    int
	fetchFullText bool
	fetchContent  func(url string) (string, error)
}

// NewSearchAdapter 创建搜索引擎摘要源
func NewSearchAdapter(name string, searcher search.Searcher, maxResults int, fetchFullText bool) *SearchAdapter {
	return &SearchAdapter{
		name:          name,
		searcher:      searcher,
		maxResults:    maxResults,
		fetchFullText: fetchFullText,
		fetchContent:  fetchAndCleanContent,
	}
}

var _ Adapter = (*SearchAdapter)(nil)

// Name 数据源名称
func (a *SearchAdapter) Name() string { return a.name }

// Fetch 搜索关键词并返回非空摘要
func (a *SearchAdapter) Fetch(ctx context.Context, keyword string) ([]string, error) {
	resp, err := a.searcher.Search(ctx, &search.Request{
		Query:      keyword,
		Topic:      "general",
		MaxResults: a.maxResults,
	})
	if err != nil {
		return nil, unavailable(a.name, err)
	}
	logger.Log.Debugf("搜索 [%s] 成功: %s", keyword, gson.ToString(resp))

	snippets := make([]string, 0, len(resp.Results))
	for _, item := range resp.Results {
		content := strings.TrimSpace(item.Content)
		if a.fetchFullText && len(content) < minSnippetLen && item.URL != "" {
			fetched, err := a.fetchContent(item.URL)
			if err != nil {
				logger.Log.Debugf("原文抓取失败，使用摘要 [%s]: %v", item.URL, err)
			} else if fetched = strings.TrimSpace(fetched); len(fetched) > len(content) {
				content = fetched
			}
		}
		if content == "" {
			continue
		}
		snippets = append(snippets, content)
	}
	return snippets, nil
}

// fetchAndCleanContent 抓取 URL 并提取正文
func fetchAndCleanContent(url string) (string, error) {
	article, err := readability.FromURL(url, 30*time.Second)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}
