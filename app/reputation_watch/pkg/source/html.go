package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/config"
)

const (
	userAgent   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxPageSize = 5 << 20
)

// HTMLAdapter 按 URL 模板抓取页面，用 CSS 选择器取出文本片段
type HTMLAdapter struct {
	name        string
	urlTemplate string
	selector    cascadia.Matcher
	client      *http.Client
}

// NewHTMLAdapter 创建基于页面选择器的数据源
func NewHTMLAdapter(name string, cfg config.HTMLConfig, timeout time.Duration) (*HTMLAdapter, error) {
	sel, err := cascadia.ParseGroup(cfg.Selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", cfg.Selector, err)
	}
	if !strings.Contains(cfg.URLTemplate, "{keyword}") {
		return nil, fmt.Errorf("url template %q has no {keyword} placeholder", cfg.URLTemplate)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTMLAdapter{
		name:        name,
		urlTemplate: cfg.URLTemplate,
		selector:    sel,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

var _ Adapter = (*HTMLAdapter)(nil)

// Name 数据源名称
func (a *HTMLAdapter) Name() string { return a.name }

// Fetch 抓取页面并返回选择器命中的非空文本
func (a *HTMLAdapter) Fetch(ctx context.Context, keyword string) ([]string, error) {
	target := strings.ReplaceAll(a.urlTemplate, "{keyword}", url.QueryEscape(keyword))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, unavailable(a.name, fmt.Errorf("create request failed: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := a.client.Do(req)
	if err != nil {
		return nil, unavailable(a.name, fmt.Errorf("request failed: %w", err))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, unavailable(a.name, fmt.Errorf("unexpected status %d from %s", res.StatusCode, target))
	}

	doc, err := html.Parse(io.LimitReader(res.Body, maxPageSize))
	if err != nil {
		return nil, unavailable(a.name, fmt.Errorf("parse html failed: %w", err))
	}

	nodes := cascadia.QueryAll(doc, a.selector)
	snippets := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if text := strings.TrimSpace(dom.TextContent(n)); text != "" {
			snippets = append(snippets, text)
		}
	}
	return snippets, nil
}
