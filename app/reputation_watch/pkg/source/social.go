package source

import (
	"context"
	"net/http"
	"strings"
	"time"

	twitter "github.com/g8rswimmer/go-twitter/v2"
)

const (
	defaultTwitterHost = "https://api.twitter.com"
	minSocialResults   = 10
	maxSocialResults   = 100
)

type bearerAuthorizer struct {
	token string
}

func (a bearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.token)
}

// SocialAdapter 通过最近帖子搜索获取提及
type SocialAdapter struct {
	name       string
	client     *twitter.Client
	maxResults int
}

// NewSocialAdapter 创建社交帖子源，host 为空时使用官方地址
func NewSocialAdapter(name, bearerToken, host string, maxResults int, timeout time.Duration) *SocialAdapter {
	if host == "" {
		host = defaultTwitterHost
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxResults = min(max(maxResults, minSocialResults), maxSocialResults)
	return &SocialAdapter{
		name: name,
		client: &twitter.Client{
			Authorizer: bearerAuthorizer{token: bearerToken},
			Client:     &http.Client{Timeout: timeout},
			Host:       strings.TrimSuffix(host, "/"),
		},
		maxResults: maxResults,
	}
}

var _ Adapter = (*SocialAdapter)(nil)

// Name 数据源名称
func (a *SocialAdapter) Name() string { return a.name }

// recentSearchQuery 关键词按短语匹配并排除转发；短语内的双引号替换为空格
func recentSearchQuery(keyword string) string {
	return `"` + strings.ReplaceAll(keyword, `"`, " ") + `" -is:retweet`
}

// Fetch 搜索包含关键词的原创帖子
func (a *SocialAdapter) Fetch(ctx context.Context, keyword string) ([]string, error) {
	query := recentSearchQuery(keyword)
	resp, err := a.client.TweetRecentSearch(ctx, query, twitter.TweetRecentSearchOpts{
		MaxResults: a.maxResults,
	})
	if err != nil {
		return nil, unavailable(a.name, err)
	}
	if resp == nil || resp.Raw == nil {
		return []string{}, nil
	}

	snippets := make([]string, 0, len(resp.Raw.Tweets))
	for _, tweet := range resp.Raw.Tweets {
		if tweet == nil {
			continue
		}
		if text := strings.TrimSpace(tweet.Text); text != "" {
			snippets = append(snippets, text)
		}
	}
	return snippets, nil
}
