package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 数据源名称，同时作为记录的 source 字段
const (
	SourceSearch = "search-engine"
	SourceReview = "review-site"
	SourceSocial = "social-feed"
)

// Config 项目配置结构体，启动时加载一次，之后只读
type Config struct {
	Keywords    []string          `yaml:"keywords"`
	LLM         LLMConfig         `yaml:"llm"`
	Search      SearchConfig      `yaml:"search"`
	Review      ReviewConfig      `yaml:"review"`
	Social      SocialConfig      `yaml:"social"`
	Mail        MailConfig        `yaml:"mail"`
	Report      ReportConfig      `yaml:"report"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	HTTPTimeout time.Duration     `yaml:"http_timeout"`
	RunTimeout  time.Duration     `yaml:"run_timeout"`
}

// LLMConfig 情感分类模型配置
type LLMConfig struct {
	BaseURL       string `yaml:"base_url"`
	APIKey        string `yaml:"api_key"`
	Model         string `yaml:"model"`
	MaxInputChars int    `yaml:"max_input_chars"`
	MaxRetries    int    `yaml:"max_retries"`
}

// SearchConfig 搜索引擎摘要源配置
type SearchConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Provider      string        `yaml:"provider"`
	MaxResults    int           `yaml:"max_results"`
	FetchFullText bool          `yaml:"fetch_full_text"`
	Tavily        TavilyConfig  `yaml:"tavily"`
	SearXNG       SearXNGConfig `yaml:"searxng"`
	HTML          HTMLConfig    `yaml:"html"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// HTMLConfig 基于页面选择器抓取的配置，{keyword} 会被替换为转义后的关键词
type HTMLConfig struct {
	URLTemplate string `yaml:"url_template"`
	Selector    string `yaml:"selector"`
}

// ReviewConfig 点评站评论源配置
type ReviewConfig struct {
	Enabled bool       `yaml:"enabled"`
	HTML    HTMLConfig `yaml:"html"`
}

// SocialConfig 社交帖子源配置
type SocialConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BearerToken string `yaml:"bearer_token"`
	MaxResults  int    `yaml:"max_results"`
}

// MailConfig 发信配置
type MailConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Recipient string `yaml:"recipient"`
}

// ReportConfig 报告输出配置
type ReportConfig struct {
	OutputDir string `yaml:"output_dir"`
	Format    string `yaml:"format"`
	FontFile  string `yaml:"font_file"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
	QPS     int `yaml:"qps"`
	RPM     int `yaml:"rpm"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:         "gpt-3.5-turbo",
			MaxInputChars: 2000,
			MaxRetries:    1,
		},
		Search: SearchConfig{
			Enabled:    true,
			MaxResults: 10,
			HTML: HTMLConfig{
				URLTemplate: "https://www.google.com/search?q={keyword}",
				Selector:    ".BNeawe.s3v9rd.AP7Wnd",
			},
		},
		Review: ReviewConfig{
			Enabled: true,
			HTML: HTMLConfig{
				URLTemplate: "https://caloo.jp/search?keyword={keyword}",
				Selector:    ".review-comment",
			},
		},
		Social: SocialConfig{
			MaxResults: 10,
		},
		Mail: MailConfig{
			Enabled: true,
			Host:    "smtp.gmail.com",
			Port:    587,
		},
		Report: ReportConfig{
			OutputDir: "output",
			Format:    "html",
		},
		Log: LogConfig{
			Level: "info",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
			QPS:     1,
			RPM:     60,
		},
		HTTPTimeout: 30 * time.Second,
		RunTimeout:  10 * time.Minute,
	}
}

// LoadConfig 从指定路径加载 YAML 配置，未出现的字段保留 base 中的值
func LoadConfig(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load 按 默认值 -> YAML 文件(REPUTATION_CONFIG) -> 环境变量 的顺序加载配置
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("REPUTATION_CONFIG"); path != "" {
		c, err := LoadConfig(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
		cfg = c
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Keywords = getEnvAsList("KEYWORDS", cfg.Keywords)

	cfg.LLM.APIKey = getEnv("LLM_API_KEY", getEnv("OPENAI_API_KEY", cfg.LLM.APIKey))
	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.MaxInputChars = getEnvAsInt("LLM_MAX_INPUT_CHARS", cfg.LLM.MaxInputChars)
	cfg.LLM.MaxRetries = getEnvAsInt("LLM_MAX_RETRIES", cfg.LLM.MaxRetries)

	cfg.Search.Enabled = getEnvAsBool("SEARCH_ENABLED", cfg.Search.Enabled)
	cfg.Search.Provider = getEnv("SEARCH_PROVIDER", cfg.Search.Provider)
	cfg.Search.MaxResults = getEnvAsInt("SEARCH_MAX_RESULTS", cfg.Search.MaxResults)
	cfg.Search.FetchFullText = getEnvAsBool("SEARCH_FETCH_FULL_TEXT", cfg.Search.FetchFullText)
	cfg.Search.Tavily.APIKey = getEnv("TAVILY_API_KEY", cfg.Search.Tavily.APIKey)
	cfg.Search.SearXNG.BaseURL = getEnv("SEARXNG_BASE_URL", cfg.Search.SearXNG.BaseURL)
	cfg.Search.SearXNG.Timeout = getEnvAsInt("SEARXNG_TIMEOUT", cfg.Search.SearXNG.Timeout)
	cfg.Search.HTML.URLTemplate = getEnv("SEARCH_URL_TEMPLATE", cfg.Search.HTML.URLTemplate)
	cfg.Search.HTML.Selector = getEnv("SEARCH_SELECTOR", cfg.Search.HTML.Selector)
	if cfg.Search.Provider == "" {
		// 有 tavily key 时默认走 tavily，否则直接抓搜索结果页
		if cfg.Search.Tavily.APIKey != "" {
			cfg.Search.Provider = "tavily"
		} else {
			cfg.Search.Provider = "html"
		}
	}

	cfg.Review.Enabled = getEnvAsBool("REVIEW_ENABLED", cfg.Review.Enabled)
	cfg.Review.HTML.URLTemplate = getEnv("REVIEW_URL_TEMPLATE", cfg.Review.HTML.URLTemplate)
	cfg.Review.HTML.Selector = getEnv("REVIEW_SELECTOR", cfg.Review.HTML.Selector)

	cfg.Social.BearerToken = getEnv("TWITTER_BEARER_TOKEN", cfg.Social.BearerToken)
	cfg.Social.Enabled = getEnvAsBool("SOCIAL_ENABLED", cfg.Social.Enabled || cfg.Social.BearerToken != "")
	cfg.Social.MaxResults = getEnvAsInt("SOCIAL_MAX_RESULTS", cfg.Social.MaxResults)

	cfg.Mail.Enabled = getEnvAsBool("MAIL_ENABLED", cfg.Mail.Enabled)
	cfg.Mail.Host = getEnv("SMTP_HOST", cfg.Mail.Host)
	cfg.Mail.Port = getEnvAsInt("SMTP_PORT", cfg.Mail.Port)
	cfg.Mail.User = getEnv("MAIL_USER", getEnv("GMAIL_USER", cfg.Mail.User))
	cfg.Mail.Password = getEnv("MAIL_PASSWORD", getEnv("GMAIL_APP_PASS", cfg.Mail.Password))
	cfg.Mail.Recipient = getEnv("MAIL_RECIPIENT", cfg.Mail.Recipient)
	if cfg.Mail.Recipient == "" {
		cfg.Mail.Recipient = cfg.Mail.User
	}

	cfg.Report.OutputDir = getEnv("OUTPUT_DIR", cfg.Report.OutputDir)
	cfg.Report.Format = strings.ToLower(getEnv("REPORT_FORMAT", cfg.Report.Format))
	cfg.Report.FontFile = getEnv("REPORT_FONT_FILE", cfg.Report.FontFile)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)

	cfg.Concurrency.Workers = getEnvAsInt("CONCURRENCY_WORKERS", cfg.Concurrency.Workers)
	cfg.Concurrency.QPS = getEnvAsInt("CONCURRENCY_QPS", cfg.Concurrency.QPS)
	cfg.Concurrency.RPM = getEnvAsInt("CONCURRENCY_RPM", cfg.Concurrency.RPM)

	cfg.HTTPTimeout = getEnvAsDuration("HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.RunTimeout = getEnvAsDuration("RUN_TIMEOUT", cfg.RunTimeout)
}

// Validate 校验必填项
func (c *Config) Validate() error {
	if len(c.Keywords) == 0 {
		return fmt.Errorf("KEYWORDS is required")
	}
	for i, kw := range c.Keywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("keyword #%d is empty", i+1)
		}
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY (or OPENAI_API_KEY) is required")
	}
	if !c.Search.Enabled && !c.Review.Enabled && !c.Social.Enabled {
		return fmt.Errorf("at least one source must be enabled")
	}

	if c.Search.Enabled {
		switch c.Search.Provider {
		case "tavily":
			if c.Search.Tavily.APIKey == "" {
				return fmt.Errorf("tavily api key is missing")
			}
		case "searxng":
			if c.Search.SearXNG.BaseURL == "" {
				return fmt.Errorf("searxng base url is missing")
			}
		case "html":
			if err := c.Search.HTML.validate("search"); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown search provider: %s", c.Search.Provider)
		}
	}
	if c.Review.Enabled {
		if err := c.Review.HTML.validate("review"); err != nil {
			return err
		}
	}
	if c.Social.Enabled && c.Social.BearerToken == "" {
		return fmt.Errorf("TWITTER_BEARER_TOKEN is required when the social source is enabled")
	}

	if c.Mail.Enabled && (c.Mail.User == "" || c.Mail.Password == "") {
		return fmt.Errorf("MAIL_USER and MAIL_PASSWORD are required when mail is enabled")
	}

	if c.RunTimeout <= 0 {
		return fmt.Errorf("RUN_TIMEOUT must be positive, got %s", c.RunTimeout)
	}

	switch c.Report.Format {
	case "html", "pdf":
	default:
		return fmt.Errorf("unknown report format: %s", c.Report.Format)
	}
	return nil
}

// EnabledSources 按固定顺序返回已启用的数据源名称
func (c *Config) EnabledSources() []string {
	var names []string
	if c.Search.Enabled {
		names = append(names, SourceSearch)
	}
	if c.Review.Enabled {
		names = append(names, SourceReview)
	}
	if c.Social.Enabled {
		names = append(names, SourceSocial)
	}
	return names
}

func (h HTMLConfig) validate(name string) error {
	if !strings.Contains(h.URLTemplate, "{keyword}") {
		return fmt.Errorf("%s url template must contain {keyword}", name)
	}
	if h.Selector == "" {
		return fmt.Errorf("%s selector is missing", name)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList 逗号分隔，保留顺序和重复项，去掉首尾空白
func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
