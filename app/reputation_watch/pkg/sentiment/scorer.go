package sentiment

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/logger"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/model"
)

// Scorer 把一段文本映射到 [-1, 1] 的情感分值，任何失败都回退到 0
type Scorer struct {
	classifier    Classifier
	maxInputChars int
	maxRetries    int
	backoff       time.Duration
}

// Option Scorer 可选项
type Option func(*Scorer)

// WithMaxInputChars 输入超过 n 个字符时截断，n<=0 表示不截断
func WithMaxInputChars(n int) Option {
	return func(s *Scorer) { s.maxInputChars = n }
}

// WithRetry 限流错误时最多重试一次
func WithRetry(retries int, backoff time.Duration) Option {
	return func(s *Scorer) {
		s.maxRetries = min(max(retries, 0), 1)
		s.backoff = backoff
	}
}

// NewScorer 创建打分器
func NewScorer(classifier Classifier, opts ...Option) *Scorer {
	s := &Scorer{
		classifier: classifier,
		backoff:    2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score 返回情感分值；调用失败、无法解析或越界时记录日志并返回 0
func (s *Scorer) Score(ctx context.Context, text string) float64 {
	input := truncate(text, s.maxInputChars)

	var raw string
	var err error
	for i := 0; i <= s.maxRetries; i++ {
		raw, err = s.classifier.Classify(ctx, input)
		if err == nil || !isRateLimited(err) || i == s.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-time.After(s.backoff * time.Duration(1<<i)):
			continue
		}
		break
	}
	if err != nil {
		s.fallback(text, "classifier call failed", err)
		return model.NeutralSentiment
	}

	v, err := ParseScore(raw)
	if err != nil {
		s.fallback(text, "invalid classifier output", err)
		return model.NeutralSentiment
	}
	return v
}

func (s *Scorer) fallback(text, reason string, err error) {
	logger.Log.WithFields(logrus.Fields{
		"text": truncate(text, 40),
	}).Warnf("情感打分失败，使用中性分 0: %s: %v", reason, err)
}

// ParseScore 解析模型输出，允许首尾空白和代码块标记
func ParseScore(raw string) (float64, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	if math.IsNaN(v) || !model.ValidSentiment(v) {
		return 0, fmt.Errorf("score %v out of range [-1, 1]", v)
	}
	return v, nil
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests") || strings.Contains(msg, "rate limit")
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
