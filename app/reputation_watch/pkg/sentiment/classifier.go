package sentiment

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/config"
)

const systemPrompt = "You are sentiment analyzer. Score from -1 to 1. " +
	"Reply with a single decimal number between -1 and 1 and nothing else."

// Classifier 外部情感分类能力，返回模型原始输出
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// ChatClassifier 基于对话模型的分类器，调用前经过限流
type ChatClassifier struct {
	chatModel model.BaseChatModel
	limiter   *rate.Limiter
}

// NewChatClassifier 使用已有的对话模型创建分类器，limiter 可为 nil
func NewChatClassifier(cm model.BaseChatModel, limiter *rate.Limiter) *ChatClassifier {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &ChatClassifier{chatModel: cm, limiter: limiter}
}

// NewOpenAIClassifier 按配置初始化 OpenAI 兼容模型和限流器
func NewOpenAIClassifier(ctx context.Context, llm config.LLMConfig, cc config.ConcurrencyConfig) (*ChatClassifier, error) {
	var temperature float32
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:     llm.BaseURL,
		APIKey:      llm.APIKey,
		Model:       llm.Model,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return NewChatClassifier(chatModel, NewLimiter(cc)), nil
}

// NewLimiter Limit 设置为 RPM/60，Burst 设置为 QPS；RPM<=0 表示不限流
func NewLimiter(cc config.ConcurrencyConfig) *rate.Limiter {
	if cc.RPM <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := max(cc.QPS, 1)
	return rate.NewLimiter(rate.Limit(float64(cc.RPM)/60.0), burst)
}

// Classify 实现 Classifier
func (c *ChatClassifier) Classify(ctx context.Context, text string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: text},
	}
	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("empty response from LLM")
	}
	return resp.Content, nil
}
