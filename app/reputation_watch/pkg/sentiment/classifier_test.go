package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/config"
)

type fakeChatModel struct {
	reply *schema.Message
	err   error
	got   []*schema.Message
}

func (m *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.got = input
	return m.reply, m.err
}

func (m *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func TestChatClassifierClassify(t *testing.T) {
	cm := &fakeChatModel{reply: schema.AssistantMessage("0.75", nil)}
	c := NewChatClassifier(cm, nil)

	raw, err := c.Classify(context.Background(), "great support")
	require.NoError(t, err)
	require.Equal(t, "0.75", raw)
	require.Len(t, cm.got, 2)
	require.Equal(t, schema.System, cm.got[0].Role)
	require.Equal(t, systemPrompt, cm.got[0].Content)
	require.Equal(t, schema.User, cm.got[1].Role)
	require.Equal(t, "great support", cm.got[1].Content)
}

func TestChatClassifierErrors(t *testing.T) {
	_, err := NewChatClassifier(&fakeChatModel{err: errors.New("boom")}, nil).Classify(context.Background(), "x")
	require.EqualError(t, err, "boom")

	_, err = NewChatClassifier(&fakeChatModel{}, nil).Classify(context.Background(), "x")
	require.Error(t, err)
}

func TestChatClassifierHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	limiter := rate.NewLimiter(rate.Limit(1), 1)
	require.NoError(t, limiter.Wait(context.Background()))

	cm := &fakeChatModel{reply: schema.AssistantMessage("0.1", nil)}
	_, err := NewChatClassifier(cm, limiter).Classify(ctx, "x")
	require.Error(t, err)
	require.Nil(t, cm.got)
}

func TestNewLimiter(t *testing.T) {
	require.Equal(t, rate.Inf, NewLimiter(config.ConcurrencyConfig{RPM: 0}).Limit())

	l := NewLimiter(config.ConcurrencyConfig{RPM: 120, QPS: 3})
	require.InDelta(t, 2.0, float64(l.Limit()), 1e-9)
	require.Equal(t, 3, l.Burst())
}
