package sentiment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClassifier struct {
	replies []string
	errs    []error
	inputs  []string
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (string, error) {
	i := len(f.inputs)
	f.inputs = append(f.inputs, text)
	var reply string
	var err error
	if i < len(f.replies) {
		reply = f.replies[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return reply, err
}

func TestParseScore(t *testing.T) {
	cases := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{raw: "0.8", want: 0.8},
		{raw: "  -0.35\n", want: -0.35},
		{raw: "1", want: 1},
		{raw: "-1.0", want: -1},
		{raw: "```\n0.2\n```", want: 0.2},
		{raw: "```json\n-0.5```", want: -0.5},
		{raw: "1.5", wantErr: true},
		{raw: "-1.01", wantErr: true},
		{raw: "NaN", wantErr: true},
		{raw: "positive", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, c := range cases {
		t.Run(c.raw, func(t *testing.T) {
			v, err := ParseScore(c.raw)
			if c.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.InDelta(t, c.want, v, 1e-9)
		})
	}
}

func TestScoreReturnsClassifierValue(t *testing.T) {
	s := NewScorer(&fakeClassifier{replies: []string{"-0.6"}})
	require.InDelta(t, -0.6, s.Score(context.Background(), "bad service"), 1e-9)
}

func TestScoreFallsBackToNeutral(t *testing.T) {
	cases := map[string]*fakeClassifier{
		"call error":   {errs: []error{errors.New("connection refused")}},
		"non numeric":  {replies: []string{"I think it is positive"}},
		"out of range": {replies: []string{"3"}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, 0.0, NewScorer(c).Score(context.Background(), "text"))
			require.Len(t, c.inputs, 1)
		})
	}
}

func TestScoreRetriesOnceOnRateLimit(t *testing.T) {
	c := &fakeClassifier{
		replies: []string{"", "0.4"},
		errs:    []error{errors.New("error, status code: 429, message: Too Many Requests"), nil},
	}
	s := NewScorer(c, WithRetry(3, time.Millisecond))

	require.InDelta(t, 0.4, s.Score(context.Background(), "text"), 1e-9)
	require.Len(t, c.inputs, 2)
}

func TestScoreRetryBounded(t *testing.T) {
	limited := errors.New("429 too many requests")
	c := &fakeClassifier{errs: []error{limited, limited, limited}}
	s := NewScorer(c, WithRetry(5, time.Millisecond))

	require.Equal(t, 0.0, s.Score(context.Background(), "text"))
	require.Len(t, c.inputs, 2)
}

func TestScoreNoRetryOnOtherErrors(t *testing.T) {
	c := &fakeClassifier{errs: []error{errors.New("invalid api key"), nil}, replies: []string{"", "0.9"}}
	s := NewScorer(c, WithRetry(1, time.Millisecond))

	require.Equal(t, 0.0, s.Score(context.Background(), "text"))
	require.Len(t, c.inputs, 1)
}

func TestScoreTruncatesInput(t *testing.T) {
	c := &fakeClassifier{replies: []string{"0.1"}}
	s := NewScorer(c, WithMaxInputChars(4))

	s.Score(context.Background(), "口コミ評判テスト")
	require.Equal(t, []string{"口コミ評"}, c.inputs)
}
