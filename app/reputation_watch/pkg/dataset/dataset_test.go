package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/model"
)

var day = time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

func rec(keyword, src, text string, score float64) model.Record {
	return model.Record{Date: day, Keyword: keyword, Source: src, Text: text, Sentiment: score}
}

func TestSummarizeEmpty(t *testing.T) {
	ds := Build(nil)
	require.True(t, ds.Empty())
	require.Empty(t, ds.Summarize())
	require.Empty(t, ds.Summaries())

	from, to := ds.DateRange()
	require.True(t, from.IsZero())
	require.True(t, to.IsZero())
}

func TestSummarizeAcrossSources(t *testing.T) {
	ds := Build([]model.Record{
		rec("K1", "search-engine", "a", 0.5),
		rec("K2", "search-engine", "b", 1.0),
		rec("K1", "review-site", "c", -0.5),
	})

	require.Equal(t, map[string]float64{"K1": 0.0, "K2": 1.0}, ds.Summarize())
	require.Equal(t, []KeywordSummary{
		{Keyword: "K1", Count: 2, MeanSentiment: 0.0},
		{Keyword: "K2", Count: 1, MeanSentiment: 1.0},
	}, ds.Summaries())
}

func TestBuildCopiesInput(t *testing.T) {
	in := []model.Record{rec("K", "s", "t", 0.2)}
	ds := Build(in)
	in[0].Text = "changed"

	require.Equal(t, "t", ds.Records()[0].Text)

	out := ds.Records()
	out[0].Text = "changed"
	require.Equal(t, "t", ds.Records()[0].Text)
}

func TestDateRange(t *testing.T) {
	later := rec("K", "s", "t", 0)
	later.Date = day.AddDate(0, 0, 6)
	ds := Build([]model.Record{later, rec("K", "s", "u", 0)})

	from, to := ds.DateRange()
	require.Equal(t, day, from)
	require.Equal(t, later.Date, to)
}
