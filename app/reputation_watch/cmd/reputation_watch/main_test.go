package main

import (
	"context"
	"net/textproto"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/config"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/dataset"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/delivery"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/source"
)

type fakeAdapter struct {
	fetch func(ctx context.Context, keyword string) ([]string, error)
}

func (f *fakeAdapter) Name() string { return config.SourceSearch }

func (f *fakeAdapter) Fetch(ctx context.Context, keyword string) ([]string, error) {
	return f.fetch(ctx, keyword)
}

type fixedScorer float64

func (s fixedScorer) Score(context.Context, string) float64 { return float64(s) }

type fakeSubmitter struct {
	calls    int
	messages []*mail.Msg
	err      error
}

func (f *fakeSubmitter) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	f.calls++
	f.messages = append(f.messages, messages...)
	return f.err
}

func newPipeline(t *testing.T, fetch func(ctx context.Context, keyword string) ([]string, error), sub *fakeSubmitter) *pipeline {
	t.Helper()
	cfg := config.Default()
	cfg.Keywords = []string{"K1", "K2"}
	cfg.Concurrency.Workers = 1
	cfg.Report.OutputDir = t.TempDir()

	p := &pipeline{
		cfg:      cfg,
		runID:    "run-test",
		adapters: []source.Adapter{&fakeAdapter{fetch: fetch}},
		scorer:   fixedScorer(0.5),
	}
	if sub != nil {
		p.mailer = delivery.NewMailer("me@example.com", "", sub)
	}
	return p
}

func TestExecuteSuccess(t *testing.T) {
	sub := &fakeSubmitter{}
	p := newPipeline(t, func(_ context.Context, kw string) ([]string, error) {
		return []string{kw + " is fine"}, nil
	}, sub)

	require.Equal(t, 0, p.execute(context.Background()))
	require.Equal(t, 1, sub.calls)
	require.Len(t, sub.messages[0].GetAttachments(), 2)
	require.FileExists(t, filepath.Join(p.cfg.Report.OutputDir, "weekly_report.html"))
}

func TestExecuteEmptyDataset(t *testing.T) {
	sub := &fakeSubmitter{}
	p := newPipeline(t, func(context.Context, string) ([]string, error) {
		return nil, nil
	}, sub)

	require.Equal(t, 1, p.execute(context.Background()))
	require.Zero(t, sub.calls)

	ds, err := dataset.ReadCSV(filepath.Join(p.cfg.Report.OutputDir, dataFile))
	require.NoError(t, err)
	require.True(t, ds.Empty())
	require.NoFileExists(t, filepath.Join(p.cfg.Report.OutputDir, "weekly_report.html"))
}

func TestExecuteAuthenticationFailure(t *testing.T) {
	sub := &fakeSubmitter{err: &textproto.Error{Code: 535, Msg: "5.7.8 Username and Password not accepted"}}
	p := newPipeline(t, func(context.Context, string) ([]string, error) {
		return []string{"ok"}, nil
	}, sub)

	require.Equal(t, 1, p.execute(context.Background()))
	require.Equal(t, 1, sub.calls)
}

func TestExecuteCancelledRunDeliversPartialRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	sub := &fakeSubmitter{}
	p := newPipeline(t, func(ctx context.Context, kw string) ([]string, error) {
		if calls.Add(1) == 1 {
			return []string{kw + " first"}, nil
		}
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}, sub)

	require.Equal(t, 0, p.execute(ctx))
	require.Equal(t, 1, sub.calls)

	ds, err := dataset.ReadCSV(filepath.Join(p.cfg.Report.OutputDir, dataFile))
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	require.Equal(t, "K1 first", ds.Records()[0].Text)
	require.FileExists(t, filepath.Join(p.cfg.Report.OutputDir, "weekly_report.html"))
}

func TestExecuteWithoutMailer(t *testing.T) {
	p := newPipeline(t, func(context.Context, string) ([]string, error) {
		return []string{"ok"}, nil
	}, nil)

	require.Equal(t, 0, p.execute(context.Background()))
}

func TestDeliverMissingAttachment(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "weekly_report.html")
	require.NoError(t, os.WriteFile(report, []byte("<html></html>"), 0o644))

	sub := &fakeSubmitter{}
	p := newPipeline(t, nil, sub)
	ds := dataset.Build(nil)

	code := p.deliver(context.Background(), ds, []string{report, filepath.Join(dir, dataFile)})
	require.Equal(t, 0, code)
	require.Zero(t, sub.calls)
}
