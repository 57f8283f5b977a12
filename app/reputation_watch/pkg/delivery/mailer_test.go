package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

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

func writeAttachment(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("date,keyword,source,text,sentiment\n"), 0o644))
	return path
}

func TestSendMissingAttachment(t *testing.T) {
	report := writeAttachment(t, "weekly_report.html")
	missing := filepath.Join(t.TempDir(), "weekly_data.csv")
	sub := &fakeSubmitter{}

	err := NewMailer("me@example.com", "", sub).Send(context.Background(), Message{
		Subject:     "Weekly reputation report",
		Attachments: []string{report, missing},
	})
	require.ErrorIs(t, err, ErrAttachmentMissing)
	require.Zero(t, sub.calls)
}

func TestSendSuccess(t *testing.T) {
	sub := &fakeSubmitter{}
	m := NewMailer("me@example.com", "boss@example.com", sub)

	err := m.Send(context.Background(), Message{
		Subject:     "Weekly reputation report",
		Body:        "see attachments",
		Attachments: []string{writeAttachment(t, "weekly_report.html"), writeAttachment(t, "weekly_data.csv")},
	})
	require.NoError(t, err)
	require.Equal(t, 1, sub.calls)
	require.Len(t, sub.messages, 1)

	msg := sub.messages[0]
	require.Equal(t, []string{"Weekly reputation report"}, msg.GetGenHeader(mail.HeaderSubject))
	require.Len(t, msg.GetAttachments(), 2)
	to := msg.GetToString()
	require.Len(t, to, 1)
	require.Contains(t, to[0], "boss@example.com")
}

func TestSendDefaultsRecipientToSender(t *testing.T) {
	sub := &fakeSubmitter{}
	require.NoError(t, NewMailer("me@example.com", "", sub).Send(context.Background(), Message{Subject: "s"}))

	to := sub.messages[0].GetToString()
	require.Len(t, to, 1)
	require.Contains(t, to[0], "me@example.com")
}

func TestSendAuthenticationFailure(t *testing.T) {
	cases := map[string]error{
		"smtp code": &textproto.Error{Code: 535, Msg: "5.7.8 Username and Password not accepted"},
		"message":   errors.New("smtp authentication failed"),
		"wrapped":   fmt.Errorf("SMTP AUTH failed: %w", &textproto.Error{Code: 534, Msg: "5.7.9 Application-specific password required"}),
	}
	for name, sendErr := range cases {
		t.Run(name, func(t *testing.T) {
			sub := &fakeSubmitter{err: sendErr}
			err := NewMailer("me@example.com", "", sub).Send(context.Background(), Message{
				Attachments: []string{writeAttachment(t, "weekly_data.csv")},
			})
			require.ErrorIs(t, err, ErrAuthentication)
			require.Equal(t, 1, sub.calls)
		})
	}
}

func TestSendOtherFailure(t *testing.T) {
	cases := []error{
		errors.New("dial tcp: connection refused"),
		errors.New("dial tcp 1.2.3.4:5353: i/o timeout"),
		&textproto.Error{Code: 554, Msg: "5.3.5 message rejected"},
	}
	for _, sendErr := range cases {
		t.Run(sendErr.Error(), func(t *testing.T) {
			sub := &fakeSubmitter{err: sendErr}
			err := NewMailer("me@example.com", "", sub).Send(context.Background(), Message{})
			require.Error(t, err)
			require.False(t, errors.Is(err, ErrAuthentication))
			require.False(t, errors.Is(err, ErrAttachmentMissing))
		})
	}
}
