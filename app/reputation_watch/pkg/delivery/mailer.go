package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/textproto"
	"os"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/config"
	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/logger"
)

var (
	// ErrAttachmentMissing 附件文件不存在，本次不发信
	ErrAttachmentMissing = errors.New("attachment not found")
	// ErrAuthentication 发信服务器拒绝了账号凭据
	ErrAuthentication = errors.New("mail authentication failed")
)

// Submitter 负责把邮件提交给发信服务器，*mail.Client 实现了该接口
type Submitter interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Message 待发送的报告邮件
type Message struct {
	Subject     string
	Body        string
	Attachments []string
}

// Mailer 把报告和数据文件作为附件发给固定收件人
type Mailer struct {
	from      string
	to        string
	submitter Submitter
}

// NewMailer 使用已有的 Submitter 创建 Mailer
func NewMailer(from, to string, submitter Submitter) *Mailer {
	if to == "" {
		to = from
	}
	return &Mailer{from: from, to: to, submitter: submitter}
}

// NewSMTPMailer 按配置创建走 SMTP 认证提交（STARTTLS）的 Mailer
func NewSMTPMailer(cfg config.MailConfig) (*Mailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}
	return NewMailer(cfg.User, cfg.Recipient, client), nil
}

// Send 检查附件后提交邮件；任一附件缺失时返回 ErrAttachmentMissing 且不会连接服务器
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	for _, path := range msg.Attachments {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			logger.Log.Errorf("附件不存在，取消发送: %s", path)
			return fmt.Errorf("%w: %s", ErrAttachmentMissing, path)
		}
	}

	mm := mail.NewMsg()
	if err := mm.From(m.from); err != nil {
		return fmt.Errorf("invalid sender %q: %w", m.from, err)
	}
	if err := mm.To(m.to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", m.to, err)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextPlain, msg.Body)
	for _, path := range msg.Attachments {
		mm.AttachFile(path)
	}

	if err := m.submitter.DialAndSendWithContext(ctx, mm); err != nil {
		if isAuthError(err) {
			return fmt.Errorf("%w: %w", ErrAuthentication, err)
		}
		return fmt.Errorf("send mail: %w", err)
	}

	logger.Log.Infof("报告邮件已发送至 %s (%d 个附件)", m.to, len(msg.Attachments))
	return nil
}

// isAuthError 535/534/530 为认证相关的 SMTP 响应码
func isAuthError(err error) bool {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		switch tpErr.Code {
		case 530, 534, 535:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "authentication failed") || strings.Contains(msg, "auth failed")
}
