package email

import (
	"context"
	"fmt"
	"strings"

	mail "github.com/wneessen/go-mail"
)

type Config struct {
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	FromName    string
	FromAddress string
}

// Sender delivers transactional mail over SMTP.
type Sender struct {
	client *mail.Client
	cfg    Config
}

func NewSender(cfg Config) (*Sender, error) {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(cfg.FromAddress) == "" {
		return nil, fmt.Errorf("email from address is required")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTPUser),
		mail.WithPassword(cfg.SMTPPass),
	}
	if cfg.SMTPPort == 465 {
		opts = append(opts, mail.WithSSL())
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &Sender{client: client, cfg: cfg}, nil
}

func (s *Sender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("email sender is not configured")
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient address is required")
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(s.cfg.FromName, s.cfg.FromAddress); err != nil {
		return fmt.Errorf("set mail from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set mail to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}
