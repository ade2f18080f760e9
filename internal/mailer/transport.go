package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig describes one SMTP relay.
type SMTPConfig struct {
	Host   string
	Port   int
	User   string
	Pass   string
	Secure bool // implicit TLS; otherwise STARTTLS when offered
}

// Transport delivers composed messages.
type Transport interface {
	Verify(ctx context.Context) error
	Send(ctx context.Context, msg *mail.Msg) error
}

// Dialer builds a Transport for a relay.
type Dialer func(cfg SMTPConfig) (Transport, error)

// SMTPTransport sends mail with PLAIN auth.
type SMTPTransport struct {
	client *mail.Client
}

func NewSMTPTransport(cfg SMTPConfig) (Transport, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Pass),
		mail.WithTimeout(30 * time.Second),
	}
	if cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &SMTPTransport{client: client}, nil
}

// Verify connects and authenticates, then hangs up.
func (t *SMTPTransport) Verify(ctx context.Context) error {
	if err := t.client.DialWithContext(ctx); err != nil {
		return err
	}
	return t.client.Close()
}

func (t *SMTPTransport) Send(ctx context.Context, msg *mail.Msg) error {
	return t.client.DialAndSendWithContext(ctx, msg)
}
