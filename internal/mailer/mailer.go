// Package mailer delivers the price list by email through the configured
// SMTP relay, falling back to a disposable test mailbox when the relay
// cannot be verified.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
	"golang.org/x/sync/singleflight"

	"github.com/vostok-trade/backend/internal/models"
	"github.com/vostok-trade/backend/internal/store"
)

var (
	// ErrNotInitialized means no transport could be set up.
	ErrNotInitialized = errors.New("mail service is not initialized")
	// ErrAttachmentMissing means the price list file is absent.
	ErrAttachmentMissing = errors.New("price list file not found")
)

// Notifier sends the price list and reports whether a transport is ready.
type Notifier interface {
	Send(ctx context.Context, to string, products []models.Product) error
	IsReady() bool
}

// AccountCache persists the fallback mailbox between restarts.
type AccountCache interface {
	Load(ctx context.Context) (*models.MailAccount, error)
	Save(ctx context.Context, acc *models.MailAccount) error
}

// AccountProvisioner creates a fallback mailbox.
type AccountProvisioner interface {
	Create(ctx context.Context) (*models.MailAccount, error)
}

type Options struct {
	SMTP           SMTPConfig
	Fallback       bool
	AttachmentPath string
}

// Service is the Notifier backed by SMTP.
type Service struct {
	opts        Options
	dial        Dialer
	provisioner AccountProvisioner
	accounts    AccountCache
	now         func() time.Time

	initGroup singleflight.Group
	mu        sync.RWMutex
	transport Transport
}

var _ Notifier = (*Service)(nil)

// New returns an uninitialised service. accounts may be nil.
func New(opts Options, dial Dialer, provisioner AccountProvisioner, accounts AccountCache) *Service {
	if dial == nil {
		dial = NewSMTPTransport
	}
	return &Service{
		opts:        opts,
		dial:        dial,
		provisioner: provisioner,
		accounts:    accounts,
		now:         time.Now,
	}
}

func (s *Service) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transport != nil
}

func (s *Service) configured() bool {
	c := s.opts.SMTP
	return c.Host != "" && c.User != "" && c.Pass != ""
}

// Init sets up the transport. Concurrent callers share one attempt; after a
// failure the next call tries again.
func (s *Service) Init(ctx context.Context) error {
	_, err, _ := s.initGroup.Do("init", func() (interface{}, error) {
		if s.IsReady() {
			return nil, nil
		}
		t, err := s.connect(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.transport = t
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

func (s *Service) connect(ctx context.Context) (Transport, error) {
	if !s.configured() {
		slog.WarnContext(ctx, "smtp settings missing, mail disabled",
			"required", "SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS")
		return nil, ErrNotInitialized
	}

	primary, err := s.dial(s.opts.SMTP)
	if err == nil {
		err = primary.Verify(ctx)
	}
	if err == nil {
		slog.InfoContext(ctx, "mail transport verified", "host", s.opts.SMTP.Host, "port", s.opts.SMTP.Port)
		s.checkAttachment(ctx)
		return primary, nil
	}
	slog.ErrorContext(ctx, "mail transport verification failed", "host", s.opts.SMTP.Host, "error", err)
	if !s.opts.Fallback || s.provisioner == nil {
		return nil, err
	}

	acc, err := s.fallbackAccount(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "fallback mail transport unavailable", "error", err)
		return nil, err
	}
	t, err := s.dial(SMTPConfig{Host: acc.Host, Port: acc.Port, User: acc.User, Pass: acc.Pass, Secure: acc.Secure})
	if err != nil {
		return nil, err
	}
	slog.WarnContext(ctx, "using fallback test mailbox, mail will not reach recipients",
		"user", acc.User, "inbox", acc.Web)
	return t, nil
}

func (s *Service) fallbackAccount(ctx context.Context) (*models.MailAccount, error) {
	if s.accounts != nil {
		acc, err := s.accounts.Load(ctx)
		if err == nil {
			return acc, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "load cached test mailbox", "error", err)
		}
	}

	acc, err := s.provisioner.Create(ctx)
	if err != nil {
		return nil, err
	}
	if s.accounts != nil {
		if err := s.accounts.Save(ctx, acc); err != nil {
			slog.WarnContext(ctx, "cache test mailbox", "error", err)
		}
	}
	return acc, nil
}

func (s *Service) checkAttachment(ctx context.Context) {
	if _, err := os.Stat(s.opts.AttachmentPath); err != nil {
		slog.WarnContext(ctx, "price list attachment not found", "path", s.opts.AttachmentPath)
		return
	}
	slog.InfoContext(ctx, "price list attachment found", "path", s.opts.AttachmentPath)
}

// Send emails the price list file to one recipient. products is accepted
// for callers that have the catalog at hand; the body does not list them.
func (s *Service) Send(ctx context.Context, to string, _ []models.Product) error {
	if !s.IsReady() {
		if err := s.Init(ctx); err != nil {
			if errors.Is(err, ErrNotInitialized) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrNotInitialized, err)
		}
	}

	if _, err := os.Stat(s.opts.AttachmentPath); err != nil {
		slog.ErrorContext(ctx, "price list attachment not found", "path", s.opts.AttachmentPath)
		return fmt.Errorf("%w: %s", ErrAttachmentMissing, s.opts.AttachmentPath)
	}

	msg, err := s.compose(to)
	if err != nil {
		return err
	}

	s.mu.RLock()
	t := s.transport
	s.mu.RUnlock()
	if err := t.Send(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "send price list", "to", to, "error", err)
		return fmt.Errorf("send mail: %w", err)
	}
	slog.InfoContext(ctx, "price list mailed", "to", to, "message_id", msg.GetGenHeader(mail.HeaderMessageID))
	return nil
}

func (s *Service) compose(to string) (*mail.Msg, error) {
	body, err := renderBody(s.now().Year())
	if err != nil {
		return nil, fmt.Errorf("render mail: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(brand, s.opts.SMTP.User); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetDateWithValue(s.now())
	msg.SetMessageIDWithValue(uuid.NewString() + "@" + messageHost)
	msg.SetBodyString(mail.TypeTextHTML, body)
	msg.AttachFile(s.opts.AttachmentPath, mail.WithFileName(attachName))
	return msg, nil
}
