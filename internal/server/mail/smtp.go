package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/contactkeeper/internal/server/config"
	gomail "github.com/wneessen/go-mail"
)

const smtpTimeout = 15 * time.Second

// dialAndSend is a seam for testing SMTP delivery.
var dialAndSend = func(ctx context.Context, c *gomail.Client, msgs ...*gomail.Msg) error {
	return c.DialAndSendWithContext(ctx, msgs...)
}

// SMTPSender renders HTML templates and delivers them over SMTP.
type SMTPSender struct {
	client   *gomail.Client
	from     string
	fromName string
}

// NewSMTPSender configures an SMTP client from cfg. No connection is made
// until the first Send.
func NewSMTPSender(cfg *config.Config) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.MailPort),
		gomail.WithTimeout(smtpTimeout),
		gomail.WithTLSPolicy(tlsPolicy(cfg.MailTLSPolicy)),
	}
	if cfg.MailUsername != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.MailUsername),
			gomail.WithPassword(cfg.MailPassword),
		)
	}

	client, err := gomail.NewClient(cfg.MailServer, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &SMTPSender{client: client, from: cfg.MailFrom, fromName: cfg.MailFromName}, nil
}

// Send renders msg and delivers it.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}
	if err := dialAndSend(ctx, s.client, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) build(msg Message) (*gomail.Msg, error) {
	body, err := Render(msg.Template, msg.Data)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMsg()
	if err := m.FromFormat(s.fromName, s.from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	if msg.ID != "" {
		m.SetGenHeader(gomail.Header("X-Contactkeeper-Message-Id"), msg.ID)
	}
	m.SetBodyString(gomail.TypeTextHTML, body)
	return m, nil
}

func tlsPolicy(name string) gomail.TLSPolicy {
	switch strings.ToLower(name) {
	case "mandatory":
		return gomail.TLSMandatory
	case "none":
		return gomail.NoTLS
	default:
		return gomail.TLSOpportunistic
	}
}
