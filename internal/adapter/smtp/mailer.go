// Package smtp delivers email through an SMTP relay using go-mail.
package smtp

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/neomorfeo/rentiq/internal/domain"
)

var _ domain.Mailer = (*Mailer)(nil)

// Options configures the SMTP relay. Host and From are required for the
// mailer to be considered configured.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	ReplyTo  string
	Secure   *bool // nil means "decide by port"
}

// Mailer sends email through one SMTP relay. A nil client means the relay
// was never configured; Send then fails with ErrMailerNotConfigured so
// callers can tell misconfiguration from delivery errors.
type Mailer struct {
	client *mail.Client
	opts   Options
}

// New builds the mailer. An empty host yields an unconfigured mailer rather
// than an error, so deployments without email still start.
func New(opts Options) (*Mailer, error) {
	if opts.Host == "" || opts.From == "" {
		return &Mailer{opts: opts}, nil
	}
	if opts.Port == 0 {
		opts.Port = 587
	}

	clientOpts := []mail.Option{mail.WithPort(opts.Port)}
	// Port 465 is implicit TLS, everything else negotiates STARTTLS;
	// an explicit Secure setting overrides the port rule.
	if implicitTLS(opts) {
		clientOpts = append(clientOpts, mail.WithSSLPort(false))
	} else {
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	if opts.Username != "" {
		clientOpts = append(clientOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(opts.Username),
			mail.WithPassword(opts.Password),
		)
	}

	client, err := mail.NewClient(opts.Host, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("smtp: creating client: %w", err)
	}
	return &Mailer{client: client, opts: opts}, nil
}

func implicitTLS(opts Options) bool {
	if opts.Secure != nil {
		return *opts.Secure
	}
	return opts.Port == 465
}

// Configured reports whether a relay is available.
func (m *Mailer) Configured() bool {
	return m.client != nil
}

// Send delivers one email. The text body is always set; an HTML body rides
// along as the preferred alternative when present.
func (m *Mailer) Send(ctx context.Context, email domain.Email) error {
	if m.client == nil {
		return domain.ErrMailerNotConfigured
	}

	msg := mail.NewMsg()
	if m.opts.FromName != "" {
		if err := msg.FromFormat(m.opts.FromName, m.opts.From); err != nil {
			return fmt.Errorf("smtp: setting sender: %w", err)
		}
	} else if err := msg.From(m.opts.From); err != nil {
		return fmt.Errorf("smtp: setting sender: %w", err)
	}
	if err := msg.To(email.To); err != nil {
		return fmt.Errorf("smtp: setting recipient: %w", err)
	}

	replyTo := email.ReplyTo
	if replyTo == "" {
		replyTo = m.opts.ReplyTo
	}
	if replyTo != "" {
		if err := msg.ReplyTo(replyTo); err != nil {
			return fmt.Errorf("smtp: setting reply-to: %w", err)
		}
	}

	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.Text)
	if email.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTML)
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp: sending to %s: %w", email.To, err)
	}
	return nil
}
