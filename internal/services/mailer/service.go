// Package mailer delivers the daily report over SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
)

// Service implements EmailSender
type Service struct {
	config common.MailConfig
	logger *common.Logger
}

// NewService creates a new mailer service
func NewService(config common.MailConfig, logger *common.Logger) *Service {
	return &Service{config: config, logger: logger}
}

// SendReport sends the HTML report to the configured receiver. When chartPNG
// is non-empty it is embedded inline so the message is self-contained.
// Returns an error without sending when the mail config is incomplete.
func (s *Service) SendReport(ctx context.Context, subject, html string, chartPNG []byte) error {
	if !s.config.Configured() {
		return fmt.Errorf("mail not configured: host, sender, and receiver are required")
	}

	msg := mail.NewMsg()
	if err := msg.From(s.config.Sender); err != nil {
		return fmt.Errorf("invalid sender address %q: %w", s.config.Sender, err)
	}
	if err := msg.To(s.config.Receiver); err != nil {
		return fmt.Errorf("invalid receiver address %q: %w", s.config.Receiver, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)

	if len(chartPNG) > 0 {
		if err := msg.EmbedReader("portfolio_chart.png", bytes.NewReader(chartPNG)); err != nil {
			return fmt.Errorf("failed to embed chart: %w", err)
		}
	}

	client, err := s.newClient()
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send report to %s: %w", s.config.Receiver, err)
	}

	s.logger.Info().
		Str("receiver", s.config.Receiver).
		Str("subject", subject).
		Msg("Report email sent")

	return nil
}

func (s *Service) newClient() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(s.config.Port),
	}

	// Port 465 is implicit TLS; everything else negotiates STARTTLS.
	if s.config.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	if s.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
		)
	}

	return mail.NewClient(s.config.Host, opts...)
}

// Ensure Service implements EmailSender
var _ interfaces.EmailSender = (*Service)(nil)
