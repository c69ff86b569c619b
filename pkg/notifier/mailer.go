package notifier

import (
	"context"
	"fmt"

	"coffee-shop-api/pkg/utils"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPMailer struct {
	config utils.EmailConfig
}

func NewSMTPMailer(config utils.EmailConfig) *SMTPMailer {
	return &SMTPMailer{config: config}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	mm := mail.NewMsg()
	if err := mm.From(m.config.From); err != nil {
		return fmt.Errorf("set from %s: %w", m.config.From, err)
	}
	if err := mm.To(msg.To); err != nil {
		return fmt.Errorf("set recipient %s: %w", msg.To, err)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextPlain, msg.Body)

	opts := []mail.Option{
		mail.WithPort(m.config.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.config.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.config.User),
			mail.WithPassword(m.config.Password),
		)
	}

	client, err := mail.NewClient(m.config.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}

	return nil
}

// LogMailer writes messages to the log instead of sending them (development).
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log.With(zap.String("mailer", "log"))}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("Email (not sent, no SMTP host configured)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

// VerificationEmail builds the verification code message.
func VerificationEmail(to, code string) Message {
	return Message{
		To:      to,
		Subject: "Your Coffee Shop Verification Code",
		Body: fmt.Sprintf("Hello!\n\n"+
			"Your verification code is: %s\n"+
			"This code will expire in 1 hour.\n\n"+
			"Thanks,\nCoffee Shop Team", code),
	}
}
