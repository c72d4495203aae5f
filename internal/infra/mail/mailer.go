// Package mail delivers notification emails over SMTP.
package mail

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/tucredito/tu-credito-api-go/internal/infra/resilience"
)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// MaxConcurrent caps parallel SMTP connections; zero uses the
	// resilience default.
	MaxConcurrent int
}

// Mailer sends email through an SMTP relay. Sends go through a circuit
// breaker so a dead relay fails fast, and a bulkhead caps concurrent
// connections to it.
type Mailer struct {
	dialer   *gomail.Dialer
	from     string
	breaker  *gobreaker.CircuitBreaker
	bulkhead *resilience.Bulkhead
	logger   *zap.Logger
}

// NewMailer creates a Mailer for the given SMTP settings.
func NewMailer(cfg Config, logger *zap.Logger) *Mailer {
	return &Mailer{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		breaker:  resilience.NewCircuitBreaker("smtp"),
		bulkhead: resilience.NewBulkhead(cfg.MaxConcurrent),
		logger:   logger,
	}
}

// Send delivers a single plain-text message.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	if err := m.bulkhead.Acquire(ctx); err != nil {
		return fmt.Errorf("acquire mail slot: %w", err)
	}
	defer m.bulkhead.Release()

	_, err := m.breaker.Execute(func() (any, error) {
		msg := gomail.NewMessage()
		msg.SetHeader("From", m.from)
		msg.SetHeader("To", to)
		msg.SetHeader("Subject", subject)
		msg.SetBody("text/plain", body)
		return nil, m.dialer.DialAndSend(msg)
	})
	if err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	m.logger.Debug("mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// ConsoleNotifier writes messages to the log instead of sending them.
// It is the default when no SMTP host is configured.
type ConsoleNotifier struct {
	logger *zap.Logger
}

// NewConsoleNotifier creates a log-backed notifier.
func NewConsoleNotifier(logger *zap.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{logger: logger}
}

// Send logs the message and always succeeds.
func (n *ConsoleNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.logger.Info("notification",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
