package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bankcards/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendTransferNotification sends a notification for a completed transfer
// between the user's own cards.
func (s *Sender) SendTransferNotification(to, username, reference string, amount decimal.Decimal) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Transfer Notification"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"A transfer of %s between your cards has been completed.\n"+
			"Reference: %s\n"+
			"Transaction time: %s\n",
		username, amount.StringFixed(2), reference, time.Now().Format("2006-01-02 15:04:05"),
	)
	body += "\nBest regards,\nCard Service"
	e.Text = []byte(body)

	return s.send(e)
}

// SendCardBlockedNotification sends a notification that a card was blocked.
func (s *Sender) SendCardBlockedNotification(to, username, maskedNumber string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Card Blocked Notification"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your card %s has been blocked.\n"+
			"If you did not request this, please contact support.\n",
		username, maskedNumber,
	)
	body += "\nBest regards,\nCard Service"
	e.Text = []byte(body)

	return s.send(e)
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", e.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", e.To, e.Subject)
	return nil
}
