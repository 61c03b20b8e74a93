// Package mailer sends best-effort notification mail. Failures are logged,
// never surfaced to the request that triggered them.
package mailer

import (
	"fmt"
	"log"

	"crm-backend/config"

	"gopkg.in/gomail.v2"
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// New returns a disabled mailer when no SMTP host is configured.
func New(cfg config.Config) *Mailer {
	m := &Mailer{from: cfg.MailFrom}
	if cfg.SMTPHost != "" {
		m.dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	}
	return m
}

// NotifyTicketCreated mails the assignee about a new ticket, asynchronously.
func (m *Mailer) NotifyTicketCreated(to, number, subject string) {
	if m.dialer == nil || to == "" {
		return
	}
	go func() {
		msg := gomail.NewMessage()
		msg.SetHeader("From", m.from)
		msg.SetHeader("To", to)
		msg.SetHeader("Subject", fmt.Sprintf("[%s] Nouveau ticket: %s", number, subject))
		msg.SetBody("text/plain", fmt.Sprintf("Le ticket %s vous a été assigné.\n\nSujet: %s", number, subject))
		if err := m.dialer.DialAndSend(msg); err != nil {
			log.Printf("[MAIL] envoi échoué pour %s: %v", to, err)
		}
	}()
}
