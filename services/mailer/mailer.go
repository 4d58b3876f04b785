package mailer

import (
	"fmt"
	"log"
	"os"
	"strings"

	"coinwatch/config"
	"coinwatch/services/store"
	"coinwatch/services/trend"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

// Sender delivers a composed message. Wrapping gomail's DialAndSend
// behind an interface lets tests capture messages instead of dialing.
type Sender interface {
	Send(m *gomail.Message) error
}

type smtpSender struct {
	dialer *gomail.Dialer
}

func (s *smtpSender) Send(m *gomail.Message) error {
	return s.dialer.DialAndSend(m)
}

// Mailer composes and delivers price alert mails to every registered
// user with an email address. All delivery failures are logged and
// absorbed; there is no retry and no alert-loss detection.
type Mailer struct {
	cfg      config.MailConfig
	users    *store.UserStore
	sender   Sender
	selector TemplateSelector
}

// NewMailer creates a mailer backed by an authenticated SMTP relay with
// STARTTLS and random narrative selection.
func NewMailer(cfg config.MailConfig, users *store.UserStore) *Mailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Sender, cfg.Password)
	return &Mailer{
		cfg:      cfg,
		users:    users,
		sender:   &smtpSender{dialer: dialer},
		selector: RandomSelector{},
	}
}

// NewMailerWithSender creates a mailer with explicit delivery and
// template selection strategies.
func NewMailerWithSender(cfg config.MailConfig, users *store.UserStore, sender Sender, selector TemplateSelector) *Mailer {
	return &Mailer{cfg: cfg, users: users, sender: sender, selector: selector}
}

// SendAlert composes the storytelling alert for a currency and price,
// embeds the trend chart markup inline, attaches the static image when
// present, and delivers to every registered recipient. An empty
// recipient list is a logged no-op.
func (m *Mailer) SendAlert(currency string, price decimal.Decimal, artifact trend.Artifact) {
	if !m.cfg.Enabled {
		log.Printf("Mail disabled, skipping alert for %s", currency)
		return
	}

	currency = strings.ToUpper(currency)

	recipients, err := m.users.ListRecipientEmails()
	if err != nil {
		log.Printf("Failed to resolve alert recipients: %v", err)
		return
	}
	if len(recipients) == 0 {
		log.Println("No registered users to send alert")
		return
	}

	body := narrative(m.selector, currency, price)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.Sender)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", fmt.Sprintf("🚀 BTC Update: %s Price Alert!", currency))
	msg.SetBody("text/plain", body)
	msg.AddAlternative("text/html", htmlBody(body, artifact.Markup))

	if artifact.PNGPath != "" {
		if _, err := os.Stat(artifact.PNGPath); err == nil {
			msg.Attach(artifact.PNGPath)
		}
	}

	if err := m.sender.Send(msg); err != nil {
		log.Printf("Failed to send alert: %v", err)
		return
	}
	log.Printf("Alert sent to %d users", len(recipients))
}

// htmlBody wraps the narrative and chart markup in the mail-friendly
// HTML shell.
func htmlBody(message, chartMarkup string) string {
	if chartMarkup == "" {
		chartMarkup = "<p>(Chart not available)</p>"
	}
	return fmt.Sprintf(`<html>
  <head>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
      .chart-container { width: 100%%; max-width: 600px; margin: auto; }
      p { font-size: 14px; line-height: 1.4; }
    </style>
  </head>
  <body>
    <p>%s</p>
    %s
    <p>Stay tuned for more updates!<br>Your Crypto Tracker</p>
  </body>
</html>`, message, chartMarkup)
}
