package mailer

import (
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/bharthraj1412/nexora/internal/config"
	"github.com/bharthraj1412/nexora/internal/models"
)

// Sender delivers notification mail. Delivery is fire-and-forget for the
// auth flows: a failed send is logged by the caller, never returned to the
// end user.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	if !m.cfg.Enabled {
		log.Printf("mailer disabled, skipping mail to %s (%q)", to, subject)
		return nil
	}

	from := m.cfg.From
	headers := []string{
		fmt.Sprintf("From: %s <%s>", m.cfg.FromName, from),
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// OTPSubject returns the mail subject for a code of the given purpose.
func OTPSubject(purpose models.OTPPurpose) string {
	switch purpose {
	case models.PurposeRegistration:
		return "Verify your email address"
	case models.PurposeLogin:
		return "Your login code"
	case models.PurposeReset:
		return "Reset your password"
	default:
		return "Your verification code"
	}
}

// OTPBody renders the HTML body carrying the plaintext code.
func OTPBody(code string, expireMinutes int) string {
	return fmt.Sprintf(
		`<p>Your verification code is:</p><h2>%s</h2><p>This code expires in %d minutes. If you did not request it, you can ignore this email.</p>`,
		code, expireMinutes,
	)
}

// WelcomeBody renders the post-registration greeting.
func WelcomeBody(fullName string) string {
	return fmt.Sprintf(
		`<p>Hi %s,</p><p>Your account is ready. Head over to your dashboard to create your first collection.</p>`,
		fullName,
	)
}
