package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer delivers transactional mail over SMTP. Delivery runs off the
// request path; a failed send is logged by the background runner and
// never fails the triggering request.
type Mailer struct {
	from        string
	password    string
	host        string
	port        string
	recoveryURL string
}

func New(address string, password string, host string, port string, recoveryURL string) *Mailer {
	return &Mailer{
		from:        address,
		password:    password,
		host:        host,
		port:        port,
		recoveryURL: recoveryURL,
	}
}

func (m *Mailer) SendWelcome(to string) error {
	const body = "<h1>You successfully signed up!</h1>"
	return m.send(to, "Signup succeeded!", body)
}

// SendRecovery delivers the password-reset link. The link embeds the
// user id and the single-use token.
func (m *Mailer) SendRecovery(to string, userID string, token string) error {
	link := fmt.Sprintf("%s?id=%s&token=%s", m.recoveryURL, userID, token)
	body := fmt.Sprintf(
		"<p>You requested a password reset.</p><p>Click this <a href=%q>link to set a new password</a>. The link expires in one hour.</p>",
		link,
	)
	return m.send(to, "Password reset", body)
}

func (m *Mailer) send(to string, subject string, htmlBody string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		htmlBody,
	}, "\r\n")

	var auth smtp.Auth
	if m.password != "" {
		auth = smtp.PlainAuth("", m.from, m.password, m.host)
	}

	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}

	return nil
}
