package mailer

import (
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/smtp"
	"strings"
	"time"
)

const fromDisplayName = "BangBank"

// Sender delivers a notification email. Usecases depend on this interface so
// tests can swap in a recorder.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender speaks SMTP over implicit TLS (port 465).
type SMTPSender struct {
	smtpHost string
	smtpPort string
	username string
	password string
}

func NewSMTPSender(host, port, user, pass string) *SMTPSender {
	return &SMTPSender{
		smtpHost: host,
		smtpPort: port,
		username: user,
		password: pass,
	}
}

// message assembles the full MIME payload. Bodies from templates.go are
// HTML fragments, so the content type is fixed to text/html.
func (e *SMTPSender) message(to, subject, body string) []byte {
	from := mail.Address{Name: fromDisplayName, Address: e.username}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from.String())
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func (e *SMTPSender) connect() (*smtp.Client, error) {
	conn, err := tls.Dial("tcp", e.smtpHost+":"+e.smtpPort, &tls.Config{
		ServerName: e.smtpHost,
	})
	if err != nil {
		return nil, fmt.Errorf("dial smtp: %w", err)
	}
	client, err := smtp.NewClient(conn, e.smtpHost)
	if err != nil {
		conn.Close()
		return nil, err
	}
	auth := smtp.PlainAuth("", e.username, e.password, e.smtpHost)
	if err := client.Auth(auth); err != nil {
		client.Close()
		return nil, fmt.Errorf("smtp auth: %w", err)
	}
	return client, nil
}

func (e *SMTPSender) Send(to, subject, body string) error {
	client, err := e.connect()
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Mail(e.username); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(e.message(to, subject, body)); err != nil {
		return err
	}
	return w.Close()
}
