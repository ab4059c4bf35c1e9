package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"Gin_postgres_redis_library/lending"
)

type SMTPConfig struct {
	Host     string // SMTP_HOST, e.g. smtp.gmail.com
	Port     string // SMTP_PORT, e.g. 587
	Username string
	Password string
	From     string // falls back to Username
	To       []string
	AppName  string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer emails the loan message to a fixed list of staff addresses.
type Mailer struct {
	conf SMTPConfig
	send sendMailFunc
}

func NewMailer(conf SMTPConfig) *Mailer {
	return &Mailer{conf: conf, send: smtp.SendMail}
}

func (m *Mailer) LoanCreated(_ context.Context, ev lending.LoanCreated) error {
	conf := m.conf
	if conf.Host == "" || len(conf.To) == 0 {
		return fmt.Errorf("smtp: host and recipients are required")
	}
	fromAddr := conf.From
	if fromAddr == "" {
		fromAddr = conf.Username
	}
	port := conf.Port
	if port == "" {
		port = "587"
	}

	subject := fmt.Sprintf("%s: new borrowing of %s", conf.AppName, ev.BookTitle)
	msg := buildMIMEWithFromName(conf.AppName, fromAddr, conf.To, subject, FormatLoanCreated(ev))

	var auth smtp.Auth
	if conf.Username != "" {
		auth = smtp.PlainAuth("", conf.Username, conf.Password, conf.Host)
	}
	return m.send(conf.Host+":"+port, auth, fromAddr, conf.To, []byte(msg))
}

func buildMIMEWithFromName(fromName, fromAddr string, to []string, subject, body string) string {
	headers := []string{
		fmt.Sprintf("From: %s <%s>", fromName, fromAddr),
		fmt.Sprintf("To: %s", strings.Join(to, ", ")),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
	}
	return strings.Join(headers, "\r\n") + "\r\n\r\n" + strings.ReplaceAll(body, "\n", "\r\n")
}
