package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"salestracker/internal/telemetry"

	"github.com/jordan-wright/email"
	"github.com/mazen160/go-random"
)

const (
	report_smtp_send = "smtp.send"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

// SMTP sends messages through an SMTP server.
type SMTP struct {
	config SmtpConfig
	tel    telemetry.API
}

func NewSMTP(config SmtpConfig, tel telemetry.API) SMTP {
	return SMTP{
		config: config,
		tel:    telemetry.NewScopedAPI("notify", tel),
	}
}

func (s SMTP) host() string {
	if i := strings.LastIndexByte(s.config.EmailAddress, '@'); i >= 0 {
		return s.config.EmailAddress[i+1:]
	}
	return s.config.Server
}

func (s SMTP) messageId() (string, error) {
	nonce, err := random.String(24)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("<%s@%s>", nonce, s.host()), nil
}

// Send delivers the message, the returned id is the message's Message-Id header.
func (s SMTP) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id, err := s.messageId()
	if err != nil {
		s.tel.ReportBroken(report_smtp_send, fmt.Errorf("generate message id: %w", err))
		return "", err
	}

	mail := email.NewEmail()
	mail.From = msg.From
	if mail.From == "" {
		mail.From = s.config.EmailAddress
	}
	mail.To = msg.To
	mail.Subject = msg.Subject
	mail.Text = []byte(msg.Text)
	if msg.Html != "" {
		mail.HTML = []byte(msg.Html)
	}
	mail.Headers.Set("Message-Id", id)

	addr := fmt.Sprintf("%s:%d", s.config.Server, s.config.Port)
	err = mail.Send(
		addr,
		smtp.PlainAuth("", s.config.EmailAddress, s.config.Password, s.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		s.tel.ReportBroken(report_smtp_send, err, addr)
		return "", err
	}

	return id, nil
}
