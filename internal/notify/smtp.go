package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/dtroode/farmgate-identity/internal/logger"
	"github.com/dtroode/farmgate-identity/internal/model"
)

var _ model.Sender = (*SMTPSender)(nil)

const verificationSubject = "Your verification code"

// SMTPConfig holds mail server parameters.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender mails codes to email contacts. Other contact kinds are handed to
// the fallback sender.
type SMTPSender struct {
	addr     string
	from     string
	auth     smtp.Auth
	fallback model.Sender
	sendMail sendMailFunc
	logger   *logger.Logger
}

func NewSMTPSender(cfg SMTPConfig, fallback model.Sender, logger *logger.Logger) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &SMTPSender{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from:     cfg.From,
		auth:     auth,
		fallback: fallback,
		sendMail: smtp.SendMail,
		logger:   logger,
	}
}

func (s *SMTPSender) Send(ctx context.Context, contact model.Contact, code string) error {
	if contact.Kind != model.ContactEmail {
		return s.fallback.Send(ctx, contact, code)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(s.from, contact.Value, code)
	if err := s.sendMail(s.addr, s.auth, s.from, []string{contact.Value}, msg); err != nil {
		s.logger.Error("Notify: failed to send verification mail",
			"contact", contact.Value,
			"error", err.Error())
		return fmt.Errorf("%w: %v", model.ErrDeliveryFailed, err)
	}

	s.logger.Debug("Notify: verification mail sent",
		"contact", contact.Value)

	return nil
}

func buildMessage(from, to, code string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + verificationSubject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString("Your verification code is " + code + ".\r\n")
	b.WriteString("It expires in a few minutes. If you did not sign up, ignore this message.\r\n")
	return []byte(b.String())
}
