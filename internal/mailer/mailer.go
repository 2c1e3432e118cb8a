// Package mailer delivers one-time codes out of band. The core only hands
// over the code, its purpose and its expiry; message formatting stays here.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/dsmelov/securekey/internal/common"
	"github.com/dsmelov/securekey/internal/mfa"
)

// CodeSender delivers a one-time code to a recipient.
type CodeSender interface {
	SendCode(ctx context.Context, email string, code mfa.OneTimeCode, purpose mfa.Purpose) error
}

// SMTPSender sends codes as plain-text mail over an SMTP relay.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	s := &SMTPSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
	}
	if user != "" {
		s.auth = smtp.PlainAuth("", user, password, host)
	}
	return s
}

func (s *SMTPSender) SendCode(ctx context.Context, email string, code mfa.OneTimeCode, purpose mfa.Purpose) error {
	subject := "Your verification code"
	if purpose == mfa.PurposeReset {
		subject = "Your password reset code"
	}

	msgID, err := common.MakeRandHexString(16)
	if err != nil {
		return fmt.Errorf("generating message id: %w", err)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMessage-ID: <%s@securekey>\r\n\r\n"+
		"Your code is %s. It expires at %s.\r\n",
		s.from, email, subject, msgID, code.Value, code.Expiry.UTC().Format("15:04 MST"))

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("sending code mail: %w", err)
	}
	return nil
}
