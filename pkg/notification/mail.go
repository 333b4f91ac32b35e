package notification

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/raykavin/stocklens/pkg/core"
	log "github.com/sirupsen/logrus"
)

// DefaultMailTimeout bounds one delivery, from dial to QUIT
const DefaultMailTimeout = 30 * time.Second

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mail handles email notifications for the application
type Mail struct {
	auth              smtp.Auth
	smtpServerPort    int
	smtpServerAddress string
	to                string
	from              string
	send              sendMailFunc
}

// MailParams contains all parameters needed to initialize a Mail instance
type MailParams struct {
	SMTPServerPort    int
	SMTPServerAddress string
	To                string
	From              string
	Password          string
	Timeout           time.Duration
}

// NewMail creates a new Mail instance with the provided parameters
func NewMail(params MailParams) Mail {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = DefaultMailTimeout
	}

	return Mail{
		from:              params.From,
		to:                params.To,
		smtpServerPort:    params.SMTPServerPort,
		smtpServerAddress: params.SMTPServerAddress,
		auth: smtp.PlainAuth(
			"",
			params.From,
			params.Password,
			params.SMTPServerAddress,
		),
		send: sendMailWithTimeout(timeout),
	}
}

// Notify implements core.Notifier by mailing the status line
func (m Mail) Notify(status core.Status) {
	serverAddress := fmt.Sprintf("%s:%d", m.smtpServerAddress, m.smtpServerPort)

	err := m.send(
		serverAddress,
		m.auth,
		m.from,
		[]string{m.to},
		[]byte(m.message(status)),
	)

	if err != nil {
		log.WithError(err).Error("notification/mail: failed to send email")
	}
}

func (m Mail) message(status core.Status) string {
	subject := fmt.Sprintf("📈 %s", status.Ticker)
	if status.Failed {
		subject = fmt.Sprintf("🛑 FETCH FAILED - %s", status.Ticker)
	}

	return fmt.Sprintf(
		"To: \"User\" <%s>\r\nFrom: \"stocklens\" <%s>\r\nSubject: %s\r\n\r\n%s\r\n",
		m.to,
		m.from,
		subject,
		status,
	)
}

// sendMailWithTimeout behaves like smtp.SendMail with a deadline on the
// whole exchange, so an unresponsive server cannot stall the caller
func sendMailWithTimeout(timeout time.Duration) sendMailFunc {
	return func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return err
		}

		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}

		client, err := smtp.NewClient(conn, host)
		if err != nil {
			return err
		}
		defer client.Close()

		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
				return err
			}
		}
		if a != nil {
			if ok, _ := client.Extension("AUTH"); ok {
				if err := client.Auth(a); err != nil {
					return err
				}
			}
		}

		if err := client.Mail(from); err != nil {
			return err
		}
		for _, recipient := range to {
			if err := client.Rcpt(recipient); err != nil {
				return err
			}
		}

		w, err := client.Data()
		if err != nil {
			return err
		}
		if _, err := w.Write(msg); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		return client.Quit()
	}
}
