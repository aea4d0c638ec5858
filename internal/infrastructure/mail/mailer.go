package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locaflow/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Message is an outgoing e-mail
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Validate checks the message has a recipient and some content
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return errors.New("mail: no recipients")
	}
	for _, to := range m.To {
		if !strings.Contains(to, "@") || strings.ContainsAny(to, "\r\n") {
			return fmt.Errorf("mail: invalid recipient %q", to)
		}
	}
	if strings.ContainsAny(m.Subject, "\r\n") {
		return errors.New("mail: subject contains line breaks")
	}
	if m.HTML == "" && m.Text == "" {
		return errors.New("mail: empty body")
	}
	return nil
}

// Sender delivers messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP sender, or a logging sender when no host is set
func New(cfg config.MailConfig, logger *zap.Logger) Sender {
	if cfg.Host == "" {
		logger.Info("SMTP not configured, mails will be logged")
		return NewLogSender(logger)
	}
	return NewSMTPSender(cfg, logger)
}

// SMTPSender sends through an SMTP relay with STARTTLS when offered
type SMTPSender struct {
	addr   string
	auth   smtp.Auth
	from   string
	logger *zap.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates a sender for the configured relay
func NewSMTPSender(cfg config.MailConfig, logger *zap.Logger) *SMTPSender {
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		addr:   net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		auth:   auth,
		from:   cfg.From,
		logger: logger.Named("mail"),
		send:   smtp.SendMail,
	}
}

// Send delivers msg. smtp.SendMail has no context support, so cancellation
// only stops the caller from waiting.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	body := buildMessage(s.from, msg, time.Now())

	done := make(chan error, 1)
	go func() { done <- s.send(s.addr, s.auth, envelopeAddress(s.from), msg.To, body) }()

	select {
	case err := <-done:
		if err != nil {
			s.logger.Error("Failed to send mail", zap.Strings("to", msg.To), zap.Error(err))
			return fmt.Errorf("send mail: %w", err)
		}
		s.logger.Info("Mail sent", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogSender writes messages to the log, used in development
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a logging sender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger.Named("mail")}
}

// Send logs the message
func (s *LogSender) Send(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	body := msg.Text
	if body == "" {
		body = msg.HTML
	}
	s.logger.Info("Mail (not sent)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", body),
	)
	return nil
}

// envelopeAddress extracts the bare address from "Name <addr>"
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		return strings.TrimSuffix(from[i+1:], ">")
	}
	return from
}

func buildMessage(from string, msg Message, now time.Time) []byte {
	var buf bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }

	header("From", from)
	header("To", strings.Join(msg.To, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(envelopeAddress(from))))
	header("MIME-Version", "1.0")

	switch {
	case msg.HTML != "" && msg.Text != "":
		boundary := "locaflow-" + uuid.NewString()
		header("Content-Type", fmt.Sprintf(`multipart/alternative; boundary="%s"`, boundary))
		buf.WriteString("\r\n")
		writePart(&buf, boundary, "text/plain", msg.Text)
		writePart(&buf, boundary, "text/html", msg.HTML)
		fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	case msg.HTML != "":
		header("Content-Type", `text/html; charset="utf-8"`)
		buf.WriteString("\r\n" + msg.HTML)
	default:
		header("Content-Type", `text/plain; charset="utf-8"`)
		buf.WriteString("\r\n" + msg.Text)
	}
	return buf.Bytes()
}

func writePart(buf *bytes.Buffer, boundary, contentType, content string) {
	fmt.Fprintf(buf, "--%s\r\n", boundary)
	fmt.Fprintf(buf, "Content-Type: %s; charset=\"utf-8\"\r\n\r\n", contentType)
	buf.WriteString(content)
	buf.WriteString("\r\n")
}

func domainOf(addr string) string {
	if _, domain, ok := strings.Cut(addr, "@"); ok {
		return domain
	}
	return "localhost"
}
