package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// SMTP connection security modes.
const (
	SecurityStartTLS = "starttls"
	SecurityTLS      = "tls"
	SecurityNone     = "none"
)

// DefaultSubject is used when SMTPConfig.Subject is empty.
const DefaultSubject = "Task reminder"

// SMTPConfig holds mail server settings.
type SMTPConfig struct {
	Server        string
	Port          int
	Username      string
	Password      string
	FromEmail     string
	FromName      string
	Subject       string
	Security      string
	SkipTLSVerify bool
	Timeout       time.Duration
}

// SMTPNotifier sends reminders as plain-text e-mail.
type SMTPNotifier struct {
	cfg    SMTPConfig
	dialer *net.Dialer
}

// NewSMTPNotifier checks cfg and fills in defaults.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if strings.TrimSpace(cfg.Server) == "" {
		return nil, errors.New("smtp: server is required")
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, errors.New("smtp: from address is required")
	}
	if cfg.Security == "" {
		cfg.Security = SecurityStartTLS
	}
	switch cfg.Security {
	case SecurityStartTLS, SecurityTLS, SecurityNone:
	default:
		return nil, fmt.Errorf("smtp: unknown security mode %q", cfg.Security)
	}
	if cfg.Port == 0 {
		switch cfg.Security {
		case SecurityTLS:
			cfg.Port = 465
		case SecurityNone:
			cfg.Port = 25
		default:
			cfg.Port = 587
		}
	}
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPNotifier{cfg: cfg, dialer: &net.Dialer{Timeout: cfg.Timeout}}, nil
}

// Config returns the effective configuration.
func (n *SMTPNotifier) Config() SMTPConfig {
	return n.cfg
}

// Send delivers message to address.
func (n *SMTPNotifier) Send(ctx context.Context, address, message string) error {
	return wrap(address, n.send(ctx, address, message))
}

func (n *SMTPNotifier) send(ctx context.Context, address, message string) error {
	cfg := n.cfg
	addr := net.JoinHostPort(cfg.Server, strconv.Itoa(cfg.Port))
	tlsConfig := &tls.Config{
		ServerName:         cfg.Server,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}

	conn, err := n.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	_ = conn.SetDeadline(time.Now().Add(cfg.Timeout))

	if cfg.Security == SecurityTLS {
		tlsConn := tls.Client(conn, tlsConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			_ = conn.Close()
			return fmt.Errorf("tls handshake: %w", err)
		}
		conn = tlsConn
	}

	client, err := smtp.NewClient(conn, cfg.Server)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("create smtp client: %w", err)
	}
	defer client.Close()

	if cfg.Security == SecurityStartTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return errors.New("server does not support STARTTLS")
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if cfg.Username != "" {
		auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Server)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp authentication failed: %w", err)
		}
	}

	if err := client.Mail(cfg.FromEmail); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(address); err != nil {
		return fmt.Errorf("add recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("open data: %w", err)
	}
	if _, err := w.Write(BuildMessage(n.from(), address, cfg.Subject, message)); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}
	return client.Quit()
}

func (n *SMTPNotifier) from() string {
	if n.cfg.FromName == "" {
		return n.cfg.FromEmail
	}
	return fmt.Sprintf("%s <%s>", n.cfg.FromName, n.cfg.FromEmail)
}

// BuildMessage renders a plain-text RFC 5322 message with CRLF line endings.
func BuildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	body = strings.ReplaceAll(body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\r\n")
	}
	return []byte(b.String())
}
