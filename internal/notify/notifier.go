// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

// Package notify delivers out-of-band messages (password reset codes) to
// users over SMTP, behind an asynchronous dispatcher so delivery never
// blocks a request path.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/samber/oops"
)

// Notifier delivers a message to an address.
type Notifier interface {
	Send(ctx context.Context, address, message string) error
}

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	From     string `koanf:"from"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// SMTPNotifier sends mail over implicit TLS (SMTPS, typically port 465).
type SMTPNotifier struct {
	cfg SMTPConfig
}

// NewSMTPNotifier creates an SMTPNotifier.
// Returns an error if the relay host or sender address is missing.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, oops.Code("NOTIFY_CONFIG_INVALID").Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, oops.Code("NOTIFY_CONFIG_INVALID").Errorf("smtp sender address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 465
	}
	return &SMTPNotifier{cfg: cfg}, nil
}

// Send delivers message to address through the configured relay. The
// context bounds the connection; the dispatcher sets the deadline.
func (n *SMTPNotifier) Send(ctx context.Context, address, message string) error {
	addr := net.JoinHostPort(n.cfg.Host, fmt.Sprintf("%d", n.cfg.Port))

	dialer := &tls.Dialer{Config: &tls.Config{ServerName: n.cfg.Host, MinVersion: tls.VersionTLS12}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return oops.Code("NOTIFY_SEND_FAILED").With("operation", "dial relay").Wrap(err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline) //nolint:errcheck // best effort; the dial already honoured ctx
	}

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		_ = conn.Close() //nolint:errcheck // handshake failed, nothing else to do
		return oops.Code("NOTIFY_SEND_FAILED").With("operation", "smtp handshake").Wrap(err)
	}
	defer client.Close() //nolint:errcheck // connection teardown

	if n.cfg.Username != "" {
		auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return oops.Code("NOTIFY_SEND_FAILED").With("operation", "authenticate").Wrap(err)
		}
	}

	if err := client.Mail(n.cfg.From); err != nil {
		return oops.Code("NOTIFY_SEND_FAILED").With("operation", "mail from").Wrap(err)
	}
	if err := client.Rcpt(address); err != nil {
		return oops.Code("NOTIFY_SEND_FAILED").With("operation", "rcpt to").Wrap(err)
	}

	w, err := client.Data()
	if err != nil {
		return oops.Code("NOTIFY_SEND_FAILED").With("operation", "data").Wrap(err)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&body, "To: %s\r\n", address)
	body.WriteString("Subject: Driftline password reset\r\n")
	body.WriteString("\r\n")
	body.WriteString(message)
	body.WriteString("\r\n")

	if _, err := w.Write([]byte(body.String())); err != nil {
		return oops.Code("NOTIFY_SEND_FAILED").With("operation", "write body").Wrap(err)
	}
	if err := w.Close(); err != nil {
		return oops.Code("NOTIFY_SEND_FAILED").With("operation", "finish body").Wrap(err)
	}

	if err := client.Quit(); err != nil {
		return oops.Code("NOTIFY_SEND_FAILED").With("operation", "quit").Wrap(err)
	}
	return nil
}
