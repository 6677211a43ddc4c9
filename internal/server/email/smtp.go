package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"time"
)

const smtpTimeout = 30 * time.Second

const boundary = "YXNrLWJvdW5kYXJ5"

// SMTPMailer sends messages through an SMTP relay. The connection is upgraded
// with STARTTLS when the server offers it, and PLAIN authentication is used
// when a Username is set.
type SMTPMailer struct {
	// Server is the host:port of the relay.
	Server      string
	Username    string
	Password    string
	FromAddress string
	FromName    string

	tlsConfig *tls.Config
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.Server == "" {
		return ErrNotConfigured
	}

	host, _, err := net.SplitHostPort(m.Server)
	if err != nil {
		return fmt.Errorf("smtp server %q: %w", m.Server, err)
	}

	dialer := net.Dialer{Timeout: smtpTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", m.Server)
	if err != nil {
		return fmt.Errorf("connect to smtp server: %w", err)
	}

	deadline := time.Now().Add(smtpTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("set deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		cfg := m.tlsConfig
		if cfg == nil {
			cfg = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
		}
		if err := client.StartTLS(cfg); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if m.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", m.Username, m.Password, host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.FromAddress); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(msg.ToAddress); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(m.buildMessage(msg)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return client.Quit()
}

func (m *SMTPMailer) buildMessage(msg Message) []byte {
	var buf bytes.Buffer
	header := func(key, value string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", key, value)
	}

	header("From", (&mail.Address{Name: m.FromName, Address: m.FromAddress}).String())
	header("To", (&mail.Address{Name: msg.ToName, Address: msg.ToAddress}).String())
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", time.Now().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")

	if len(msg.HTMLBody) == 0 {
		header("Content-Type", "text/plain; charset=utf-8")
		header("Content-Transfer-Encoding", "base64")
		buf.WriteString("\r\n")
		writeBase64(&buf, msg.PlainBody)
		return buf.Bytes()
	}

	header("Content-Type", "multipart/alternative; boundary="+boundary)
	buf.WriteString("\r\n")

	part := func(contentType string, body []byte) {
		buf.WriteString("--" + boundary + "\r\n")
		header("Content-Type", contentType+"; charset=utf-8")
		header("Content-Transfer-Encoding", "base64")
		buf.WriteString("\r\n")
		writeBase64(&buf, body)
	}
	part("text/plain", msg.PlainBody)
	part("text/html", msg.HTMLBody)
	buf.WriteString("--" + boundary + "--\r\n")

	return buf.Bytes()
}

// writeBase64 writes body as base64 in lines of at most 76 characters.
func writeBase64(buf *bytes.Buffer, body []byte) {
	encoded := base64.StdEncoding.EncodeToString(body)
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76] + "\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded + "\r\n")
}
