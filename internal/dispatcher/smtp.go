package dispatcher

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/fiootv/comms-gateway/internal/model"
)

// SMTPProvider delivers email through a plain SMTP relay.
type SMTPProvider struct {
	name     string
	addr     string // host:port
	host     string
	username string
	password string
	from     string
	br       *MicroBreaker
}

func NewSMTPProvider(name, host string, port int, username, password, from string, failThreshold, openForMs int) *SMTPProvider {
	if port <= 0 {
		port = 587
	}
	if failThreshold <= 0 {
		failThreshold = 3
	}
	if openForMs <= 0 {
		openForMs = 15000
	}

	return &SMTPProvider{
		name:     name,
		addr:     fmt.Sprintf("%s:%d", host, port),
		host:     host,
		username: username,
		password: password,
		from:     from,
		br:       NewMicroBreaker(failThreshold, time.Duration(openForMs)*time.Millisecond),
	}
}

func (p *SMTPProvider) Name() string  { return p.name }
func (p *SMTPProvider) Ready() bool   { return p.br.Ready() }
func (p *SMTPProvider) Acquire() bool { return p.br.TryAcquire() }

func (p *SMTPProvider) Supports(ch model.Channel) bool {
	return ch == model.ChannelEmail
}

func (p *SMTPProvider) Send(_ context.Context, msg model.OutboundMessage) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", p.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)

	var auth smtp.Auth
	if p.username != "" {
		auth = smtp.PlainAuth("", p.username, p.password, p.host)
	}

	if err := smtp.SendMail(p.addr, auth, p.from, []string{msg.To}, []byte(b.String())); err != nil {
		p.br.OnFailure()
		return fmt.Errorf("provider=%s smtp send: %w", p.name, err)
	}

	p.br.OnSuccess()

	return nil
}
