package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fiootv/comms-gateway/internal/model"
)

type Provider interface {
	Name() string
	Supports(ch model.Channel) bool
	Ready() bool
	Acquire() bool
	Send(ctx context.Context, msg model.OutboundMessage) error
}

// HTTPProvider posts messages to a Twilio-style relay, one path per channel.
type HTTPProvider struct {
	name         string
	baseURL      string
	smsPath      string
	whatsappPath string
	client       *http.Client
	br           *MicroBreaker
}

func NewHTTPProvider(
	name, baseURL, smsPath, whatsappPath string,
	timeoutMs, failThreshold, openForMs int,
) *HTTPProvider {
	if timeoutMs <= 0 {
		timeoutMs = 3000
	}

	if failThreshold <= 0 {
		failThreshold = 3
	}

	if openForMs <= 0 {
		openForMs = 15000
	}

	return &HTTPProvider{
		name:         name,
		baseURL:      baseURL,
		smsPath:      smsPath,
		whatsappPath: whatsappPath,
		client:       &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		br:           NewMicroBreaker(failThreshold, time.Duration(openForMs)*time.Millisecond),
	}
}

func (p *HTTPProvider) Name() string  { return p.name }
func (p *HTTPProvider) Ready() bool   { return p.br.Ready() }
func (p *HTTPProvider) Acquire() bool { return p.br.TryAcquire() }

func (p *HTTPProvider) Supports(ch model.Channel) bool {
	return ch == model.ChannelSMS || ch == model.ChannelWhatsApp
}

func (p *HTTPProvider) Send(ctx context.Context, msg model.OutboundMessage) error {
	path := p.smsPath
	if msg.Channel == model.ChannelWhatsApp {
		path = p.whatsappPath
	}

	if err := p.post(ctx, path, msg); err != nil {
		p.br.OnFailure()
		return err
	}

	p.br.OnSuccess()

	return nil
}

func (p *HTTPProvider) post(ctx context.Context, path string, msg model.OutboundMessage) error {
	b, _ := json.Marshal(map[string]string{
		"to":   msg.To,
		"body": msg.Body,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return err
	}

	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return fmt.Errorf("provider=%s path=%s status=%d", p.name, path, res.StatusCode)
	}

	return nil
}
