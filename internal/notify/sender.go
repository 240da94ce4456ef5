package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aryanbrs/packklite-sub001/internal/common"
	"github.com/aryanbrs/packklite-sub001/internal/obs"
	"github.com/aryanbrs/packklite-sub001/internal/resilience"
)

// APISender posts messages to a transactional email HTTP API.
type APISender struct {
	Endpoint string
	APIKey   string
	From     string
	HTTP     resilience.HTTPClient
	Metrics  *obs.DomainMetrics
}

type apiRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Tags    []string `json:"tags,omitempty"`
}

// Send implements common.EmailSender.
func (s APISender) Send(ctx context.Context, msg common.EmailMessage) (err error) {
	defer func() { s.Metrics.EmailResult(msg.Tag, err) }()

	body := apiRequest{From: s.From, To: []string{msg.To}, Subject: msg.Subject, HTML: msg.HTML}
	if msg.Tag != "" {
		body.Tags = []string{msg.Tag}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	resp, err := s.HTTP.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &RejectedError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// LogSender logs messages instead of delivering them. Used in development
// when no email API is configured.
type LogSender struct {
	Log zerolog.Logger
}

// Send implements common.EmailSender.
func (s LogSender) Send(_ context.Context, msg common.EmailMessage) error {
	s.Log.Info().Str("to", msg.To).Str("subject", msg.Subject).Str("tag", msg.Tag).Msg("email not delivered: no email api configured")
	return nil
}

// SenderConfig configures NewSender.
type SenderConfig struct {
	APIURL  string
	APIKey  string
	From    string
	Timeout time.Duration
	Metrics *obs.DomainMetrics
	Breaker *resilience.Metrics
	Log     zerolog.Logger
}

// NewSender returns an APISender with a circuit breaker, or a LogSender when
// no API URL is configured.
func NewSender(cfg SenderConfig) common.EmailSender {
	if strings.TrimSpace(cfg.APIURL) == "" {
		return LogSender{Log: cfg.Log}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return APISender{
		Endpoint: cfg.APIURL,
		APIKey:   cfg.APIKey,
		From:     cfg.From,
		Metrics:  cfg.Metrics,
		HTTP: resilience.HTTPClient{
			Client:      resilience.NewTracedClient(0),
			Breaker:     resilience.NewBreaker(resilience.DefaultBreakerConfig("email_api"), cfg.Breaker, cfg.Log),
			BaseBackoff: 200 * time.Millisecond,
			MaxAttempts: 3,
			Jitter:      0.2,
			Timeout:     timeout,
		},
	}
}
