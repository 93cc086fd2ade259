package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"voice-leads-go/internal/contract"
	"voice-leads-go/internal/fingerprint"
	"voice-leads-go/internal/types"
)

// Forwarder delivers processing results to the persistence service.
type Forwarder struct {
	url      string
	apiKey   string
	client   *http.Client
	maxRetry time.Duration
	initial  time.Duration
	validate bool
	log      *logrus.Entry
}

type Option func(*Forwarder)

func WithAPIKey(key string) Option { return func(f *Forwarder) { f.apiKey = key } }

func WithTimeout(d time.Duration) Option {
	return func(f *Forwarder) { f.client = &http.Client{Timeout: d} }
}

// WithRetry bounds the total time spent retrying one delivery.
func WithRetry(maxElapsed, initialInterval time.Duration) Option {
	return func(f *Forwarder) {
		f.maxRetry = maxElapsed
		if initialInterval > 0 {
			f.initial = initialInterval
		}
	}
}

// WithContractCheck refuses to send results that fail the output schema.
func WithContractCheck(on bool) Option { return func(f *Forwarder) { f.validate = on } }

func New(url string, log *logrus.Entry, opts ...Option) *Forwarder {
	f := &Forwarder{
		url:      url,
		client:   &http.Client{Timeout: 10 * time.Second},
		maxRetry: 30 * time.Second,
		initial:  backoff.DefaultInitialInterval,
		validate: true,
		log:      log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Send posts res as JSON. Transport errors and 5xx responses are retried with
// exponential backoff; 4xx responses and contract violations are not.
func (f *Forwarder) Send(ctx context.Context, res types.ProcessingResult) error {
	body, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if f.validate {
		if err := contract.ValidateJSON(body); err != nil {
			return err
		}
	}
	key, err := fingerprint.DigestJSON(body)
	if err != nil {
		return fmt.Errorf("fingerprint result: %w", err)
	}

	log := f.log.WithFields(logrus.Fields{
		"conversation_id": res.CallMetadata.ConversationID,
		"idempotency_key": key,
	})

	var lastErr error
	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", key)
		if f.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+f.apiKey)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			log.WithField("attempt", attempt).WithField("error", err.Error()).Warn("sink request failed")
			return err
		}
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		switch {
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("sink server error %d: %s", resp.StatusCode, string(respBody))
			log.WithField("attempt", attempt).WithField("http_status", resp.StatusCode).Warn("sink returned server error")
			return lastErr
		case resp.StatusCode >= 400:
			lastErr = fmt.Errorf("sink rejected result %d: %s", resp.StatusCode, string(respBody))
			return backoff.Permanent(lastErr)
		}
		lastErr = nil
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.initial
	b.MaxElapsedTime = f.maxRetry

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return fmt.Errorf("forward result: %w", lastErr)
	}
	log.WithField("attempts", attempt).Debug("result forwarded")
	return nil
}
