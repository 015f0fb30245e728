package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	// StatusBackupSuccessful is the status reported after a completed pass.
	StatusBackupSuccessful = "BackupSuccessful"

	dateLayout = "2006-01-02 15:04:05"
)

// Payload is the webhook notification body.
type Payload struct {
	Project  string `json:"project"`
	Date     string `json:"date"`
	Status   string `json:"status"`
	Filename string `json:"filename"`
}

// NewPayload builds the success payload for one archive.
func NewPayload(project, filename string, now time.Time) Payload {
	return Payload{
		Project:  project,
		Date:     now.Format(dateLayout),
		Status:   StatusBackupSuccessful,
		Filename: filename,
	}
}

// StatusError reports a webhook response other than 200.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook failed with status code %d", e.Code)
}

// Webhook delivers notifications over HTTP POST. Delivery is
// fire-and-forget: failures are reported to the caller for logging and
// never retried.
type Webhook struct {
	client *http.Client
	url    string

	logger *zap.Logger
}

// Option provides mechanism to configure a Webhook.
type Option func(w *Webhook) error

// WithHTTPClient sets the underlying HTTP client for the Webhook.
func WithHTTPClient(client *http.Client) Option {
	return func(w *Webhook) error {
		if client == nil {
			return errors.New("nil HTTP client")
		}
		w.client = client
		return nil
	}
}

// WithLogger sets the logger for the Webhook.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Webhook) error {
		w.logger = logger
		return nil
	}
}

// NewWebhook creates a Webhook posting to rawURL.
func NewWebhook(rawURL string, opts ...Option) (*Webhook, error) {
	if _, err := url.Parse(rawURL); err != nil {
		return nil, err
	}
	w := &Webhook{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
			Timeout: 10 * time.Second,
		},
		url:    rawURL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Send posts the payload. Any status other than 200 yields a
// *StatusError; transport failures are returned as-is.
func (w *Webhook) Send(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	w.logger.Sugar().Debugf("posting notification for %s to %s", p.Filename, w.url)
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(ioutil.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}
