package mailrelay

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"kissbooth/internal/ports"
)

// Config controls the mail relay endpoint.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Client implements ports.Submitter against the mail relay. The relay turns
// the still and its label into a notification; the client only sees
// success or failure.
type Client struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type submission struct {
	Image      string `json:"image"`
	CardChoice string `json:"cardChoice"`
}

// Submit issues a single request carrying the still and label. No retry;
// every transport failure or non-success response maps to ErrDeliveryFailed.
func (c *Client) Submit(ctx context.Context, image []byte, label string) error {
	if strings.TrimSpace(c.cfg.Endpoint) == "" {
		return errors.New("KISSBOOTH_RELAY_URL is not configured")
	}
	if len(image) == 0 {
		return errors.New("no image to submit")
	}

	body, err := json.Marshal(submission{
		Image:      "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image),
		CardChoice: label,
	})
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: relay returned %s", ports.ErrDeliveryFailed, resp.Status)
	}

	c.logger.Info("submission delivered", "bytes", len(image), "label", label)
	return nil
}
