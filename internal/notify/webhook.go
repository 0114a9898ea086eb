package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Webhook announces new rooms to a Discord-style endpoint. Delivery is
// best-effort: a few retries, then a warning log. Nothing in the game
// depends on it.
type Webhook struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

// New returns nil when url is empty, so callers can carry a nil webhook
// and skip announcements entirely.
func New(url string, log *zap.Logger) *Webhook {
	if url == "" {
		return nil
	}
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

func (w *Webhook) Announce(roomID, link string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	body, _ := json.Marshal(map[string]string{
		"content": fmt.Sprintf("New Fluff (Liar's Dice) game created! Join: %s", link),
	})

	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("webhook returned %d", resp.StatusCode))
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("webhook returned %d", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		w.log.Warn("webhook announce failed", zap.String("room", roomID), zap.Error(err))
	}
}
