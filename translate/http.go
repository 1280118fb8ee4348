package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	httpInitialBackoff = 100 * time.Millisecond
	httpMaxBackoff     = 2 * time.Second
)

// HTTPTranslator calls an external translation service over HTTP.
type HTTPTranslator struct {
	client       *http.Client
	translateURL string
	detectURL    string
	maxRetries   uint64
	logger       *zap.SugaredLogger
}

func NewHTTPTranslator(baseURL, translatePath, detectPath string, timeout time.Duration, maxRetries int, logger *zap.SugaredLogger) *HTTPTranslator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &HTTPTranslator{
		client:       &http.Client{Timeout: timeout},
		translateURL: baseURL + translatePath,
		detectURL:    baseURL + detectPath,
		maxRetries:   uint64(maxRetries),
		logger:       logger,
	}
}

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type detectRequest struct {
	Text string `json:"text"`
}

func (t *HTTPTranslator) Translate(ctx context.Context, text, source, target string) (Translation, error) {
	var result Translation
	err := t.post(ctx, t.translateURL, translateRequest{Text: text, Source: source, Target: target}, &result)
	if err != nil {
		return Translation{}, fmt.Errorf("translate request failed: %w", err)
	}
	if result.TranslatedText == "" {
		return Translation{}, fmt.Errorf("translate response contained no translation")
	}
	return result, nil
}

func (t *HTTPTranslator) Detect(ctx context.Context, text string) (Detection, error) {
	var result Detection
	err := t.post(ctx, t.detectURL, detectRequest{Text: text}, &result)
	if err != nil {
		return Detection{}, fmt.Errorf("detect request failed: %w", err)
	}
	if result.Language == "" {
		return Detection{}, fmt.Errorf("detect response contained no language")
	}
	return result, nil
}

// post issues a JSON POST with bounded exponential backoff. Non-2xx
// responses are retried; a cancelled context aborts the retry loop.
func (t *HTTPTranslator) post(ctx context.Context, url string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := t.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	}

	backoffStrategy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(httpInitialBackoff),
				backoff.WithMaxInterval(httpMaxBackoff),
			),
			t.maxRetries,
		),
		ctx,
	)

	return backoff.RetryNotify(operation, backoffStrategy, func(err error, d time.Duration) {
		t.logger.Warnw("retrying translation request", "url", url, "error", err, "next_in", d)
	})
}
