package mlapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type Options struct {
	BaseURL string

	// Timeout bounds the prediction call; HealthTimeout bounds the
	// health probe. Neither call is retried.
	Timeout       time.Duration
	HealthTimeout time.Duration

	HTTPClient *http.Client
}

type Client struct {
	baseURL string

	timeout       time.Duration
	healthTimeout time.Duration

	httpClient *http.Client
}

func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("baseURL required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	healthTimeout := opts.HealthTimeout
	if healthTimeout <= 0 {
		healthTimeout = 5 * time.Second
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	return &Client{
		baseURL:       baseURL,
		timeout:       timeout,
		healthTimeout: healthTimeout,
		httpClient:    hc,
	}, nil
}

func NewFromEnv() (*Client, error) {
	timeoutSeconds := intFromEnv("ML_API_TIMEOUT_SECONDS", 30)
	healthTimeoutSeconds := intFromEnv("ML_API_HEALTH_TIMEOUT_SECONDS", 5)

	return New(Options{
		BaseURL:       getEnv("ML_API_URL", "http://localhost:5000"),
		Timeout:       time.Duration(timeoutSeconds) * time.Second,
		HealthTimeout: time.Duration(healthTimeoutSeconds) * time.Second,
	})
}

func (c *Client) BaseURL() string { return c.baseURL }

// Health probes the service. A non-2xx answer or a status other than
// "ok"/"healthy" is reported as ErrUnhealthy.
func (c *Client) Health(ctx context.Context) error {
	var resp healthResponse
	if err := c.doJSON(ctx, c.healthTimeout, http.MethodGet, "/api/health", nil, &resp); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(resp.Status)) {
	case "ok", "healthy":
		return nil
	}
	return ErrUnhealthy
}

// Predict sends the normalized feature payload and returns the
// consensus answer. The probability in the response is on a 0-100
// scale; callers normalize it.
func (c *Client) Predict(ctx context.Context, payload FeaturePayload) (*PredictResponse, error) {
	req := predictRequest{Data: payload}

	var resp PredictResponse
	if err := c.doJSON(ctx, c.timeout, http.MethodPost, "/api/predict", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, timeout time.Duration, method string, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	ctx2 := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx2, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx2, method, c.baseURL+path, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseHTTPError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intFromEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
