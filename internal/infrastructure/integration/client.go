// Package integration holds the outbound HTTP clients: CEP and CNPJ lookup,
// the Focus NFe fiscal gateway and the Asaas billing gateway.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/locaflow/backend/internal/domain/shared"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 10 << 20
	userAgent      = "locaflow-backend/1.0"
)

// APIError is a non-2xx gateway answer
type APIError struct {
	Service    string
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %d %s - %s", e.Service, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %d - %s", e.Service, e.StatusCode, e.Message)
}

// Unwrap exposes the error as an INTEGRATION_ERROR domain error
func (e *APIError) Unwrap() error {
	return shared.NewDomainErrorf(shared.CodeIntegrationError, "%s: %s", e.Service, e.Message)
}

// HasStatus reports whether err is an *APIError with the given HTTP status
func HasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// errorParser extracts code and message from an error body
type errorParser func(body gjson.Result) (code, message string)

// restClient is the JSON transport shared by the gateway clients
type restClient struct {
	service    string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	authorize  func(req *http.Request)
	parseError errorParser
}

func newRestClient(service, baseURL string, timeout time.Duration, logger *zap.Logger) *restClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &restClient{
		service:    service,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named(service),
		authorize:  func(*http.Request) {},
		parseError: defaultErrorParser,
	}
}

func defaultErrorParser(body gjson.Result) (string, string) {
	return body.Get("code").String(), body.Get("message").String()
}

// doJSON sends body as JSON and parses the answer. A non-2xx status becomes an *APIError
func (c *restClient) doJSON(ctx context.Context, method, path string, body any) (gjson.Result, int, error) {
	raw, status, _, err := c.do(ctx, method, c.baseURL+path, body)
	if err != nil {
		return gjson.Result{}, status, err
	}
	if len(bytes.TrimSpace(raw)) > 0 && !gjson.ValidBytes(raw) {
		return gjson.Result{}, status, fmt.Errorf("%s: invalid JSON response", c.service)
	}
	return gjson.ParseBytes(raw), status, nil
}

// do performs the request against an absolute URL and returns the raw body.
// Credentials are only attached for the gateway host
func (c *restClient) do(ctx context.Context, method, target string, body any) ([]byte, int, string, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, "", fmt.Errorf("%s: failed to encode request: %w", c.service, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, 0, "", fmt.Errorf("%s: failed to build request: %w", c.service, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sameOrigin(req.URL) {
		c.authorize(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Request failed", zap.String("method", method), zap.String("url", target), zap.Error(err))
		return nil, 0, "", fmt.Errorf("%s: request failed: %w", c.service, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, "", fmt.Errorf("%s: failed to read response: %w", c.service, err)
	}

	c.logger.Debug("Request completed",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Service: c.service, StatusCode: resp.StatusCode}
		if gjson.ValidBytes(raw) {
			apiErr.Code, apiErr.Message = c.parseError(gjson.ParseBytes(raw))
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		c.logger.Warn("Gateway rejected request",
			zap.String("method", method),
			zap.String("url", target),
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code),
			zap.String("message", apiErr.Message),
		)
		return raw, resp.StatusCode, "", apiErr
	}
	return raw, resp.StatusCode, resp.Header.Get("Content-Type"), nil
}

// sameOrigin reports whether u points at the configured gateway
func (c *restClient) sameOrigin(u *url.URL) bool {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, base.Scheme) && strings.EqualFold(u.Host, base.Host)
}
