package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/http2"

	"github.com/TheMichaelB/otpdesk/internal/config"
	"github.com/TheMichaelB/otpdesk/internal/events"
	"github.com/TheMichaelB/otpdesk/internal/models"
)

// maxErrorBody bounds how much of a failed response is read for diagnostics.
const maxErrorBody = 64 * 1024

// HTTPClient handles HTTP communication with the API.
type HTTPClient struct {
	client    *http.Client
	transport *http.Transport
	baseURL   string
	userAgent string
	logger    *events.Logger
}

// NewHTTPClient creates an HTTP client. dev may be nil.
func NewHTTPClient(cfg *config.APIConfig, dev *config.DevConfig, logger *events.Logger) *HTTPClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			NextProtos: []string{"h2", "http/1.1"},
		},
	}
	if dev != nil && dev.InsecureSkipVerify {
		transport.TLSClientConfig.InsecureSkipVerify = true
	}

	if err := http2.ConfigureTransport(transport); err != nil {
		logger.WithError(err).Warn("Failed to configure HTTP/2")
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		transport: transport,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		logger:    logger.WithField("component", "http_client"),
	}
}

// PostJSON sends a JSON POST request.
func (c *HTTPClient) PostJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, body, out)
}

// GetJSON sends a GET request.
func (c *HTTPClient) GetJSON(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	url := c.baseURL + path

	requestID := events.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	logger := c.logger.WithFields(map[string]interface{}{
		"method":     method,
		"url":        url,
		"request_id": requestID,
	})
	if action := events.GetAction(ctx); action != "" {
		logger = logger.WithField("action", action)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	logger.WithField("size", len(body)).Debug("Sending request")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		logger.WithError(err).Debug("Request failed")
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	logger = logger.WithFields(map[string]interface{}{
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logger.WithField("body", string(respBody)).Debug("Received error response")
		return parseAPIError(resp.StatusCode, respBody)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	logger.WithField("size", len(respBody)).Debug("Received response")

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	return nil
}

// parseAPIError keeps whatever code/message the server supplied.
func parseAPIError(status int, body []byte) error {
	apiErr := &models.APIError{StatusCode: status}

	var payload struct {
		Code    interface{} `json:"code"`
		Message string      `json:"message"`
		Error   string      `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Code != nil {
			apiErr.Code = fmt.Sprint(payload.Code)
		}
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}

	return apiErr
}
