package converter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
)

// HTTPClient talks JSON over HTTP to the converter service.
type HTTPClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTP converter client.
func NewHTTPClient(cfg Config) *HTTPClient {
	return &HTTPClient{
		endpoint: cfg.Endpoint,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type convertRequest struct {
	Source string `json:"source"`
	Kind   string `json:"kind"`
}

type convertResponse struct {
	Text     string              `json:"text"`
	Errors   []domain.Diagnostic `json:"errors"`
	Warnings []domain.Diagnostic `json:"warnings"`
}

// Convert posts one object definition and parses diagnostics into counts.
func (c *HTTPClient) Convert(ctx context.Context, source string, kind domain.ObjectKind) (*domain.ConversionResult, error) {
	data, err := json.Marshal(convertRequest{Source: source, Kind: string(kind)})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", domain.ErrConversion, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrConversion, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConversion, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrConversion, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http %d: %s", domain.ErrConversion, resp.StatusCode, string(body))
	}

	var parsed convertResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", domain.ErrConversion, err)
	}

	result := &domain.ConversionResult{
		Tool:         domain.ToolPrimary,
		Text:         parsed.Text,
		ErrorCount:   len(parsed.Errors),
		WarningCount: len(parsed.Warnings),
	}
	result.Diagnostics = append(result.Diagnostics, parsed.Errors...)
	result.Diagnostics = append(result.Diagnostics, parsed.Warnings...)
	return result, nil
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }
