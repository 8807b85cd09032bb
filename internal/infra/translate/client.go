package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
)

// Config holds fallback translator settings.
type Config struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// RepairContext carries the failure context of a repair request.
type RepairContext struct {
	CurrentText string
	RawError    string
	ErrorKind   domain.ErrorKind
	MemoryHits  []domain.ErrorSolution
	SearchHits  []string
}

// Request is one call to the fallback translator: a fresh conversion
// when Repair is nil, a patch otherwise. Payloads carry DDL, code, and
// metadata only; CheckPayload rejects row-level data before the call.
type Request struct {
	Source   string
	Kind     domain.ObjectKind
	Dialect  string
	Patterns []domain.Pattern
	Repair   *RepairContext
}

// Client is an HTTP client for an OpenAI-style chat-completions API.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient creates a translator client. An empty api_key falls back to
// the TRANSLATOR_API_KEY environment variable.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("TRANSLATOR_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("translator api key not set")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1/chat/completions"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Translate sends one request and returns sanitized statement text.
func (c *Client) Translate(ctx context.Context, req Request) (string, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return "", err
	}

	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal translator request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create translator request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("translator call: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translator status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parse translator response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("translator returned empty content")
	}

	return Sanitize(parsed.Choices[0].Message.Content), nil
}

// BuildPrompt assembles the user prompt for a request, running the
// row-data payload check first.
func BuildPrompt(req Request) (string, error) {
	parts := []string{req.Source}
	if req.Repair != nil {
		parts = append(parts, req.Repair.CurrentText)
		for _, hit := range req.Repair.SearchHits {
			parts = append(parts, hit)
		}
		for _, sol := range req.Repair.MemoryHits {
			parts = append(parts, sol.Solution)
		}
	}
	if err := CheckPayload(req.Kind, parts...); err != nil {
		return "", err
	}

	dialect := req.Dialect
	if dialect == "" {
		dialect = "SQL Server"
	}

	var extras strings.Builder
	if len(req.Patterns) > 0 {
		extras.WriteString(patternsHeader)
		for _, p := range req.Patterns {
			fmt.Fprintf(&extras, "- %s\n", p.Summary)
		}
	}

	if req.Repair == nil {
		return fmt.Sprintf(convertTemplate, req.Kind, dialect, req.Source, extras.String()), nil
	}

	var context strings.Builder
	context.WriteString(extras.String())
	if len(req.Repair.MemoryHits) > 0 {
		context.WriteString(memoryHitsHeader)
		for _, s := range req.Repair.MemoryHits {
			fmt.Fprintf(&context, "- %s\n", s.Solution)
		}
	}
	if len(req.Repair.SearchHits) > 0 {
		context.WriteString(searchHitsHeader)
		for _, s := range req.Repair.SearchHits {
			fmt.Fprintf(&context, "- %s\n", s)
		}
	}

	return fmt.Sprintf(repairTemplate,
		req.Kind, dialect,
		req.Source,
		req.Repair.CurrentText,
		req.Repair.ErrorKind, req.Repair.RawError,
		context.String(),
	), nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
