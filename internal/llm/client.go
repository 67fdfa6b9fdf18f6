// Package llm talks to the Gemini generateContent API and turns its replies
// into mood payloads for the heart.
package llm

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

	"github.com/iburimskiy/heart-companion/internal/mood"
)

var (
	ErrNoAPIKey   = errors.New("llm: no API key configured")
	ErrEmptyReply = errors.New("llm: empty reply")
)

// Client handles communication with the Gemini backend.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

// Config holds LLM client configuration.
type Config struct {
	BaseURL string        // API root (default: https://generativelanguage.googleapis.com/v1beta)
	Model   string        // Model name (default: gemini-2.0-flash-lite)
	APIKey  string        // Sent as x-goog-api-key
	Timeout time.Duration // Request timeout (default: 30s)
}

// DefaultConfig returns the public Gemini endpoint with the lite model.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		Model:   "gemini-2.0-flash-lite",
		Timeout: 30 * time.Second,
	}
}

// NewClient creates a new LLM client. Empty fields take DefaultConfig values.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type schema struct {
	Type        string            `json:"type"`
	Description string            `json:"description,omitempty"`
	Properties  map[string]schema `json:"properties,omitempty"`
	Required    []string          `json:"required,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *schema `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// replySchema mirrors mood.Payload.
var replySchema = &schema{
	Type: "OBJECT",
	Properties: map[string]schema{
		"short_dialogue": {Type: "STRING", Description: "A very short phrase (3-5 words at most) shown on the heart."},
		"long_dialogue":  {Type: "STRING", Description: "The main, longer chat reply."},
		"color_hex":      {Type: "STRING", Description: "Hex color (e.g. #FFC0CB) for the heart, reflecting the mood."},
		"frequency_hz":   {Type: "NUMBER", Description: "Heartbeat frequency in Hz (0.5-15), reflecting the mood."},
	},
	Required: []string{"short_dialogue", "long_dialogue", "color_hex", "frequency_hz"},
}

// Mood sends prompt and decodes the structured mood reply.
func (c *Client) Mood(ctx context.Context, prompt string) (mood.Payload, error) {
	text, err := c.generate(ctx, prompt)
	if err != nil {
		return mood.Payload{}, err
	}
	return ParseReply(text)
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   replySchema,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := c.baseURL + "/models/" + url.PathEscape(c.model) + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Candidates) == 0 {
		if reason := result.PromptFeedback.BlockReason; reason != "" {
			return "", fmt.Errorf("prompt blocked (%s): %w", reason, ErrEmptyReply)
		}
		return "", ErrEmptyReply
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyReply
	}
	return sb.String(), nil
}

// ParseReply decodes a mood payload from model output, tolerating markdown
// code fences and prose around the JSON object.
func ParseReply(text string) (mood.Payload, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var p mood.Payload
	if err := json.Unmarshal([]byte(cleaned), &p); err != nil {
		if err := json.Unmarshal([]byte(extractJSON(cleaned)), &p); err != nil {
			return mood.Payload{}, fmt.Errorf("parsing reply %q: %w", text, err)
		}
	}
	if p.ShortText == "" && p.LongText == "" {
		return mood.Payload{}, ErrEmptyReply
	}
	return p, nil
}

// extractJSON tries to find a JSON object in a string that might have extra text.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}
