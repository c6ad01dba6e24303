package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joseph-ayodele/workorders-tracker/internal/llm"
)

// Config for the Gemini client.
type Config struct {
	APIKey  string
	BaseURL string // default https://generativelanguage.googleapis.com/v1beta
	Model   string // default gemini-2.5-flash
	Timeout time.Duration
}

// Client calls the generateContent REST endpoint with the prompt and one inline image.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// Complete implements llm.Model.
func (c *Client) Complete(ctx context.Context, img llm.Image) (string, error) {
	if c.cfg.APIKey == "" {
		return "", errors.New("gemini: api key is not configured")
	}
	start := time.Now()

	body := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: llm.Prompt},
				{InlineData: &inlineData{MimeType: img.MIMEOrSniff(), Data: img.Base64()}},
			},
		}},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.Model), url.QueryEscape(c.cfg.APIKey))

	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, nil, c.logger)
	if err != nil {
		c.logger.Error("llm.gemini.request_failed",
			"image", img.Name,
			"model", c.cfg.Model,
			"error", c.redact(err),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("gemini: %s", c.redact(err))
	}

	var res generateResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(res.Candidates) == 0 {
		if res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini: prompt blocked: %s", res.PromptFeedback.BlockReason)
		}
		return "", errors.New("gemini: returned no candidates")
	}

	var b strings.Builder
	for _, p := range res.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		return "", errors.New("gemini: returned no content")
	}

	c.logger.Info("llm.gemini.ok",
		"image", img.Name,
		"model", c.cfg.Model,
		"reply_len", b.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b.String(), nil
}

func (c *Client) redact(err error) string {
	msg := err.Error()
	if c.cfg.APIKey == "" {
		return msg
	}
	msg = strings.ReplaceAll(msg, url.QueryEscape(c.cfg.APIKey), "REDACTED")
	return strings.ReplaceAll(msg, c.cfg.APIKey, "REDACTED")
}
