package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/animlab/animutils/internal/logging"
	"github.com/animlab/animutils/pkg/types"
)

// DefaultTimeout applies when the caller's context has no deadline; vision
// models on a Pi-class CPU are slow.
const DefaultTimeout = 300 * time.Second

var (
	reBlock    = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reInline   = regexp.MustCompile(`(?m)//.*$`)
	reTrailing = regexp.MustCompile(`,(\s*[}\]])`)
)

// Client wraps the Ollama API client
type Client struct {
	client  *api.Client
	timeout time.Duration
}

// NewClient creates a client for the server at ollamaURL. Any path, such as
// /api/chat, is dropped.
func NewClient(ollamaURL string) (*Client, error) {
	parsed, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL: %q needs scheme and host", ollamaURL)
	}
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &Client{client: api.NewClient(base, http.DefaultClient), timeout: DefaultTimeout}, nil
}

// SetTimeout overrides DefaultTimeout
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// SimpleQuery sends prompt with the image and returns the raw reply
func (c *Client) SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error) {
	return c.chat(ctx, model, prompt, imgB64, nil)
}

// LocateRegion asks the model for a region and parses its JSON reply
func (c *Client) LocateRegion(ctx context.Context, model, prompt, imgB64 string) (*types.Detection, error) {
	options := map[string]any{"temperature": 0.2}
	raw, err := c.chat(ctx, model, prompt, imgB64, options)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, fmt.Errorf("empty response from ollama")
	}
	return parseDetection(raw), nil
}

func (c *Client) chat(ctx context.Context, model, prompt, imgB64 string, options map[string]any) (string, error) {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	imgBytes, err := base64.StdEncoding.DecodeString(imgB64)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 image: %w", err)
	}

	stream := false
	req := &api.ChatRequest{
		Model: model,
		Messages: []api.Message{{
			Role:    "user",
			Content: prompt,
			Images:  []api.ImageData{api.ImageData(imgBytes)},
		}},
		Stream:  &stream,
		Options: options,
	}

	var content string
	err = c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content += resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat error: %w", err)
	}
	logging.L().Debug("ollama reply", "model", model, "chars", len(content))
	return content, nil
}

// fallback is returned when the reply cannot be read; it selects the whole frame
func fallback(label, description string, tags ...string) *types.Detection {
	return &types.Detection{
		Label:       label,
		Confidence:  0,
		Box:         types.FullZoom,
		Description: description,
		Tags:        append([]string{"fallback"}, tags...),
	}
}

func parseDetection(raw string) *types.Detection {
	raw = sanitizeModelJSON(raw)
	if !strings.HasPrefix(raw, "{") {
		logging.L().Warn("model reply is not JSON", "reply", raw)
		return fallback("none", "model returned non-JSON response", "non-json")
	}

	var d types.Detection
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		logging.L().Warn("model reply did not parse", "error", err)
		return fallback("none", "failed to parse model response", "parse-error")
	}
	return &d
}

// sanitizeModelJSON strips code fences, comments and trailing commas and
// keeps the outermost object
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.Trim(strings.TrimSpace(raw), "`")

	raw = reBlock.ReplaceAllString(raw, "")
	raw = reInline.ReplaceAllString(raw, "")
	raw = reTrailing.ReplaceAllString(raw, "$1")

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}
