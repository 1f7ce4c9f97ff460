package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"marketlens/internal/logger"
)

// AnthropicNarrator calls the Anthropic messages API.
type AnthropicNarrator struct {
	BaseURL      string
	APIKey       string
	Model        string
	Timeout      time.Duration
	MaxRetries   int
	ExtraHeaders map[string]string

	id string
}

func (c *AnthropicNarrator) ID() string {
	if c.id != "" {
		return c.id
	}
	return "anthropic:" + c.Model
}

func (c *AnthropicNarrator) Narrate(ctx context.Context, p Prompt) (string, error) {
	ctx = ensureCtx(ctx)
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxRetries := normalizeRetries(c.MaxRetries)

	body := buildBody(c.Model, p)
	httpc := &http.Client{Timeout: timeout}
	return c.doMessages(ctx, httpc, c.messagesURL(), body, maxRetries)
}

func (c *AnthropicNarrator) messagesURL() string {
	url := strings.TrimRight(c.BaseURL, "/")
	if url == "" {
		url = "https://api.anthropic.com/v1"
	}
	url = strings.TrimSuffix(url, "/messages")
	return url + "/messages"
}

func buildBody(model string, p Prompt) []byte {
	maxTokens := p.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	body := map[string]any{
		"model":       model,
		"messages":    []map[string]any{{"role": "user", "content": buildContent(p)}},
		"temperature": 0.4,
		"max_tokens":  maxTokens,
	}
	if strings.TrimSpace(p.System) != "" {
		body["system"] = p.System
	}
	b, _ := json.Marshal(body)
	return b
}

func buildContent(p Prompt) []map[string]any {
	blocks := make([]map[string]any, 0, len(p.Images)*2+1)
	blocks = append(blocks, map[string]any{"type": "text", "text": p.User})
	for _, img := range p.Images {
		mediaType, data, ok := parseDataURI(img.DataURI)
		if !ok {
			logger.Warnf("[narrator] invalid image data uri, skipping")
			continue
		}
		blocks = append(blocks, map[string]any{
			"type": "image",
			"source": map[string]any{
				"type":       "base64",
				"media_type": mediaType,
				"data":       data,
			},
		})
		if desc := strings.TrimSpace(img.Description); desc != "" {
			blocks = append(blocks, map[string]any{"type": "text", "text": desc})
		}
	}
	return blocks
}

func parseDataURI(raw string) (mediaType, data string, ok bool) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "data:") {
		return "", "", false
	}
	comma := strings.Index(raw, ",")
	if comma < 0 {
		return "", "", false
	}
	meta := strings.TrimSpace(raw[len("data:"):comma])
	data = strings.TrimSpace(raw[comma+1:])
	if data == "" {
		return "", "", false
	}
	parts := strings.Split(meta, ";")
	mediaType = strings.TrimSpace(parts[0])
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	for _, part := range parts[1:] {
		if strings.EqualFold(strings.TrimSpace(part), "base64") {
			return mediaType, data, true
		}
	}
	return "", "", false
}

func (c *AnthropicNarrator) doMessages(ctx context.Context, httpc *http.Client, url string, body []byte, maxRetries int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt == 0 {
			logger.Debugf("[narrator] POST %s headers=%v", url, redactHeaders(c.headers()))
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		for k, v := range c.headers() {
			req.Header.Set(k, v)
		}
		resp, err := httpc.Do(req)
		if err != nil {
			lastErr = err
			// Transient network failures get the same retry budget as
			// retryable statuses; a dead context does not.
			if ctx.Err() == nil && attempt < maxRetries {
				logger.Debugf("[narrator] request failed, retrying: %v", err)
				time.Sleep(parseRetryAfter("", attempt))
				continue
			}
			break
		}

		if resp.StatusCode/100 == 2 {
			return decodeContent(resp)
		}

		msg := parseAPIError(resp)
		lastErr = fmt.Errorf("status=%d: %s", resp.StatusCode, msg)
		if shouldRetry(resp.StatusCode) && attempt < maxRetries {
			time.Sleep(parseRetryAfter(resp.Header.Get("Retry-After"), attempt))
			continue
		}
		break
	}
	return "", lastErr
}

func decodeContent(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	var r struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("empty text content")
	}
	return out, nil
}

func parseAPIError(resp *http.Response) string {
	defer resp.Body.Close()
	var eresp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&eresp); err == nil && strings.TrimSpace(eresp.Error.Message) != "" {
		return eresp.Error.Message
	}
	return resp.Status
}

func (c *AnthropicNarrator) headers() map[string]string {
	out := map[string]string{"Content-Type": "application/json"}
	if c.APIKey != "" && !headerKeyExists(c.ExtraHeaders, "x-api-key") {
		out["x-api-key"] = c.APIKey
	}
	if !headerKeyExists(c.ExtraHeaders, "anthropic-version") {
		out["anthropic-version"] = "2023-06-01"
	}
	for k, v := range c.ExtraHeaders {
		out[k] = v
	}
	return out
}

func headerKeyExists(headers map[string]string, key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for k := range headers {
		if strings.ToLower(strings.TrimSpace(k)) == key {
			return true
		}
	}
	return false
}
