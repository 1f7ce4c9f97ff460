// Package provider turns analysis results into narrative text through a
// configured language model.
package provider

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Image is an optional chart rendering attached to a prompt, as a
// base64 data URI.
type Image struct {
	DataURI     string
	Description string
}

// Prompt is one narration request.
type Prompt struct {
	System    string
	User      string
	Images    []Image
	MaxTokens int
}

// Narrator produces narrative text for a prompt.
type Narrator interface {
	ID() string
	Narrate(ctx context.Context, p Prompt) (string, error)
}

func ensureCtx(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func normalizeRetries(n int) int {
	if n < 0 {
		return 0
	}
	if n > 5 {
		return 5
	}
	return n
}

func shouldRetry(status int) bool {
	return status == 429 || status/100 == 5
}

func parseRetryAfter(header string, attempt int) time.Duration {
	if header != "" {
		if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Duration(attempt+1) * 2 * time.Second
}

func redactHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		lk := strings.ToLower(k)
		if strings.Contains(lk, "auth") || strings.Contains(lk, "key") || strings.Contains(lk, "token") {
			if len(v) > 4 {
				out[k] = "****" + v[len(v)-4:]
			} else {
				out[k] = "****"
			}
			continue
		}
		out[k] = v
	}
	return out
}
