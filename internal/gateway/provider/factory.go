package provider

import (
	"fmt"
	"strings"
	"time"

	"marketlens/internal/logger"
)

// Config is one narrator entry from the config file.
type Config struct {
	ID       string
	Provider string
	APIURL   string
	APIKey   string
	Model    string
	Enabled  bool
	Headers  map[string]string
}

// Build constructs the enabled narrator from config, or nil when none is
// enabled. Callers fall back to template narration on nil.
func Build(models []Config, timeout time.Duration) (Narrator, error) {
	for _, m := range models {
		if !m.Enabled {
			continue
		}
		id := strings.TrimSpace(m.ID)
		if id == "" {
			id = strings.TrimSpace(m.Provider) + ":" + strings.TrimSpace(m.Model)
			logger.Warnf("narrator entry for %q has no id, generated %s", m.Provider, id)
		}
		switch strings.ToLower(strings.TrimSpace(m.Provider)) {
		case "anthropic":
			return &AnthropicNarrator{
				BaseURL:      m.APIURL,
				APIKey:       m.APIKey,
				Model:        m.Model,
				Timeout:      timeout,
				ExtraHeaders: m.Headers,
				id:           id,
			}, nil
		default:
			return nil, fmt.Errorf("unknown narrator provider %q", m.Provider)
		}
	}
	return nil, nil
}
