package openai

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Config for the OpenAI client.
type Config struct {
	APIKey  string        // empty means Complete fails with llm.ErrMissingCredentials
	BaseURL string        // default https://api.openai.com/v1
	Model   string        // must accept image input, e.g. "gpt-4o"
	Detail  string        // image_url detail: "high" (default), "low" or "auto"
	Timeout time.Duration // http client timeout

	// RequestsPerMinute throttles outbound calls; 0 disables the limiter.
	RequestsPerMinute int
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.Detail == "" {
		cfg.Detail = "high"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 2)
	}
	return c
}

// HasCredentials reports whether an API key is configured.
func (c *Client) HasCredentials() bool { return c.cfg.APIKey != "" }
