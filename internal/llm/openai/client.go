package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aoperat/centumbob/internal/llm"
)

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float32         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete implements llm.VisionCompleter using chat/completions with one user message that
// carries the prompt and the image as an inline data URL.
func (c *Client) Complete(ctx context.Context, prompt string, image llm.Image, opts llm.CompletionOptions) (string, error) {
	if !c.HasCredentials() {
		return "", llm.ErrMissingCredentials
	}
	start := time.Now()

	body := chatRequest{
		Model:       c.cfg.Model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: llm.DataURL(image), Detail: c.cfg.Detail}},
			},
		}},
	}
	if opts.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	c.logger.Info("llm.complete.start",
		"model", c.cfg.Model,
		"prompt_len", len(prompt),
		"image_bytes", len(image.Bytes),
		"mime", image.MimeType,
		"json_mode", opts.JSONMode,
	)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.logger.Warn("llm.complete.throttled", "error", err)
			return "", fmt.Errorf("openai rate limiter: %w", err)
		}
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.complete.http_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.complete.decode_error", "error", err, "raw_bytes", len(raw))
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response: %w", llm.ErrEmptyResponse)
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("openai finish_reason %q: %w", cc.Choices[0].FinishReason, llm.ErrEmptyResponse)
	}

	c.logger.Info("llm.complete.ok",
		"model", c.cfg.Model,
		"finish_reason", cc.Choices[0].FinishReason,
		"prompt_tokens", cc.Usage.PromptTokens,
		"completion_tokens", cc.Usage.CompletionTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
