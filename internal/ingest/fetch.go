package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aoperat/centumbob/constants"
	"github.com/aoperat/centumbob/internal/common"
	"github.com/aoperat/centumbob/internal/llm"
)

const defaultFetchTimeout = 30 * time.Second

var (
	ErrInvalidURL     = fmt.Errorf("url must be absolute http(s): %w", common.ErrInvalidInput)
	ErrNotAnImage     = fmt.Errorf("remote content is not an image: %w", common.ErrInvalidInput)
	ErrRemoteResponse = fmt.Errorf("remote server error: %w", common.ErrUnavailable)
)

// FetchedImage is an image downloaded from a webhook or menu board URL.
type FetchedImage struct {
	Bytes       []byte `json:"-"`
	ContentType string `json:"contentType"`
	Ext         string `json:"ext"`
	Size        int    `json:"size"`
	DataURL     string `json:"dataUrl"`
}

// RemoteFetcher downloads menu images that restaurants publish behind a URL.
type RemoteFetcher struct {
	client   *http.Client
	maxBytes int
	logger   *slog.Logger
}

func NewRemoteFetcher(client *http.Client, logger *slog.Logger) *RemoteFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &RemoteFetcher{client: client, maxBytes: constants.MaxImageBytes, logger: logger}
}

// Fetch downloads rawURL, requiring an image/* content type and at most 10 MB of body.
func (f *RemoteFetcher) Fetch(ctx context.Context, rawURL string) (FetchedImage, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return FetchedImage{}, ErrInvalidURL
	}

	rid := uuid.New().String()
	start := time.Now()
	f.logger.Info("ingest.fetch.start", "req_id", rid, "host", u.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return FetchedImage{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "centumbob/1.0")
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("ingest.fetch.failed", "req_id", rid, "error", err)
		return FetchedImage{}, fmt.Errorf("fetch image: %w: %w", common.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.logger.Warn("ingest.fetch.status", "req_id", rid, "status", resp.StatusCode)
		return FetchedImage{}, fmt.Errorf("status %d: %w", resp.StatusCode, ErrRemoteResponse)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "image/") {
		return FetchedImage{}, fmt.Errorf("content type %q: %w", ct, ErrNotAnImage)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(f.maxBytes)+1))
	if err != nil {
		return FetchedImage{}, fmt.Errorf("read body: %w", err)
	}
	if len(body) > f.maxBytes {
		return FetchedImage{}, ErrImageTooLarge
	}
	if len(body) == 0 {
		return FetchedImage{}, ErrEmptyImage
	}

	mime := strings.TrimSpace(strings.SplitN(ct, ";", 2)[0])
	out := FetchedImage{
		Bytes:       body,
		ContentType: mime,
		Ext:         constants.ExtForMime(mime),
		Size:        len(body),
		DataURL:     llm.DataURL(llm.Image{Bytes: body, MimeType: mime}),
	}
	f.logger.Info("ingest.fetch.ok", "req_id", rid, "bytes", out.Size, "content_type", mime,
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}
