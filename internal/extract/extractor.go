// Package extract turns a photographed menu board into a validated weekly menu using OCR and
// a vision model.
package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aoperat/centumbob/internal/cache"
	"github.com/aoperat/centumbob/internal/entity"
	"github.com/aoperat/centumbob/internal/llm"
	"github.com/aoperat/centumbob/internal/menu"
)

var (
	ErrNoImage        = errors.New("extract: no image supplied")
	ErrOCRUnavailable = errors.New("extract: OCR unavailable")
	ErrImageFormat    = errors.New("extract: unsupported image format")
)

// Recognizer produces a best-effort transcription of an image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, mimeType string) (string, error)
}

// availability is implemented by recognizers that can detect a missing engine up front.
type availability interface {
	Available() error
}

// credentialed is implemented by completers that know whether they hold an API key.
type credentialed interface {
	HasCredentials() bool
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

type Config struct {
	MaxAttempts int           // default 2
	RetryDelay  time.Duration // default 1s
	MaxTokens   int           // default 2000
	Temperature float32       // default 0.1 when zero, see WithTemperature
}

type Extractor struct {
	ocr        Recognizer
	model      llm.VisionCompleter
	cfg        Config
	thresholds menu.Thresholds
	sleep      Sleeper
	cache      *cache.TTLCache[string, entity.ExtractionResult]
	logger     *slog.Logger
}

type Option func(*Extractor)

// WithSleeper replaces the delay between model attempts.
func WithSleeper(s Sleeper) Option {
	return func(e *Extractor) {
		if s != nil {
			e.sleep = s
		}
	}
}

// WithCache memoizes results by image SHA-256.
func WithCache(c *cache.TTLCache[string, entity.ExtractionResult]) Option {
	return func(e *Extractor) { e.cache = c }
}

func WithThresholds(t menu.Thresholds) Option {
	return func(e *Extractor) { e.thresholds = t }
}

// WithTemperature sets the sampling temperature, zero included. Config.Temperature
// treats zero as unset.
func WithTemperature(t float32) Option {
	return func(e *Extractor) { e.cfg.Temperature = t }
}

func NewExtractor(ocr Recognizer, model llm.VisionCompleter, cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 2
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.1
	}
	e := &Extractor{
		ocr:        ocr,
		model:      model,
		cfg:        cfg,
		thresholds: menu.DefaultThresholds,
		sleep:      sleepContext,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads a menu board image and returns the cleaned extraction. Missing OCR, missing
// model credentials and bad image formats are reported as distinct errors; an unparseable
// model answer degrades to an empty result.
func (e *Extractor) Extract(ctx context.Context, image []byte, mimeType string) (entity.ExtractionResult, error) {
	res, _, err := e.ExtractWithQuality(ctx, image, mimeType)
	return res, err
}

// ExtractWithQuality is Extract that also returns the quality classification.
func (e *Extractor) ExtractWithQuality(ctx context.Context, image []byte, mimeType string) (entity.ExtractionResult, entity.Quality, error) {
	if len(image) == 0 {
		return entity.ExtractionResult{}, "", ErrNoImage
	}
	if err := e.checkCapabilities(); err != nil {
		return entity.ExtractionResult{}, "", err
	}
	detected, err := DetectImageFormat(image)
	if err != nil {
		return entity.ExtractionResult{}, "", err
	}
	if mimeType != detected {
		e.logger.Debug("extract.mime.corrected", "declared", mimeType, "detected", detected)
	}
	mimeType = detected

	rid := uuid.New().String()
	start := time.Now()

	var key string
	if e.cache != nil {
		sum := sha256.Sum256(image)
		key = hex.EncodeToString(sum[:])
		if res, ok := e.cache.Get(key); ok {
			total := res.Menus.TotalItems()
			quality := menu.Classify(res.Price, total)
			e.logger.Info("extract.cache.hit", "req_id", rid, "sha256", key, "quality", quality)
			return res, quality, nil
		}
	}

	e.logger.Info("extract.start", "req_id", rid, "bytes", len(image), "mime", mimeType)

	ocrText, err := e.ocr.Recognize(ctx, image, mimeType)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return entity.ExtractionResult{}, "", ctxErr
		}
		e.logger.Warn("extract.ocr.failed", "req_id", rid, "error", err)
		ocrText = ""
	} else {
		e.logger.Debug("extract.ocr.ok", "req_id", rid, "chars", len([]rune(ocrText)))
	}

	content, err := e.complete(ctx, rid, llm.BuildMenuPrompt(ocrText), llm.Image{Bytes: image, MimeType: mimeType})
	if err != nil {
		e.logger.Error("extract.model.failed", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return entity.ExtractionResult{}, "", err
	}

	v := e.thresholds.Validate(e.parse(rid, content))

	perDay := make([]any, 0, 10)
	v.Result.Menus.Each(func(label string, d entity.DayMenu) {
		perDay = append(perDay, slog.Group(label, "lunch", len(d.Lunch), "dinner", len(d.Dinner)))
	})
	e.logger.Info("extract.ok",
		"req_id", rid,
		"quality", v.Quality,
		"total_items", v.TotalItems,
		"price_lunch", v.Result.Price.Lunch,
		"price_dinner", v.Result.Price.Dinner,
		slog.Group("days", perDay...),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if e.cache != nil {
		e.cache.Set(key, v.Result)
	}
	return v.Result, v.Quality, nil
}

func (e *Extractor) checkCapabilities() error {
	if e.ocr == nil {
		return ErrOCRUnavailable
	}
	if a, ok := e.ocr.(availability); ok {
		if err := a.Available(); err != nil {
			return fmt.Errorf("%w: %v", ErrOCRUnavailable, err)
		}
	}
	if e.model == nil {
		return llm.ErrMissingCredentials
	}
	if c, ok := e.model.(credentialed); ok && !c.HasCredentials() {
		return llm.ErrMissingCredentials
	}
	return nil
}

// complete calls the model up to MaxAttempts times with a fixed delay between attempts.
func (e *Extractor) complete(ctx context.Context, rid, prompt string, img llm.Image) (string, error) {
	opts := llm.CompletionOptions{JSONMode: true, MaxTokens: e.cfg.MaxTokens, Temperature: e.cfg.Temperature}

	var lastErr error
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			e.logger.Warn("extract.model.retry", "req_id", rid, "attempt", attempt, "error", lastErr)
			if err := e.sleep(ctx, e.cfg.RetryDelay); err != nil {
				return "", err
			}
		}
		content, err := e.model.Complete(ctx, prompt, img, opts)
		if err == nil {
			return content, nil
		}
		if errors.Is(err, llm.ErrMissingCredentials) {
			return "", err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		lastErr = err
	}
	return "", fmt.Errorf("vision model failed after %d attempts: %w", e.cfg.MaxAttempts, lastErr)
}

// parse decodes model output, falling back to an empty document on malformed JSON.
func (e *Extractor) parse(rid, content string) menu.RawExtraction {
	body := []byte(llm.StripCodeFences(content))
	raw, err := menu.DecodeRaw(body)
	if err != nil {
		e.logger.Warn("extract.parse.fallback", "req_id", rid, "error", err, "content_len", len(content))
		return menu.RawExtraction{}
	}
	if err := llm.ValidateMenuJSON(body); err != nil {
		e.logger.Debug("extract.schema.mismatch", "req_id", rid, "error", err)
	}
	return raw
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
