// Package ocr runs the tesseract binary over menu board photos and normalizes its output.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/aoperat/centumbob/constants"
)

// ErrUnavailable means the tesseract binary cannot be found.
var ErrUnavailable = errors.New("ocr: tesseract not available")

type Config struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "kor+eng"
	TessdataDir string

	PSM int // 6 suits a single uniform block such as a menu board
	OEM int // 1 = LSTM; leave 0 to use default

	EnableTSVConfidence bool
	Timeout             time.Duration // per image; 0 = no limit
}

type Result struct {
	Text       string
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Recognizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewRecognizer(cfg Config, logger *slog.Logger) *Recognizer {
	return NewRecognizerWithRunner(cfg, nil, logger)
}

// NewRecognizerWithRunner is NewRecognizer with a custom command runner.
func NewRecognizerWithRunner(cfg Config, r Runner, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "kor+eng"
	}
	if r == nil {
		r = execRunner{logger: logger}
	}
	return &Recognizer{cfg: cfg, runner: r, logger: logger}
}

// Available reports ErrUnavailable when the configured binary is not on PATH.
func (r *Recognizer) Available() error {
	if _, err := exec.LookPath(r.cfg.Tesseract); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Recognize writes the image to a temporary file and returns the normalized text.
func (r *Recognizer) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	f, err := os.CreateTemp("", "menu-ocr-*"+constants.ExtForMime(mimeType))
	if err != nil {
		return "", fmt.Errorf("ocr temp file: %w", err)
	}
	defer func() { _ = os.Remove(f.Name()) }()

	if _, err := f.Write(image); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("ocr temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("ocr temp file: %w", err)
	}

	res, err := r.RecognizeFile(ctx, f.Name())
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// RecognizeFile runs OCR on an image on disk.
func (r *Recognizer) RecognizeFile(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}
	r.logger.Debug("ocr.start", "path", path, "lang", r.cfg.Lang)

	txt, warn, err := r.tesseractText(ctx, path)
	if err != nil {
		return Result{Language: r.cfg.Lang, Warnings: warn, Duration: time.Since(start)}, err
	}
	txt = Normalize(txt)

	var ocrConf float32
	if r.cfg.EnableTSVConfidence {
		c, w, err := r.tesseractTSVConfidence(ctx, path)
		if err != nil {
			warn = append(warn, err.Error())
		} else {
			ocrConf = c
			warn = append(warn, w...)
		}
	}
	heurConf := heuristicConfidence(txt)

	conf := heurConf
	if ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}

	res := Result{
		Text:       txt,
		Language:   r.cfg.Lang,
		Duration:   time.Since(start),
		Warnings:   warn,
		Confidence: conf,
	}
	r.logger.Debug("ocr.ok",
		"path", path,
		"chars", len([]rune(txt)),
		"confidence", conf,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
