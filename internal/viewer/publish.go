package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aoperat/centumbob/internal/entity"
	"github.com/aoperat/centumbob/internal/menu"
)

// DataFileName is the published viewer document.
const DataFileName = "menu-data.json"

// ErrNothingToPublish is returned when no menu record exists.
var ErrNothingToPublish = errors.New("viewer: nothing to publish")

type MenuLister interface {
	ListAll(ctx context.Context) ([]entity.MenuRecord, error)
}

type ReferenceLister interface {
	ReferenceMap(ctx context.Context) (map[string]entity.Restaurant, error)
}

// ImageResolver maps a stored image path to a file on disk.
type ImageResolver interface {
	Resolve(rel string) (string, error)
}

type PublishConfig struct {
	DataDir      string
	ViewerDir    string
	InlineImages bool
	// Prices bounds published prices; the zero value means menu.DefaultThresholds.
	Prices menu.Thresholds
}

type PublishResult struct {
	Restaurants int      `json:"restaurants"`
	Images      int      `json:"images"`
	Files       []string `json:"files"`
	Warnings    []string `json:"warnings,omitempty"`
}

type Publisher struct {
	menus  MenuLister
	refs   ReferenceLister
	images ImageResolver
	cfg    PublishConfig
	logger *slog.Logger
}

func NewPublisher(menus MenuLister, refs ReferenceLister, images ImageResolver, cfg PublishConfig, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{menus: menus, refs: refs, images: images, cfg: cfg, logger: logger}
}

// DataPath is where the canonical copy of the published document lives.
func (p *Publisher) DataPath() string {
	return filepath.Join(p.cfg.DataDir, DataFileName)
}

func (p *Publisher) viewerImagesDir() string {
	return filepath.Join(p.cfg.ViewerDir, "public", "images")
}

func (p *Publisher) viewerDataPath() string {
	return filepath.Join(p.cfg.ViewerDir, "public", "data", DataFileName)
}

// Publish projects every stored record and writes the viewer document to the data directory
// and the viewer's public directory. Records are listed most recently updated first per
// restaurant, so the first record seen for a name wins.
func (p *Publisher) Publish(ctx context.Context) (PublishResult, error) {
	start := time.Now()
	var res PublishResult

	records, err := p.menus.ListAll(ctx)
	if err != nil {
		return res, fmt.Errorf("list menus: %w", err)
	}
	if len(records) == 0 {
		return res, ErrNothingToPublish
	}

	refs := map[string]entity.Restaurant{}
	if p.refs != nil {
		if refs, err = p.refs.ReferenceMap(ctx); err != nil {
			return res, fmt.Errorf("load restaurants: %w", err)
		}
	}

	if err := os.MkdirAll(p.viewerImagesDir(), 0o755); err != nil {
		return res, fmt.Errorf("create viewer images dir: %w", err)
	}

	out := make(map[string]entity.ViewerProjection, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if _, seen := out[rec.RestaurantName]; seen {
			p.logger.Debug("publish.record.shadowed", "restaurant", rec.RestaurantName, "date_range", rec.DateRange)
			continue
		}

		inline, copied, warn := p.prepareImage(rec)
		if warn != "" {
			res.Warnings = append(res.Warnings, warn)
		}
		if copied {
			res.Images++
		}

		var ref *entity.Restaurant
		if r, ok := refs[rec.RestaurantName]; ok {
			ref = &r
		}
		out[rec.RestaurantName] = project(p.cfg.Prices, rec, inline, ref)
	}

	body, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return res, fmt.Errorf("encode viewer data: %w", err)
	}
	for _, dst := range []string{p.DataPath(), p.viewerDataPath()} {
		if err := writeFileAtomic(dst, body); err != nil {
			return res, err
		}
		res.Files = append(res.Files, dst)
	}
	res.Restaurants = len(out)

	p.logger.Info("publish.ok",
		"restaurants", res.Restaurants,
		"images", res.Images,
		"warnings", len(res.Warnings),
		"bytes", len(body),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// prepareImage copies the record's image into the viewer and returns its bytes when inline
// mode is on. Missing files only produce a warning; the projection falls back to a path.
func (p *Publisher) prepareImage(rec entity.MenuRecord) (inline []byte, copied bool, warning string) {
	if rec.ImagePath == "" || p.images == nil {
		return nil, false, ""
	}
	src, err := p.images.Resolve(rec.ImagePath)
	if err != nil {
		p.logger.Warn("publish.image.invalid", "restaurant", rec.RestaurantName, "path", rec.ImagePath, "error", err)
		return nil, false, fmt.Sprintf("%s: %v", rec.RestaurantName, err)
	}
	b, err := os.ReadFile(src)
	if err != nil {
		p.logger.Warn("publish.image.missing", "restaurant", rec.RestaurantName, "path", src, "error", err)
		return nil, false, fmt.Sprintf("%s: image not readable", rec.RestaurantName)
	}
	dst := filepath.Join(p.viewerImagesDir(), ImageBaseName(rec.ImagePath))
	if err := copyFile(src, dst); err != nil {
		p.logger.Warn("publish.image.copy_failed", "restaurant", rec.RestaurantName, "dst", dst, "error", err)
		warning = fmt.Sprintf("%s: image copy failed", rec.RestaurantName)
	} else {
		copied = true
	}
	if p.cfg.InlineImages {
		inline = b
	}
	return inline, copied, warning
}

// LoadPublished returns the last published document.
func (p *Publisher) LoadPublished() ([]byte, error) {
	return os.ReadFile(p.DataPath())
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".copy-*")
	if err != nil {
		return err
	}
	_ = tmp.Chmod(0o644)
	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

func writeFileAtomic(dst string, body []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".menu-data-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	_ = tmp.Chmod(0o644)
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", dst, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}
