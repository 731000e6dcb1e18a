package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/aoperat/centumbob/internal/common"
)

// InboxJob is a menu image dropped into the inbox as <inbox>/<restaurant>/<date range>/<file>.
type InboxJob struct {
	Path           string
	RestaurantName string
	DateRange      string
	Ext            string
}

// DirStats summarizes an inbox scan.
type DirStats struct {
	Scanned  uint32
	Matched  uint32
	Rejected uint32
}

// ErrNotInboxLayout is returned for files that are not two directories below the inbox root.
var ErrNotInboxLayout = fmt.Errorf("path is not <restaurant>/<date range>/<file>: %w", common.ErrInvalidInput)

// ParseInboxJob derives the restaurant and date range of path from its position under root.
func ParseInboxJob(root, path string) (InboxJob, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return InboxJob{}, fmt.Errorf("relative path: %w", err)
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 3 || parts[0] == ".." {
		return InboxJob{}, ErrNotInboxLayout
	}
	restaurant := strings.TrimSpace(parts[0])
	dateRange := strings.TrimSpace(parts[1])
	if restaurant == "" || dateRange == "" {
		return InboxJob{}, ErrNotInboxLayout
	}
	ext := filepath.Ext(parts[2])
	if !AllowedExt(ext) {
		return InboxJob{}, fmt.Errorf("extension %q: %w", ext, ErrUnsupportedExt)
	}
	return InboxJob{
		Path:           path,
		RestaurantName: restaurant,
		DateRange:      dateRange,
		Ext:            strings.ToLower(ext),
	}, nil
}

// ScanInbox walks root, skipping hidden entries, and returns a job for every image laid
// out as <restaurant>/<date range>/<file>. Misplaced files are counted as rejected.
func ScanInbox(ctx context.Context, root string) ([]InboxJob, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("inbox root is required")
	}

	var (
		jobs  []InboxJob
		stats DirStats
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			return walkErr
		}
		if path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		job, err := ParseInboxJob(root, path)
		if err != nil {
			stats.Rejected++
			return nil
		}
		stats.Matched++
		jobs = append(jobs, job)
		return nil
	})
	if err != nil {
		return jobs, stats, fmt.Errorf("walk: %w", err)
	}
	return jobs, stats, nil
}
