package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aoperat/centumbob/internal/async"
	"github.com/aoperat/centumbob/internal/common"
	inbox "github.com/aoperat/centumbob/internal/ingest"
)

// Service feeds inbox images to the extraction queue.
type Service struct {
	root   string
	queue  async.Queue
	logger *slog.Logger
	now    func() time.Time
}

func NewService(root string, q async.Queue, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{root: root, queue: q, logger: logger, now: time.Now}
}

// ScanResult summarises one pass over the inbox.
type ScanResult struct {
	Statistics inbox.DirStats `json:"statistics"`
	Enqueued   int            `json:"enqueued"`
	Failed     []string       `json:"failed,omitempty"`
}

// Submit enqueues a single file that lives under the inbox root.
func (s *Service) Submit(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is required: %w", common.ErrInvalidInput)
	}
	job, err := inbox.ParseInboxJob(s.root, path)
	if err != nil {
		s.logger.Warn("ingest.submit.rejected", "path", path, "error", err)
		return err
	}
	return s.enqueue(ctx, job)
}

// ScanAndEnqueue walks the inbox once and enqueues every well placed image.
func (s *Service) ScanAndEnqueue(ctx context.Context) (*ScanResult, error) {
	jobs, stats, err := inbox.ScanInbox(ctx, s.root)
	if err != nil {
		s.logger.Error("ingest.scan.failed", "root", s.root, "error", err)
		return nil, err
	}

	out := &ScanResult{Statistics: stats}
	for _, job := range jobs {
		if err := s.enqueue(ctx, job); err != nil {
			if errors.Is(err, async.ErrQueueClosed) || ctx.Err() != nil {
				return out, err
			}
			out.Failed = append(out.Failed, job.Path)
			continue
		}
		out.Enqueued++
	}
	s.logger.Info("ingest.scan.completed", "root", s.root, "scanned", stats.Scanned, "matched", stats.Matched,
		"rejected", stats.Rejected, "enqueued", out.Enqueued, "failed", len(out.Failed))
	return out, nil
}

// Watch enqueues images as they appear in the inbox until ctx is cancelled.
func (s *Service) Watch(ctx context.Context, initialScan bool, debounce time.Duration) error {
	jobs, errs, err := inbox.StartWatcher(ctx, inbox.WatchConfig{
		Root:        s.root,
		InitialScan: initialScan,
		Debounce:    debounce,
		Logger:      s.logger,
	})
	if err != nil {
		return err
	}
	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return ctx.Err()
			}
			if err := s.enqueue(ctx, job); errors.Is(err, async.ErrQueueClosed) {
				return err
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.logger.Warn("ingest.watch.error", "error", err)
		}
	}
}

func (s *Service) enqueue(ctx context.Context, job inbox.InboxJob) error {
	trace := uuid.New().String()
	if err := s.queue.Enqueue(ctx, async.Job{Inbox: job, SubmittedAt: s.now(), TraceID: trace}); err != nil {
		s.logger.Error("ingest.enqueue.failed", "path", job.Path, "trace_id", trace, "error", err)
		return err
	}
	s.logger.Info("ingest.enqueued", "path", job.Path, "restaurant", job.RestaurantName,
		"date_range", job.DateRange, "trace_id", trace)
	return nil
}
