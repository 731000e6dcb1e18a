package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Root        string        // inbox directory, watched recursively
	InitialScan bool          // if true, walk the root and emit images already present
	Debounce    time.Duration // coalesce rapid create/write bursts per file
	Logger      *slog.Logger
}

// StartWatcher emits an InboxJob for every image written under cfg.Root in the
// <restaurant>/<date range>/<file> layout. Both channels are closed when ctx is done.
func StartWatcher(ctx context.Context, cfg WatchConfig) (<-chan InboxJob, <-chan error, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Root == "" {
		logger.Error("ingest.watcher.start.failed", "error", "no root provided")
		return nil, nil, errors.New("no root provided")
	}
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, nil, err
	}

	evCh := make(chan InboxJob, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("ingest.watcher.start.failed", "error", err)
		return nil, nil, err
	}

	var initial []InboxJob
	err = filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != cfg.Root && IsHidden(path) {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		if cfg.InitialScan {
			if job, err := ParseInboxJob(cfg.Root, path); err == nil {
				initial = append(initial, job)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("ingest.watcher.add_root.failed", "root", cfg.Root, "error", err)
		_ = w.Close()
		return nil, nil, err
	}
	logger.Info("ingest.watcher.started", "root", cfg.Root, "initial", len(initial))

	go func() {
		deb := newDebouncer(cfg.Debounce)
		defer func() {
			deb.stop()
			if err := w.Close(); err != nil {
				logger.Warn("ingest.watcher.close.failed", "error", err)
			}
			close(evCh)
			close(errCh)
		}()

		emit := func(job InboxJob) {
			select {
			case evCh <- job:
			case <-ctx.Done():
			}
		}
		for _, job := range initial {
			emit(job)
		}

		schedule := func(job InboxJob) {
			if cfg.Debounce <= 0 {
				emit(job)
				return
			}
			deb.schedule(job.Path, func() { emit(job) })
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&fsnotify.Create == fsnotify.Create {
					if fi, err := os.Stat(e.Name); err == nil && fi.IsDir() && !IsHidden(e.Name) {
						if err := w.Add(e.Name); err != nil {
							logger.Warn("ingest.watcher.add_dir.failed", "path", e.Name, "error", err)
						}
						continue
					}
				}
				if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 || IsHidden(e.Name) {
					continue
				}
				job, err := ParseInboxJob(cfg.Root, e.Name)
				if err != nil {
					logger.Debug("ingest.watcher.skip", "path", e.Name, "reason", err)
					continue
				}
				schedule(job)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("ingest.watcher.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

// debouncer runs a callback once per key after delay passes without the key being
// scheduled again.
type debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	wg      sync.WaitGroup
	seq     uint64
	pending map[string]debounceEntry
}

type debounceEntry struct {
	timer *time.Timer
	gen   uint64
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, pending: map[string]debounceEntry{}}
}

func (d *debouncer) schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if prev, ok := d.pending[key]; ok && prev.timer.Stop() {
		d.wg.Done()
	}
	d.seq++
	gen := d.seq
	d.wg.Add(1)
	d.pending[key] = debounceEntry{gen: gen, timer: time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.release(key, gen)
		fn()
	})}
}

// release forgets key unless it was rescheduled after generation gen was armed.
func (d *debouncer) release(key string, gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.pending[key]; ok && e.gen == gen {
		delete(d.pending, key)
	}
}

// stop cancels timers that have not fired and waits for callbacks already running.
func (d *debouncer) stop() {
	d.mu.Lock()
	for key, e := range d.pending {
		if e.timer.Stop() {
			d.wg.Done()
		}
		delete(d.pending, key)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
