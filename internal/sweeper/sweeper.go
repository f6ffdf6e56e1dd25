// Package sweeper reclaims disk space from old separation output.
package sweeper

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"stemtab/internal/logger"
)

// Sweeper periodically deletes job directories under the stems root
// whose modification time is older than MaxAge. It runs uncoordinated
// with the database: the read path treats a missing stem file as
// not-found, so a swept directory degrades to 404s.
type Sweeper struct {
	Root     string
	MaxAge   time.Duration
	Interval time.Duration
	Delay    time.Duration
	Logger   *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(root string, maxAge, interval, delay time.Duration, log *logger.Logger) *Sweeper {
	if log == nil {
		log = logger.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		Root:     root,
		MaxAge:   maxAge,
		Interval: interval,
		Delay:    delay,
		Logger:   log.WithComponent("sweeper"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Sweeper) Start() {
	s.Logger.Info("Starting sweeper", "root", s.Root, "max_age", s.MaxAge, "interval", s.Interval)
	s.wg.Add(1)
	go s.run()
}

func (s *Sweeper) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	// First pass shortly after startup, then on the regular interval.
	select {
	case <-s.ctx.Done():
		return
	case <-time.After(s.Delay):
	}
	s.Sweep()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep removes expired job directories. Every removal is best-effort
// and logged; one bad directory never stops the pass.
func (s *Sweeper) Sweep() {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		s.Logger.Error("Failed to read stems root", "error", err)
		return
	}

	cutoff := time.Now().Add(-s.MaxAge)
	removed := 0

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.Logger.Warn("Failed to stat job dir", "dir", entry.Name(), "error", err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.Root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			s.Logger.Warn("Failed to remove expired job dir", "dir", path, "error", err)
			continue
		}
		removed++
		s.Logger.Info("Removed expired job dir", "dir", path)
	}

	if removed > 0 {
		s.Logger.Info("Sweep finished", "removed", removed)
	}
}
