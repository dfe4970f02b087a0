package workers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"fitshop_backend/internal/imageprocessor"
	"fitshop_backend/internal/logger"
	"fitshop_backend/internal/repositories"
	"fitshop_backend/internal/storage"
)

const orphanSweepWorker = "orphan_sweep"

// OrphanSweepWorker removes stored image artifacts that no picture row
// references, plus abandoned base64 staging files. Only objects older than
// the grace period are considered, so uploads still being recorded are safe.
type OrphanSweepWorker struct {
	db          *gorm.DB
	storage     storage.Storage
	store       *imageprocessor.Store
	pictureRepo repositories.PictureRepository
	interval    time.Duration
	grace       time.Duration
	now         func() time.Time
}

func NewOrphanSweepWorker(
	db *gorm.DB,
	st storage.Storage,
	store *imageprocessor.Store,
	pictureRepo repositories.PictureRepository,
	interval, grace time.Duration,
) *OrphanSweepWorker {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	if grace <= 0 {
		grace = 24 * time.Hour
	}
	return &OrphanSweepWorker{
		db:          db,
		storage:     st,
		store:       store,
		pictureRepo: pictureRepo,
		interval:    interval,
		grace:       grace,
		now:         time.Now,
	}
}

// SweepResult counts what one pass removed.
type SweepResult struct {
	Artifacts int
	Staged    int
	Failed    int
}

// Start runs a sweep every interval until ctx is cancelled.
func (w *OrphanSweepWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *OrphanSweepWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("orphan sweep worker stopped")
			return
		case <-ticker.C:
			res, err := w.Sweep(ctx)
			logger.WorkerLog(orphanSweepWorker, "sweep", err,
				"artifacts", res.Artifacts, "staged", res.Staged, "failed", res.Failed)
		}
	}
}

// Sweep performs one pass over storage and the staging directory.
func (w *OrphanSweepWorker) Sweep(ctx context.Context) (SweepResult, error) {
	var (
		artifacts, staged, failedArtifacts, failedStaged int
	)
	cutoff := w.now().Add(-w.grace)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		artifacts, failedArtifacts, err = w.sweepArtifacts(gctx, cutoff)
		return err
	})
	g.Go(func() error {
		var err error
		staged, failedStaged, err = w.sweepStaging(cutoff)
		return err
	})
	err := g.Wait()

	return SweepResult{
		Artifacts: artifacts,
		Staged:    staged,
		Failed:    failedArtifacts + failedStaged,
	}, err
}

func (w *OrphanSweepWorker) sweepArtifacts(ctx context.Context, cutoff time.Time) (int, int, error) {
	prefix := w.store.Configuration().StoragePrefix
	objects, err := w.storage.List(ctx, prefix)
	if err != nil {
		return 0, 0, err
	}

	var candidates []string
	for _, obj := range objects {
		if obj.LastModified.Before(cutoff) {
			candidates = append(candidates, obj.Key)
		}
	}
	if len(candidates) == 0 {
		return 0, 0, nil
	}

	referenced, err := w.pictureRepo.ReferencedPaths(w.db.WithContext(ctx), candidates)
	if err != nil {
		return 0, 0, err
	}

	var orphans []string
	for _, key := range candidates {
		if !referenced[key] {
			orphans = append(orphans, key)
		}
	}
	if len(orphans) == 0 {
		return 0, 0, nil
	}

	log := w.store.DeleteImageArray(ctx, orphans)
	for _, entry := range log {
		logger.Warn("orphan sweep", "result", entry)
	}
	return len(orphans) - len(log), len(log), nil
}

func (w *OrphanSweepWorker) sweepStaging(cutoff time.Time) (int, int, error) {
	dir := w.store.StagingPath()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, 0, nil
		}
		return 0, 0, err
	}

	removed, failed := 0, 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to remove stale staging file", "file", e.Name(), "error", err)
			failed++
			continue
		}
		removed++
	}
	return removed, failed, nil
}
