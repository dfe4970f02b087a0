package imageprocessor

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fitshop_backend/internal/logger"
	"fitshop_backend/internal/storage"
)

var (
	// ErrImageNotProcessed is returned when the input cannot be decoded, scaled or encoded.
	ErrImageNotProcessed = errors.New("image not processed")
	ErrInvalidBase64     = errors.New("invalid base64 image")
)

// StagingSubdir is the directory under the staging root that holds decoded base64 uploads.
const StagingSubdir = "base64"

// Saved holds the storage paths written for one upload.
type Saved struct {
	Image     string `json:"image"`
	Thumbnail string `json:"thumbnail"`
}

// DeleteLog collects one message per artifact that could not be removed.
type DeleteLog []string

func (l DeleteLog) Empty() bool { return len(l) == 0 }

// Store writes image artifacts into content addressed paths on a Storage backend.
type Store struct {
	storage   storage.Storage
	processor *Processor
	cfg       Configuration
}

func NewStore(st storage.Storage, cfg Configuration) *Store {
	cfg = cfg.withDefaults()
	if cfg.StagingDir == "" {
		cfg.StagingDir = os.TempDir()
	}
	return &Store{
		storage:   st,
		processor: NewProcessor(cfg.Quality),
		cfg:       cfg,
	}
}

func (s *Store) Configuration() Configuration { return s.cfg }

// StagingPath is the directory where base64 payloads are decoded before processing.
func (s *Store) StagingPath() string {
	return filepath.Join(s.cfg.StagingDir, StagingSubdir)
}

// SaveImage decodes the reader and stores the artifacts for mode. The
// artifact keeps the source format; JPEG sources are named ".jpg".
func (s *Store) SaveImage(ctx context.Context, r io.Reader, mode Mode) (*Saved, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return s.save(ctx, content, mode, "")
}

// save stores content for mode. A non-empty ext forces both the file
// extension and the encoding.
func (s *Store) save(ctx context.Context, content []byte, mode Mode, ext string) (*Saved, error) {
	if err := s.preflight(content); err != nil {
		logger.CtxDebug(ctx, "image not processed", "stage", "header", "error", err)
		return nil, ErrImageNotProcessed
	}

	img, format, err := s.processor.Decode(bytes.NewReader(content))
	if err != nil {
		logger.CtxDebug(ctx, "image not processed", "stage", "decode", "error", err)
		return nil, ErrImageNotProcessed
	}

	if ext == "" {
		ext = Extension(format)
	}
	info := s.cfg.MakePath(content, ext)

	switch mode {
	case Avatar:
		return s.saveAvatar(ctx, img, ext, info)
	default:
		return s.saveFullHD(ctx, img, ext, info)
	}
}

// preflight rejects unreadable headers and oversized images before any
// pixel buffer is allocated.
func (s *Store) preflight(content []byte) error {
	w, h, _, err := Dimensions(bytes.NewReader(content))
	if err != nil {
		return err
	}
	if int64(w)*int64(h) > s.cfg.MaxPixels {
		return fmt.Errorf("image %dx%d exceeds %d pixels", w, h, s.cfg.MaxPixels)
	}
	return nil
}

func (s *Store) saveFullHD(ctx context.Context, img image.Image, ext string, info PathInfo) (*Saved, error) {
	full, err := s.processor.Encode(s.processor.ResizeToWidth(img, s.cfg.MaxWidth), ext)
	if err != nil {
		logger.CtxDebug(ctx, "image not processed", "stage", "resize", "error", err)
		return nil, ErrImageNotProcessed
	}

	thumb, err := s.thumbnail(img, "jpeg")
	if err != nil {
		logger.CtxDebug(ctx, "image not processed", "stage", "thumbnail", "error", err)
		return nil, ErrImageNotProcessed
	}

	if err := s.storage.Save(ctx, info.ImagePath, full, storage.ContentTypeForKey(info.ImagePath)); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	if err := s.storage.Save(ctx, info.ThumbnailPath, thumb, "image/jpeg"); err != nil {
		if derr := s.storage.Delete(ctx, info.ImagePath); derr != nil {
			logger.CtxWarn(ctx, "failed to remove partial upload", "path", info.ImagePath, "error", derr)
		}
		return nil, fmt.Errorf("failed to store thumbnail: %w", err)
	}

	logger.CtxDebug(ctx, "image saved", "path", info.ImagePath, "thumbnail", info.ThumbnailPath)
	return &Saved{Image: info.ImagePath, Thumbnail: info.ThumbnailPath}, nil
}

func (s *Store) saveAvatar(ctx context.Context, img image.Image, ext string, info PathInfo) (*Saved, error) {
	buf, err := s.thumbnail(img, ext)
	if err != nil {
		logger.CtxDebug(ctx, "image not processed", "stage", "fit", "error", err)
		return nil, ErrImageNotProcessed
	}

	if err := s.storage.Save(ctx, info.ImagePath, buf, storage.ContentTypeForKey(info.ImagePath)); err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}

	logger.CtxDebug(ctx, "avatar saved", "path", info.ImagePath)
	return &Saved{Image: info.ImagePath, Thumbnail: info.ImagePath}, nil
}

func (s *Store) thumbnail(img image.Image, format string) (*bytes.Buffer, error) {
	fit, err := s.processor.Fit(img, s.cfg.ThumbnailWidth, s.cfg.ThumbnailHeight)
	if err != nil {
		return nil, err
	}
	return s.processor.Encode(fit, format)
}

// SaveImage64 accepts a raw or data-URI base64 payload. The decoded bytes are
// staged on disk for the duration of the call and always removed afterwards.
// The result is always a ".jpeg" JPEG, whatever the payload format.
func (s *Store) SaveImage64(ctx context.Context, encoded string, mode Mode) (*Saved, error) {
	raw, err := DecodeBase64Image(encoded)
	if err != nil {
		return nil, err
	}

	dir := s.StagingPath()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	staged := filepath.Join(dir, uuid.NewString()+".jpeg")
	defer func() {
		if err := os.Remove(staged); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.CtxWarn(ctx, "failed to remove staged upload", "path", staged, "error", err)
		}
	}()

	if err := os.WriteFile(staged, raw, 0o600); err != nil {
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}

	content, err := os.ReadFile(staged)
	if err != nil {
		return nil, fmt.Errorf("failed to read staged upload: %w", err)
	}

	return s.save(ctx, content, mode, "jpeg")
}

// DecodeBase64Image strips an optional data URI header and decodes the payload.
// Spaces are treated as '+', which form encoding turns them into.
func DecodeBase64Image(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		idx := strings.Index(encoded, ";base64,")
		if idx < 0 {
			return nil, ErrInvalidBase64
		}
		encoded = encoded[idx+len(";base64,"):]
	}
	encoded = strings.ReplaceAll(encoded, " ", "+")
	if encoded == "" {
		return nil, ErrInvalidBase64
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
		if err != nil {
			return nil, ErrInvalidBase64
		}
	}
	return raw, nil
}

// DeleteImage removes a single artifact.
func (s *Store) DeleteImage(ctx context.Context, path string) error {
	if err := s.storage.Delete(ctx, path); err != nil {
		logger.CtxWarn(ctx, "picture not deleted", "path", path, "error", err)
		return fmt.Errorf("picture not deleted: %s: %w", path, err)
	}
	return nil
}

// DeleteImageArray tries every path, including after failures, and returns
// one log entry per path that could not be removed. Duplicates are attempted once.
func (s *Store) DeleteImageArray(ctx context.Context, paths []string) DeleteLog {
	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}

	failed := make([]bool, len(unique))

	var g errgroup.Group
	g.SetLimit(s.cfg.DeleteWorkers)
	for i, p := range unique {
		g.Go(func() error {
			if err := s.DeleteImage(ctx, p); err != nil {
				failed[i] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	var log DeleteLog
	for i, p := range unique {
		if failed[i] {
			log = append(log, "picture not deleted: "+p)
		}
	}
	return log
}
