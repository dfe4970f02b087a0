package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// ErrObjectNotFound is returned by Get and Delete when no object exists at the path.
var ErrObjectNotFound = errors.New("object not found")

// Storage is the backing object/file store. Paths are relative, slash-separated keys.
type Storage interface {
	// Save stores the reader's content at path, creating parent directories as needed.
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error

	// Get opens the object at path.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the object. Missing objects yield ErrObjectNotFound.
	Delete(ctx context.Context, path string) error

	Exists(ctx context.Context, path string) (bool, error)

	// List returns every object whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// GetURL returns a public URL for the object.
	GetURL(ctx context.Context, path string) (string, error)
}

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

type Config struct {
	Type            string // local, s3, cloudflare_r2, gcs
	BasePath        string // local
	BaseURL         string // public URL base
	Bucket          string // s3, r2, gcs
	Region          string // s3
	AccessKey       string // s3, r2
	SecretKey       string // s3, r2
	Endpoint        string // r2 or custom s3
	UseSSL          bool
	CredentialsFile string // gcs
}

// NewStorage builds the backend named by cfg.Type.
func NewStorage(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(ctx, cfg)
	case "cloudflare_r2":
		return NewCloudflareR2Storage(ctx, cfg)
	case "gcs":
		return NewGCSStorage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// CleanKey normalizes a key and rejects anything escaping the storage root.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	cleaned := path.Clean("/" + key)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", fmt.Errorf("invalid storage key %q", key)
		}
	}
	return cleaned, nil
}

// ContentTypeForKey guesses a content type from the key extension.
func ContentTypeForKey(key string) string {
	s := strings.ToLower(key)
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	case strings.HasSuffix(s, ".bmp"):
		return "image/bmp"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".mp4"):
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
