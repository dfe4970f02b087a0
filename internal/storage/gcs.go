package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSStorage implements Storage on a Google Cloud Storage bucket.
type GCSStorage struct {
	client  *gcs.Client
	bucket  string
	baseURL string
}

func NewGCSStorage(ctx context.Context, cfg Config) (*GCSStorage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required for gcs storage")
	}

	opts := []option.ClientOption{option.WithScopes(gcs.ScopeReadWrite)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs client: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + cfg.Bucket
	}

	return &GCSStorage{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

func (s *GCSStorage) object(key string) (*gcs.ObjectHandle, string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return nil, "", err
	}
	return s.client.Bucket(s.bucket).Object(key), key, nil
}

func (s *GCSStorage) Save(ctx context.Context, key string, reader io.Reader, contentType string) error {
	obj, key, err := s.object(key)
	if err != nil {
		return err
	}

	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	if w.ContentType == "" {
		w.ContentType = ContentTypeForKey(key)
	}
	if _, err := io.Copy(w, reader); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write %s to gcs: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close gcs writer for %s: %w", key, err)
	}
	return nil
}

func (s *GCSStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, key, err := s.object(key)
	if err != nil {
		return nil, err
	}

	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to read %s from gcs: %w", key, err)
	}
	return r, nil
}

func (s *GCSStorage) Delete(ctx context.Context, key string) error {
	obj, key, err := s.object(key)
	if err != nil {
		return err
	}

	if err := obj.Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return fmt.Errorf("failed to delete %s from gcs: %w", key, err)
	}
	return nil
}

func (s *GCSStorage) Exists(ctx context.Context, key string) (bool, error) {
	obj, _, err := s.object(key)
	if err != nil {
		return false, err
	}

	if _, err := obj.Attrs(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *GCSStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &gcs.Query{Prefix: prefix})
	var out []ObjectInfo
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		out = append(out, ObjectInfo{Key: attrs.Name, Size: attrs.Size, LastModified: attrs.Updated})
	}
	return out, nil
}

func (s *GCSStorage) GetURL(ctx context.Context, key string) (string, error) {
	return joinURL(s.baseURL, key), nil
}
