package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
)

// FirebaseStore stores objects in the project's default Firebase Storage bucket.
type FirebaseStore struct {
	bucket *gcs.BucketHandle
}

// NewFirebaseStore opens the default bucket configured on the Firebase app.
func NewFirebaseStore(ctx context.Context, app *firebase.App) (*FirebaseStore, error) {
	if app == nil {
		return nil, errors.New("firebase app is not initialized")
	}
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Storage: %w", err)
	}
	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("default storage bucket: %w", err)
	}
	return &FirebaseStore{bucket: bucket}, nil
}

func (s *FirebaseStore) Upload(ctx context.Context, path, contentType string, data []byte) error {
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", path, err)
	}
	return nil
}

func (s *FirebaseStore) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	url, err := s.bucket.SignedURL(path, &gcs.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(ttl),
		Scheme:  gcs.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("sign url for %s: %w", path, err)
	}
	return url, nil
}

func (s *FirebaseStore) Delete(ctx context.Context, path string) error {
	if err := s.bucket.Object(path).Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, path)
		}
		return fmt.Errorf("delete object %s: %w", path, err)
	}
	return nil
}
