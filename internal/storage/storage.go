// Package storage uploads planner exports and handwriting images to object
// storage and hands out time-limited download URLs.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound is returned when deleting or signing a missing object.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the contract shared by the Firebase and MinIO backends.
type ObjectStore interface {
	Upload(ctx context.Context, path, contentType string, data []byte) error
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, path string) error
}
