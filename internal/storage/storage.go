// Package storage persists finished JSON documents as immutable blobs.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// Store writes document under container/key and returns where it can be
// found. Keys are unique per session, so implementations never read or
// overwrite existing blobs.
type Store interface {
	Store(ctx context.Context, container, key string, document []byte) (string, error)
}

// ErrDisabled is returned by Nop.
var ErrDisabled = errors.New("storage disabled")

// Nop discards documents.
type Nop struct{}

func (Nop) Store(context.Context, string, string, []byte) (string, error) {
	return "", ErrDisabled
}

// cleanKey rejects keys that would escape their container.
func cleanKey(key string) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") || path.IsAbs(cleaned) {
		return "", errors.New("invalid key " + key)
	}
	return cleaned, nil
}
