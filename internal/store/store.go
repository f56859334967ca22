// Package store persists per-conversation chat state behind a small
// key-value abstraction. The file backend is the default; a Redis backend
// can be swapped in without touching the callers.
package store

import (
	"context"
	"regexp"
	"strings"
)

// Namespaces used by the context store.
const (
	NamespaceHistory = "chat_history"
	NamespaceContext = "user_context"
)

// KV is the storage contract. Get returns (nil, nil) for a missing key.
// Writes replace the whole value; concurrent writers to the same key race and
// the last write wins.
type KV interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
}

const maxKeyLength = 80

var unsafeKeyChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// SanitizeKey normalizes a caller-supplied conversation identifier to a
// bounded token-safe key. The mapping is lossy; collisions are accepted.
// An empty result means the conversation has no persistence.
func SanitizeKey(key string) string {
	safe := unsafeKeyChars.ReplaceAllString(strings.ToLower(key), "_")
	if len(safe) > maxKeyLength {
		safe = safe[:maxKeyLength]
	}
	return safe
}
