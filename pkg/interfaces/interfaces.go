// Package interfaces defines the core abstractions of the resolver.
package interfaces

import (
	"context"

	"stream-resolver-go/pkg/types"
)

// ManifestHandler resolves one class of manifest URL into renditions.
//
// To add a new manifest type:
// 1. Implement this interface
// 2. Register it in the ManifestHandlerRegistry
type ManifestHandler interface {
	// Type returns the manifest type this handler processes.
	Type() types.ManifestType

	// CanHandle returns true if this handler can process the given URL.
	CanHandle(url string) bool

	// Extract resolves the manifest into renditions and side tracks.
	Extract(ctx context.Context, url, referer string) (*types.ResolveResult, error)
}

// Fetcher abstracts the retrying text fetch for testability.
type Fetcher interface {
	FetchText(ctx context.Context, url string, headers map[string]string) (body, finalURL string, err error)
}

// Logger defines the logging interface used throughout the resolver.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
