package resolve

import (
	"context"
	"errors"
	"fmt"

	"stream-resolver-go/pkg/httpclient"
	"stream-resolver-go/pkg/logging"
	"stream-resolver-go/pkg/parallel"
	"stream-resolver-go/pkg/playlist"
	"stream-resolver-go/pkg/registry"
	"stream-resolver-go/pkg/types"
	"stream-resolver-go/pkg/unseal"
)

// ErrNoPlayableLink is the only failure the resolution pipeline surfaces to
// its consumer; everything finer-grained is a signal to try the next
// candidate.
var ErrNoPlayableLink = errors.New("no playable link found")

// defaultFileMarker precedes the playlist URL in unpacked player scripts.
const defaultFileMarker = `file:"`

// Resolver runs the link-resolution chain.
type Resolver struct {
	log       *logging.Logger
	extractor *playlist.Extractor
	handlers  *registry.ManifestHandlerRegistry
	profiles  *registry.ProfileRegistry
}

// Options configures a Resolver.
type Options struct {
	// Source labels renditions with the originating site/provider name.
	Source string

	// TmpDir receives sanitized subtitle files; empty uses the system
	// temp directory.
	TmpDir string
}

// New creates a Resolver with HLS and DASH handlers registered and a
// progressive fallback.
func New(client *httpclient.Client, log *logging.Logger, opts Options) *Resolver {
	extractor := playlist.NewExtractor(client, log, opts.TmpDir)

	handlers := registry.NewManifestHandlerRegistry()
	handlers.Register(&hlsHandler{extractor: extractor, source: opts.Source})
	handlers.Register(&dashHandler{extractor: extractor, source: opts.Source})
	handlers.SetFallback(&progressiveHandler{source: opts.Source})

	return &Resolver{
		log:       log.WithComponent("resolver"),
		extractor: extractor,
		handlers:  handlers,
		profiles:  registry.NewProfileRegistry(),
	}
}

// Profiles exposes the site profile registry for registration.
func (r *Resolver) Profiles() *registry.ProfileRegistry {
	return r.profiles
}

// Extractor exposes the underlying playlist extractor for callers that
// need per-call naming or header generators.
func (r *Resolver) Extractor() *playlist.Extractor {
	return r.extractor
}

// ResolveManifest dispatches a manifest URL to the matching handler and
// returns its renditions.
func (r *Resolver) ResolveManifest(ctx context.Context, urlStr, referer string) (*types.ResolveResult, error) {
	handler := r.handlers.Get(urlStr)
	r.log.Debug("resolving manifest", "url", urlStr, "type", handler.Type())

	result, err := handler.Extract(ctx, urlStr, referer)
	if err != nil {
		return nil, fmt.Errorf("extract %s manifest: %w", handler.Type(), err)
	}
	return result, nil
}

// RecoverURL reverses the obfuscation of one embed payload under the given
// profile: packed scripts are unpacked and searched for the file marker,
// anything else is treated as an encrypted link.
func (r *Resolver) RecoverURL(payload string, profile registry.Profile) (string, bool) {
	if unseal.IsPacked(payload) {
		unpacked, err := unseal.Unpack(payload)
		if err != nil {
			r.log.Debug("unpack failed", "profile", profile.Name, "error", err)
			return "", false
		}
		marker := profile.FileMarker
		if marker == "" {
			marker = defaultFileMarker
		}
		return unseal.ExtractBetween(unpacked, marker, `"`)
	}

	return unseal.DecryptLink(payload, profile.Key, profile.Scheme)
}

// ResolveEmbedPayload recovers a playlist URL from an obfuscated payload
// and resolves it into renditions.
func (r *Resolver) ResolveEmbedPayload(ctx context.Context, payload string, profile registry.Profile) (*types.ResolveResult, error) {
	urlStr, ok := r.RecoverURL(payload, profile)
	if !ok || urlStr == "" {
		return nil, ErrNoPlayableLink
	}
	return r.ResolveManifest(ctx, urlStr, profile.Referer)
}

// DecryptBatch decrypts candidate link payloads concurrently. Corrupt
// payloads are dropped; the batch itself never fails.
func (r *Resolver) DecryptBatch(ctx context.Context, payloads []string, key string, scheme unseal.Scheme) []string {
	return parallel.MapCollect(ctx, payloads, 0, func(_ context.Context, payload string) (string, bool) {
		return unseal.DecryptLink(payload, key, scheme)
	})
}

// SanitizeSubtitles rewrites the subtitle tracks of a resolve result for
// renderers that collapse blank lines, replacing remote URLs with local
// file references. Tracks that cannot be fetched are dropped.
func (r *Resolver) SanitizeSubtitles(ctx context.Context, referer string, result *types.ResolveResult) {
	result.Subtitles = r.extractor.SanitizeSubtitles(ctx, referer, result.Subtitles)
}
