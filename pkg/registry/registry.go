// Package registry provides registries for manifest handlers and site
// profiles, both selected by URL with a fallback.
package registry

import (
	"strings"
	"sync"

	"stream-resolver-go/pkg/interfaces"
	"stream-resolver-go/pkg/types"
	"stream-resolver-go/pkg/unseal"
)

// ManifestHandlerRegistry manages manifest handlers.
type ManifestHandlerRegistry struct {
	mu       sync.RWMutex
	handlers []interfaces.ManifestHandler
	fallback interfaces.ManifestHandler
}

// NewManifestHandlerRegistry creates a new manifest handler registry.
func NewManifestHandlerRegistry() *ManifestHandlerRegistry {
	return &ManifestHandlerRegistry{
		handlers: make([]interfaces.ManifestHandler, 0),
	}
}

// Register adds a handler to the registry.
func (r *ManifestHandlerRegistry) Register(handler interfaces.ManifestHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, handler)
}

// SetFallback sets the handler used when no handler matches.
func (r *ManifestHandlerRegistry) SetFallback(handler interfaces.ManifestHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = handler
}

// Get returns the appropriate handler for the given URL.
func (r *ManifestHandlerRegistry) Get(url string) interfaces.ManifestHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.handlers {
		if h.CanHandle(url) {
			return h
		}
	}
	return r.fallback
}

// GetByType returns the handler for a specific manifest type.
func (r *ManifestHandlerRegistry) GetByType(t types.ManifestType) interfaces.ManifestHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, h := range r.handlers {
		if h.Type() == t {
			return h
		}
	}
	return r.fallback
}

// All returns all registered handlers.
func (r *ManifestHandlerRegistry) All() []interfaces.ManifestHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]interfaces.ManifestHandler, len(r.handlers))
	copy(result, r.handlers)
	return result
}

// Profile describes how one embed provider obfuscates its links. Two
// incompatible AES schemes coexist across providers, so the scheme is an
// explicit per-site choice, never auto-detected.
type Profile struct {
	Name string

	// HostPatterns are matched as substrings against embed URLs.
	HostPatterns []string

	// Scheme and Key drive link decryption for this provider.
	Scheme unseal.Scheme
	Key    string

	// Referer is sent when fetching the provider's manifests.
	Referer string

	// FileMarker precedes the playlist URL in unpacked scripts,
	// e.g. `file:"`.
	FileMarker string
}

// Matches reports whether the profile covers the given embed URL.
func (p Profile) Matches(url string) bool {
	lower := strings.ToLower(url)
	for _, pattern := range p.HostPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// ProfileRegistry manages site profiles.
type ProfileRegistry struct {
	mu       sync.RWMutex
	profiles []Profile
	byName   map[string]Profile
}

// NewProfileRegistry creates a new profile registry.
func NewProfileRegistry() *ProfileRegistry {
	return &ProfileRegistry{
		byName: make(map[string]Profile),
	}
}

// Register adds a profile to the registry.
func (r *ProfileRegistry) Register(profile Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles = append(r.profiles, profile)
	r.byName[profile.Name] = profile
}

// Get returns the profile matching the given embed URL.
func (r *ProfileRegistry) Get(url string) (Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.profiles {
		if p.Matches(url) {
			return p, true
		}
	}
	return Profile{}, false
}

// GetByName returns a profile by its name.
func (r *ProfileRegistry) GetByName(name string) (Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byName[name]
	return p, ok
}

// All returns all registered profiles.
func (r *ProfileRegistry) All() []Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Profile, len(r.profiles))
	copy(result, r.profiles)
	return result
}
