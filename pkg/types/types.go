// Package types defines core domain types used throughout the resolver.
package types

// MediaKind identifies what a rendition carries.
type MediaKind string

const (
	MediaKindVideo    MediaKind = "video"
	MediaKindAudio    MediaKind = "audio"
	MediaKindSubtitle MediaKind = "subtitle"
)

// Container hints at the delivery format of a rendition URL.
type Container string

const (
	ContainerHLS         Container = "hls"
	ContainerDASH        Container = "dash"
	ContainerProgressive Container = "progressive"
	ContainerUnknown     Container = "unknown"
)

// QualityUnknown marks renditions whose quality must be inferred from the
// display name (flat playlists, variants without RESOLUTION).
const QualityUnknown = "unknown"

// Rendition is one concrete playable stream option. Immutable once built;
// constructed fresh for every manifest parse.
type Rendition struct {
	Source    string            `json:"source"`
	Name      string            `json:"name"`
	URL       string            `json:"url"`
	Kind      MediaKind         `json:"kind"`
	Quality   string            `json:"quality"`
	Referer   string            `json:"referer,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	Container Container         `json:"container"`
}

// SubtitleTrack is a language tag plus an absolute URL, produced as a side
// output of HLS master-playlist parsing.
type SubtitleTrack struct {
	Language string `json:"language"`
	URL      string `json:"url"`
}

// ManifestType identifies the type of manifest.
type ManifestType string

const (
	ManifestTypeHLS         ManifestType = "hls"
	ManifestTypeDASH        ManifestType = "dash"
	ManifestTypeProgressive ManifestType = "progressive"
)

// ResolveResult groups everything one resolution run produced.
type ResolveResult struct {
	Videos    []Rendition     `json:"videos"`
	Audio     []Rendition     `json:"audio,omitempty"`
	Subtitles []SubtitleTrack `json:"subtitles,omitempty"`
}
