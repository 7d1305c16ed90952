// Package playlist turns one adaptive-streaming manifest into typed
// renditions: video variants as the return value, audio tracks and
// subtitle tracks through caller-supplied sinks.
package playlist

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"stream-resolver-go/pkg/httpclient"
	"stream-resolver-go/pkg/logging"
	"stream-resolver-go/pkg/types"
	"stream-resolver-go/pkg/urlutil"
)

const streamInfTag = "#EXT-X-STREAM-INF:"

var (
	codecsRe     = regexp.MustCompile(`CODECS="([^"]*)"`)
	resolutionRe = regexp.MustCompile(`RESOLUTION=(\d+x\d+)`)
	bandwidthRe  = regexp.MustCompile(`BANDWIDTH=(\d+)`)
	mediaNameRe  = regexp.MustCompile(`NAME="([^"]*)"`)
	mediaURIRe   = regexp.MustCompile(`URI="([^"]*)"`)
)

// HeaderFunc produces the header set for one request class.
type HeaderFunc func() map[string]string

// Extractor resolves manifests into renditions.
type Extractor struct {
	client *httpclient.Client
	log    *logging.Logger
	tmpDir string
}

// NewExtractor creates a manifest rendition extractor. tmpDir receives
// sanitized subtitle files; empty means the system temp directory.
func NewExtractor(client *httpclient.Client, log *logging.Logger, tmpDir string) *Extractor {
	return &Extractor{
		client: client,
		log:    log.WithComponent("playlist"),
		tmpDir: tmpDir,
	}
}

// HLSOptions configures one HLS extraction call.
type HLSOptions struct {
	URL     string
	Referer string
	Source  string

	// Name maps a quality label ("1920x1080 5.00 MB/s") to a display name.
	// Nil keeps the label as-is, with "Video" for an empty label.
	Name func(qualityLabel string) string

	// MasterHeaders and VariantHeaders generate headers for the master
	// request and for per-variant playback. Nil derives both from Referer.
	MasterHeaders  HeaderFunc
	VariantHeaders HeaderFunc

	// OnAudio and OnSubtitle receive audio renditions and subtitle tracks;
	// neither appears in the return value. Nil sinks discard.
	OnAudio    func(types.Rendition)
	OnSubtitle func(types.SubtitleTrack)
}

// ExtractHLS fetches a playlist and returns its video renditions in
// manifest order. A playlist without stream variants is returned as a
// single unknown-quality rendition pointing at the post-redirect URL.
// Malformed individual variants are skipped, never fatal.
func (e *Extractor) ExtractHLS(ctx context.Context, opts HLSOptions) ([]types.Rendition, error) {
	if opts.URL == "" {
		return nil, errors.New("playlist URL required")
	}

	nameFor := opts.Name
	if nameFor == nil {
		nameFor = func(label string) string { return label }
	}

	masterHeaders := opts.MasterHeaders
	if masterHeaders == nil {
		masterHeaders = func() map[string]string { return httpclient.BuildHeaders(nil, opts.Referer) }
	}
	variantHeaders := opts.VariantHeaders
	if variantHeaders == nil {
		variantHeaders = masterHeaders
	}

	body, finalURL, err := e.client.FetchText(ctx, opts.URL, masterHeaders())
	if err != nil {
		return nil, fmt.Errorf("fetch playlist: %w", err)
	}

	if !strings.Contains(body, streamInfTag) {
		// Flat playlist: no variants to enumerate, the playlist itself is
		// the stream. Quality is for the consumer to infer.
		e.log.Debug("flat playlist, returning single rendition", "url", finalURL)
		return []types.Rendition{{
			Source:    opts.Source,
			Name:      nameFor("Video"),
			URL:       finalURL,
			Kind:      types.MediaKindVideo,
			Quality:   types.QualityUnknown,
			Referer:   opts.Referer,
			Headers:   variantHeaders(),
			Container: types.ContainerHLS,
		}}, nil
	}

	e.scanMediaLines(body, finalURL, opts, variantHeaders)

	return e.scanVariants(body, finalURL, opts, nameFor, variantHeaders), nil
}

// scanMediaLines emits subtitle tracks and audio renditions from
// #EXT-X-MEDIA lines.
func (e *Extractor) scanMediaLines(body, manifestURL string, opts HLSOptions, variantHeaders HeaderFunc) {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#EXT-X-MEDIA:") {
			continue
		}

		name := firstGroup(mediaNameRe, line)
		uri := urlutil.Resolve(firstGroup(mediaURIRe, line), manifestURL)
		if uri == "" {
			continue
		}

		switch {
		case strings.Contains(line, "TYPE=SUBTITLES"):
			if opts.OnSubtitle != nil {
				opts.OnSubtitle(types.SubtitleTrack{Language: name, URL: uri})
			}
		case strings.Contains(line, "TYPE=AUDIO"):
			if opts.OnAudio != nil {
				opts.OnAudio(types.Rendition{
					Source:    opts.Source,
					Name:      fmt.Sprintf("Audio (%s)", name),
					URL:       uri,
					Kind:      types.MediaKindAudio,
					Quality:   types.QualityUnknown,
					Referer:   opts.Referer,
					Headers:   variantHeaders(),
					Container: types.ContainerHLS,
				})
			}
		}
	}
}

// scanVariants walks the #EXT-X-STREAM-INF chunks in document order.
func (e *Extractor) scanVariants(body, manifestURL string, opts HLSOptions, nameFor func(string) string, variantHeaders HeaderFunc) []types.Rendition {
	chunks := strings.Split(body, streamInfTag)

	var videos []types.Rendition
	for _, chunk := range chunks[1:] {
		lines := strings.Split(chunk, "\n")
		attrLine := lines[0]

		// Audio-only variants are covered by the media-line scan.
		if codecs := firstGroup(codecsRe, attrLine); strings.HasPrefix(codecs, "mp4a") {
			continue
		}

		var bandwidth *int64
		if raw := firstGroup(bandwidthRe, attrLine); raw != "" {
			if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
				bandwidth = &v
			}
		}
		resolution := firstGroup(resolutionRe, attrLine)

		label := strings.TrimSpace(resolution + " " + FormatBytesPerSecond(bandwidth))
		if label == "" {
			label = "Video"
		}

		uri := ""
		for _, l := range lines[1:] {
			if strings.TrimSpace(l) != "" {
				uri = strings.TrimSpace(l)
				break
			}
		}
		resolved := urlutil.Resolve(uri, manifestURL)
		if resolved == "" {
			e.log.Debug("skipping variant without URI", "attrs", attrLine)
			continue
		}

		videos = append(videos, types.Rendition{
			Source:    opts.Source,
			Name:      nameFor(label),
			URL:       resolved,
			Kind:      types.MediaKindVideo,
			Quality:   types.QualityUnknown,
			Referer:   opts.Referer,
			Headers:   variantHeaders(),
			Container: types.ContainerHLS,
		})
	}

	return videos
}

func firstGroup(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return ""
}
