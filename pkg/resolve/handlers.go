// Package resolve ties the resolution chain together: recover a plaintext
// playlist URL from an obfuscated embed payload, then extract renditions
// from the manifest behind it.
package resolve

import (
	"context"
	"strings"

	"stream-resolver-go/pkg/httpclient"
	"stream-resolver-go/pkg/interfaces"
	"stream-resolver-go/pkg/playlist"
	"stream-resolver-go/pkg/types"
)

// hlsHandler extracts renditions from HLS playlists.
type hlsHandler struct {
	extractor *playlist.Extractor
	source    string
}

func (h *hlsHandler) Type() types.ManifestType {
	return types.ManifestTypeHLS
}

func (h *hlsHandler) CanHandle(urlStr string) bool {
	lower := strings.ToLower(urlStr)
	if strings.Contains(lower, ".m3u8") {
		return true
	}
	if strings.Contains(lower, "/hls/") {
		return true
	}
	// "manifest" paths are HLS unless they look like DASH
	if strings.Contains(lower, "manifest") &&
		!strings.Contains(lower, ".mpd") &&
		!strings.Contains(lower, "format=mpd") {
		return true
	}
	return false
}

func (h *hlsHandler) Extract(ctx context.Context, urlStr, referer string) (*types.ResolveResult, error) {
	result := &types.ResolveResult{}

	videos, err := h.extractor.ExtractHLS(ctx, playlist.HLSOptions{
		URL:     urlStr,
		Referer: referer,
		Source:  h.source,
		OnAudio: func(r types.Rendition) {
			result.Audio = append(result.Audio, r)
		},
		OnSubtitle: func(t types.SubtitleTrack) {
			result.Subtitles = append(result.Subtitles, t)
		},
	})
	if err != nil {
		return nil, err
	}

	result.Videos = videos
	return result, nil
}

// dashHandler extracts renditions from DASH manifests. Subtitle tracks are
// not produced on this path.
type dashHandler struct {
	extractor *playlist.Extractor
	source    string
}

func (h *dashHandler) Type() types.ManifestType {
	return types.ManifestTypeDASH
}

func (h *dashHandler) CanHandle(urlStr string) bool {
	lower := strings.ToLower(urlStr)
	return strings.Contains(lower, ".mpd") ||
		strings.Contains(lower, "/dash/") ||
		strings.Contains(lower, "format=mpd")
}

func (h *dashHandler) Extract(ctx context.Context, urlStr, referer string) (*types.ResolveResult, error) {
	result := &types.ResolveResult{}

	videos, err := h.extractor.ExtractDASH(ctx, playlist.DASHOptions{
		URL:     urlStr,
		Referer: referer,
		Source:  h.source,
		OnAudio: func(r types.Rendition) {
			result.Audio = append(result.Audio, r)
		},
	})
	if err != nil {
		return nil, err
	}

	result.Videos = videos
	return result, nil
}

// progressiveHandler is the fallback for direct file URLs: nothing to
// parse, the URL itself is the single rendition.
type progressiveHandler struct {
	source string
}

func (h *progressiveHandler) Type() types.ManifestType {
	return types.ManifestTypeProgressive
}

func (h *progressiveHandler) CanHandle(string) bool {
	return false
}

func (h *progressiveHandler) Extract(_ context.Context, urlStr, referer string) (*types.ResolveResult, error) {
	return &types.ResolveResult{
		Videos: []types.Rendition{{
			Source:    h.source,
			Name:      "Video",
			URL:       urlStr,
			Kind:      types.MediaKindVideo,
			Quality:   types.QualityUnknown,
			Referer:   referer,
			Headers:   httpclient.BuildHeaders(nil, referer),
			Container: types.ContainerProgressive,
		}},
	}, nil
}

var (
	_ interfaces.ManifestHandler = (*hlsHandler)(nil)
	_ interfaces.ManifestHandler = (*dashHandler)(nil)
	_ interfaces.ManifestHandler = (*progressiveHandler)(nil)
)
