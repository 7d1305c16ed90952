package playlist

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"stream-resolver-go/pkg/httpclient"
	"stream-resolver-go/pkg/types"
	"stream-resolver-go/pkg/urlutil"
)

// DASHOptions configures one DASH extraction call. Unlike HLS, each video
// representation may need its own headers (URL-dependent tokens), so the
// header generator receives the resolved URL.
type DASHOptions struct {
	URL     string
	Referer string
	Source  string

	// Name maps (resolution label, bandwidth) to a display name.
	// Nil uses "<height>p (<rate>)".
	Name func(resolution string, bandwidth int64) string

	// ManifestHeaders generates headers for the manifest fetch; nil
	// derives them from Referer.
	ManifestHeaders HeaderFunc

	// VideoHeaders generates per-representation headers from the resolved
	// representation URL; nil derives them from Referer.
	VideoHeaders func(videoURL string) map[string]string

	// OnAudio receives audio renditions, which never appear in the return
	// value. Nil discards.
	OnAudio func(types.Rendition)
}

// ExtractDASH fetches an MPD manifest and returns its video renditions in
// document order. The manifest is parsed with a tolerant HTML-style parser:
// tag and attribute matching is case-insensitive and survives malformed
// XML. Representations missing a URL are skipped. Subtitle tracks are not
// extracted on this path.
func (e *Extractor) ExtractDASH(ctx context.Context, opts DASHOptions) ([]types.Rendition, error) {
	if opts.URL == "" {
		return nil, errors.New("manifest URL required")
	}

	nameFor := opts.Name
	if nameFor == nil {
		nameFor = func(resolution string, bandwidth int64) string {
			if rate := FormatBytesPerSecond(&bandwidth); rate != "" {
				return fmt.Sprintf("%s (%s)", resolution, rate)
			}
			return resolution
		}
	}

	manifestHeaders := opts.ManifestHeaders
	if manifestHeaders == nil {
		manifestHeaders = func() map[string]string { return httpclient.BuildHeaders(nil, opts.Referer) }
	}
	videoHeaders := opts.VideoHeaders
	if videoHeaders == nil {
		videoHeaders = func(string) map[string]string { return httpclient.BuildHeaders(nil, opts.Referer) }
	}

	body, finalURL, err := e.client.FetchText(ctx, opts.URL, manifestHeaders())
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	var videos []types.Rendition

	doc.Find("representation").Each(func(_ int, sel *goquery.Selection) {
		mime := representationMime(sel)

		switch {
		case strings.Contains(mime, "audio"):
			uri := urlutil.Resolve(representationURL(sel), finalURL)
			if uri == "" {
				return
			}
			lang := representationLang(sel)
			if opts.OnAudio != nil {
				opts.OnAudio(types.Rendition{
					Source:    opts.Source,
					Name:      fmt.Sprintf("Audio (%s)", lang),
					URL:       uri,
					Kind:      types.MediaKindAudio,
					Quality:   types.QualityUnknown,
					Referer:   opts.Referer,
					Headers:   httpclient.BuildHeaders(nil, opts.Referer),
					Container: types.ContainerDASH,
				})
			}

		case strings.Contains(mime, "video"):
			uri := urlutil.Resolve(representationURL(sel), finalURL)
			if uri == "" {
				return
			}
			bandwidth, _ := strconv.ParseInt(sel.AttrOr("bandwidth", ""), 10, 64)
			resolution := ""
			if height := sel.AttrOr("height", ""); height != "" {
				resolution = height + "p"
			}
			videos = append(videos, types.Rendition{
				Source:    opts.Source,
				Name:      nameFor(resolution, bandwidth),
				URL:       uri,
				Kind:      types.MediaKindVideo,
				Quality:   types.QualityUnknown,
				Referer:   opts.Referer,
				Headers:   videoHeaders(uri),
				Container: types.ContainerDASH,
			})
		}
	})

	return videos, nil
}

// representationMime reads mimeType from the representation itself or its
// enclosing adaptation set.
func representationMime(sel *goquery.Selection) string {
	if mime := sel.AttrOr("mimetype", ""); mime != "" {
		return strings.ToLower(mime)
	}
	return strings.ToLower(sel.Closest("adaptationset").AttrOr("mimetype", ""))
}

// representationURL reads the stream URL from a nested BaseURL element,
// falling back to a media/src style attribute.
func representationURL(sel *goquery.Selection) string {
	if base := strings.TrimSpace(sel.Find("baseurl").First().Text()); base != "" {
		return base
	}
	if src := sel.Find("media").First().AttrOr("src", ""); src != "" {
		return src
	}
	return sel.AttrOr("media", "")
}

func representationLang(sel *goquery.Selection) string {
	if lang := sel.AttrOr("lang", ""); lang != "" {
		return lang
	}
	if lang := sel.Closest("adaptationset").AttrOr("lang", ""); lang != "" {
		return lang
	}
	return "Unknown"
}
