package playlist

import (
	"context"
	"os"
	"regexp"
	"strings"

	"stream-resolver-go/pkg/httpclient"
	"stream-resolver-go/pkg/types"
)

// timingLineRe matches the cue timing lines ("00:01:02,500 --> ...") whose
// surrounding blank lines are real cue boundaries and must be kept.
var timingLineRe = regexp.MustCompile(`\d{1,2}:\d{2}:\d{2}[.,]\d{1,3}\s*-->`)

// SanitizeSubtitles fetches each track and rewrites blank-line runs inside
// cue text, which some renderers collapse. Each run of n blank lines that
// does not border a timing line becomes "&nbsp;\n" repeated n-1 times. The
// rewritten track is stored in a temp file and returned as a file:// URL.
// Best-effort: a track that cannot be fetched or stored is dropped.
func (e *Extractor) SanitizeSubtitles(ctx context.Context, referer string, tracks []types.SubtitleTrack) []types.SubtitleTrack {
	var out []types.SubtitleTrack
	for _, track := range tracks {
		content, _, err := e.client.FetchText(ctx, track.URL, httpclient.BuildHeaders(nil, referer))
		if err != nil {
			e.log.Debug("dropping subtitle", "url", track.URL, "error", err)
			continue
		}

		path, err := e.writeTemp(sanitizeCueText(content))
		if err != nil {
			e.log.Debug("dropping subtitle", "url", track.URL, "error", err)
			continue
		}

		out = append(out, types.SubtitleTrack{
			Language: track.Language,
			URL:      "file://" + path,
		})
	}
	return out
}

func (e *Extractor) writeTemp(content string) (string, error) {
	f, err := os.CreateTemp(e.tmpDir, "subtitle-*.vtt")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// sanitizeCueText rewrites blank-line runs that are not cue boundaries. A
// run is a boundary when the next content is a timing line, possibly
// preceded by a numeric cue index.
func sanitizeCueText(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	i := 0
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) != "" {
			out = append(out, lines[i])
			i++
			continue
		}

		// Collect the whole blank run.
		j := i
		for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
			j++
		}
		count := j - i

		if isCueBoundary(lines, j) {
			out = append(out, lines[i:j]...)
		} else {
			for k := 0; k < count-1; k++ {
				out = append(out, "&nbsp;")
			}
		}
		i = j
	}

	return strings.Join(out, "\n")
}

func isCueBoundary(lines []string, next int) bool {
	if next >= len(lines) {
		// Trailing blanks close the file.
		return true
	}
	if timingLineRe.MatchString(lines[next]) {
		return true
	}
	// SRT cue index line followed by the timing line.
	if next+1 < len(lines) && isDigits(strings.TrimSpace(lines[next])) && timingLineRe.MatchString(lines[next+1]) {
		return true
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
