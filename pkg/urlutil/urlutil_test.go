package urlutil

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		uri         string
		manifestURL string
		want        string
	}{
		{
			name:        "absolute URL unchanged",
			uri:         "https://example.com/video.ts",
			manifestURL: "https://other.com/manifest.m3u8",
			want:        "https://example.com/video.ts",
		},
		{
			name:        "relative path",
			uri:         "720p.m3u8",
			manifestURL: "https://cdn.example.com/videos/master.m3u8",
			want:        "https://cdn.example.com/videos/720p.m3u8",
		},
		{
			name:        "protocol relative",
			uri:         "//cdn.example.com/a.ts",
			manifestURL: "https://origin.example.com/videos/master.m3u8",
			want:        "https://cdn.example.com/a.ts",
		},
		{
			name:        "absolute path ignores base directory",
			uri:         "/x/y.ts",
			manifestURL: "https://cdn.example.com/videos/master.m3u8",
			want:        "https://cdn.example.com/x/y.ts",
		},
		{
			name:        "empty URI is invalid",
			uri:         "",
			manifestURL: "https://cdn.example.com/videos/master.m3u8",
			want:        "",
		},
		{
			name:        "whitespace URI is invalid",
			uri:         "  \t",
			manifestURL: "https://cdn.example.com/videos/master.m3u8",
			want:        "",
		},
		{
			name:        "parent directory reference",
			uri:         "../audio/segment001.ts",
			manifestURL: "https://cdn.example.com/stream/video/manifest.m3u8",
			want:        "https://cdn.example.com/stream/audio/segment001.ts",
		},
		{
			name:        "multiple parent references",
			uri:         "../../other/segment.ts",
			manifestURL: "https://cdn.example.com/a/b/c/manifest.m3u8",
			want:        "https://cdn.example.com/a/other/segment.ts",
		},
		{
			name:        "preserves special characters in base",
			uri:         "segment.ts",
			manifestURL: "https://cdn.example.com/stream(1)/manifest.m3u8",
			want:        "https://cdn.example.com/stream(1)/segment.ts",
		},
		{
			name:        "base with query string",
			uri:         "segment.ts",
			manifestURL: "https://cdn.example.com/stream/manifest.m3u8?token=abc",
			want:        "https://cdn.example.com/stream/segment.ts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.uri, tt.manifestURL)
			if got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.uri, tt.manifestURL, got, tt.want)
			}
		})
	}
}

func TestGetBaseDirectory(t *testing.T) {
	tests := []struct {
		name   string
		urlStr string
		want   string
	}{
		{
			name:   "simple path",
			urlStr: "https://cdn.example.com/stream/manifest.m3u8",
			want:   "https://cdn.example.com/stream/",
		},
		{
			name:   "with query string",
			urlStr: "https://cdn.example.com/stream/manifest.m3u8?token=abc",
			want:   "https://cdn.example.com/stream/",
		},
		{
			name:   "with fragment",
			urlStr: "https://cdn.example.com/stream/manifest.m3u8#t=10",
			want:   "https://cdn.example.com/stream/",
		},
		{
			name:   "root path",
			urlStr: "https://cdn.example.com/manifest.m3u8",
			want:   "https://cdn.example.com/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetBaseDirectory(tt.urlStr)
			if got != tt.want {
				t.Errorf("GetBaseDirectory(%q) = %q, want %q", tt.urlStr, got, tt.want)
			}
		})
	}
}

func TestGetSchemeHost(t *testing.T) {
	if got := GetSchemeHost("https://cdn.example.com/videos/master.m3u8"); got != "https://cdn.example.com" {
		t.Errorf("GetSchemeHost() = %q", got)
	}
	if got := GetSchemeHost("not a url"); got != "" {
		t.Errorf("GetSchemeHost() on garbage = %q, want empty", got)
	}
}
