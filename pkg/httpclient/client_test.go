package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"stream-resolver-go/pkg/config"
	"stream-resolver-go/pkg/logging"
)

func testClient(t *testing.T, cfg *config.Config) *Client {
	t.Helper()
	if cfg.FetchRetries == 0 {
		cfg.FetchRetries = 3
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	return New(cfg, logging.New("error", false, nil))
}

func TestGetClientForURL(t *testing.T) {
	tests := []struct {
		name          string
		cfg           *config.Config
		targetURL     string
		expectDefault bool
	}{
		{
			name: "uses global proxy when no transport routes match",
			cfg: &config.Config{
				GlobalProxies: []string{"socks5://proxy.example.com:1080"},
			},
			targetURL:     "https://cdn.example.com/video.m3u8",
			expectDefault: false,
		},
		{
			name: "uses transport route when URL matches",
			cfg: &config.Config{
				GlobalProxies: []string{"socks5://global-proxy.example.com:1080"},
				TransportRoutes: []config.TransportRoute{
					{
						URLPattern: "cdn.specific.com",
						Proxy:      "socks5://specific-proxy.example.com:1080",
					},
				},
			},
			targetURL:     "https://cdn.specific.com/video.m3u8",
			expectDefault: false,
		},
		{
			name:          "uses default client when no proxy configured",
			cfg:           &config.Config{},
			targetURL:     "https://cdn.example.com/video.m3u8",
			expectDefault: true,
		},
		{
			name: "direct route bypasses global proxy",
			cfg: &config.Config{
				GlobalProxies: []string{"socks5://global-proxy.example.com:1080"},
				TransportRoutes: []config.TransportRoute{
					{URLPattern: "specific-cdn.com", Direct: true},
				},
			},
			targetURL:     "https://specific-cdn.com/video.m3u8",
			expectDefault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testClient(t, tt.cfg)
			httpClient := client.getClientForURL(tt.targetURL)

			isDefaultClient := httpClient == client.defaultClient
			if tt.expectDefault != isDefaultClient {
				t.Errorf("default client = %v, want %v", isDefaultClient, tt.expectDefault)
			}
		})
	}
}

func TestUTLSDomainRouting(t *testing.T) {
	client := testClient(t, &config.Config{
		UTLSDomains: []string{"protected.example.com"},
	})

	if got := client.getClientForURL("https://protected.example.com/master.m3u8"); got != client.utlsClient {
		t.Error("expected utls client for configured domain")
	}
	if got := client.getClientForURL("https://plain.example.com/master.m3u8"); got != client.defaultClient {
		t.Error("expected default client for unlisted domain")
	}
}

func TestBuildHeaders(t *testing.T) {
	tests := []struct {
		name    string
		base    map[string]string
		referer string
		want    map[string]string
	}{
		{
			name:    "no referer only forces accept",
			base:    map[string]string{"User-Agent": "test-agent"},
			referer: "",
			want:    map[string]string{"User-Agent": "test-agent", "Accept": "*/*"},
		},
		{
			name:    "referer derives https origin",
			base:    nil,
			referer: "https://embed.example.com/e/abc123",
			want: map[string]string{
				"Accept":  "*/*",
				"Referer": "https://embed.example.com/e/abc123",
				"Origin":  "https://embed.example.com",
			},
		},
		{
			name:    "base headers survive",
			base:    map[string]string{"Cookie": "session=1"},
			referer: "https://host.example.com/",
			want: map[string]string{
				"Cookie":  "session=1",
				"Accept":  "*/*",
				"Referer": "https://host.example.com/",
				"Origin":  "https://host.example.com",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildHeaders(tt.base, tt.referer)
			if len(got) != len(tt.want) {
				t.Errorf("got %d headers, want %d: %v", len(got), len(tt.want), got)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("header %q = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestFetchTextRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("#EXTM3U\n"))
	}))
	defer srv.Close()

	client := testClient(t, &config.Config{
		FetchRetries:    3,
		FetchRetryDelay: 10 * time.Millisecond,
		FetchTimeout:    5 * time.Second,
	})

	body, finalURL, err := client.FetchText(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("FetchText() error = %v", err)
	}
	if body != "#EXTM3U\n" {
		t.Errorf("body = %q", body)
	}
	if finalURL != srv.URL {
		t.Errorf("finalURL = %q, want %q", finalURL, srv.URL)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestFetchTextExhaustsAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := testClient(t, &config.Config{
		FetchRetries:    2,
		FetchRetryDelay: 5 * time.Millisecond,
		FetchTimeout:    5 * time.Second,
	})

	_, _, err := client.FetchText(context.Background(), srv.URL, nil)
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
}

func TestFetchTextReportsRedirectedURL(t *testing.T) {
	var target *httptest.Server
	target = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/final/master.m3u8", http.StatusFound)
			return
		}
		w.Write([]byte("#EXTM3U\n"))
	}))
	defer target.Close()

	client := testClient(t, &config.Config{
		FetchRetries: 1,
		FetchTimeout: 5 * time.Second,
	})

	_, finalURL, err := client.FetchText(context.Background(), target.URL+"/start", nil)
	if err != nil {
		t.Fatalf("FetchText() error = %v", err)
	}
	want := target.URL + "/final/master.m3u8"
	if finalURL != want {
		t.Errorf("finalURL = %q, want %q", finalURL, want)
	}
}
