// Package urlutil provides URL manipulation utilities that preserve original encoding.
package urlutil

import (
	"net/url"
	"strings"
)

// Resolve resolves a manifest-sourced URI against the URL the manifest was
// fetched from. Uses string manipulation to preserve original URL encoding.
// Go's url.ResolveReference re-encodes special characters which breaks
// URLs for CDNs that use parentheses, brackets, or other special chars.
//
// Rules, in order:
//   - empty URI is invalid and resolves to ""
//   - "http..." is already absolute
//   - "//host/path" is protocol-relative, gets "https:"
//   - "/path" resolves against the manifest URL's scheme+host
//   - anything else is appended to the manifest's base directory
func Resolve(uri, manifestURL string) string {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return ""
	}
	if strings.HasPrefix(uri, "http") {
		return uri
	}
	if strings.HasPrefix(uri, "//") {
		return "https:" + uri
	}
	if strings.HasPrefix(uri, "/") {
		if origin := GetSchemeHost(manifestURL); origin != "" {
			return origin + uri
		}
		return ""
	}

	base := GetBaseDirectory(manifestURL)

	// Handle parent directory references
	for strings.HasPrefix(uri, "../") {
		uri = uri[3:]
		trimmed := strings.TrimSuffix(base, "/")
		if lastSlash := strings.LastIndex(trimmed, "/"); lastSlash > 0 {
			base = trimmed[:lastSlash+1]
		}
	}

	return base + uri
}

// GetBaseDirectory returns the directory portion of a URL (without the
// filename). Query string and fragment are dropped; original encoding is
// preserved.
func GetBaseDirectory(urlStr string) string {
	if idx := strings.Index(urlStr, "?"); idx > 0 {
		urlStr = urlStr[:idx]
	}
	if idx := strings.Index(urlStr, "#"); idx > 0 {
		urlStr = urlStr[:idx]
	}
	if lastSlash := strings.LastIndex(urlStr, "/"); lastSlash > 0 {
		return urlStr[:lastSlash+1]
	}
	return urlStr
}

// GetSchemeHost extracts scheme://host from a URL.
func GetSchemeHost(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

// Host returns the host portion of a URL, or "" if it cannot be parsed.
func Host(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return parsed.Host
}
