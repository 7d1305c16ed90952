// Package main is a diagnostic tool: resolve one manifest URL or one
// obfuscated embed payload and print the resulting renditions as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"stream-resolver-go/pkg/config"
	"stream-resolver-go/pkg/httpclient"
	"stream-resolver-go/pkg/logging"
	"stream-resolver-go/pkg/registry"
	"stream-resolver-go/pkg/resolve"
	"stream-resolver-go/pkg/types"
	"stream-resolver-go/pkg/unseal"
)

func main() {
	var (
		manifestURL = flag.String("url", "", "manifest URL to resolve")
		payload     = flag.String("payload", "", "obfuscated embed payload (Base64 or packed script)")
		key         = flag.String("key", "", "decryption key for -payload")
		scheme      = flag.String("scheme", "rawiv", "decrypt scheme: rawiv or salted")
		referer     = flag.String("referer", "", "referer / embed page URL")
		source      = flag.String("source", "cli", "source label attached to renditions")
		sanitize    = flag.Bool("sanitize-subs", false, "rewrite subtitle tracks into local temp files")
	)
	flag.Parse()

	if *manifestURL == "" && *payload == "" {
		fmt.Fprintln(os.Stderr, "one of -url or -payload is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogJSON, os.Stderr)
	client := httpclient.New(cfg, log)
	resolver := resolve.New(client, log, resolve.Options{
		Source: *source,
		TmpDir: cfg.SubtitleTmpDir,
	})

	ctx := context.Background()

	result, err := run(ctx, resolver, *manifestURL, *payload, *key, *scheme, *referer)
	if err != nil {
		log.Error("resolution failed", "error", err)
		os.Exit(1)
	}

	if *sanitize && len(result.Subtitles) > 0 {
		resolver.SanitizeSubtitles(ctx, *referer, result)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Error("encoding result failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, resolver *resolve.Resolver, manifestURL, payload, key, scheme, referer string) (*types.ResolveResult, error) {
	if manifestURL != "" {
		return resolver.ResolveManifest(ctx, manifestURL, referer)
	}

	profile := registry.Profile{
		Name:    "cli",
		Key:     key,
		Referer: referer,
	}
	switch scheme {
	case "rawiv":
		profile.Scheme = unseal.SchemeRawIV
	case "salted":
		profile.Scheme = unseal.SchemeOpenSSLSalted
	default:
		return nil, fmt.Errorf("unknown scheme %q", scheme)
	}

	return resolver.ResolveEmbedPayload(ctx, payload, profile)
}
