package unseal

import (
	"errors"
	"regexp"
	"strings"
)

// packedSignatureRe detects the classic Dean Edwards packer prelude.
var packedSignatureRe = regexp.MustCompile(`eval\(function\(p,a,c,k,e,[dr]\)`)

// packedParamsRe captures the packer arguments:
// }('payload',radix,count,'keywords'.split('|')...
var packedParamsRe = regexp.MustCompile(`(?s)\}\s*\(\s*'(.*)'\s*,\s*(\d+)\s*,\s*(\d+)\s*,\s*'([^']*)'\s*\.split\('\|'\)`)

var wordRe = regexp.MustCompile(`\b\w+\b`)

const unbaseAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// IsPacked reports whether the script carries a packer payload. Absence is
// a normal "nothing to do" signal, not an error.
func IsPacked(script string) bool {
	return packedSignatureRe.MatchString(script)
}

// Unpack reverses the eval(function(p,a,c,k,e,d)) packer and returns the
// original JavaScript source.
func Unpack(script string) (string, error) {
	if !IsPacked(script) {
		return "", errors.New("no packer signature present")
	}

	m := packedParamsRe.FindStringSubmatch(script)
	if len(m) < 5 {
		return "", errors.New("could not extract packer params")
	}

	payload := strings.ReplaceAll(m[1], `\'`, `'`)
	radix := atoiOr(m[2], 36)
	keywords := strings.Split(m[4], "|")

	return wordRe.ReplaceAllStringFunc(payload, func(word string) string {
		idx, ok := unbase(word, radix)
		if !ok || idx >= len(keywords) || keywords[idx] == "" {
			return word
		}
		return keywords[idx]
	}), nil
}

// ExtractBetween returns the substring between the first occurrence of
// marker and the following terminator, e.g. the URL inside `file:"..."`.
func ExtractBetween(s, marker, terminator string) (string, bool) {
	start := strings.Index(s, marker)
	if start < 0 {
		return "", false
	}
	start += len(marker)
	end := strings.Index(s[start:], terminator)
	if end < 0 {
		return "", false
	}
	return s[start : start+end], true
}

// unbase decodes a packer symbol. Radixes up to 36 use the lowercase
// alphabet like JavaScript's parseInt; larger radixes use the packer's
// 62-character table.
func unbase(word string, radix int) (int, bool) {
	if radix < 2 || radix > len(unbaseAlphabet) {
		return 0, false
	}
	alphabet := unbaseAlphabet[:radix]

	n := 0
	for _, r := range word {
		c := byte(r)
		if radix <= 36 && c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		idx := strings.IndexByte(alphabet, c)
		if idx < 0 {
			return 0, false
		}
		n = n*radix + idx
	}
	return n, true
}

func atoiOr(s string, fallback int) int {
	n := 0
	if s == "" {
		return fallback
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return fallback
		}
		n = n*10 + int(r-'0')
	}
	return n
}
