// Package unseal reverses the obfuscation techniques found in embed pages:
// AES-CBC encrypted link payloads and packer-obfuscated JavaScript.
package unseal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"strings"
)

// Scheme selects the payload layout for DecryptLink. The two schemes belong
// to different embed providers and are not interoperable; callers pick one
// per site, there is no auto-detection.
type Scheme int

const (
	// SchemeRawIV: Base64 of IV||ciphertext, the UTF-8 key bytes used
	// directly as the AES key.
	SchemeRawIV Scheme = iota

	// SchemeOpenSSLSalted: Base64 of "Salted__"||salt||ciphertext; the AES
	// key is derived from passphrase and salt via MD5 EVP_BytesToKey, the
	// IV is all zeroes.
	SchemeOpenSSLSalted
)

const opensslMagic = "Salted__"

// DecryptLink decodes and decrypts an embedded link payload. Any failure
// (bad Base64, wrong key length, corrupt padding) reports ok=false so a
// batch of candidate links can keep going.
func DecryptLink(payload, key string, scheme Scheme) (string, bool) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(payload)
		if err != nil {
			return "", false
		}
	}

	switch scheme {
	case SchemeRawIV:
		return decryptRawIV(raw, []byte(key))
	case SchemeOpenSSLSalted:
		return decryptOpenSSLSalted(raw, []byte(key))
	default:
		return "", false
	}
}

func decryptRawIV(raw, key []byte) (string, bool) {
	if len(raw) < aes.BlockSize {
		return "", false
	}
	iv := raw[:aes.BlockSize]
	ciphertext := raw[aes.BlockSize:]
	return decryptCBC(ciphertext, key, iv)
}

func decryptOpenSSLSalted(raw, passphrase []byte) (string, bool) {
	if len(raw) < 16 || !strings.HasPrefix(string(raw[:8]), opensslMagic) {
		return "", false
	}
	salt := raw[8:16]
	key := evpBytesToKey(passphrase, salt, 32)
	iv := make([]byte, aes.BlockSize)
	return decryptCBC(raw[16:], key, iv)
}

// evpBytesToKey derives keyLen bytes from passphrase and salt with the
// MD5-chained OpenSSL KDF.
func evpBytesToKey(passphrase, salt []byte, keyLen int) []byte {
	var derived, block []byte
	for len(derived) < keyLen {
		h := md5.New()
		h.Write(block)
		h.Write(passphrase)
		h.Write(salt)
		block = h.Sum(nil)
		derived = append(derived, block...)
	}
	return derived[:keyLen]
}

func decryptCBC(ciphertext, key, iv []byte) (string, bool) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", false
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", false
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, ok := pkcs7Unpad(plaintext)
	if !ok {
		return "", false
	}
	return string(unpadded), true
}

// pkcs7Unpad validates and strips PKCS#7 padding.
func pkcs7Unpad(data []byte) ([]byte, bool) {
	if len(data) == 0 {
		return nil, false
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > aes.BlockSize || padding > len(data) {
		return nil, false
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, false
		}
	}
	return data[:len(data)-padding], true
}
