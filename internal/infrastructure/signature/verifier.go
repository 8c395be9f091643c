// Package signature verifies HMAC signatures on incoming webhook payloads.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"hash"
)

// Algorithm selects the HMAC hash function.
type Algorithm string

const (
	AlgorithmSHA256 Algorithm = "sha256"
	AlgorithmSHA512 Algorithm = "sha512"
)

// Encoding selects how the digest is rendered on the wire.
type Encoding string

const (
	EncodingHex    Encoding = "hex"
	EncodingBase64 Encoding = "base64"
)

var (
	ErrUnknownAlgorithm = errors.New("signature: unknown algorithm")
	ErrUnknownEncoding  = errors.New("signature: unknown encoding")
)

// Scheme couples an algorithm with its wire encoding. Marketplace webhooks
// are signed sha512/hex per source, storefront webhooks sha256/base64 with a
// process-wide secret.
type Scheme struct {
	Algorithm Algorithm
	Encoding  Encoding
}

// MarketplaceScheme is the signing scheme of marketplace order webhooks.
var MarketplaceScheme = Scheme{Algorithm: AlgorithmSHA512, Encoding: EncodingHex}

// StorefrontScheme is the signing scheme of storefront lifecycle webhooks.
var StorefrontScheme = Scheme{Algorithm: AlgorithmSHA256, Encoding: EncodingBase64}

// Sign computes the signature of body under the scheme
func Sign(scheme Scheme, secret, body []byte) (string, error) {
	var newHash func() hash.Hash
	switch scheme.Algorithm {
	case AlgorithmSHA256:
		newHash = sha256.New
	case AlgorithmSHA512:
		newHash = sha512.New
	default:
		return "", ErrUnknownAlgorithm
	}

	mac := hmac.New(newHash, secret)
	mac.Write(body)
	digest := mac.Sum(nil)

	switch scheme.Encoding {
	case EncodingHex:
		return hex.EncodeToString(digest), nil
	case EncodingBase64:
		return base64.StdEncoding.EncodeToString(digest), nil
	default:
		return "", ErrUnknownEncoding
	}
}

// Verify checks a presented signature against the body. Comparison is
// constant time over the decoded digests.
func Verify(scheme Scheme, secret, body []byte, presented string) bool {
	var decoded []byte
	var err error
	switch scheme.Encoding {
	case EncodingHex:
		decoded, err = hex.DecodeString(presented)
	case EncodingBase64:
		decoded, err = base64.StdEncoding.DecodeString(presented)
	default:
		return false
	}
	if err != nil {
		return false
	}

	expected, err := Sign(Scheme{Algorithm: scheme.Algorithm, Encoding: EncodingHex}, secret, body)
	if err != nil {
		return false
	}
	expectedRaw, err := hex.DecodeString(expected)
	if err != nil {
		return false
	}
	return hmac.Equal(decoded, expectedRaw)
}
