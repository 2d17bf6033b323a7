package crypto

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

// HashAlgorithm names a digest used for attachment integrity hashes
type HashAlgorithm string

const (
	HashBlake2b256 HashAlgorithm = "blake2b-256"
	HashSHA256     HashAlgorithm = "sha2-256"
)

// multihash code for blake2b with a 32 byte digest
const blake2b256Code = multihash.BLAKE2B_MIN + 31

var (
	ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")
	ErrMalformedHash        = errors.New("malformed integrity hash")
)

// ParseHashAlgorithm accepts the algorithm names used on the command line and
// in API requests. An empty name selects BLAKE2b-256.
func ParseHashAlgorithm(name string) (HashAlgorithm, error) {
	switch HashAlgorithm(strings.ToLower(name)) {
	case "", HashBlake2b256:
		return HashBlake2b256, nil
	case HashSHA256, "sha256":
		return HashSHA256, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, name)
	}
}

func digest(algo HashAlgorithm, data []byte) ([]byte, uint64, error) {
	switch algo {
	case HashBlake2b256:
		sum, err := Hash(data)
		return sum, blake2b256Code, err
	case HashSHA256:
		return SHA256(data), multihash.SHA2_256, nil
	default:
		return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algo)
	}
}

// ContentHash returns the integrity hash of data as a base58btc multibase
// encoded multihash, the format expected in links attachment data.
func ContentHash(algo HashAlgorithm, data []byte) (string, error) {
	sum, code, err := digest(algo, data)
	if err != nil {
		return "", err
	}

	mh, err := multihash.Encode(sum, code)
	if err != nil {
		return "", fmt.Errorf("failed to encode multihash: %w", err)
	}

	return multibase.Encode(multibase.Base58BTC, mh)
}

// PrefixedDigest returns "<algorithm>:<hex digest>"
func PrefixedDigest(algo HashAlgorithm, data []byte) (string, error) {
	sum, _, err := digest(algo, data)
	if err != nil {
		return "", err
	}
	return string(algo) + ":" + hex.EncodeToString(sum), nil
}

// VerifyContentHash checks data against either a multibase multihash or a
// prefixed hex digest.
func VerifyContentHash(hash string, data []byte) (bool, error) {
	if algo, hexDigest, ok := strings.Cut(hash, ":"); ok {
		expected, err := hex.DecodeString(hexDigest)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
		}
		sum, _, err := digest(HashAlgorithm(algo), data)
		if err != nil {
			return false, err
		}
		return subtle.ConstantTimeCompare(sum, expected) == 1, nil
	}

	_, raw, err := multibase.Decode(hash)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}

	decoded, err := multihash.Decode(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}

	var algo HashAlgorithm
	switch decoded.Code {
	case blake2b256Code:
		algo = HashBlake2b256
	case multihash.SHA2_256:
		algo = HashSHA256
	default:
		return false, fmt.Errorf("%w: multihash code 0x%x", ErrUnsupportedAlgorithm, decoded.Code)
	}

	sum, _, err := digest(algo, data)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(sum, decoded.Digest) == 1, nil
}
