package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/blake2b"
)

// Hash generates a BLAKE2b-256 hash
func Hash(data []byte) ([]byte, error) {
	hash, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}

	hash.Write(data)
	return hash.Sum(nil), nil
}

// SHA256 returns the SHA2-256 digest of data
func SHA256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}
