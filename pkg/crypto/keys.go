package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
)

var (
	ErrInvalidKey = errors.New("invalid key")
)

// P256KeyPair holds the raw coordinates and scalar of a P-256 key
type P256KeyPair struct {
	X []byte
	Y []byte
	D []byte
}

// GenerateP256KeyPair generates a new P-256 key pair for ECDH key agreement
func GenerateP256KeyPair() (*P256KeyPair, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return p256KeyPair(priv)
}

func p256KeyPair(priv *ecdh.PrivateKey) (*P256KeyPair, error) {
	// Uncompressed point: 0x04 || X || Y
	pub := priv.PublicKey().Bytes()
	if len(pub) != 65 || pub[0] != 0x04 {
		return nil, ErrInvalidKey
	}

	return &P256KeyPair{
		X: pub[1:33],
		Y: pub[33:65],
		D: priv.Bytes(),
	}, nil
}

// ImportP256PrivateKey rebuilds a key pair from its 32-byte scalar
func ImportP256PrivateKey(d []byte) (*P256KeyPair, error) {
	priv, err := ecdh.P256().NewPrivateKey(d)
	if err != nil {
		return nil, ErrInvalidKey
	}
	return p256KeyPair(priv)
}

// B64 encodes bytes as unpadded base64url, the JWK member encoding
func B64(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// ECThumbprint computes the RFC 7638 thumbprint of an EC public JWK
func ECThumbprint(crv, x, y string) (string, error) {
	// RFC 7638 requires lexicographic member order, which json.Marshal
	// gives for map keys.
	canonical, err := json.Marshal(map[string]string{
		"crv": crv,
		"kty": "EC",
		"x":   x,
		"y":   y,
	})
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(canonical)
	return B64(sum[:]), nil
}
