package messaging

import (
	"encoding/base64"

	"github.com/ZentaChain/zentalk-didcomm/pkg/crypto"
)

// JSONWebKey is a JWK (RFC 7517) carried verbatim in key-sharing messages.
// Field values are not validated.
type JSONWebKey struct {
	Kty string `json:"kty"` // Key type
	Crv string `json:"crv"` // Curve
	X   string `json:"x"`   // x-coordinate
	Y   string `json:"y"`   // y-coordinate
	D   string `json:"d"`   // Private key
	Use string `json:"use"` // Key usage
	Kid string `json:"kid"` // Key ID
}

// GenerateJSONWebKey creates a P-256 encryption key whose kid is its RFC 7638
// thumbprint.
func GenerateJSONWebKey() (JSONWebKey, error) {
	kp, err := crypto.GenerateP256KeyPair()
	if err != nil {
		return JSONWebKey{}, err
	}
	return p256JWK(kp)
}

// ImportJSONWebKey rebuilds the full key from a base64url private scalar
func ImportJSONWebKey(d string) (JSONWebKey, error) {
	raw, err := base64.RawURLEncoding.DecodeString(d)
	if err != nil {
		return JSONWebKey{}, crypto.ErrInvalidKey
	}

	kp, err := crypto.ImportP256PrivateKey(raw)
	if err != nil {
		return JSONWebKey{}, err
	}
	return p256JWK(kp)
}

func p256JWK(kp *crypto.P256KeyPair) (JSONWebKey, error) {
	key := JSONWebKey{
		Kty: "EC",
		Crv: "P-256",
		X:   crypto.B64(kp.X),
		Y:   crypto.B64(kp.Y),
		D:   crypto.B64(kp.D),
		Use: "enc",
	}

	var err error
	key.Kid, err = crypto.ECThumbprint(key.Crv, key.X, key.Y)
	if err != nil {
		return JSONWebKey{}, err
	}

	return key, nil
}
