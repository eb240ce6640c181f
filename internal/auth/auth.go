package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey int

// ClaimsKey is used to read validated claims back from the request context.
const ClaimsKey ctxKey = 1

// Claims are the token claims issued by the backend auth endpoint.
// Subject carries the user id.
type Claims struct {
	jwt.RegisteredClaims
	Roles    []string `json:"roles"`
	Username string   `json:"username,omitempty"`
}

// Keys holds the key material needed to validate tokens issued by the backend.
type Keys struct {
	pubKey *rsa.PublicKey
}

func NewKeys(pubKeyPEM []byte) (*Keys, error) {
	if len(pubKeyPEM) == 0 {
		return nil, errors.New("public key pem is empty")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing auth public key: %w", err)
	}
	return &Keys{pubKey: pubKey}, nil
}

// ValidateToken checks the signature and registered claims (incl. expiry) of
// a bearer token and returns the embedded claims.
func (k *Keys) ValidateToken(token string) (Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return k.pubKey, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("parsing token: %w", err)
	}
	if !tkn.Valid {
		return Claims{}, errors.New("invalid token")
	}
	return claims, nil
}
