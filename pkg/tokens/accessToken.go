package tokens

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the identity an upstream auth service vouches for.
type AccessClaims struct {
	Role     string `json:"role"`
	VendorID string `json:"vendor_id"`
	Approved bool   `json:"approved"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid access token")

func AccessClaimsFromToken(TokenStr string, AccessSecret []byte) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(TokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return AccessSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// SignAccessToken issues an HS256 token. Production tokens come from the auth
// service; this is used by tests and local tooling that share the secret.
func SignAccessToken(claims AccessClaims, AccessSecret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(AccessSecret)
}
