package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/wsauth/internal/common"
)

// Claims of a user bearer token: sub is the account id, jti identifies the
// issued-token record.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs a token for subject valid from issuedAt for ttl.
func GenerateToken(subject, jti string, secretKey []byte, issuedAt time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates signature and expiry. Expired tokens yield
// common.ErrTokenExpired, anything else common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
