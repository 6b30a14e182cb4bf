package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// tokenLifetime determines how long issued tokens remain valid.
const tokenLifetime = 30 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the user's identity inside signed tokens, on top of the
// registered expiry and issuance timestamps.
type Claims struct {
	UserId   int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Notary issues and verifies signed tokens with a process-wide secret,
// threaded through dependencies rather than read from ambient state.
type Notary struct {
	secret []byte
}

func NewNotary(secret string) *Notary {
	return &Notary{[]byte(secret)}
}

// IssueToken signs an HS256 token binding the user's id and username for thirty days.
func (n *Notary) IssueToken(user User) (string, error) {
	var now = time.Now()
	var token = jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserId:   user.Id,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
	})

	signed, err := token.SignedString(n.secret)
	if err != nil {
		return "", fmt.Errorf("couldn't sign token for %q: %w", user.Username, err)
	}
	return signed, nil
}

// ParseToken verifies the token's signature and expiry, returning its claims.
func (n *Notary) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// ward off algorithm substitution attacks
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return n.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
