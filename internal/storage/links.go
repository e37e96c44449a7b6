package storage

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const linkAudience = "files"

// ErrLinkInvalid is returned for a missing, expired or tampered file link.
var ErrLinkInvalid = errors.New("file link is invalid or expired")

// LinkSigner issues short-lived tokens that grant read access to one stored key.
type LinkSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewLinkSigner builds a signer. A non-positive ttl defaults to 15 minutes.
func NewLinkSigner(secret string, ttl time.Duration) *LinkSigner {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &LinkSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token for key and when it stops working.
func (l *LinkSigner) Sign(key string) (string, time.Time, error) {
	issuedAt := l.now()
	expiresAt := issuedAt.Add(l.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   key,
		Audience:  jwt.ClaimStrings{linkAudience},
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify checks that token was issued for key and has not expired.
func (l *LinkSigner) Verify(token, key string) error {
	if token == "" {
		return ErrLinkInvalid
	}
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return l.secret, nil
	}, jwt.WithTimeFunc(l.now), jwt.WithAudience(linkAudience), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid || claims.Subject != cleanKey(key) {
		return ErrLinkInvalid
	}
	return nil
}
