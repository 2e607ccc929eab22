// Package token defines the claims carried by BIQ session tokens.
//
// Claims implements jwt.Claims from github.com/golang-jwt/jwt/v5, so callers
// sign and verify tokens with that library directly. Every claim is
// optional.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/qbiq/biq-go/pkg/ident"
)

// Claims is the payload of a session token.
type Claims struct {
	Issuer           *string          `json:"iss,omitempty"`
	Subject          *string          `json:"sub,omitempty"`
	Expiration       *int64           `json:"exp,omitempty"` // epoch seconds
	IssuedAt         *int64           `json:"iat,omitempty"` // epoch seconds
	AccountID        *ident.AccountID `json:"accountId,omitempty"`
	OAuthProvider    *string          `json:"oauthProvider,omitempty"`
	OAuthAccessToken *string          `json:"oauthAccessToken,omitempty"`
}

// WithIssuer returns a copy of c with the issuer set.
func (c Claims) WithIssuer(iss string) Claims {
	c.Issuer = &iss
	return c
}

// WithSubject returns a copy of c with the subject set.
func (c Claims) WithSubject(sub string) Claims {
	c.Subject = &sub
	return c
}

// WithExpiration returns a copy of c expiring at t.
func (c Claims) WithExpiration(t time.Time) Claims {
	sec := t.Unix()
	c.Expiration = &sec
	return c
}

// WithIssuedAt returns a copy of c issued at t.
func (c Claims) WithIssuedAt(t time.Time) Claims {
	sec := t.Unix()
	c.IssuedAt = &sec
	return c
}

// WithAccount returns a copy of c for account.
func (c Claims) WithAccount(account ident.AccountID) Claims {
	c.AccountID = &account
	return c
}

// WithOAuth returns a copy of c carrying a third-party access token.
func (c Claims) WithOAuth(provider, accessToken string) Claims {
	c.OAuthProvider = &provider
	c.OAuthAccessToken = &accessToken
	return c
}

// Account returns the account claim and whether it is present.
func (c Claims) Account() (ident.AccountID, bool) {
	if c.AccountID == nil {
		return ident.Nil, false
	}
	return *c.AccountID, true
}

// Expired reports whether the token has expired at now. Tokens without an
// expiration never expire.
func (c Claims) Expired(now time.Time) bool {
	return c.Expiration != nil && now.Unix() >= *c.Expiration
}

// GetExpirationTime implements jwt.Claims.
func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	return numericDate(c.Expiration), nil
}

// GetIssuedAt implements jwt.Claims.
func (c Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	return numericDate(c.IssuedAt), nil
}

// GetNotBefore implements jwt.Claims. BIQ tokens have no nbf claim.
func (c Claims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

// GetIssuer implements jwt.Claims.
func (c Claims) GetIssuer() (string, error) {
	return deref(c.Issuer), nil
}

// GetSubject implements jwt.Claims.
func (c Claims) GetSubject() (string, error) {
	return deref(c.Subject), nil
}

// GetAudience implements jwt.Claims. BIQ tokens have no aud claim.
func (c Claims) GetAudience() (jwt.ClaimStrings, error) {
	return nil, nil
}

func numericDate(sec *int64) *jwt.NumericDate {
	if sec == nil {
		return nil
	}
	return jwt.NewNumericDate(time.Unix(*sec, 0))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ jwt.Claims = Claims{}
