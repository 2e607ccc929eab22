package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/qbiq/biq-go/pkg/ident"
	"github.com/qbiq/biq-go/pkg/token"
)

// Issuers of the tokens this package signs.
const (
	SessionIssuer = "biq"
	ShareIssuer   = "biq-share"
)

// Token lifetimes.
const (
	ShareTokenTTL     = 24 * time.Hour
	DefaultSessionTTL = 30 * 24 * time.Hour
)

type claimsKeyType struct{}

var claimsKey claimsKeyType

// ClaimsFrom returns the claims of an authenticated request.
func ClaimsFrom(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*token.Claims)
	return c, ok
}

func extractToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return auth[7:]
	}
	return ""
}

// parseToken verifies an HS256 token from issuer.
func (s *Server) parseToken(raw, issuer string) (*token.Claims, error) {
	claims := &token.Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// signToken signs claims with the server secret.
func (s *Server) signToken(c token.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// SessionToken issues a session token for account, valid for ttl.
func (s *Server) SessionToken(account ident.AccountID, ttl time.Duration) (string, error) {
	now := s.now()
	return s.signToken(token.Claims{}.
		WithIssuer(SessionIssuer).
		WithAccount(account).
		WithIssuedAt(now).
		WithExpiration(now.Add(ttl)))
}

// authenticate rejects requests without a valid session token.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractToken(r)
		if raw == "" {
			s.writeError(w, r, http.StatusUnauthorized, "missing token", "unauthorized")
			return
		}
		claims, err := s.parseToken(raw, SessionIssuer)
		if err != nil {
			s.writeError(w, r, http.StatusUnauthorized, "invalid token", "unauthorized")
			return
		}
		if _, ok := claims.Account(); !ok {
			s.writeError(w, r, http.StatusUnauthorized, "token has no account", "unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// account returns the authenticated account. authenticate guarantees it.
func account(r *http.Request) ident.AccountID {
	c, _ := ClaimsFrom(r.Context())
	id, _ := c.Account()
	return id
}
