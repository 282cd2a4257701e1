package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// Claims defines the JWT claims carried by an ingest token.
type Claims struct {
	Source string `json:"source"` // Name of the device or process feeding samples
	jwt.RegisteredClaims
}

type contextKey string

// ClaimsKey is the context key for verified ingest claims.
const ClaimsKey = contextKey("ingestClaims")

// Issuer signs and verifies ingest tokens with a shared HMAC secret.
type Issuer struct {
	secret []byte
}

// NewIssuer creates an Issuer. An empty secret is rejected.
func NewIssuer(secret string) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}
	return &Issuer{secret: []byte(secret)}, nil
}

// Generate creates a token for source that expires after ttl.
func (i *Issuer) Generate(source string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Source: source,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   source,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Validate parses and validates a token string.
func (i *Issuer) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// Middleware rejects requests without a valid ingest token. The token is read
// from the Authorization header, falling back to the "token" query parameter
// since browsers cannot set headers on websocket upgrades.
func (i *Issuer) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := ""
			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				if rest, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
					tokenStr = rest
				}
			}
			if tokenStr == "" {
				tokenStr = r.URL.Query().Get("token")
			}
			if tokenStr == "" {
				http.Error(w, "Missing ingest token", http.StatusUnauthorized)
				return
			}

			claims, err := i.Validate(tokenStr)
			if err != nil {
				log.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Rejected ingest token")
				http.Error(w, "Invalid ingest token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the verified claims, if any.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}
