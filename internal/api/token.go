package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo summarizes claims read from an admin token without verifying
// its signature. The /auth/me check remains the authoritative validation;
// this exists only to warn about obviously stale tokens before a run.
type TokenInfo struct {
	Subject string
	Expiry  time.Time
}

// InspectToken decodes the token's claims without signature verification.
// Opaque (non-JWT) tokens return an error, which callers treat as
// non-fatal.
func InspectToken(raw string) (TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return TokenInfo{}, fmt.Errorf("parse token: %w", err)
	}

	var info TokenInfo
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.Expiry = exp.Time
	}
	return info, nil
}

// Expired reports whether the token's expiry claim lies in the past. Tokens
// without an expiry claim never report expired.
func (t TokenInfo) Expired(now time.Time) bool {
	return !t.Expiry.IsZero() && t.Expiry.Before(now)
}
