package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// ===== Session token primitives =====
//
// The token identifies conversation continuity only; it is not a security
// boundary. Signing just keeps clients from forging each other's ids by
// accident.

type TokenConfig struct {
	HMACSecret   []byte
	CookieName   string
	SecureCookie bool
	TTL          time.Duration
}

type TokenManager struct{ cfg TokenConfig }

func NewTokenManager(secret, cookieName string, secure bool, ttl time.Duration) *TokenManager {
	if cookieName == "" {
		cookieName = "map_session"
	}
	return &TokenManager{cfg: TokenConfig{
		HMACSecret:   []byte(secret),
		CookieName:   cookieName,
		SecureCookie: secure,
		TTL:          ttl,
	}}
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// EnsureSession returns the request's session id, minting a fresh one (and
// setting the cookie) on first contact or when the token does not parse.
func (t *TokenManager) EnsureSession(w http.ResponseWriter, r *http.Request) string {
	if id, err := t.parseFromRequest(r); err == nil {
		return id
	}
	return t.mint(w)
}

func (t *TokenManager) mint(w http.ResponseWriter) string {
	id := ulid.Make().String()
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.TTL)),
			Subject:   id,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.cfg.HMACSecret)
	if err != nil {
		// HMAC signing of a static payload cannot realistically fail; fall
		// back to an unsigned throwaway id rather than failing the request.
		return id
	}

	http.SetCookie(w, &http.Cookie{
		Name:     t.cfg.CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(t.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   t.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (t *TokenManager) parseFromRequest(r *http.Request) (string, error) {
	c, err := r.Cookie(t.cfg.CookieName)
	if err != nil {
		return "", errors.New("missing token")
	}

	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(c.Value, claims, func(_ *jwt.Token) (any, error) {
		return t.cfg.HMACSecret, nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}
