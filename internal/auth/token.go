package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// DefaultTokenTTL applies when Issue is called without a positive ttl.
const DefaultTokenTTL = 15 * time.Minute

// ErrInvalidToken covers every decode, signature, algorithm and expiry failure.
var ErrInvalidToken = errors.New("could not validate credentials")

// Claims is the payload of an access token.
type Claims struct {
	Role string `json:"role"`
	jwt.StandardClaims
}

// TokenService signs and verifies HMAC access tokens.
type TokenService struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	now    func() time.Time
}

// NewTokenService builds a TokenService for one of HS256, HS384 or HS512.
func NewTokenService(secret, algorithm string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return &TokenService{secret: []byte(secret), method: method, now: time.Now}, nil
}

// Issue signs a token for subject/role that expires after ttl.
func (s *TokenService) Issue(subject, role string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	claims := Claims{
		Role: role,
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			ExpiresAt: s.now().Add(ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
}

// Verify parses the token and returns its claims. The subject is not checked
// against any user store.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != s.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
