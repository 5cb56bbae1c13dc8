package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for malformed, mis-signed, or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenPrincipal is the admin identity carried by a bearer token.
type TokenPrincipal struct {
	AdminID int64
	Email   string
	Role    string
}

// TokenService issues and validates the signed bearer tokens the HTTP
// surface uses in place of the browser-local session blob.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given HMAC secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

type tokenClaims struct {
	AdminID int64  `json:"admin_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// Issue creates a new signed token for the given admin.
func (s *TokenService) Issue(adminID int64, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		AdminID: adminID,
		Email:   email,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "sugbo",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate verifies a bearer token and returns the admin identity it names.
func (s *TokenService) Validate(tokenStr string) (*TokenPrincipal, error) {
	claims := &tokenClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &TokenPrincipal{
		AdminID: claims.AdminID,
		Email:   claims.Email,
		Role:    claims.Role,
	}, nil
}
