package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Sentinel errors returned by VerifyAccessToken. Callers translate
// these into distinct 401 responses so an expired session reads
// differently from a forged or garbled token.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// AccessToken represents a signed JWT session token along with its expiry.
// The Token field contains the JWT string. Exp stores the expiration
// timestamp as a time.Time. Tokens are short-lived and carried in the
// Authorization header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Identity is the payload recovered from a verified token. Verification is
// stateless: everything a handler needs to authorize a request is embedded
// in the token itself, so no database read happens after login.
type Identity struct {
	UserID   uint64 // subject claim
	UserName string // name claim
	IsAdmin  bool   // admin claim
}

// NewAccessToken builds and signs an HS256 JWT for a user. It takes the
// signing secret, the user's id, name and admin flag, and a TTL in
// minutes. The claims are: subject (sub), name, admin, expiration (exp)
// and issued at (iat).
func NewAccessToken(secret string, userID uint64, userName string, isAdmin bool, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":   userID,
		"name":  userName,
		"admin": isAdmin,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// VerifyAccessToken parses and validates a signed token and returns the
// embedded identity. It distinguishes an expired token (ErrTokenExpired)
// from every other failure mode (ErrInvalidToken): bad signature,
// unexpected signing method, malformed claims.
func VerifyAccessToken(secret, raw string) (Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrInvalidToken
	}
	if !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	id := Identity{}
	sub, ok := claims["sub"].(float64) // numeric claims decode as float64
	if !ok || sub <= 0 {
		return Identity{}, ErrInvalidToken
	}
	id.UserID = uint64(sub)
	if name, ok := claims["name"].(string); ok {
		id.UserName = name
	}
	if admin, ok := claims["admin"].(bool); ok {
		id.IsAdmin = admin
	}
	return id, nil
}
