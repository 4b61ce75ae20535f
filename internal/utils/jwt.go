package utils // package utils provides helper functions for token creation and hashing

import (
    "errors" // sentinel error for failed verification
    "time"   // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are presented in the
// Authorization header when calling protected endpoints; there is no
// refresh or revocation mechanism, an expired token simply forces a new
// login.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// ErrInvalidToken is returned by VerifyAccessToken for every failure mode:
// malformed input, wrong signature, wrong algorithm, missing subject or an
// expired token.  Collapsing them is deliberate so callers cannot be used
// as an oracle for token structure.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the user ID, the user's email and a TTL in minutes (the
// default configuration is 60, giving the fixed one-hour lifetime).  The
// JWT includes standard claims: subject (sub), email, expiration (exp)
// and issued at (iat).
func NewAccessToken(secret string, userID uint64, email string, ttlMin int) (AccessToken, error) {
    // Calculate the expiration time by adding the TTL to the current UTC time.
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":   userID,
        "email": email,
        "exp":   exp.Unix(),
        "iat":   time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    // Sign the token with the provided secret and obtain the string form.
    // Signing only fails on key misconfiguration, which main treats as
    // fatal at startup, not as a per-request condition.
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// VerifyAccessToken validates the signature and expiry of a token and
// returns the user ID it asserts.  Any failure yields ErrInvalidToken.
func VerifyAccessToken(secret, raw string) (uint64, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject any signing method other than HMAC so a token signed with
        // "none" or an asymmetric key never passes.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return 0, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return 0, ErrInvalidToken
    }
    // Numeric claims round-trip through JSON as float64.
    switch sub := claims["sub"].(type) {
    case float64:
        if sub < 1 {
            return 0, ErrInvalidToken
        }
        return uint64(sub), nil
    default:
        return 0, ErrInvalidToken
    }
}
