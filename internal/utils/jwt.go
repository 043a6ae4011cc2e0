package utils // package utils provides helper functions for token issuing and hashing

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
    "github.com/google/uuid"       // unique token ids (jti claim)
)

// ErrInvalidToken is returned by VerifyToken for any verification failure:
// bad signature, unexpected algorithm, malformed payload or an expired
// token.  Callers do not get to distinguish the cases.
var ErrInvalidToken = errors.New("invalid token")

// signingMethod maps a configured algorithm name onto the HMAC signing
// method used to create tokens.  Only the HS family is supported; the
// token secret is shared between issuing and verification.
func signingMethod(alg string) *jwt.SigningMethodHMAC {
    switch alg {
    case "HS384":
        return jwt.SigningMethodHS384
    case "HS512":
        return jwt.SigningMethodHS512
    default:
        return jwt.SigningMethodHS256
    }
}

// IssueToken builds and signs an identity token for a user.  The claim set
// carries the subject (user guid), issued-at, expiry and a unique token id.
// Expiry is controlled by ttl; the deployed configuration uses an
// effectively non-expiring value.
func IssueToken(secret, alg, userGUID string, ttl time.Duration) (string, error) {
    now := time.Now().UTC()
    claims := jwt.MapClaims{
        "sub": userGUID,
        "iat": now.Unix(),
        "exp": now.Add(ttl).Unix(),
        "jti": uuid.NewString(),
    }
    t := jwt.NewWithClaims(signingMethod(alg), claims)
    return t.SignedString([]byte(secret))
}

// VerifyToken checks the signature and claims of a token and returns the
// subject user guid.  Audience claims are not checked.  Any failure maps
// to ErrInvalidToken.
func VerifyToken(secret, token string) (string, error) {
    tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
        // Reject tokens signed with a different algorithm family.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return "", ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return "", ErrInvalidToken
    }
    sub, ok := claims["sub"].(string)
    if !ok || sub == "" {
        return "", ErrInvalidToken
    }
    return sub, nil
}
