// Package tokens implements the access-token claims encoder and the opaque
// refresh-token generator. Both the API server (signing, verification) and
// the web front end (expiry/role inspection) depend on it.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/recipecorner/recipecorner/internal/common"
)

// minSecretLen is 256 bits, the minimum HMAC key size accepted at startup.
const minSecretLen = 32

// ErrSigningConfiguration is returned by NewEncoder for an unusable signing
// setup. It is a startup-time error; Encode never fails on key problems.
var ErrSigningConfiguration = errors.New("signing configuration error")

// Claims is the signed content of an access token: subject id, email,
// display name, and one entry per role.
type Claims struct {
	jwt.RegisteredClaims
	Email    string   `json:"email"`
	FullName string   `json:"name"`
	Roles    []string `json:"roles"`
}

// Encoder mints HS256-signed access tokens. Construct it once at startup
// via NewEncoder; it is immutable and safe for concurrent use.
type Encoder struct {
	secret    []byte
	issuer    string
	audience  string
	accessTTL time.Duration
}

// NewEncoder validates the signing configuration and returns an Encoder.
// A missing or short key and a non-positive TTL are configuration errors
// that should abort startup.
func NewEncoder(secret []byte, issuer, audience string, accessTTL time.Duration) (*Encoder, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("%w: secret key must be at least %d bytes", ErrSigningConfiguration, minSecretLen)
	}
	if accessTTL <= 0 {
		return nil, fmt.Errorf("%w: non-positive access token TTL", ErrSigningConfiguration)
	}
	return &Encoder{secret: secret, issuer: issuer, audience: audience, accessTTL: accessTTL}, nil
}

// Encode signs an access token for the given identity and role set.
// The token expires at now+TTL; the same now always yields the same expiry.
// Subject id and email must be non-empty; roles may be empty.
func (e *Encoder) Encode(subject, email, fullName string, roles []string, now time.Time) (string, time.Time, error) {
	if subject == "" || email == "" {
		return "", time.Time{}, fmt.Errorf("encode claims: subject and email are required")
	}

	expiresAt := now.Add(e.accessTTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    e.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:    email,
		FullName: fullName,
		Roles:    roles,
	}
	if e.audience != "" {
		claims.Audience = jwt.ClaimStrings{e.audience}
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(e.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return token, expiresAt, nil
}

// Verify parses tokenString, checks the HS256 signature, expiry, issuer and
// audience, and returns the claims. Used at the API's trust boundary.
func (e *Encoder) Verify(tokenString string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if e.issuer != "" {
		options = append(options, jwt.WithIssuer(e.issuer))
	}
	if e.audience != "" {
		options = append(options, jwt.WithAudience(e.audience))
	}

	claims := &Claims{}
	token, err := jwt.NewParser(options...).ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return e.secret, nil
	})
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// Decode extracts claims without verifying the signature. The front end uses
// it to read expiry and roles from a token it already received over the
// authenticated register/login/refresh calls; it is never an authorization
// decision.
func Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
