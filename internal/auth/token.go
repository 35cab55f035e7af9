package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/quillfeed/quillfeed/internal/model"
)

var (
	// ErrTokenExpired indicates the token's expiry has elapsed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid indicates a malformed, tampered or otherwise
	// unverifiable token.
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the signed payload embedded in a bearer token.
// Subject carries the user id; Role is an informational snapshot taken at
// issuance (authorization always re-reads the user row).
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// Codec issues and verifies signed, time-bound identity tokens.
// It holds no mutable state and is safe for concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec creates a Codec with the process-wide signing secret and token TTL.
func NewCodec(secret []byte, ttl time.Duration) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &Codec{secret: secret, ttl: ttl}, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for the given subject with expiry now + ttl.
// The caller supplies the clock so issuance is deterministic in tests.
func (c *Codec) Issue(subjectID uuid.UUID, role model.Role, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Role: string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the signature and expiry of a token against the supplied
// current time and returns its claims. Expiry is compared against the
// caller's clock, never the codec's own.
func (c *Codec) Verify(tokenString string, now time.Time) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !token.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// SubjectID parses the claims' subject as a user id.
func (cl *Claims) SubjectID() (uuid.UUID, error) {
	id, err := uuid.Parse(cl.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	return id, nil
}
