package jwtauth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/riskibarqy/tournament-api/internal/domain/user"
	"github.com/riskibarqy/tournament-api/internal/platform/logging"
	"github.com/riskibarqy/tournament-api/internal/usecase"
)

const (
	defaultCacheTTL        = time.Minute
	defaultCacheMaxEntries = 10000
)

// Claims is the token body issued by the account service.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

type Config struct {
	Secret          string
	Issuer          string
	Leeway          time.Duration
	CacheTTL        time.Duration
	CacheMaxEntries int
	Logger          *logging.Logger
}

// Verifier validates HS256 bearer tokens. Verified principals are cached by
// token hash, never past the token's own expiry.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
	cache  *principalCache
	logger *logging.Logger
	now    func() time.Time
}

func NewVerifier(cfg Config) (*Verifier, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, crerr.New("jwt secret is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	maxEntries := cfg.CacheMaxEntries
	if maxEntries <= 0 {
		maxEntries = defaultCacheMaxEntries
	}

	v := &Verifier{
		secret: []byte(secret),
		cache:  newPrincipalCache(ttl, maxEntries),
		logger: logger,
		now:    time.Now,
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithTimeFunc(func() time.Time { return v.now() }),
	}
	if issuer := strings.TrimSpace(cfg.Issuer); issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	v.parser = jwt.NewParser(opts...)
	return v, nil
}

func (v *Verifier) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	key := hashToken(token)
	now := v.now()
	if principal, ok := v.cache.Get(key, now); ok {
		return principal, nil
	}

	claims := &Claims{}
	if _, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}); err != nil {
		v.logger.WarnContext(ctx, "access token rejected", "reason", rejectReason(err))
		return user.Principal{}, fmt.Errorf("%w: %s", usecase.ErrUnauthorized, rejectReason(err))
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return user.Principal{}, fmt.Errorf("%w: token subject is empty", usecase.ErrUnauthorized)
	}

	principal := user.Principal{
		UserID: subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}
	v.cache.Set(key, principal, now, claims.ExpiresAt.Time)
	return principal, nil
}

// Sign issues a token for subject; used by tests and local tooling.
func (v *Verifier) Sign(claims Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", crerr.Wrap(err, "sign token")
	}
	return signed, nil
}

func rejectReason(err error) string {
	switch {
	case crerr.Is(err, jwt.ErrTokenExpired):
		return "token expired"
	case crerr.Is(err, jwt.ErrTokenSignatureInvalid):
		return "invalid signature"
	case crerr.Is(err, jwt.ErrTokenInvalidIssuer):
		return "invalid issuer"
	case crerr.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return "missing required claim"
	case crerr.Is(err, jwt.ErrTokenNotValidYet):
		return "token not valid yet"
	case crerr.Is(err, jwt.ErrTokenMalformed):
		return "malformed token"
	default:
		return "invalid token"
	}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
