// Package auth resolves the calling employee from upstream access tokens.
// Tokens are minted by the identity service; this package only verifies them.
package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tfshrms/worktracker/pkg/config"
	"github.com/tfshrms/worktracker/pkg/errors"
	"github.com/tfshrms/worktracker/pkg/httputil"
	"github.com/tfshrms/worktracker/pkg/logger"
)

// Claims are the access token claims the tracker reads.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"user_id"`
	Role   string `json:"role,omitempty"`
}

// Verifier checks HS256 access tokens.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a verifier from the JWT config.
func NewVerifier(cfg *config.JWTConfig) *Verifier {
	return &Verifier{secret: []byte(cfg.Secret), issuer: cfg.Issuer}
}

// Verify parses and validates a signed token.
func (v *Verifier) Verify(token string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, errors.TokenInvalid()
	}
	if claims.UserID == 0 {
		// Fall back to the subject for tokens that only carry sub.
		id, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			return nil, errors.TokenInvalid()
		}
		claims.UserID = id
	}
	return claims, nil
}

// Sign issues a token for claims. The service never hands tokens out; this
// exists for tests and local tooling.
func (v *Verifier) Sign(claims Claims) (string, error) {
	if claims.Issuer == "" {
		claims.Issuer = v.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Middleware stores the caller's employee id in the request context.
//
// With required set, a valid bearer token is mandatory. Otherwise a bearer
// token is still honored when present, and callers without one may identify
// themselves through the X-User-ID header or the logged_in_user_id query
// parameter. Handlers that need a viewer reject requests without one.
func Middleware(v *Verifier, required bool, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token, ok := bearer(r); ok {
				claims, err := v.Verify(token)
				if err != nil {
					log.Debug().Str("request_id", httputil.GetRequestID(ctx)).Msg("rejected access token")
					httputil.Error(w, err)
					return
				}
				next.ServeHTTP(w, r.WithContext(httputil.WithUserID(ctx, strconv.FormatInt(claims.UserID, 10))))
				return
			}

			if required {
				httputil.Error(w, errors.Unauthorized("missing bearer token"))
				return
			}

			if id := fallbackUserID(r); id != "" {
				ctx = httputil.WithUserID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearer(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

func fallbackUserID(r *http.Request) string {
	for _, raw := range []string{r.Header.Get("X-User-ID"), r.URL.Query().Get("logged_in_user_id")} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return raw
		}
	}
	return ""
}

// ViewerID parses the employee id stored by Middleware.
func ViewerID(r *http.Request) (int64, bool) {
	raw := httputil.GetUserID(r.Context())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
