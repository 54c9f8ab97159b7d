package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eventplanner/internal/domain"
	"eventplanner/internal/domain/entities"
)

// Authenticator verifies HS256 bearer tokens issued by the identity provider.
type Authenticator struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// tokenClaims carries the user key in "sub" and the granted roles.
type tokenClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

func NewAuthenticator(secret, issuer string, now func() time.Time) *Authenticator {
	if now == nil {
		now = time.Now
	}
	return &Authenticator{secret: []byte(secret), issuer: issuer, now: now}
}

// Verify resolves a bearer token into the caller it identifies.
func (a *Authenticator) Verify(token string) (entities.SignedInUser, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return entities.SignedInUser{}, domain.ErrUnauthorized
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return entities.SignedInUser{}, mapTokenError(err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return entities.SignedInUser{}, domain.New(domain.CodeUnauthorized, "token has no subject")
	}

	roles := make([]domain.Role, 0, len(claims.Roles))
	for _, r := range claims.Roles {
		roles = append(roles, domain.Role(strings.ToUpper(strings.TrimSpace(r))))
	}
	return entities.NewSignedInUser(entities.UserKey(claims.Subject), roles...), nil
}

// Issue signs a token for user. The identity provider normally does this;
// it is used by tooling and tests.
func (a *Authenticator) Issue(user entities.UserKey, roles []domain.Role, ttl time.Duration) (string, error) {
	now := a.now()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   string(user),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles: names,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.Wrap(domain.CodeUnauthorized, "token expired", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.Wrap(domain.CodeUnauthorized, "token signature invalid", err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return domain.Wrap(domain.CodeUnauthorized, "token issuer mismatch", err)
	default:
		return domain.Wrap(domain.CodeUnauthorized, "token invalid", err)
	}
}

type callerKey struct{}

// Caller returns the caller resolved by the authentication middleware. It
// is anonymous when the request carried no token.
func Caller(ctx context.Context) entities.SignedInUser {
	caller, _ := ctx.Value(callerKey{}).(entities.SignedInUser)
	return caller
}

// authenticate resolves the Authorization header. Requests without one run
// as anonymous callers; an invalid token is rejected outright.
func (a *api) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			a.fail(w, r, domain.New(domain.CodeUnauthorized, "authorization scheme must be Bearer"))
			return
		}
		caller, err := a.auth.Verify(token)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, caller)))
	})
}
