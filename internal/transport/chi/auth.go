package chi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"

	"github.com/kailas-cloud/collabsearch/internal/domain/actor"
	"github.com/kailas-cloud/collabsearch/internal/domain/authorization"
	"github.com/kailas-cloud/collabsearch/internal/logger"
	"github.com/kailas-cloud/collabsearch/internal/transport/api"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// Claims is the bearer token payload.
type Claims struct {
	Email       string                     `json:"email"`
	Credentials []authorization.Credential `json:"credentials,omitempty"`
	jwt.StandardClaims
}

// CredentialLoader looks up the credentials an actor holds.
type CredentialLoader interface {
	Credentials(ctx context.Context, actorID string) ([]authorization.Credential, error)
}

// AuthConfig configures ActorMiddleware.
type AuthConfig struct {
	Secret string
	Issuer string
	// Loader, when set, adds stored credentials to those carried by the token.
	Loader CredentialLoader
}

// ActorMiddleware resolves the caller identity from an HS256 bearer token and
// stores it in the request context. Requests without a token run as the
// anonymous actor; a present but invalid token is rejected with 401.
// If Secret is empty every request runs anonymously.
func ActorMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok || cfg.Secret == "" {
				next.ServeHTTP(w, r.WithContext(actor.ContextWithActor(r.Context(), actor.Anonymous())))
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				next.ServeHTTP(w, r.WithContext(actor.ContextWithActor(r.Context(), actor.Anonymous())))
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					api.ErrorResponseCodeUnauthenticated, "authorization header must use Bearer scheme")
				return
			}

			claims, err := parseToken(auth[len(bearerPrefix):], cfg.Secret, cfg.Issuer)
			if err != nil {
				logger.FromContext(r.Context()).Info("bearer token rejected", zap.Error(err))
				writeError(w, http.StatusUnauthorized, api.ErrorResponseCodeUnauthenticated, "invalid token")
				return
			}

			creds := claims.Credentials
			if cfg.Loader != nil && claims.Subject != "" {
				stored, err := cfg.Loader.Credentials(r.Context(), claims.Subject)
				if err != nil {
					logger.FromContext(r.Context()).Error("load credentials", zap.Error(err))
					writeError(w, http.StatusInternalServerError, api.ErrorResponseCodeInternalError, "internal error")
					return
				}
				creds = append(creds, stored...)
			}

			who := actor.New(claims.Subject, claims.Email, creds)
			next.ServeHTTP(w, r.WithContext(actor.ContextWithActor(r.Context(), who)))
		})
	}
}

func parseToken(raw, secret, issuer string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	if issuer != "" && !claims.VerifyIssuer(issuer, true) {
		return nil, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	return claims, nil
}
