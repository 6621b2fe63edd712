package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/wodhub/internal/apperr"
	"github.com/2beens/wodhub/internal/auth"
	"github.com/2beens/wodhub/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=middleware_test

var errMissingToken = errors.New("missing bearer token")

type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (int, error)
}

// RoutePolicy tells the auth middleware which named routes skip the token check.
// Public routes never resolve a token; optional routes resolve it when present.
type RoutePolicy struct {
	Public   map[string]bool
	Optional map[string]bool
}

type AuthMiddlewareHandler struct {
	resolver IdentityResolver
	policy   RoutePolicy
}

func NewAuthMiddlewareHandler(resolver IdentityResolver, policy RoutePolicy) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		resolver: resolver,
		policy:   policy,
	}
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		return route.GetName()
	}
	return ""
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			name := routeName(r)
			if h.policy.Public[name] {
				span.SetStatus(codes.Ok, "public")
				next.ServeHTTP(w, r)
				return
			}

			token := auth.BearerToken(r)
			if token == "" {
				if h.policy.Optional[name] {
					span.SetStatus(codes.Ok, "anonymous")
					next.ServeHTTP(w, r)
					return
				}
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				apperr.WriteError(w, apperr.New(apperr.KindUnauthorized, errMissingToken))
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			userID, err := h.resolver.Resolve(ctx, token)
			if err != nil {
				log.Tracef("[invalid token] [auth middleware] unauthorized => %s: %s", r.URL.Path, err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "resolve-token")
				if auth.IsAuthFailure(err) {
					apperr.WriteError(w, apperr.New(apperr.KindUnauthorized, err))
				} else {
					apperr.WriteError(w, err)
				}
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}
