package realtime

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/wodhub/internal/apperr"
	"github.com/2beens/wodhub/internal/auth"
	"github.com/2beens/wodhub/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=realtime_mocks_test.go -package=realtime_test

type identityResolver interface {
	Resolve(ctx context.Context, token string) (int, error)
}

// Handler upgrades authenticated requests to websocket connections.
type Handler struct {
	hub      *Hub
	resolver identityResolver
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, resolver identityResolver, allowedOrigins []string) *Handler {
	return &Handler{
		hub:      hub,
		resolver: resolver,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := map[string]bool{}
	for _, o := range allowedOrigins {
		allowed[strings.TrimSuffix(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowed["*"] {
			return true
		}
		if allowed[origin] {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.realtime.connect")
	defer span.End()

	// browsers cannot set headers on websocket requests, so the token travels in the query
	token := r.URL.Query().Get("token")
	if token == "" {
		token = auth.BearerToken(r)
	}
	if token == "" {
		apperr.WriteError(w, apperr.New(apperr.KindUnauthorized, nil))
		return
	}

	userID, err := h.resolver.Resolve(ctx, token)
	if err != nil {
		span.RecordError(err)
		if auth.IsAuthFailure(err) {
			apperr.WriteError(w, apperr.New(apperr.KindUnauthorized, err))
		} else {
			apperr.WriteError(w, err)
		}
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already replied
		log.Debugf("realtime upgrade for user %d: %s", userID, err)
		return
	}

	newClient(h.hub, conn, userID).run()
}
