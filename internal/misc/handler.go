package misc

import (
	"context"
	"net/http"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/wodhub/internal/telemetry/tracing"
	"github.com/2beens/wodhub/pkg"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether one dependency of the service is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	versionInfo string
	checks      map[string]HealthCheck
}

func NewHandler(versionInfo string, checks map[string]HealthCheck) *Handler {
	return &Handler{
		versionInfo: versionInfo,
		checks:      checks,
	}
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (handler *Handler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) HandleVersion(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}

func (handler *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.misc.health")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(handler.checks))
	for name := range handler.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := HealthResponse{
		Status: "ok",
		Checks: make(map[string]string, len(names)),
	}
	for _, name := range names {
		if err := handler.checks[name](ctx); err != nil {
			log.Errorf("health check [%s]: %s", name, err)
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			span.SetAttributes(attribute.String("failed."+name, err.Error()))
			continue
		}
		resp.Checks[name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
		span.SetStatus(codes.Error, "degraded")
	}
	pkg.WriteJSON(w, resp, status)
}
