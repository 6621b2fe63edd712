package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/wodhub/internal/apperr"
	"github.com/2beens/wodhub/internal/telemetry/metrics"
)

// PanicRecovery turns a panicking handler into a JSON internal error. The panic
// is logged at error level, which the sentry hook forwards when enabled.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.WithFields(log.Fields{
					"route":  routeName(r),
					"method": r.Method,
					"path":   r.URL.Path,
				}).Errorf("panic serving request: %v\n%s", rec, debug.Stack())
				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				apperr.WriteError(w, fmt.Errorf("recovered panic: %v", rec))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
