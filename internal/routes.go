package internal

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/wodhub/internal/apperr"
	"github.com/2beens/wodhub/internal/catalog"
	"github.com/2beens/wodhub/internal/config"
	"github.com/2beens/wodhub/internal/middleware"
	"github.com/2beens/wodhub/internal/misc"
	"github.com/2beens/wodhub/internal/notifications"
	"github.com/2beens/wodhub/internal/participants"
	"github.com/2beens/wodhub/internal/programs"
	"github.com/2beens/wodhub/internal/records"
	"github.com/2beens/wodhub/internal/telemetry/metrics"
	"github.com/2beens/wodhub/internal/users"
)

const (
	routeRoot                 = "root"
	routeVersion              = "version"
	routeHealth               = "health"
	routeRegister             = "register"
	routeLogin                = "login"
	routeLogout               = "logout"
	routeProfile              = "user-profile"
	routeCategories           = "exercise-categories"
	routeExercises            = "exercises"
	routeListPrograms         = "list-programs"
	routeCreateProgram        = "create-program"
	routeGetProgram           = "get-program"
	routeUpdateProgram        = "update-program"
	routeDeleteProgram        = "delete-program"
	routePublishProgram       = "publish-program"
	routeProgramExercises     = "program-exercises"
	routeMyPrograms           = "my-programs"
	routeWodStatus            = "wod-status"
	routeJoinProgram          = "join-program"
	routeLeaveProgram         = "leave-program"
	routeListParticipants     = "list-participants"
	routeDecideParticipant    = "decide-participant"
	routeProgramResults       = "program-results"
	routeListNotifications    = "list-notifications"
	routeUnreadNotifications  = "unread-notifications"
	routeReadNotification     = "read-notification"
	routeReadAllNotifications = "read-all-notifications"
	routeCreateRecord         = "create-record"
	routeProgramRecords       = "program-records"
	routeUpdateRecord         = "update-record"
	routeDeleteRecord         = "delete-record"
	routeMyRecords            = "my-records"
	routeMyStats              = "my-stats"
	routeListGoals            = "list-goals"
	routeSetGoal              = "set-goal"
	routeDeleteGoal           = "delete-goal"
)

// routePolicy lists the routes that do not require a bearer token. Every other
// named route does.
var routePolicy = middleware.RoutePolicy{
	Public: map[string]bool{
		routeRoot:             true,
		routeVersion:          true,
		routeHealth:           true,
		routeRegister:         true,
		routeLogin:            true,
		routeCategories:       true,
		routeExercises:        true,
	},
	Optional: map[string]bool{
		routeListPrograms:     true,
		routeGetProgram:       true,
		routeProgramExercises: true,
	},
}

type handlers struct {
	misc          *misc.Handler
	users         *users.Handler
	catalog       *catalog.Handler
	programs      *programs.Handler
	participants  *participants.Handler
	notifications *notifications.Handler
	records       *records.Handler
	realtime      http.Handler
}

func newRouter(
	h handlers,
	resolver middleware.IdentityResolver,
	rateLimiter middleware.RequestRateLimiter,
	cfg *config.Config,
	metricsManager *metrics.Manager,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/", h.misc.HandleRoot).Methods("GET").Name(routeRoot)
	r.HandleFunc("/version", h.misc.HandleVersion).Methods("GET").Name(routeVersion)
	r.HandleFunc("/health", h.misc.HandleHealth).Methods("GET").Name(routeHealth)

	// rate limit the credential endpoints to slow down brute forcing
	limited := middleware.RateLimit(rateLimiter, "auth", cfg.LoginRateLimitAllowedPerMin, metricsManager)
	r.Handle("/register", limited(http.HandlerFunc(h.users.HandleRegister))).Methods("POST", "OPTIONS").Name(routeRegister)
	r.Handle("/login", limited(http.HandlerFunc(h.users.HandleLogin))).Methods("POST", "OPTIONS").Name(routeLogin)
	r.HandleFunc("/logout", h.users.HandleLogout).Methods("POST", "OPTIONS").Name(routeLogout)
	r.HandleFunc("/user/profile", h.users.HandleProfile).Methods("GET", "OPTIONS").Name(routeProfile)

	r.HandleFunc("/exercise-categories", h.catalog.HandleCategories).Methods("GET", "OPTIONS").Name(routeCategories)
	r.HandleFunc("/exercises", h.catalog.HandleExercises).Methods("GET", "OPTIONS").Name(routeExercises)

	r.HandleFunc("/programs", h.programs.HandleList).Methods("GET", "OPTIONS").Name(routeListPrograms)
	r.HandleFunc("/programs", h.programs.HandleCreate).Methods("POST", "OPTIONS").Name(routeCreateProgram)
	r.HandleFunc("/programs/{id:[0-9]+}", h.programs.HandleGet).Methods("GET", "OPTIONS").Name(routeGetProgram)
	r.HandleFunc("/programs/{id:[0-9]+}", h.programs.HandleUpdate).Methods("PUT", "OPTIONS").Name(routeUpdateProgram)
	r.HandleFunc("/programs/{id:[0-9]+}", h.programs.HandleDelete).Methods("DELETE", "OPTIONS").Name(routeDeleteProgram)
	r.HandleFunc("/programs/{id:[0-9]+}/open", h.programs.HandlePublish).Methods("POST", "OPTIONS").Name(routePublishProgram)
	r.HandleFunc("/programs/{id:[0-9]+}/exercises", h.programs.HandleExercises).Methods("GET", "OPTIONS").Name(routeProgramExercises)
	r.HandleFunc("/user/programs", h.programs.HandleListMine).Methods("GET", "OPTIONS").Name(routeMyPrograms)
	r.HandleFunc("/user/wod-status", h.programs.HandleWodStatus).Methods("GET", "OPTIONS").Name(routeWodStatus)

	r.HandleFunc("/programs/{id:[0-9]+}/join", h.participants.HandleJoin).Methods("POST", "OPTIONS").Name(routeJoinProgram)
	r.HandleFunc("/programs/{id:[0-9]+}/leave", h.participants.HandleLeave).Methods("DELETE", "OPTIONS").Name(routeLeaveProgram)
	r.HandleFunc("/programs/{id:[0-9]+}/participants", h.participants.HandleList).Methods("GET", "OPTIONS").Name(routeListParticipants)
	r.HandleFunc("/programs/{id:[0-9]+}/results", h.participants.HandleResults).Methods("GET", "OPTIONS").Name(routeProgramResults)
	r.HandleFunc("/programs/{id:[0-9]+}/participants/{user_id:[0-9]+}/approve", h.participants.HandleDecide).Methods("PUT", "OPTIONS").Name(routeDecideParticipant)

	r.HandleFunc("/notifications", h.notifications.HandleList).Methods("GET", "OPTIONS").Name(routeListNotifications)
	r.HandleFunc("/notifications/unread-count", h.notifications.HandleUnreadCount).Methods("GET", "OPTIONS").Name(routeUnreadNotifications)
	r.HandleFunc("/notifications/read-all", h.notifications.HandleMarkAllRead).Methods("PUT", "OPTIONS").Name(routeReadAllNotifications)
	r.HandleFunc("/notifications/{id:[0-9]+}/read", h.notifications.HandleMarkRead).Methods("PUT", "OPTIONS").Name(routeReadNotification)

	r.HandleFunc("/programs/{id:[0-9]+}/records", h.records.HandleRecord).Methods("POST", "OPTIONS").Name(routeCreateRecord)
	r.HandleFunc("/programs/{id:[0-9]+}/records", h.records.HandleListPublic).Methods("GET", "OPTIONS").Name(routeProgramRecords)
	r.HandleFunc("/records/{id:[0-9]+}", h.records.HandleUpdate).Methods("PUT", "OPTIONS").Name(routeUpdateRecord)
	r.HandleFunc("/records/{id:[0-9]+}", h.records.HandleDelete).Methods("DELETE", "OPTIONS").Name(routeDeleteRecord)
	r.HandleFunc("/users/records", h.records.HandleListMine).Methods("GET", "OPTIONS").Name(routeMyRecords)
	r.HandleFunc("/users/records/stats", h.records.HandleStats).Methods("GET", "OPTIONS").Name(routeMyStats)
	r.HandleFunc("/users/goals", h.records.HandleListGoals).Methods("GET", "OPTIONS").Name(routeListGoals)
	r.HandleFunc("/users/goals", h.records.HandleSetGoal).Methods("POST", "OPTIONS").Name(routeSetGoal)
	r.HandleFunc("/users/goals/{id:[0-9]+}", h.records.HandleDeleteGoal).Methods("DELETE", "OPTIONS").Name(routeDeleteGoal)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apperr.WriteError(w, apperr.New(apperr.KindNotFound, nil))
	})

	authMiddleware := middleware.NewAuthMiddlewareHandler(resolver, routePolicy)

	r.Use(middleware.PanicRecovery(metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(metricsManager))
	r.Use(middleware.Cors(cfg.CorsAllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.LimitRequestBody(middleware.MaxRequestBodyBytes))

	return r
}

// rootHandler serves the websocket endpoint next to the router. The router's
// middleware wraps the response writer, which breaks the connection hijack.
func rootHandler(router *mux.Router, realtimeHandler http.Handler) http.Handler {
	root := http.NewServeMux()
	root.Handle("/ws", otelhttp.NewHandler(realtimeHandler, "realtime"))
	root.Handle("/", router)
	return root
}
