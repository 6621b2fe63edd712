package participants

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/wodhub/internal/apperr"
	"github.com/2beens/wodhub/internal/auth"
	"github.com/2beens/wodhub/internal/telemetry/tracing"
	"github.com/2beens/wodhub/pkg"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

type DecisionRequest struct {
	Action Action `json:"action"`
}

func intVar(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// parseRequest extracts the caller and the program id, writing the error response if either is missing.
func parseRequest(w http.ResponseWriter, r *http.Request) (userID, programID int, ok bool) {
	userID, ok = auth.UserIDFromContext(r.Context())
	if !ok {
		apperr.WriteError(w, apperr.New(apperr.KindUnauthorized, nil))
		return 0, 0, false
	}
	programID, ok = intVar(r, "id")
	if !ok {
		apperr.BadRequest(w, "invalid program id")
		return 0, 0, false
	}
	return userID, programID, true
}

func (handler *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.participants.join")
	defer span.End()

	userID, programID, ok := parseRequest(w, r)
	if !ok {
		return
	}

	p, err := handler.service.Join(ctx, programID, userID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, p, http.StatusCreated)
}

func (handler *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.participants.leave")
	defer span.End()

	userID, programID, ok := parseRequest(w, r)
	if !ok {
		return
	}

	if err := handler.service.Leave(ctx, programID, userID); err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, map[string]string{"message": "left program"}, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.participants.list")
	defer span.End()

	userID, programID, ok := parseRequest(w, r)
	if !ok {
		return
	}

	list, err := handler.service.List(ctx, programID, userID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, list, http.StatusOK)
}

func (handler *Handler) HandleResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.participants.results")
	defer span.End()

	userID, programID, ok := parseRequest(w, r)
	if !ok {
		return
	}

	results, err := handler.service.Results(ctx, programID, userID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, results, http.StatusOK)
}

func (handler *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.participants.decide")
	defer span.End()

	userID, programID, ok := parseRequest(w, r)
	if !ok {
		return
	}
	targetUserID, ok := intVar(r, "user_id")
	if !ok {
		apperr.BadRequest(w, "invalid user id")
		return
	}

	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("decide participation, unmarshal json params: %s", err)
		apperr.BadRequest(w, "invalid request body")
		return
	}

	p, err := handler.service.Decide(ctx, programID, userID, targetUserID, req.Action)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, p, http.StatusOK)
}
