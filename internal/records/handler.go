package records

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

// parseRequest extracts the caller and the numeric {id} path var, writing the error
// response if either is missing.
func parseRequest(w http.ResponseWriter, r *http.Request, what string) (userID, id int, ok bool) {
	userID, ok = auth.UserIDFromContext(r.Context())
	if !ok {
		apperr.WriteError(w, apperr.New(apperr.KindUnauthorized, nil))
		return 0, 0, false
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		apperr.BadRequest(w, "invalid "+what+" id")
		return 0, 0, false
	}
	return userID, id, true
}

func requireUser(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		apperr.WriteError(w, apperr.New(apperr.KindUnauthorized, nil))
	}
	return userID, ok
}

func (handler *Handler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.record")
	defer span.End()

	userID, programID, ok := parseRequest(w, r, "program")
	if !ok {
		return
	}

	var req NewRecord
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("record workout, unmarshal json params: %s", err)
		apperr.BadRequest(w, "invalid request body")
		return
	}

	rec, err := handler.service.Record(ctx, programID, userID, req)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, rec, http.StatusCreated)
}

func (handler *Handler) HandleListPublic(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.list_public")
	defer span.End()

	_, programID, ok := parseRequest(w, r, "program")
	if !ok {
		return
	}

	records, err := handler.service.ListPublic(ctx, programID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, records, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.update")
	defer span.End()

	userID, recordID, ok := parseRequest(w, r, "record")
	if !ok {
		return
	}

	var upd RecordUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		log.Tracef("update record, unmarshal json params: %s", err)
		apperr.BadRequest(w, "invalid request body")
		return
	}

	rec, err := handler.service.Update(ctx, recordID, userID, upd)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, rec, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.delete")
	defer span.End()

	userID, recordID, ok := parseRequest(w, r, "record")
	if !ok {
		return
	}

	if err := handler.service.Delete(ctx, recordID, userID); err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, map[string]string{"message": "record deleted"}, http.StatusOK)
}

func (handler *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.list_mine")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	records, err := handler.service.ListMine(ctx, userID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, map[string]any{
		"records":     records,
		"total_count": len(records),
	}, http.StatusOK)
}

func (handler *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.stats")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	stats, err := handler.service.PersonalStats(ctx, userID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, stats, http.StatusOK)
}

func (handler *Handler) HandleListGoals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.list_goals")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	goals, err := handler.service.ListGoals(ctx, userID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, map[string]any{"goals": goals}, http.StatusOK)
}

func (handler *Handler) HandleSetGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.set_goal")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("set goal, unmarshal json params: %s", err)
		apperr.BadRequest(w, "invalid request body")
		return
	}

	goal, created, err := handler.service.SetGoal(ctx, userID, req)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	pkg.WriteJSON(w, goal, status)
}

func (handler *Handler) HandleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.delete_goal")
	defer span.End()

	userID, goalID, ok := parseRequest(w, r, "goal")
	if !ok {
		return
	}

	if err := handler.service.DeleteGoal(ctx, goalID, userID); err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, map[string]string{"message": "goal deleted"}, http.StatusOK)
}
