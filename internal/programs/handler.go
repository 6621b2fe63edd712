package programs

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/wodhub/internal/apperr"
	"github.com/2beens/wodhub/internal/auth"
	"github.com/2beens/wodhub/internal/telemetry/tracing"
	"github.com/2beens/wodhub/pkg"
)

type Handler struct {
	service *Service
	now     func() time.Time
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
		now:     time.Now,
	}
}

// View is the JSON shape of a program returned to clients.
type View struct {
	*Program
	ExerciseSpec        SpecJSON    `json:"exercise_spec"`
	RoundPlan           []RoundPlan `json:"round_plan,omitempty"`
	DaysUntilExpiry     *int        `json:"days_until_expiry"`
	IsExpired           bool        `json:"is_expired"`
	ParticipantCount    int         `json:"participant_count"`
	IsRegistered        bool        `json:"is_registered"`
	ParticipationStatus string      `json:"participation_status,omitempty"`
}

func newView(p *Program, now time.Time, withPlan bool) View {
	v := View{
		Program:             p,
		ExerciseSpec:        EncodeSpec(p.Spec),
		DaysUntilExpiry:     p.DaysUntilExpiry(now),
		IsExpired:           p.IsExpired(now),
		ParticipantCount:    p.ApprovedCount + p.PendingCount,
		IsRegistered:        p.CallerStatus == "pending" || p.CallerStatus == "approved",
		ParticipationStatus: p.CallerStatus,
	}
	if rp, ok := p.Spec.(RoundPattern); ok && withPlan {
		v.RoundPlan = rp.Plan()
	}
	return v
}

func newViews(programs []Program, now time.Time) []View {
	views := make([]View, 0, len(programs))
	for i := range programs {
		views = append(views, newView(&programs[i], now, false))
	}
	return views
}

func programIDVar(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func requireUser(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		apperr.WriteError(w, apperr.New(apperr.KindUnauthorized, nil))
	}
	return userID, ok
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.list")
	defer span.End()

	callerID, _ := auth.UserIDFromContext(ctx)
	programs, err := handler.service.ListOpen(ctx, callerID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, newViews(programs, handler.now()), http.StatusOK)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.create")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("create program, unmarshal json params: %s", err)
		apperr.BadRequest(w, "invalid request body")
		return
	}

	p, err := handler.service.Create(ctx, userID, req)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, newView(p, handler.now(), true), http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.get")
	defer span.End()

	programID, ok := programIDVar(r)
	if !ok {
		apperr.BadRequest(w, "invalid program id")
		return
	}

	callerID, _ := auth.UserIDFromContext(ctx)
	p, err := handler.service.Get(ctx, programID, callerID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, newView(p, handler.now(), true), http.StatusOK)
}

func (handler *Handler) HandleExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.exercises")
	defer span.End()

	programID, ok := programIDVar(r)
	if !ok {
		apperr.BadRequest(w, "invalid program id")
		return
	}

	callerID, _ := auth.UserIDFromContext(ctx)
	p, err := handler.service.Get(ctx, programID, callerID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, map[string]any{
		"program_id": p.ID,
		"kind":       EncodeSpec(p.Spec).Kind,
		"exercises":  FlatItems(p.Spec),
	}, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.update")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	programID, ok := programIDVar(r)
	if !ok {
		apperr.BadRequest(w, "invalid program id")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("update program, unmarshal json params: %s", err)
		apperr.BadRequest(w, "invalid request body")
		return
	}

	p, err := handler.service.Update(ctx, programID, userID, req)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, newView(p, handler.now(), true), http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.delete")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	programID, ok := programIDVar(r)
	if !ok {
		apperr.BadRequest(w, "invalid program id")
		return
	}

	if err := handler.service.Delete(ctx, programID, userID); err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, map[string]string{"message": "program deleted"}, http.StatusOK)
}

func (handler *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.publish")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	programID, ok := programIDVar(r)
	if !ok {
		apperr.BadRequest(w, "invalid program id")
		return
	}

	p, err := handler.service.Publish(ctx, programID, userID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, newView(p, handler.now(), true), http.StatusOK)
}

func (handler *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.list_mine")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	programs, err := handler.service.ListMine(ctx, userID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, newViews(programs, handler.now()), http.StatusOK)
}

func (handler *Handler) HandleWodStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.wod_status")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	status, err := handler.service.WodStatus(ctx, userID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, status, http.StatusOK)
}
