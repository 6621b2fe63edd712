package notifications

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

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

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notifications.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		apperr.WriteError(w, apperr.New(apperr.KindUnauthorized, nil))
		return
	}

	list, err := handler.service.List(ctx, userID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, list, http.StatusOK)
}

func (handler *Handler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notifications.unread_count")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		apperr.WriteError(w, apperr.New(apperr.KindUnauthorized, nil))
		return
	}

	count, err := handler.service.UnreadCount(ctx, userID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, map[string]int{"unread_count": count}, http.StatusOK)
}

func (handler *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notifications.mark_read")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		apperr.WriteError(w, apperr.New(apperr.KindUnauthorized, nil))
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		apperr.BadRequest(w, "invalid notification id")
		return
	}

	if err := handler.service.MarkRead(ctx, userID, id); err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, map[string]string{"message": "marked as read"}, http.StatusOK)
}

func (handler *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notifications.mark_all_read")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		apperr.WriteError(w, apperr.New(apperr.KindUnauthorized, nil))
		return
	}

	updated, err := handler.service.MarkAllRead(ctx, userID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, map[string]int64{"updated": updated}, http.StatusOK)
}
