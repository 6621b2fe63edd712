package catalog

import (
	"net/http"
	"strconv"

	"github.com/2beens/wodhub/internal/apperr"
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

func (handler *Handler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.categories")
	defer span.End()

	categories, err := handler.service.Categories(ctx)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, categories, http.StatusOK)
}

func (handler *Handler) HandleExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.exercises")
	defer span.End()

	var categoryID *int
	if categoryIDStr := r.URL.Query().Get("category_id"); categoryIDStr != "" {
		id, err := strconv.Atoi(categoryIDStr)
		if err != nil {
			apperr.BadRequest(w, "category_id must be a number")
			return
		}
		categoryID = &id
	}

	exercises, err := handler.service.Exercises(ctx, categoryID)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	pkg.WriteJSON(w, exercises, http.StatusOK)
}
