package handler

import (
	"encoding/json"
	"net/http"

	"coursehub/internal/api/middleware"
	"coursehub/internal/app/service"
	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/storage"

	"github.com/go-chi/chi/v5"
)

type ResultHandler struct {
	tests *service.TestService
}

func NewResultHandler(tests *service.TestService) *ResultHandler {
	return &ResultHandler{tests: tests}
}

// RegisterRoutes expects the router to have already applied the
// authentication middleware: every result route needs a user.
func (h *ResultHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/", h.submit)
}

func (h *ResultHandler) list(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	filter := storage.ResultFilter{
		TestID: queryInt64(r, "test_id"),
		UserID: queryInt64(r, "user_id"),
	}
	// Non-admins only ever see their own results.
	if !user.IsAdmin {
		filter.UserID = &user.ID
	}

	results, err := h.tests.ListResults(r.Context(), filter)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if results == nil {
		results = []model.TestResult{}
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (h *ResultHandler) get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id, okID := idParam(r)
	if !okID {
		common.RespondWithError(w, http.StatusBadRequest, "invalid result id")
		return
	}
	result, err := h.tests.GetResult(r.Context(), id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if !user.IsAdmin && result.UserID != user.ID {
		common.RespondWithError(w, http.StatusForbidden, "cannot view another user's result")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"result": result})
}

func (h *ResultHandler) submit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req service.SubmitResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	result, err := h.tests.SubmitResult(r.Context(), user.ID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{"result": result})
}
