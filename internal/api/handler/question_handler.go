package handler

import (
	"encoding/json"
	"net/http"

	"coursehub/internal/app/service"
	"coursehub/internal/common"
	"coursehub/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type QuestionHandler struct {
	tests *service.TestService
}

func NewQuestionHandler(tests *service.TestService) *QuestionHandler {
	return &QuestionHandler{tests: tests}
}

func (h *QuestionHandler) RegisterRoutes(r chi.Router, admin ...func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.With(admin...).Post("/", h.create)
	r.With(admin...).Put("/{id}", h.update)
	r.With(admin...).Delete("/{id}", h.delete)
}

func (h *QuestionHandler) list(w http.ResponseWriter, r *http.Request) {
	testID := queryInt64(r, "test_id")
	if testID == nil {
		common.RespondWithError(w, http.StatusBadRequest, "test_id query parameter is required")
		return
	}
	questions, err := h.tests.ListQuestions(r.Context(), *testID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if questions == nil {
		questions = []model.TestQuestion{}
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

func (h *QuestionHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "invalid question id")
		return
	}
	question, err := h.tests.GetQuestion(r.Context(), id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"question": question})
}

func (h *QuestionHandler) create(w http.ResponseWriter, r *http.Request) {
	var fields model.QuestionFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	question, err := h.tests.CreateQuestion(r.Context(), fields)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{"question": question})
}

func (h *QuestionHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "invalid question id")
		return
	}
	var patch model.QuestionPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	question, err := h.tests.UpdateQuestion(r.Context(), id, patch)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"question": question})
}

func (h *QuestionHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "invalid question id")
		return
	}
	if err := h.tests.DeleteQuestion(r.Context(), id); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "question deleted"})
}
