package handler

import (
	"encoding/json"
	"net/http"

	"coursehub/internal/app/service"
	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/storage"

	"github.com/go-chi/chi/v5"
)

type TestHandler struct {
	tests *service.TestService
}

func NewTestHandler(tests *service.TestService) *TestHandler {
	return &TestHandler{tests: tests}
}

func (h *TestHandler) RegisterRoutes(r chi.Router, admin ...func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/questions", h.questions)
	r.With(admin...).Post("/", h.create)
	r.With(admin...).Put("/{id}", h.update)
	r.With(admin...).Delete("/{id}", h.delete)
}

func (h *TestHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := storage.TestFilter{CourseID: queryInt64(r, "course_id")}
	tests, err := h.tests.ListTests(r.Context(), filter)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if tests == nil {
		tests = []model.Test{}
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"tests": tests})
}

func (h *TestHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "invalid test id")
		return
	}
	test, err := h.tests.GetTest(r.Context(), id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"test": test})
}

func (h *TestHandler) questions(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "invalid test id")
		return
	}
	if _, err := h.tests.GetTest(r.Context(), id); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	questions, err := h.tests.ListQuestions(r.Context(), id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if questions == nil {
		questions = []model.TestQuestion{}
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

func (h *TestHandler) create(w http.ResponseWriter, r *http.Request) {
	var fields model.TestFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	test, err := h.tests.CreateTest(r.Context(), fields)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{"test": test})
}

func (h *TestHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "invalid test id")
		return
	}
	var patch model.TestPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	test, err := h.tests.UpdateTest(r.Context(), id, patch)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"test": test})
}

func (h *TestHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "invalid test id")
		return
	}
	if err := h.tests.DeleteTest(r.Context(), id); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "test deleted"})
}
