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

type CourseHandler struct {
	content *service.ContentService
	tests   *service.TestService
}

func NewCourseHandler(content *service.ContentService, tests *service.TestService) *CourseHandler {
	return &CourseHandler{content: content, tests: tests}
}

// RegisterRoutes mounts course routes. Reads are public, mutations go
// through the admin chain the router supplies.
func (h *CourseHandler) RegisterRoutes(r chi.Router, admin ...func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/lessons", h.lessons)
	r.Get("/{id}/tests", h.courseTests)
	r.With(admin...).Post("/", h.create)
	r.With(admin...).Put("/{id}", h.update)
	r.With(admin...).Delete("/{id}", h.delete)
}

func (h *CourseHandler) list(w http.ResponseWriter, r *http.Request) {
	courses, err := h.content.ListCourses(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"courses": courses})
}

func (h *CourseHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "invalid course id")
		return
	}
	course, err := h.content.GetCourse(r.Context(), id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"course": course})
}

func (h *CourseHandler) lessons(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "invalid course id")
		return
	}
	if _, err := h.content.GetCourse(r.Context(), id); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	lessons, err := h.content.ListLessons(r.Context(), storage.LessonFilter{CourseID: &id})
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if lessons == nil {
		lessons = []model.Lesson{}
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"lessons": lessons})
}

func (h *CourseHandler) courseTests(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "invalid course id")
		return
	}
	if _, err := h.content.GetCourse(r.Context(), id); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	tests, err := h.tests.ListTests(r.Context(), storage.TestFilter{CourseID: &id})
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if tests == nil {
		tests = []model.Test{}
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"tests": tests})
}

func (h *CourseHandler) create(w http.ResponseWriter, r *http.Request) {
	var fields model.CourseFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	course, err := h.content.CreateCourse(r.Context(), fields)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{"course": course})
}

func (h *CourseHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "invalid course id")
		return
	}
	var patch model.CoursePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	course, err := h.content.UpdateCourse(r.Context(), id, patch)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"course": course})
}

func (h *CourseHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "invalid course id")
		return
	}
	if err := h.content.DeleteCourse(r.Context(), id); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "course deleted"})
}
