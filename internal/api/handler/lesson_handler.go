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

type LessonHandler struct {
	content *service.ContentService
}

func NewLessonHandler(content *service.ContentService) *LessonHandler {
	return &LessonHandler{content: content}
}

func (h *LessonHandler) RegisterRoutes(r chi.Router, admin ...func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.With(admin...).Post("/", h.create)
	r.With(admin...).Put("/{id}", h.update)
	r.With(admin...).Delete("/{id}", h.delete)
}

func (h *LessonHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := storage.LessonFilter{CourseID: queryInt64(r, "course_id")}
	lessons, err := h.content.ListLessons(r.Context(), filter)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if lessons == nil {
		lessons = []model.Lesson{}
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"lessons": lessons})
}

func (h *LessonHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "invalid lesson id")
		return
	}
	lesson, err := h.content.GetLesson(r.Context(), id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"lesson": lesson})
}

func (h *LessonHandler) create(w http.ResponseWriter, r *http.Request) {
	var fields model.LessonFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	lesson, err := h.content.CreateLesson(r.Context(), fields)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{"lesson": lesson})
}

func (h *LessonHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "invalid lesson id")
		return
	}
	var patch model.LessonPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	lesson, err := h.content.UpdateLesson(r.Context(), id, patch)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"lesson": lesson})
}

func (h *LessonHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "invalid lesson id")
		return
	}
	if err := h.content.DeleteLesson(r.Context(), id); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "lesson deleted"})
}
