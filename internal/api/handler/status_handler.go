package handler

import (
	"net/http"

	"coursehub/internal/app/service"
	"coursehub/internal/common"

	"github.com/go-chi/chi/v5"
)

type StatusHandler struct {
	admin *service.AdminService
}

func NewStatusHandler(admin *service.AdminService) *StatusHandler {
	return &StatusHandler{admin: admin}
}

func (h *StatusHandler) RegisterRoutes(r chi.Router, adminOnly ...func(http.Handler) http.Handler) {
	r.Get("/data-status", h.dataStatus)
	r.With(adminOnly...).Post("/migrate-data", h.migrate)
}

func (h *StatusHandler) dataStatus(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, h.admin.DataStatus(r.Context()))
}

func (h *StatusHandler) migrate(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if target == "" {
		target = "all"
	}
	result := h.admin.Migrate(r.Context(), target)
	code := http.StatusOK
	if !result.Success {
		code = http.StatusInternalServerError
	}
	common.RespondWithJSON(w, code, result)
}
