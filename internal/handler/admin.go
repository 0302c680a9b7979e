package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stellarnova/limitd/internal/service"
)

// AdminHandler handles HTTP requests for the operational toggles.
type AdminHandler struct {
	adminSvc *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminSvc *service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// AllowAsset handles POST /admin/assets.
func (h *AdminHandler) AllowAsset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Asset string `json:"asset"`
	}
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.adminSvc.AllowAsset(req.Asset); err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]string{"asset": req.Asset})
}

// RemoveAsset handles DELETE /admin/assets/{asset}.
func (h *AdminHandler) RemoveAsset(w http.ResponseWriter, r *http.Request) {
	asset := chi.URLParam(r, "asset")

	if err := h.adminSvc.RemoveAsset(asset); err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"asset": asset})
}

// ListAssets handles GET /admin/assets.
func (h *AdminHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"assets": h.adminSvc.ListAssets()})
}

// SetPaused handles POST /admin/pause.
func (h *AdminHandler) SetPaused(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paused bool `json:"paused"`
	}
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	h.adminSvc.SetPaused(req.Paused)
	WriteJSON(w, http.StatusOK, map[string]bool{"paused": req.Paused})
}

// SetExecutor handles POST /admin/executor.
func (h *AdminHandler) SetExecutor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExecutorID string `json:"executor_id"`
	}
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.adminSvc.SetExecutor(req.ExecutorID); err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"executor_id": req.ExecutorID})
}

// SetFee handles POST /admin/fee.
func (h *AdminHandler) SetFee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FeeBPS uint64 `json:"fee_bps"`
	}
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := h.adminSvc.SetFeeBPS(req.FeeBPS); err != nil {
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]uint64{"fee_bps": req.FeeBPS})
}
