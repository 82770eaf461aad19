package handler

import (
	"net/http"

	"devboards/internal/auth"
	"devboards/internal/service"
)

// SaveHandler exposes the save/unsave relation and the saved-pins listing.
// The service logs the save and unsave events, so the handler carries no
// logger of its own.
type SaveHandler struct {
	svc *service.SaveService
}

func NewSaveHandler(svc *service.SaveService) *SaveHandler {
	return &SaveHandler{svc: svc}
}

// HandleSave bookmarks a pin for the caller. Saving the same pin twice is
// rejected with a 400.
//
// HTTP: POST /api/pins/{id}/save
// Auth: required
func (h *SaveHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	saved, err := h.svc.Save(r.Context(), callerID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// HandleUnsave removes the caller's bookmark of a pin. Unsaving a pin that
// was never saved returns a 404.
//
// HTTP: DELETE /api/pins/{id}/save
// Auth: required
func (h *SaveHandler) HandleUnsave(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	if err := h.svc.Unsave(r.Context(), callerID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "pin unsaved successfully"})
}

// HandleListSaved returns the caller's saved pins, most recently saved
// first.
//
// HTTP: GET /api/pins/saved?limit=
// Auth: required
func (h *SaveHandler) HandleListSaved(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	pins, err := h.svc.ListSaved(r.Context(), callerID, parseLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pins)
}
