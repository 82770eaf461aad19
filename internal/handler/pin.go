package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"devboards/internal/auth"
	"devboards/internal/service"
)

// PinHandler exposes the pin CRUD and feed endpoints.
type PinHandler struct {
	svc    *service.PinService
	logger *slog.Logger
}

func NewPinHandler(svc *service.PinService, logger *slog.Logger) *PinHandler {
	return &PinHandler{svc: svc, logger: logger}
}

type createPinRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	CodeSnippet string `json:"codeSnippet"`
	Language    string `json:"language"`
	Tags        string `json:"tags"`
}

// updatePinRequest uses pointers so absent JSON fields keep their prior
// values. imageUrl is not updatable.
type updatePinRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CodeSnippet *string `json:"codeSnippet"`
	Language    *string `json:"language"`
	Tags        *string `json:"tags"`
}

// HandleList returns the pin feed. With no parameters the newest pins come
// first; userId= restricts to one author and random=true samples a shuffled
// window instead.
//
// HTTP: GET /api/pins?limit=&random=&userId=
func (h *PinHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	opts := service.FeedOptions{
		Limit:    parseLimit(r),
		AuthorID: r.URL.Query().Get("userId"),
		Sampled:  r.URL.Query().Get("random") == "true",
	}

	pins, err := h.svc.List(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pins)
}

// HandleCreate creates a pin owned by the caller.
//
// HTTP: POST /api/pins
// Auth: required
func (h *PinHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createPinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid create pin request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	callerID, _ := auth.UserIDFromContext(r.Context())
	pin, err := h.svc.Create(r.Context(), callerID, service.CreatePinInput{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CodeSnippet: req.CodeSnippet,
		Language:    req.Language,
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, pin)
}

// HandleGetByID returns a single pin with its author and savers.
//
// HTTP: GET /api/pins/{id}
func (h *PinHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	pin, err := h.svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pin)
}

// HandleUpdate applies a partial update to a pin the caller authored.
//
// HTTP: PUT /api/pins/{id}
// Auth: required, author only
func (h *PinHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updatePinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid update pin request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	callerID, _ := auth.UserIDFromContext(r.Context())
	pin, err := h.svc.Update(r.Context(), r.PathValue("id"), callerID, service.UpdatePinInput{
		Title:       req.Title,
		Description: req.Description,
		CodeSnippet: req.CodeSnippet,
		Language:    req.Language,
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pin)
}

// HandleDelete removes a pin the caller authored. Saves of the pin are
// removed with it.
//
// HTTP: DELETE /api/pins/{id}
// Auth: required, author only
func (h *PinHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())
	if err := h.svc.Delete(r.Context(), r.PathValue("id"), callerID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "pin deleted successfully"})
}

// parseLimit reads the limit query parameter. Zero means "use the default";
// the service clamps out-of-range values.
func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}
