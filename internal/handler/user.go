package handler

import (
	"net/http"

	"devboards/internal/model"
	"devboards/internal/service"
)

// UserHandler serves public profile pages.
type UserHandler struct {
	authSvc *service.AuthService
	pinSvc  *service.PinService
}

func NewUserHandler(authSvc *service.AuthService, pinSvc *service.PinService) *UserHandler {
	return &UserHandler{authSvc: authSvc, pinSvc: pinSvc}
}

type profileResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Role  string      `json:"role"`
	Image string      `json:"image"`
	Bio   string      `json:"bio"`
	Pins  []model.Pin `json:"pins"`
}

// HandleGetProfile returns a user's public profile together with their pins,
// newest first. Email and timestamps stay private.
//
// HTTP: GET /api/users/{id}
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	user, err := h.authSvc.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	pins, err := h.pinSvc.List(r.Context(), service.FeedOptions{AuthorID: id})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:    user.ID,
		Name:  user.Name,
		Role:  user.Role,
		Image: user.Image,
		Bio:   user.Bio,
		Pins:  pins,
	})
}
