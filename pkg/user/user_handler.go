package user

import (
	"errors"
	"net/http"

	"github.com/klokku/calgate/internal/rest"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Id          int    `json:"id"`
	Uid         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	TimeZone    string `json:"timeZone"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

// CurrentUser godoc
// @Summary Get current user
// @Tags User
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 403 {object} rest.ErrorResponse "User not found"
// @Router /api/user/current [get]
// @Security BearerAuth
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoUser) || errors.Is(err, ErrUserNotFound) {
			rest.WriteError(w, http.StatusForbidden, "User not found", "")
			return
		}
		log.Errorf("failed to get current user: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(u))
}

func userToDTO(u User) UserDTO {
	return UserDTO{
		Id:          u.Id,
		Uid:         u.Uid,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		TimeZone:    u.TimeZone,
	}
}
