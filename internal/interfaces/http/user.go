package http

import (
	"encoding/json"
	"log"
	"net/http"

	"doughjo/internal/domain/gamify"
	"doughjo/internal/domain/user"
	"doughjo/internal/shared/middleware"
)

type UserHandler struct {
	userRepo user.Repository
}

func NewUserHandler(userRepo user.Repository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// ProfileResponse includes the derived progression fields so clients never
// duplicate the XP arithmetic.
type ProfileResponse struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	XP              int    `json:"xp"`
	Level           int    `json:"level"`
	Belt            string `json:"belt"`
	ProgressPercent int    `json:"progressPercent"`
}

// HandleMe returns the authenticated user's profile and progression
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		log.Printf("Error loading profile for user %d: %v", userID, err)
		http.Error(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ProfileResponse{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		XP:              u.XP,
		Level:           gamify.LevelForXP(u.XP),
		Belt:            gamify.BeltForXP(u.XP),
		ProgressPercent: gamify.ProgressPercent(u.XP),
	})
}
