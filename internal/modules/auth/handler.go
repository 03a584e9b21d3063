package auth

import (
	"encoding/json"
	"net/http"

	"github.com/georgemunganga/pulse-backend/internal/modules/user"
	"github.com/georgemunganga/pulse-backend/internal/render"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
	users   user.Service
}

func NewHandler(service Service, users user.Service) *Handler {
	return &Handler{service: service, users: users}
}

// RegisterRoutes mounts the public login endpoint.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/login", h.login)
}

// RegisterProtectedRoutes mounts endpoints that need an authenticated user.
func (h *Handler) RegisterProtectedRoutes(router chi.Router) {
	router.Get("/me", h.me)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetUser(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, u)
}
