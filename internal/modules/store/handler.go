package store

import (
	"encoding/json"
	"net/http"

	"github.com/georgemunganga/pulse-backend/internal/live"
	"github.com/georgemunganga/pulse-backend/internal/modules/access"
	"github.com/georgemunganga/pulse-backend/internal/modules/auth"
	"github.com/georgemunganga/pulse-backend/internal/render"
	"github.com/go-chi/chi/v5"
)

// Handler exposes store and team HTTP endpoints.
type Handler struct {
	service  Service
	accounts Accounts
	feed     *Feed
	upgrader *live.Upgrader
}

func NewHandler(service Service, accounts Accounts, feed *Feed, upgrader *live.Upgrader) *Handler {
	return &Handler{service: service, accounts: accounts, feed: feed, upgrader: upgrader}
}

// RegisterRoutes mounts the store routes. They expect auth.Middleware upstream.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/roles", h.listRoles)

	r.Post("/stores", h.createStore)
	r.Get("/stores", h.listStores)

	r.Get("/stores/{id}", h.getStore)
	r.Patch("/stores/{id}", h.updateStore)
	r.Delete("/stores/{id}", h.deleteStore)
	r.Get("/stores/{id}/live", h.liveStore)

	// Team endpoints
	r.Get("/stores/{id}/team", h.listTeam)
	r.Post("/stores/{id}/team", h.addMember)
	r.Delete("/stores/{id}/team/{member_id}", h.removeMember)
}

// viewer loads the signed-in account. It writes the error response itself.
func (h *Handler) viewer(w http.ResponseWriter, r *http.Request) (*Viewer, bool) {
	u, err := h.accounts.GetUser(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		render.Error(w, r, err)
		return nil, false
	}
	return ViewerFromUser(u), true
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, http.StatusOK, access.Policies())
}

func (h *Handler) createStore(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var req CreateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}
	st, err := h.service.CreateStore(r.Context(), viewer, req)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, st)
}

func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.service.ListStores(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, stores)
}

func (h *Handler) getStore(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	details, err := h.service.GetDetails(r.Context(), chi.URLParam(r, "id"), viewer)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, details)
}

func (h *Handler) updateStore(w http.ResponseWriter, r *http.Request) {
	var req UpdateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}
	st, err := h.service.UpdateStore(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, st)
}

func (h *Handler) deleteStore(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteStore(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		render.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) liveStore(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	// Strangers get a plain 404 before the upgrade.
	storeID := chi.URLParam(r, "id")
	if _, err := h.service.GetDetails(r.Context(), storeID, viewer); err != nil {
		render.Error(w, r, err)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r)
	if err != nil {
		return
	}
	h.feed.Serve(r.Context(), conn, storeID, viewer)
}

func (h *Handler) listTeam(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	team, err := h.service.ListTeam(r.Context(), chi.URLParam(r, "id"), viewer)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, team)
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}
	member, err := h.service.AddTeamMember(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, member)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveTeamMember(r.Context(),
		auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "member_id"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
