package product

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/georgemunganga/pulse-backend/internal/modules/auth"
	"github.com/georgemunganga/pulse-backend/internal/render"
	"github.com/go-chi/chi/v5"
)

// Handler exposes product HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

// RegisterRoutes mounts the product routes under a store. They expect
// auth.Middleware upstream.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stores/{id}/products", func(r chi.Router) {
		r.Post("/", h.addProduct)
		r.Get("/", h.listProducts) // ?after=<product id>&limit=n
		r.Get("/{product_id}", h.getProduct)
		r.Patch("/{product_id}", h.updateProduct)
		r.Put("/{product_id}/inventory", h.updateInventory)
		r.Delete("/{product_id}", h.removeProduct)
	})
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	var req AddProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}
	p, err := h.service.AddProduct(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, p)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	page := Page{After: r.URL.Query().Get("after")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			render.BadRequest(w, "limit must be a number")
			return
		}
		page.Limit = n
	}
	out, err := h.service.ListProducts(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), page)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProduct(r.Context(),
		auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "product_id"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}
	p, err := h.service.UpdateProduct(r.Context(),
		auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "product_id"), req)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, p)
}

func (h *Handler) updateInventory(w http.ResponseWriter, r *http.Request) {
	var req UpdateInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}
	p, err := h.service.UpdateInventory(r.Context(),
		auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "product_id"), req.Left)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, p)
}

func (h *Handler) removeProduct(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveProduct(r.Context(),
		auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "product_id"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
