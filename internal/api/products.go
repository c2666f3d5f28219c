package api

import (
	"net/http"

	"praktyka/internal/middleware"
	"praktyka/internal/models"
)

type productRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListProducts(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	product := &models.Product{
		Name:   req.Name,
		UserID: middleware.GetUserID(r.Context()),
	}
	if err := product.Validate(); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.store.CreateProduct(r.Context(), product); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteProduct(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
