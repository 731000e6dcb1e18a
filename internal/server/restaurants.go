package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aoperat/centumbob/internal/common"
	"github.com/aoperat/centumbob/internal/entity"
)

const maxJSONBody = 1 << 20

type reorderRequest struct {
	Orders []entity.SortOrder `json:"orders"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("malformed JSON body: %w", common.ErrInvalidInput)
	}
	return nil
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id must be a positive integer: %w", common.ErrInvalidInput)
	}
	return id, nil
}

func (s *Server) handleListRestaurants(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Restaurants.List(r.Context(), r.URL.Query().Get("active_only") == "true")
	if err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	ok(w, list, s.logger)
}

func (s *Server) handleCreateRestaurant(w http.ResponseWriter, r *http.Request) {
	var in entity.RestaurantInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	rest, err := s.deps.Restaurants.Create(r.Context(), in)
	if err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	created(w, rest, s.logger)
}

func (s *Server) handleUpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	var patch entity.RestaurantPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	rest, err := s.deps.Restaurants.Update(r.Context(), id, patch)
	if err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	ok(w, rest, s.logger)
}

func (s *Server) handleDeleteRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	if err := s.deps.Restaurants.Delete(r.Context(), id); err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	ok(w, map[string]bool{"deleted": true}, s.logger)
}

func (s *Server) handleReorderRestaurants(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	if req.Orders == nil {
		badRequest(w, "orders must be an array", s.logger)
		return
	}
	if err := s.deps.Restaurants.Reorder(r.Context(), req.Orders); err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	ok(w, map[string]int{"updated": len(req.Orders)}, s.logger)
}
