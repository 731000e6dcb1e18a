package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aoperat/centumbob/internal/common"
	"github.com/aoperat/centumbob/internal/entity"
)

type complaintList struct {
	Items []entity.Complaint `json:"items"`
	Count int                `json:"count"`
}

func (s *Server) handleCreateComplaint(w http.ResponseWriter, r *http.Request) {
	var in entity.ComplaintInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	c, err := s.deps.Complaints.Create(r.Context(), in)
	if err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	created(w, c, s.logger)
}

func (s *Server) handleListComplaints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := entity.ComplaintFilter{
		Status:         q.Get("status"),
		RestaurantName: q.Get("restaurant_name"),
		UserEmail:      q.Get("user_email"),
	}
	var err error
	if filter.Limit, err = intQuery(q.Get("limit")); err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	if filter.Offset, err = intQuery(q.Get("offset")); err != nil {
		handleError(w, r, err, s.logger)
		return
	}

	items, err := s.deps.Complaints.List(r.Context(), filter)
	if err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	ok(w, complaintList{Items: items, Count: len(items)}, s.logger)
}

func (s *Server) handleGetComplaint(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Complaints.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	ok(w, c, s.logger)
}

func (s *Server) handleUpdateComplaint(w http.ResponseWriter, r *http.Request) {
	var upd entity.ComplaintUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	c, err := s.deps.Complaints.Update(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	ok(w, c, s.logger)
}

func intQuery(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer: %w", v, common.ErrInvalidInput)
	}
	return n, nil
}
