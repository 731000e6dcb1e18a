package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aoperat/centumbob/internal/ingest"
)

type fetchImageRequest struct {
	URL            string `json:"url"`
	WebhookURL     string `json:"webhook_url"`
	RestaurantName string `json:"restaurant_name"`
}

// fetchStatus mirrors how a browser client should react: bad input 400, oversized 413,
// upstream slow 504, anything else from the remote side 502.
func fetchStatus(err error) int {
	switch {
	case errors.Is(err, ingest.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, ingest.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleFetchImage(w http.ResponseWriter, r *http.Request) {
	var req fetchImageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err, s.logger)
		return
	}
	target := strings.TrimSpace(req.URL)
	if target == "" {
		target = strings.TrimSpace(req.WebhookURL)
	}
	if target == "" {
		badRequest(w, "url is required", s.logger)
		return
	}

	img, err := s.deps.Fetcher.Fetch(r.Context(), target)
	if err != nil {
		writeStatusError(w, r, fetchStatus(err), err, s.logger)
		return
	}
	ok(w, img, s.logger)
}
