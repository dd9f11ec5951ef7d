package httpapi

import (
	"context"
	"net/http"

	"ai-trip-planner/internal/itinerary"
	"ai-trip-planner/internal/session"
)

type adaptRequest struct {
	Context string `json:"context"`
}

func (s *Server) generateItinerary(w http.ResponseWriter, r *http.Request) {
	s.runItinerary(w, r, http.StatusCreated, s.svc.Itineraries.Generate)
}

func (s *Server) regenerateItinerary(w http.ResponseWriter, r *http.Request) {
	s.runItinerary(w, r, http.StatusOK, s.svc.Itineraries.Regenerate)
}

func (s *Server) getItinerary(w http.ResponseWriter, r *http.Request) {
	s.runItinerary(w, r, http.StatusOK, s.svc.Itineraries.Get)
}

func (s *Server) adaptItinerary(w http.ResponseWriter, r *http.Request) {
	var req adaptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.runItinerary(w, r, http.StatusOK, func(ctx context.Context, sess session.Session, tripID int64) (*itinerary.View, error) {
		return s.svc.Itineraries.Adapt(ctx, sess, tripID, req.Context)
	})
}

func (s *Server) runItinerary(w http.ResponseWriter, r *http.Request, status int, op func(context.Context, session.Session, int64) (*itinerary.View, error)) {
	id, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := op(r.Context(), sessionOf(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, status, view)
}
