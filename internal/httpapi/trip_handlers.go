package httpapi

import (
	"net/http"

	"ai-trip-planner/internal/trip"
	"ai-trip-planner/internal/wizard"
)

func (s *Server) listTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.svc.Trips.List(r.Context(), sessionOf(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if trips == nil {
		trips = []trip.Trip{}
	}
	writeJSON(w, http.StatusOK, trips)
}

func (s *Server) createTrip(w http.ResponseWriter, r *http.Request) {
	var req wizard.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := s.svc.Trips.Create(r.Context(), sessionOf(r), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) getTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := s.svc.Trips.Get(r.Context(), sessionOf(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) updateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req wizard.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := s.svc.Trips.Update(r.Context(), sessionOf(r), id, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) deleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.svc.Trips.Delete(r.Context(), sessionOf(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
