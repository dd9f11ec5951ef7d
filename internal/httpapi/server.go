// Package httpapi exposes the trip planner over a JSON REST API.
package httpapi

import (
	"net/http"

	"ai-trip-planner/internal/auth"
	"ai-trip-planner/internal/itinerary"
	"ai-trip-planner/internal/journal"
	"ai-trip-planner/internal/photo"
	"ai-trip-planner/internal/session"
	"ai-trip-planner/internal/trip"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Services are the domain services served by the API.
type Services struct {
	Auth        *auth.Service
	Trips       *trip.Service
	Itineraries *itinerary.Service
	Journals    *journal.Service
	Photos      *photo.Service
}

// Server holds the HTTP handlers.
type Server struct {
	svc Services
	log zerolog.Logger
}

// NewServer creates a new Server.
func NewServer(svc Services, log zerolog.Logger) *Server {
	return &Server{svc: svc, log: log.With().Str("component", "http").Logger()}
}

// Routes builds the router. extra is mounted as-is, e.g. the Telegram webhook.
func (s *Server) Routes(extra map[string]http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(s.log))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	for pattern, h := range extra {
		r.Handle(pattern, h)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", s.signUp)
		r.Post("/auth/signin", s.signIn)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(s.svc.Auth))

			r.Route("/trips", func(r chi.Router) {
				r.Get("/", s.listTrips)
				r.Post("/", s.createTrip)
				r.Get("/{tripID}", s.getTrip)
				r.Put("/{tripID}", s.updateTrip)
				r.Delete("/{tripID}", s.deleteTrip)
			})

			r.Route("/itineraries", func(r chi.Router) {
				r.Post("/generate/{tripID}", s.generateItinerary)
				r.Put("/regenerate/{tripID}", s.regenerateItinerary)
				r.Post("/adapt/{tripID}", s.adaptItinerary)
				r.Get("/{tripID}", s.getItinerary)
			})

			r.Route("/journal/{tripID}", func(r chi.Router) {
				r.Get("/", s.getJournal)
				r.Post("/", s.saveJournal)
				r.Delete("/", s.deleteJournal)
				r.Post("/generate", s.generateJournal)
				r.Post("/publish", s.publishJournal)
			})

			r.Route("/photos", func(r chi.Router) {
				r.Get("/{tripID}", s.listPhotos)
				r.Post("/{tripID}", s.uploadPhotos)
				r.Get("/item/{photoID}", s.getPhoto)
				r.Delete("/item/{photoID}", s.deletePhoto)
			})
		})
	})

	return r
}

// fail writes the error response for err and logs unexpected failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).
			Str("path", r.URL.Path).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Msg("request failed")
	}
	writeError(w, status, msg)
}

func sessionOf(r *http.Request) session.Session {
	sess, _ := session.FromContext(r.Context())
	return sess
}
