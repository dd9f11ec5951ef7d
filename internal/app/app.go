// Package app wires configuration, storage, models and domain services into
// one container shared by the CLI and the server.
package app

import (
	"context"
	"errors"
	"fmt"

	"ai-trip-planner/internal/auth"
	"ai-trip-planner/internal/clipper"
	"ai-trip-planner/internal/config"
	"ai-trip-planner/internal/database"
	"ai-trip-planner/internal/ghost"
	"ai-trip-planner/internal/httpapi"
	"ai-trip-planner/internal/itinerary"
	"ai-trip-planner/internal/journal"
	"ai-trip-planner/internal/llm"
	"ai-trip-planner/internal/metrics"
	"ai-trip-planner/internal/photo"
	"ai-trip-planner/internal/storage"
	"ai-trip-planner/internal/telegram"
	"ai-trip-planner/internal/trip"

	"github.com/rs/zerolog"
)

// Models are the language models used by the services.
type Models struct {
	Planner llm.TextGenerator
	Journal llm.VisionGenerator
}

// App holds the application's dependencies.
type App struct {
	Config *config.Config
	Log    zerolog.Logger
	DB     *database.DB

	Trips       *trip.Service
	Itineraries *itinerary.Service
	Photos      *photo.Service
	Journals    *journal.Service
	Auth        *auth.Service
	Sessions    *telegram.SessionRepository
	Metrics     *metrics.Store

	closers []llm.Closer
}

// New connects to Gemini (and Groq when a key is configured) and builds the App.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	gemini, err := llm.NewGeminiClient(ctx, cfg, llm.ModelPlanner, 0.4)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	models := Models{Planner: gemini, Journal: gemini}
	if cfg.GroqAPIKey != "" {
		models.Planner = &llm.FallbackGenerator{
			Primary:   gemini,
			Secondary: llm.NewGroqClient(cfg, llm.ModelGroqPlanner, 0.4),
		}
		log.Info().Str("model", llm.ModelGroqPlanner).Msg("groq fallback enabled")
	}

	a, err := Build(ctx, cfg, models, log)
	if err != nil {
		gemini.Close()
		return nil, err
	}
	a.closers = append(a.closers, gemini)
	return a, nil
}

// Build opens the database and blob store and assembles the services around
// the given models.
func Build(ctx context.Context, cfg *config.Config, models Models, log zerolog.Logger) (*App, error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	var blog ghost.Client
	if cfg.GhostEnabled() {
		blog = ghost.NewClient(cfg)
	}

	metricsStore := metrics.NewStore(db.SQL)

	trips := trip.NewService(trip.NewRepository(db.SQL), log)
	itineraryRepo := itinerary.NewRepository(db.SQL)
	itineraries := itinerary.NewService(trips, itineraryRepo, itinerary.NewGenerator(models.Planner), clipper.NewClipper(), metricsStore, log)
	photos := photo.NewService(trips, photo.NewRepository(db.SQL), blobs, log)
	journals := journal.NewService(trips, photos, journal.NewRepository(db.SQL), journal.NewGenerator(models.Journal), blog, metricsStore, log)

	trips.OnDelete(itineraryRepo)
	trips.OnDelete(photos)
	trips.OnDelete(journals)

	return &App{
		Config:      cfg,
		Log:         log,
		DB:          db,
		Trips:       trips,
		Itineraries: itineraries,
		Photos:      photos,
		Journals:    journals,
		Auth:        auth.NewService(auth.NewRepository(db.SQL), cfg.JWTSecret, log),
		Sessions:    telegram.NewSessionRepository(db.SQL),
		Metrics:     metricsStore,
	}, nil
}

func newBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, error) {
	if cfg.PhotoStorage == config.PhotoStorageMinio {
		s, err := storage.NewMinioStore(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize photo storage: %w", err)
		}
		return s, nil
	}
	s, err := storage.NewFileStore(cfg.PhotoDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize photo storage: %w", err)
	}
	return s, nil
}

// APIServices returns the services exposed by the HTTP API.
func (a *App) APIServices() httpapi.Services {
	return httpapi.Services{
		Auth:        a.Auth,
		Trips:       a.Trips,
		Itineraries: a.Itineraries,
		Journals:    a.Journals,
		Photos:      a.Photos,
	}
}

// BotServices returns the services used by the Telegram bot.
func (a *App) BotServices() telegram.Services {
	return telegram.Services{
		Trips:       a.Trips,
		Itineraries: a.Itineraries,
		Sessions:    a.Sessions,
		Metrics:     a.Metrics,
	}
}

// Close releases the models and the database.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	errs = append(errs, a.DB.Close())
	return errors.Join(errs...)
}
