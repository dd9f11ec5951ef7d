package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ai-trip-planner/internal/app"
	"ai-trip-planner/internal/config"
	"ai-trip-planner/internal/itinerary"
	"ai-trip-planner/internal/journal"
	"ai-trip-planner/internal/logger"
	"ai-trip-planner/internal/metrics"
	"ai-trip-planner/internal/photo"
	"ai-trip-planner/internal/session"
	"ai-trip-planner/internal/view"

	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Fill in the trip form and generate an itinerary",
	Args:  cobra.NoArgs,
	RunE:  withApp(runPlan),
}

var tripsCmd = &cobra.Command{
	Use:   "trips",
	Short: "List your trips",
	Args:  cobra.NoArgs,
	RunE:  withApp(runTrips),
}

var showCmd = &cobra.Command{
	Use:   "show <tripID>",
	Short: "Show a trip and its itinerary",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runShow),
}

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render an itinerary payload file without contacting any service",
	Long: `Render reads a model response, a stored itinerary or any JSON document
and prints it the way the planner would. Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var adaptCmd = &cobra.Command{
	Use:   "adapt <tripID> <context...>",
	Short: "Revise an itinerary, e.g. \"it is raining on day 2\"",
	Args:  cobra.MinimumNArgs(2),
	RunE:  withApp(runAdapt),
}

var photosCmd = &cobra.Command{
	Use:   "photos <tripID> [files...]",
	Short: "Upload photos to a trip, or list them when no files are given",
	Args:  cobra.MinimumNArgs(1),
	RunE:  withApp(runPhotos),
}

var journalCmd = &cobra.Command{
	Use:   "journal <tripID>",
	Short: "Write a travel journal from the trip photos",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runJournal),
}

var metricsCleanupCmd = &cobra.Command{
	Use:   "metrics-cleanup",
	Short: "Delete old model usage metrics",
	Args:  cobra.NoArgs,
	RunE:  withApp(runMetricsCleanup),
}

var sessionsCleanupCmd = &cobra.Command{
	Use:   "sessions-cleanup",
	Short: "Delete expired chat sessions",
	Args:  cobra.NoArgs,
	RunE:  withApp(runSessionsCleanup),
}

// env is what a command needs once the application is running.
type env struct {
	app      *app.App
	sess     session.Session
	renderer *view.Renderer
}

type runFunc func(cmd *cobra.Command, args []string, e *env) error

func withApp(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		renderer, err := newRenderer(cmd)
		if err != nil {
			return err
		}

		config.LoadDotEnv()
		cfg, err := config.NewFromEnv()
		if err != nil {
			return err
		}
		log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		return fn(cmd, args, &env{
			app:      a,
			sess:     session.Session{UserID: cfg.CLIUserID, Username: cfg.CLIUserID},
			renderer: renderer,
		})
	}
}

func newRenderer(cmd *cobra.Command) (*view.Renderer, error) {
	theme, err := view.ThemeByName(themeName, cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}
	return view.NewRenderer(theme), nil
}

func parseTripID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid trip id %q", s)
	}
	return id, nil
}

func runPlan(cmd *cobra.Command, _ []string, e *env) error {
	out := cmd.OutOrStdout()
	req, err := promptWizard(cmd.InOrStdin(), out, e.renderer)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	t, err := e.app.Trips.Create(ctx, e.sess, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, e.renderer.Trip(*t))
	fmt.Fprintln(out, "\nGenerating itinerary...")

	v, err := e.app.Itineraries.Generate(ctx, e.sess, t.ID)
	if err != nil {
		return fmt.Errorf("trip %d saved but the itinerary failed: %w", t.ID, err)
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, e.renderer.Itinerary(v.Result))
	return nil
}

func runTrips(cmd *cobra.Command, _ []string, e *env) error {
	trips, err := e.app.Trips.List(cmd.Context(), e.sess)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(trips) == 0 {
		fmt.Fprintln(out, "No trips yet. Run `ai-trip-planner plan` to create one.")
		return nil
	}
	for _, t := range trips {
		fmt.Fprint(out, e.renderer.Trip(t))
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string, e *env) error {
	id, err := parseTripID(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	t, err := e.app.Trips.Get(ctx, e.sess, id)
	if err != nil {
		return err
	}
	fmt.Fprint(out, e.renderer.Trip(*t))
	fmt.Fprintln(out)

	v, err := e.app.Itineraries.Get(ctx, e.sess, id)
	if errors.Is(err, itinerary.ErrNotGenerated) {
		fmt.Fprintln(out, "No itinerary yet.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprint(out, e.renderer.Itinerary(v.Result))
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	renderer, err := newRenderer(cmd)
	if err != nil {
		return err
	}

	var data []byte
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	res := itinerary.Normalize(itinerary.ParseContent(string(data)))
	fmt.Fprint(cmd.OutOrStdout(), renderer.Itinerary(res))
	return nil
}

func runAdapt(cmd *cobra.Command, args []string, e *env) error {
	id, err := parseTripID(args[0])
	if err != nil {
		return err
	}
	v, err := e.app.Itineraries.Adapt(cmd.Context(), e.sess, id, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), e.renderer.Itinerary(v.Result))
	return nil
}

func runPhotos(cmd *cobra.Command, args []string, e *env) error {
	id, err := parseTripID(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) > 1 {
		uploads := make([]photo.Upload, 0, len(args)-1)
		for _, path := range args[1:] {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			uploads = append(uploads, photo.Upload{
				Filename:    filepath.Base(path),
				ContentType: http.DetectContentType(data),
				Data:        data,
			})
		}
		saved, err := e.app.Photos.Upload(ctx, e.sess, id, uploads)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Uploaded %d photo(s).\n", len(saved))
	}

	photos, err := e.app.Photos.List(ctx, e.sess, id)
	if err != nil {
		return err
	}
	for _, p := range photos {
		fmt.Fprintf(out, "%s  %-30s %s\n", p.ID, p.OriginalName, metrics.HumanSize(p.Size))
	}
	return nil
}

func runJournal(cmd *cobra.Command, args []string, e *env) error {
	id, err := parseTripID(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	j, err := e.app.Journals.Get(ctx, e.sess, id)
	if refresh || errors.Is(err, journal.ErrNotFound) {
		fmt.Fprintln(out, "Reading photos and writing the journal...")
		j, err = e.app.Journals.Generate(ctx, e.sess, id)
	}
	if err != nil {
		return err
	}
	fmt.Fprint(out, e.renderer.Journal(*j))

	if publish {
		post, err := e.app.Journals.Publish(ctx, e.sess, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nPublished: %s\n", post.URL)
	}
	return nil
}

func runMetricsCleanup(cmd *cobra.Command, _ []string, e *env) error {
	n, err := e.app.Metrics.Cleanup(cmd.Context(), days)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d metric record(s) older than %d days.\n", n, days)
	return nil
}

func runSessionsCleanup(cmd *cobra.Command, _ []string, e *env) error {
	n, err := e.app.Sessions.CleanupExpired(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d expired session(s).\n", n)
	return nil
}
