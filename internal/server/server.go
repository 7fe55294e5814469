package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/ironquest/internal/models"
	"github.com/meltforce/ironquest/internal/progress"
	"github.com/meltforce/ironquest/internal/storage"
)

// HistoryStore is the persisted progression data the handlers use directly,
// without going through the service.
type HistoryStore interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
	QueryWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutRow, error)
	QueryWorkoutSets(ctx context.Context, workoutID uuid.UUID, userID int) ([]models.WorkoutSetRow, error)
	EquippedItems(ctx context.Context, userID int) ([]models.EquippedItemRow, error)
	Inventory(ctx context.Context, userID int) ([]models.InventoryRow, error)
	Unlocks(ctx context.Context, userID int) ([]models.UnlockRow, error)
}

// Compile-time check: *storage.DB satisfies HistoryStore.
var _ HistoryStore = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc     *progress.Service
	history HistoryStore
	log     *slog.Logger
	apiKey  string
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(svc *progress.Service, history HistoryStore, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		svc:     svc,
		history: history,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Static game content, no auth.
	s.router.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/exercises", s.handleCatalogExercises)
		r.Get("/items", s.handleCatalogItems)
		r.Get("/achievements", s.handleCatalogAchievements)
		r.Get("/ranks", s.handleCatalogRanks)
	})

	// Registration needs the API key; user IDs come from here.
	s.router.With(APIKeyAuth(s.apiKey)).Post("/api/v1/users", s.handleRegisterUser)

	s.router.Route("/api/v1/users/{userID}", func(r chi.Router) {
		// Progress views.
		r.Get("/stats", s.handleStats)
		r.Get("/power", s.handlePower)
		r.Get("/achievements", s.handleAchievements)
		r.Get("/unlocks", s.handleUnlocks)
		r.Get("/workouts", s.handleWorkouts)
		r.Get("/workouts/{workoutID}", s.handleWorkoutDetail)
		r.Get("/inventory", s.handleInventory)
		r.Get("/equipment", s.handleEquipment)

		// Mutations require the API key.
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))

			r.Post("/equipment", s.handleEquip)
			r.Delete("/equipment/{itemID}", s.handleUnequip)

			r.Route("/session", func(r chi.Router) {
				r.Post("/", s.handleStartSession)
				r.Get("/", s.handleActiveSession)
				r.Delete("/", s.handleCancelSession)
				r.Put("/notes", s.handleSessionNotes)
				r.Post("/exercises", s.handleAddExercise)
				r.Post("/exercises/{exerciseIndex}/sets", s.handleAddSet)
				r.Put("/exercises/{exerciseIndex}/sets/{setIndex}", s.handleUpdateSet)
				r.Post("/finish", s.handleFinish)
			})
		})
	})
}
