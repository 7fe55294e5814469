package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/ironquest/internal/models"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestGetUserStats verifies the client hits the per-user stats path and
// parses the stats document.
func TestGetUserStats(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/users/7/stats": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, models.UserStatsRow{
				UserID: 7,
				Level:  3,
				XP:     950,
				GroupXP: map[string]int{
					"chest": 500,
				},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, 1)
	stats, err := client.GetUserStats(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Level != 3 || stats.XP != 950 {
		t.Errorf("stats = level %d, %d xp, want level 3, 950 xp", stats.Level, stats.XP)
	}
	if stats.GroupXP["chest"] != 500 {
		t.Errorf("chest xp = %d, want 500", stats.GroupXP["chest"])
	}
}

// TestGetUserStatsDefaultUser verifies a non-positive user ID falls back to
// the client's configured default.
func TestGetUserStatsDefaultUser(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/users/4/stats": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, models.UserStatsRow{UserID: 4, Level: 1})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, 4)
	if _, err := client.GetUserStats(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
}

// TestQueryWorkouts verifies the time range is sent as RFC3339 query params
// and the workout array parses.
func TestQueryWorkouts(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)

	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/users/1/workouts": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("start"); got != start.Format(time.RFC3339) {
				t.Errorf("start=%q, want %q", got, start.Format(time.RFC3339))
			}
			writeTestJSON(t, w, []models.WorkoutRow{
				{ID: uuid.New(), UserID: 1, TotalSets: 12, XPGained: 120},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, 1)
	workouts, err := client.QueryWorkouts(context.Background(), 1, start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(workouts) != 1 {
		t.Fatalf("got %d workouts, want 1", len(workouts))
	}
	if workouts[0].XPGained != 120 {
		t.Errorf("xp gained = %d, want 120", workouts[0].XPGained)
	}
}

// TestQueryWorkoutSets verifies the nested sets field of the workout detail
// response is extracted.
func TestQueryWorkoutSets(t *testing.T) {
	workoutID := uuid.New()
	reps := 8

	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/users/1/workouts/" + workoutID.String(): func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, map[string]any{
				"workoutId": workoutID,
				"sets": []models.WorkoutSetRow{
					{ID: uuid.New(), WorkoutID: workoutID, ExerciseName: "Bench Press", Reps: &reps},
				},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, 1)
	sets, err := client.QueryWorkoutSets(context.Background(), workoutID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(sets) != 1 {
		t.Fatalf("got %d sets, want 1", len(sets))
	}
	if sets[0].ExerciseName != "Bench Press" {
		t.Errorf("exercise = %q, want Bench Press", sets[0].ExerciseName)
	}
}

// TestErrorStatus verifies a non-200 response surfaces as an error with the
// status code.
func TestErrorStatus(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/users/1/stats": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, 1)
	if _, err := client.GetUserStats(context.Background(), 1); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
