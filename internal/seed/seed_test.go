package seed

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const benchLog = `
user_id: 1
notes: "Morning session"
exercises:
  - name: Bench Press
    sets:
      - {reps: 8, weight: 100}
      - {reps: 8, weight: 100}
`

// sessionServer fakes the session API, recording every call.
type sessionServer struct {
	started   int
	cancelled int
	finished  int
	exercises int
	sets      int
	completes int
	notes     string

	failFinishes int // respond 409 this many times before succeeding
}

func (f *sessionServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/users/{id}/session/", func(w http.ResponseWriter, r *http.Request) {
		f.started++
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("DELETE /api/v1/users/{id}/session/", func(w http.ResponseWriter, r *http.Request) {
		f.cancelled++
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("PUT /api/v1/users/{id}/session/notes", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Notes string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("notes decode: %v", err)
		}
		f.notes = body.Notes
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/v1/users/{id}/session/exercises", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-Key"); got != "seed-key" {
			t.Errorf("api key = %q, want seed-key", got)
		}
		idx := f.exercises
		f.exercises++
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]int{"exerciseIndex": idx})
	})
	mux.HandleFunc("POST /api/v1/users/{id}/session/exercises/{ex}/sets", func(w http.ResponseWriter, r *http.Request) {
		idx := f.sets
		f.sets++
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]int{"setIndex": idx})
	})
	mux.HandleFunc("PUT /api/v1/users/{id}/session/exercises/{ex}/sets/{set}", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var set map[string]any
		if err := json.Unmarshal(body, &set); err != nil {
			t.Errorf("set decode: %v", err)
		}
		if completed, _ := set["completed"].(bool); !completed {
			t.Error("replayed set should be completed")
		}
		f.completes++
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/v1/users/{id}/session/finish", func(w http.ResponseWriter, r *http.Request) {
		if f.failFinishes > 0 {
			f.failFinishes--
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"error": "stats changed concurrently", "retryable": "true"})
			return
		}
		f.finished++
		json.NewEncoder(w).Encode(map[string]any{
			"workoutId": "b9b53365-9a23-4898-a5a9-77b85e95e057",
			"rewards":   map[string]int{"totalXP": 20, "totalGold": 4},
		})
	})
	return mux
}

func newRunner(t *testing.T, serverURL string, logs map[string]string, withState bool) *Runner {
	t.Helper()
	logDir := t.TempDir()
	for name, content := range logs {
		if err := os.WriteFile(filepath.Join(logDir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var state *StateDB
	if withState {
		var err error
		state, err = OpenStateDB(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { state.Close() })
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(NewClient(serverURL, "seed-key"), state, logDir, false, log)
}

// TestRunReplaysLog verifies a log file drives the complete session flow and
// the reward totals are collected.
func TestRunReplaysLog(t *testing.T) {
	fake := &sessionServer{}
	ts := httptest.NewServer(fake.handler(t))
	defer ts.Close()

	runner := newRunner(t, ts.URL, map[string]string{"2026-01-05.yaml": benchLog}, true)
	stats, err := runner.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.FilesApplied != 1 || stats.FilesErrored != 0 {
		t.Errorf("stats = %+v, want 1 applied", stats)
	}
	if fake.started != 1 || fake.finished != 1 {
		t.Errorf("sessions started=%d finished=%d, want 1 and 1", fake.started, fake.finished)
	}
	if fake.exercises != 1 || fake.completes != 2 {
		t.Errorf("exercises=%d completes=%d, want 1 and 2", fake.exercises, fake.completes)
	}
	if fake.notes != "Morning session" {
		t.Errorf("notes = %q, want Morning session", fake.notes)
	}
	if stats.XPEarned != 20 || stats.GoldEarned != 4 {
		t.Errorf("earned %d xp, %d gold, want 20 and 4", stats.XPEarned, stats.GoldEarned)
	}
}

// TestRunSkipsApplied verifies a second run over the same file is a no-op.
func TestRunSkipsApplied(t *testing.T) {
	fake := &sessionServer{}
	ts := httptest.NewServer(fake.handler(t))
	defer ts.Close()

	runner := newRunner(t, ts.URL, map[string]string{"2026-01-05.yaml": benchLog}, true)
	if _, err := runner.Run(); err != nil {
		t.Fatal(err)
	}
	stats, err := runner.Run()
	if err != nil {
		t.Fatal(err)
	}

	if stats.FilesSkipped != 1 {
		t.Errorf("skipped = %d, want 1", stats.FilesSkipped)
	}
	if fake.started != 1 {
		t.Errorf("sessions started = %d, want 1 (second run must not replay)", fake.started)
	}
}

// TestRunRetriesConflict verifies a retryable 409 on finish is retried and
// eventually succeeds.
func TestRunRetriesConflict(t *testing.T) {
	fake := &sessionServer{failFinishes: 1}
	ts := httptest.NewServer(fake.handler(t))
	defer ts.Close()

	runner := newRunner(t, ts.URL, map[string]string{"2026-01-05.yaml": benchLog}, false)
	stats, err := runner.Run()
	if err != nil {
		t.Fatal(err)
	}

	if stats.FilesApplied != 1 || stats.FilesErrored != 0 {
		t.Errorf("stats = %+v, want 1 applied after retry", stats)
	}
	if fake.finished != 1 {
		t.Errorf("finished = %d, want 1", fake.finished)
	}
}

// TestRunCancelsOnFailure verifies a mid-session error cancels the session
// and counts the file as errored.
func TestRunCancelsOnFailure(t *testing.T) {
	fake := &sessionServer{}
	mux := fake.handler(t).(*http.ServeMux)
	broken := http.NewServeMux()
	broken.HandleFunc("POST /api/v1/users/{id}/session/exercises", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	broken.Handle("/", mux)
	ts := httptest.NewServer(broken)
	defer ts.Close()

	runner := newRunner(t, ts.URL, map[string]string{"2026-01-05.yaml": benchLog}, true)
	stats, err := runner.Run()
	if err != nil {
		t.Fatal(err)
	}

	if stats.FilesErrored != 1 || stats.FilesApplied != 0 {
		t.Errorf("stats = %+v, want 1 errored", stats)
	}
	if fake.cancelled != 1 {
		t.Errorf("cancelled = %d, want 1", fake.cancelled)
	}
}

// TestRunDryRun verifies dry-run parses files without any HTTP traffic.
func TestRunDryRun(t *testing.T) {
	logDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(logDir, "a.yaml"), []byte(benchLog), 0o644); err != nil {
		t.Fatal(err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := New(nil, nil, logDir, true, log)
	stats, err := runner.Run()
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesApplied != 1 {
		t.Errorf("applied = %d, want 1", stats.FilesApplied)
	}
}
