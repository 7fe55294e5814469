package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/ironquest/internal/game"
	"github.com/meltforce/ironquest/internal/models"
	"github.com/meltforce/ironquest/internal/progress"
)

const testAPIKey = "test-key"

// memStore is an in-memory progress.Store and HistoryStore for handler
// tests. It applies stat deltas the way the real storage layer does, so
// finish results can be checked end to end through the router.
type memStore struct {
	stats    map[int]*models.UserStatsRow
	workouts []models.WorkoutRow
	sets     []models.WorkoutSetRow
	equipped map[int][]models.EquippedItemRow
	unlocked map[int]map[string]bool
	granted  map[int]map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		stats:    make(map[int]*models.UserStatsRow),
		equipped: make(map[int][]models.EquippedItemRow),
		unlocked: make(map[int]map[string]bool),
		granted:  make(map[int]map[string]int),
	}
}

func (m *memStore) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	return len(m.stats) + 1, nil
}

func (m *memStore) GetUserStats(ctx context.Context, userID int) (*models.UserStatsRow, error) {
	row, ok := m.stats[userID]
	if !ok {
		row = &models.UserStatsRow{UserID: userID, Level: 1, GroupXP: make(map[string]int), Version: 1}
		m.stats[userID] = row
	}
	copied := *row
	copied.GroupXP = make(map[string]int, len(row.GroupXP))
	for k, v := range row.GroupXP {
		copied.GroupXP[k] = v
	}
	return &copied, nil
}

func (m *memStore) EquippedItems(ctx context.Context, userID int) ([]models.EquippedItemRow, error) {
	return m.equipped[userID], nil
}

func (m *memStore) EquipItem(ctx context.Context, userID int, itemID, slotType string) error {
	rows := m.equipped[userID][:0]
	for _, row := range m.equipped[userID] {
		if row.SlotType != slotType {
			rows = append(rows, row)
		}
	}
	m.equipped[userID] = append(rows, models.EquippedItemRow{UserID: userID, ItemID: itemID, SlotType: slotType, EquippedAt: time.Now()})
	return nil
}

func (m *memStore) UnequipItem(ctx context.Context, userID int, itemID string) error {
	rows := m.equipped[userID][:0]
	for _, row := range m.equipped[userID] {
		if row.ItemID != itemID {
			rows = append(rows, row)
		}
	}
	m.equipped[userID] = rows
	return nil
}

func (m *memStore) PersistFinishedWorkout(ctx context.Context, workout models.WorkoutRow, sets []models.WorkoutSetRow, version int, delta models.StatsDelta) (bool, error) {
	for _, w := range m.workouts {
		if w.ID == workout.ID {
			return false, nil
		}
	}
	row := m.stats[workout.UserID]
	m.workouts = append(m.workouts, workout)
	m.sets = append(m.sets, sets...)
	row.XP += delta.XP
	row.Gold += delta.Gold
	row.Level = delta.NewLevel
	for g, xp := range delta.GroupXP {
		row.GroupXP[g] += xp
	}
	row.TotalWorkouts++
	row.TotalSets += delta.TotalSets
	row.TotalReps += delta.TotalReps
	row.TotalVolume += delta.TotalVolume
	row.TotalDuration += delta.TotalDuration
	row.Version++
	return true, nil
}

func (m *memStore) InsertUnlock(ctx context.Context, userID int, achievementID string) (bool, error) {
	if m.unlocked[userID] == nil {
		m.unlocked[userID] = make(map[string]bool)
	}
	if m.unlocked[userID][achievementID] {
		return false, nil
	}
	m.unlocked[userID][achievementID] = true
	return true, nil
}

func (m *memStore) UnlockedAchievementIDs(ctx context.Context, userID int) (map[string]bool, error) {
	out := make(map[string]bool, len(m.unlocked[userID]))
	for id := range m.unlocked[userID] {
		out[id] = true
	}
	return out, nil
}

func (m *memStore) GrantItem(ctx context.Context, userID int, itemID string) error {
	if m.granted[userID] == nil {
		m.granted[userID] = make(map[string]int)
	}
	m.granted[userID][itemID]++
	return nil
}

func (m *memStore) QueryWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutRow, error) {
	var out []models.WorkoutRow
	for _, w := range m.workouts {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *memStore) QueryWorkoutSets(ctx context.Context, workoutID uuid.UUID, userID int) ([]models.WorkoutSetRow, error) {
	var out []models.WorkoutSetRow
	for _, s := range m.sets {
		if s.WorkoutID == workoutID && s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) Inventory(ctx context.Context, userID int) ([]models.InventoryRow, error) {
	var out []models.InventoryRow
	for id, qty := range m.granted[userID] {
		out = append(out, models.InventoryRow{UserID: userID, ItemID: id, Quantity: qty})
	}
	return out, nil
}

func (m *memStore) Unlocks(ctx context.Context, userID int) ([]models.UnlockRow, error) {
	var out []models.UnlockRow
	for id := range m.unlocked[userID] {
		out = append(out, models.UnlockRow{UserID: userID, AchievementID: id, UnlockedAt: time.Now()})
	}
	return out, nil
}

func newTestServer(t *testing.T) (*Server, *memStore) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"exercises.yaml": `exercises:
  - {name: Bench Press, muscle_group: chest, kind: standard}
  - {name: Push Up, muscle_group: chest, kind: bodyweight}
  - {name: Plank, muscle_group: core, kind: timed}
`,
		"items.yaml": `items:
  - id: iron-wristband
    name: Iron Wristband
    slot_type: wrist
    rarity: common
    xp_bonus: {muscle_group: all, bonus_percent: 5}
`,
		"ranks.yaml": `ranks:
  - {name: Bronze, min_xp: 0, power_value: 10}
  - {name: Silver, min_xp: 500, power_value: 20}
`,
		"achievements.yaml": `achievements:
  - id: first-workout
    name: First Steps
    requirement: "total_workouts >= 1"
    item_id: iron-wristband
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	data, err := game.Load(dir)
	if err != nil {
		t.Fatalf("load game data: %v", err)
	}

	store := newMemStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := progress.NewService(store, data, nil, log)
	return New(svc, store, testAPIKey, log), store
}

// do runs one request through the router and returns the recorder.
func do(t *testing.T, s *Server, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	if authed {
		req.Header.Set("X-API-Key", testAPIKey)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

// TestCatalogEndpoints verifies the static content routes serve the loaded
// game data without authentication.
func TestCatalogEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/catalog/exercises", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var exercises []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&exercises); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(exercises) != 3 {
		t.Errorf("exercises = %d, want 3", len(exercises))
	}

	rec = do(t, s, http.MethodGet, "/api/v1/catalog/ranks", nil, false)
	if rec.Code != http.StatusOK {
		t.Errorf("ranks status = %d, want 200", rec.Code)
	}
}

// TestSessionRequiresAPIKey verifies mutation routes reject unauthenticated
// requests while read routes stay open.
func TestSessionRequiresAPIKey(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/users/1/session/", nil, false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated start status = %d, want 401", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/users/1/stats", nil, false)
	if rec.Code != http.StatusOK {
		t.Errorf("stats status = %d, want 200", rec.Code)
	}
}

// TestRegisterUser verifies registration needs the API key and returns an id.
func TestRegisterUser(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/users", map[string]string{"login": "alice"}, false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated register status = %d, want 401", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/users", map[string]string{"login": "alice", "displayName": "Alice"}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d, want 200", rec.Code)
	}
	var resp map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp["userId"] <= 0 {
		t.Errorf("userId = %d, want positive", resp["userId"])
	}

	rec = do(t, s, http.MethodPost, "/api/v1/users", map[string]string{}, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty login status = %d, want 400", rec.Code)
	}
}

// TestInvalidUserID verifies a non-numeric user id is rejected 400.
func TestInvalidUserID(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/users/abc/stats", nil, false)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestWorkoutFlow drives a full workout over HTTP: start a session, add an
// exercise and a completed set, finish, then check the recorded stats and
// history.
func TestWorkoutFlow(t *testing.T) {
	s, store := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/users/1/session/", nil, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d, want 201", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/users/1/session/exercises", map[string]string{"name": "Bench Press"}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add exercise status = %d, want 201", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/users/1/session/exercises/0/sets", nil, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add set status = %d, want 201", rec.Code)
	}

	reps, weight := 8, 100.0
	rec = do(t, s, http.MethodPut, "/api/v1/users/1/session/exercises/0/sets/0", map[string]any{
		"completed": true, "reps": reps, "weight": weight,
	}, true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("update set status = %d, want 204", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/users/1/session/finish", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("finish status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var result progress.FinishResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result.Totals.TotalSets != 1 || result.Totals.TotalReps != 8 {
		t.Errorf("totals = %+v, want 1 set, 8 reps", result.Totals)
	}
	if result.Rewards.TotalXP != 10 || result.Rewards.TotalGold != 2 {
		t.Errorf("rewards = %d xp, %d gold, want 10 and 2", result.Rewards.TotalXP, result.Rewards.TotalGold)
	}
	if len(result.Unlocks) != 1 || result.Unlocks[0].AchievementID != "first-workout" {
		t.Errorf("unlocks = %+v, want first-workout", result.Unlocks)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/users/1/stats", nil, false)
	var stats models.UserStatsRow
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.XP != 10 || stats.TotalWorkouts != 1 {
		t.Errorf("stats = %+v, want 10 xp and 1 workout", stats)
	}
	if stats.GroupXP["chest"] != 10 {
		t.Errorf("chest xp = %d, want 10", stats.GroupXP["chest"])
	}

	rec = do(t, s, http.MethodGet, "/api/v1/users/1/workouts", nil, false)
	var workouts []models.WorkoutRow
	if err := json.NewDecoder(rec.Body).Decode(&workouts); err != nil {
		t.Fatalf("decode workouts: %v", err)
	}
	if len(workouts) != 1 {
		t.Fatalf("workouts = %d, want 1", len(workouts))
	}

	rec = do(t, s, http.MethodGet, fmt.Sprintf("/api/v1/users/1/workouts/%s", workouts[0].ID), nil, false)
	if rec.Code != http.StatusOK {
		t.Errorf("workout detail status = %d, want 200", rec.Code)
	}

	if len(store.sets) != 1 {
		t.Errorf("persisted sets = %d, want 1", len(store.sets))
	}
}

// TestFinishValidationErrors verifies an invalid set blocks the finish with
// 422 and the violation list, leaving the session intact.
func TestFinishValidationErrors(t *testing.T) {
	s, _ := newTestServer(t)

	do(t, s, http.MethodPost, "/api/v1/users/2/session/", nil, true)
	do(t, s, http.MethodPost, "/api/v1/users/2/session/exercises", map[string]string{"name": "Bench Press"}, true)
	do(t, s, http.MethodPost, "/api/v1/users/2/session/exercises/0/sets", nil, true)
	do(t, s, http.MethodPut, "/api/v1/users/2/session/exercises/0/sets/0", map[string]any{"completed": true}, true)

	rec := do(t, s, http.MethodPost, "/api/v1/users/2/session/finish", nil, true)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("finish status = %d, want 422", rec.Code)
	}
	var body struct {
		Violations []map[string]any `json:"violations"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(body.Violations) != 2 {
		t.Errorf("violations = %d, want 2 (reps and weight)", len(body.Violations))
	}

	// The session survives a failed finish.
	rec = do(t, s, http.MethodGet, "/api/v1/users/2/session/", nil, true)
	if rec.Code != http.StatusOK {
		t.Errorf("session status = %d, want 200", rec.Code)
	}
}

// TestFinishWithoutSession verifies finishing with no active session is 404.
func TestFinishWithoutSession(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/users/3/session/finish", nil, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestDoubleStartConflicts verifies starting a second session is 409.
func TestDoubleStartConflicts(t *testing.T) {
	s, _ := newTestServer(t)

	do(t, s, http.MethodPost, "/api/v1/users/4/session/", nil, true)
	rec := do(t, s, http.MethodPost, "/api/v1/users/4/session/", nil, true)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

// TestEquipEndpoints verifies equip, listing, and unequip over HTTP,
// including 404 for unknown items.
func TestEquipEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/users/5/equipment", map[string]string{"itemId": "no-such-item"}, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown item status = %d, want 404", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/users/5/equipment", map[string]string{"itemId": "iron-wristband"}, true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("equip status = %d, want 204", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/users/5/equipment", nil, false)
	var equipped []models.EquippedItemRow
	if err := json.NewDecoder(rec.Body).Decode(&equipped); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(equipped) != 1 || equipped[0].ItemID != "iron-wristband" {
		t.Errorf("equipped = %+v, want iron-wristband", equipped)
	}

	rec = do(t, s, http.MethodDelete, "/api/v1/users/5/equipment/iron-wristband", nil, true)
	if rec.Code != http.StatusNoContent {
		t.Errorf("unequip status = %d, want 204", rec.Code)
	}
}

// TestPowerEndpoint verifies the power summary includes every muscle group.
func TestPowerEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/users/6/power", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var summary progress.PowerSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(summary.Groups) != 7 {
		t.Errorf("groups = %d, want 7", len(summary.Groups))
	}
}
