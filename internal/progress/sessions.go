package progress

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/ironquest/internal/engine"
)

var (
	ErrNoActiveSession  = errors.New("no active workout session")
	ErrSessionActive    = errors.New("a workout session is already active")
	ErrExerciseNotFound = errors.New("exercise index out of range")
	ErrSetNotFound      = errors.New("set index out of range")
)

// Registry holds the transient in-progress sessions, one per user at most.
// Sessions live only here: cancelling discards the session with no calls
// into the rest of the engine, so no partial rewards are ever granted.
type Registry struct {
	mu     sync.Mutex
	byUser map[int]*engine.WorkoutSession
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{byUser: make(map[int]*engine.WorkoutSession)}
}

// Start opens a new session for the user. A user can have at most one
// active session.
func (r *Registry) Start(userID int) (engine.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, active := r.byUser[userID]; active {
		return engine.WorkoutSession{}, ErrSessionActive
	}

	s := &engine.WorkoutSession{
		ID:        uuid.New(),
		UserID:    userID,
		StartedAt: time.Now(),
	}
	r.byUser[userID] = s
	return snapshot(s), nil
}

// Get returns a copy of the user's active session.
func (r *Registry) Get(userID int) (engine.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byUser[userID]
	if !ok {
		return engine.WorkoutSession{}, ErrNoActiveSession
	}
	return snapshot(s), nil
}

// AddExercise appends an exercise to the active session and returns its
// index. The kind should come from the catalog when the exercise is known;
// custom exercise names pass whatever kind the client chose.
func (r *Registry) AddExercise(userID int, name string, kind engine.SetKind) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byUser[userID]
	if !ok {
		return 0, ErrNoActiveSession
	}
	s.Exercises = append(s.Exercises, engine.ExerciseEntry{
		ID:   uuid.New(),
		Name: name,
		Kind: kind,
	})
	return len(s.Exercises) - 1, nil
}

// AddSet appends an empty, incomplete set to an exercise and returns its
// index. The set is mutated via UpdateSet until completed.
func (r *Registry) AddSet(userID, exerciseIndex int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byUser[userID]
	if !ok {
		return 0, ErrNoActiveSession
	}
	if exerciseIndex < 0 || exerciseIndex >= len(s.Exercises) {
		return 0, ErrExerciseNotFound
	}
	ex := &s.Exercises[exerciseIndex]
	ex.Sets = append(ex.Sets, engine.Set{ID: uuid.New()})
	return len(ex.Sets) - 1, nil
}

// UpdateSet overwrites a set's recorded fields (reps, weight, duration,
// distance, completed) in place. The set id is preserved.
func (r *Registry) UpdateSet(userID, exerciseIndex, setIndex int, set engine.Set) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byUser[userID]
	if !ok {
		return ErrNoActiveSession
	}
	if exerciseIndex < 0 || exerciseIndex >= len(s.Exercises) {
		return ErrExerciseNotFound
	}
	ex := &s.Exercises[exerciseIndex]
	if setIndex < 0 || setIndex >= len(ex.Sets) {
		return ErrSetNotFound
	}
	set.ID = ex.Sets[setIndex].ID
	ex.Sets[setIndex] = set
	return nil
}

// SetNotes updates the session notes.
func (r *Registry) SetNotes(userID int, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byUser[userID]
	if !ok {
		return ErrNoActiveSession
	}
	s.Notes = notes
	return nil
}

// Cancel discards the user's active session. Reports whether a session
// existed. Nothing downstream is invoked: a cancelled session grants no
// rewards and persists no workout record.
func (r *Registry) Cancel(userID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.byUser[userID]
	delete(r.byUser, userID)
	return ok
}

// finish removes and returns the session, stamping elapsed time. Called by
// the service only after it is ready to score the session.
func (r *Registry) finish(userID int) (engine.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byUser[userID]
	if !ok {
		return engine.WorkoutSession{}, ErrNoActiveSession
	}
	s.ElapsedSeconds = int(time.Since(s.StartedAt).Seconds())
	delete(r.byUser, userID)
	return snapshot(s), nil
}

// restore puts a session back after a failed finish so the user can
// correct it and retry.
func (r *Registry) restore(s engine.WorkoutSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[s.UserID] = &s
}

func snapshot(s *engine.WorkoutSession) engine.WorkoutSession {
	out := *s
	out.Exercises = make([]engine.ExerciseEntry, len(s.Exercises))
	for i, ex := range s.Exercises {
		out.Exercises[i] = ex
		out.Exercises[i].Sets = append([]engine.Set(nil), ex.Sets...)
	}
	return out
}
