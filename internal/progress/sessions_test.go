package progress

import (
	"errors"
	"testing"

	"github.com/meltforce/ironquest/internal/engine"
)

// TestRegistryOneSessionPerUser verifies a second Start for the same user
// fails while a session is active.
func TestRegistryOneSessionPerUser(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Start(1); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Start(1); !errors.Is(err, ErrSessionActive) {
		t.Errorf("second start: %v, want ErrSessionActive", err)
	}
	if _, err := r.Start(2); err != nil {
		t.Errorf("other users are independent: %v", err)
	}
}

// TestRegistryBuildAndMutate verifies the add-exercise / add-set / update-set
// flow, including that sets stay mutable until completed.
func TestRegistryBuildAndMutate(t *testing.T) {
	r := NewRegistry()
	r.Start(1)

	ei, err := r.AddExercise(1, "Squat", engine.KindStandard)
	if err != nil {
		t.Fatal(err)
	}
	si, err := r.AddSet(1, ei)
	if err != nil {
		t.Fatal(err)
	}

	reps, weight := 5, 80.0
	if err := r.UpdateSet(1, ei, si, engine.Set{Reps: &reps, Weight: &weight}); err != nil {
		t.Fatal(err)
	}
	// Edit again, then complete.
	weight = 85.0
	if err := r.UpdateSet(1, ei, si, engine.Set{Completed: true, Reps: &reps, Weight: &weight}); err != nil {
		t.Fatal(err)
	}

	s, err := r.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	set := s.Exercises[0].Sets[0]
	if !set.Completed || *set.Weight != 85.0 {
		t.Errorf("set = %+v", set)
	}
	if set.ID == (s.Exercises[0].ID) {
		t.Error("set and exercise ids should differ")
	}
}

// TestRegistryUpdatePreservesSetID verifies UpdateSet keeps the original
// set identity.
func TestRegistryUpdatePreservesSetID(t *testing.T) {
	r := NewRegistry()
	r.Start(1)
	ei, _ := r.AddExercise(1, "Squat", engine.KindStandard)
	si, _ := r.AddSet(1, ei)

	before, _ := r.Get(1)
	id := before.Exercises[0].Sets[0].ID

	reps := 10
	r.UpdateSet(1, ei, si, engine.Set{Completed: true, Reps: &reps})

	after, _ := r.Get(1)
	if after.Exercises[0].Sets[0].ID != id {
		t.Error("set id changed on update")
	}
}

// TestRegistryIndexBounds verifies out-of-range indices fail cleanly.
func TestRegistryIndexBounds(t *testing.T) {
	r := NewRegistry()
	r.Start(1)

	if _, err := r.AddSet(1, 0); !errors.Is(err, ErrExerciseNotFound) {
		t.Errorf("AddSet: %v", err)
	}
	r.AddExercise(1, "Squat", engine.KindStandard)
	if err := r.UpdateSet(1, 0, 3, engine.Set{}); !errors.Is(err, ErrSetNotFound) {
		t.Errorf("UpdateSet: %v", err)
	}
}

// TestRegistryCancelDiscards verifies Cancel removes the session and a new
// one can start.
func TestRegistryCancelDiscards(t *testing.T) {
	r := NewRegistry()
	r.Start(1)
	r.AddExercise(1, "Squat", engine.KindStandard)

	if !r.Cancel(1) {
		t.Fatal("cancel should report an existing session")
	}
	if r.Cancel(1) {
		t.Error("second cancel should report nothing to cancel")
	}
	if _, err := r.Get(1); !errors.Is(err, ErrNoActiveSession) {
		t.Error("session should be gone")
	}
	if _, err := r.Start(1); err != nil {
		t.Errorf("fresh start after cancel: %v", err)
	}
}

// TestRegistrySnapshotIsCopy verifies mutating a returned session does not
// affect the registry's copy.
func TestRegistrySnapshotIsCopy(t *testing.T) {
	r := NewRegistry()
	r.Start(1)
	ei, _ := r.AddExercise(1, "Squat", engine.KindStandard)
	r.AddSet(1, ei)

	snap, _ := r.Get(1)
	snap.Exercises[0].Name = "Tampered"
	snap.Exercises[0].Sets[0].Completed = true

	fresh, _ := r.Get(1)
	if fresh.Exercises[0].Name != "Squat" || fresh.Exercises[0].Sets[0].Completed {
		t.Error("registry state leaked through snapshot")
	}
}
