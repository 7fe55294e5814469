package seed

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workout.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestParseLogFile verifies a well-formed workout log parses with all set
// fields preserved.
func TestParseLogFile(t *testing.T) {
	path := writeLog(t, `
user_id: 3
notes: "Push day"
exercises:
  - name: Bench Press
    sets:
      - {reps: 8, weight: 100}
      - {reps: 6, weight: 110}
  - name: Plank
    kind: timed
    sets:
      - {duration: "01:30"}
`)
	logFile, err := ParseLogFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logFile.UserID != 3 {
		t.Errorf("user_id = %d, want 3", logFile.UserID)
	}
	if logFile.Notes != "Push day" {
		t.Errorf("notes = %q, want Push day", logFile.Notes)
	}
	if got := logFile.SetCount(); got != 3 {
		t.Errorf("SetCount() = %d, want 3", got)
	}
	first := logFile.Exercises[0].Sets[0]
	if first.Reps == nil || *first.Reps != 8 || first.Weight == nil || *first.Weight != 100 {
		t.Errorf("first set = %+v, want 8 reps at 100", first)
	}
	if logFile.Exercises[1].Kind != "timed" {
		t.Errorf("kind = %q, want timed", logFile.Exercises[1].Kind)
	}
	if logFile.Exercises[1].Sets[0].Duration != "01:30" {
		t.Errorf("duration = %q, want 01:30", logFile.Exercises[1].Sets[0].Duration)
	}
}

// TestParseLogFileRejects verifies malformed logs fail with a clear error.
func TestParseLogFileRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing user_id", "exercises:\n  - name: Squat\n    sets:\n      - {reps: 5}\n"},
		{"no exercises", "user_id: 1\nexercises: []\n"},
		{"unnamed exercise", "user_id: 1\nexercises:\n  - sets:\n      - {reps: 5}\n"},
		{"exercise without sets", "user_id: 1\nexercises:\n  - name: Squat\n    sets: []\n"},
		{"invalid yaml", "user_id: [broken\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseLogFile(writeLog(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// TestParseLogFileMissing verifies a nonexistent path errors.
func TestParseLogFileMissing(t *testing.T) {
	if _, err := ParseLogFile("/nonexistent/workout.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
