package seed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Stats tracks replay progress.
type Stats struct {
	FilesTotal   int
	FilesApplied int
	FilesSkipped int
	FilesErrored int

	WorkoutsSent int
	SetsSent     int
	XPEarned     int
	GoldEarned   int
}

// Runner walks a directory of workout log YAML files and replays each one
// through the session API. Applied files are recorded in the state database
// so a rerun only picks up new or edited logs.
type Runner struct {
	client *Client
	state  *StateDB
	logDir string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Runner.
func New(client *Client, state *StateDB, logDir string, dryRun bool, log *slog.Logger) *Runner {
	return &Runner{
		client: client,
		state:  state,
		logDir: logDir,
		dryRun: dryRun,
		log:    log,
	}
}

// Run replays every pending log file in lexical order, so numbered logs
// apply oldest first.
func (r *Runner) Run() (*Stats, error) {
	entries, err := os.ReadDir(r.logDir)
	if err != nil {
		return &r.stats, fmt.Errorf("reading %s: %w", r.logDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		r.stats.FilesTotal++
		if err := r.applyFile(name); err != nil {
			r.stats.FilesErrored++
			r.log.Error("replay failed", "file", name, "error", err)
		}
	}

	return &r.stats, nil
}

func (r *Runner) applyFile(name string) error {
	path := filepath.Join(r.logDir, name)

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", name, err)
	}

	if r.state != nil {
		applied, err := r.state.IsApplied(name, info.Size(), hash)
		if err != nil {
			return fmt.Errorf("checking state: %w", err)
		}
		if applied {
			r.stats.FilesSkipped++
			r.log.Info("already applied, skipping", "file", name)
			return nil
		}
	}

	logFile, err := ParseLogFile(path)
	if err != nil {
		return err
	}

	if r.dryRun {
		r.log.Info("dry run: parsed", "file", name, "user", logFile.UserID,
			"exercises", len(logFile.Exercises), "sets", logFile.SetCount())
		r.stats.FilesApplied++
		return nil
	}

	if err := r.replay(logFile); err != nil {
		return err
	}

	if r.state != nil {
		if err := r.state.MarkApplied(name, info.Size(), hash); err != nil {
			return fmt.Errorf("recording state: %w", err)
		}
	}
	r.stats.FilesApplied++
	return nil
}

// replay drives the full session flow for one log. On any mid-session error
// the session is cancelled so the next file starts clean.
func (r *Runner) replay(logFile *LogFile) error {
	uid := logFile.UserID

	if err := r.client.StartSession(uid); err != nil {
		return fmt.Errorf("starting session: %w", err)
	}

	if err := r.replaySets(uid, logFile); err != nil {
		if cancelErr := r.client.CancelSession(uid); cancelErr != nil {
			r.log.Warn("cancel after failure also failed", "error", cancelErr)
		}
		return err
	}

	result, err := r.client.Finish(uid)
	if err != nil {
		if cancelErr := r.client.CancelSession(uid); cancelErr != nil {
			r.log.Warn("cancel after failure also failed", "error", cancelErr)
		}
		return fmt.Errorf("finishing session: %w", err)
	}

	r.stats.WorkoutsSent++
	r.stats.SetsSent += logFile.SetCount()
	r.stats.XPEarned += result.Rewards.TotalXP
	r.stats.GoldEarned += result.Rewards.TotalGold
	r.log.Info("workout applied", "user", uid, "workout", result.WorkoutID,
		"xp", result.Rewards.TotalXP, "gold", result.Rewards.TotalGold)
	return nil
}

func (r *Runner) replaySets(uid int, logFile *LogFile) error {
	if logFile.Notes != "" {
		if err := r.client.SetNotes(uid, logFile.Notes); err != nil {
			return fmt.Errorf("setting notes: %w", err)
		}
	}

	for _, ex := range logFile.Exercises {
		exIdx, err := r.client.AddExercise(uid, ex.Name, ex.Kind)
		if err != nil {
			return fmt.Errorf("adding exercise %q: %w", ex.Name, err)
		}
		for _, set := range ex.Sets {
			setIdx, err := r.client.AddSet(uid, exIdx)
			if err != nil {
				return fmt.Errorf("adding set to %q: %w", ex.Name, err)
			}
			if err := r.client.CompleteSet(uid, exIdx, setIdx, set); err != nil {
				return fmt.Errorf("completing set %d of %q: %w", setIdx+1, ex.Name, err)
			}
		}
	}
	return nil
}
