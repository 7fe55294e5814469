package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/ironquest/internal/engine"
	"github.com/meltforce/ironquest/internal/game"
	"github.com/meltforce/ironquest/internal/models"
	"github.com/meltforce/ironquest/internal/storage"
)

// Store is the persistence surface the progression service needs.
// *storage.DB satisfies it; tests use an in-memory fake.
type Store interface {
	GetUserStats(ctx context.Context, userID int) (*models.UserStatsRow, error)
	EquippedItems(ctx context.Context, userID int) ([]models.EquippedItemRow, error)
	EquipItem(ctx context.Context, userID int, itemID, slotType string) error
	UnequipItem(ctx context.Context, userID int, itemID string) error
	PersistFinishedWorkout(ctx context.Context, workout models.WorkoutRow, sets []models.WorkoutSetRow, version int, delta models.StatsDelta) (bool, error)
	InsertUnlock(ctx context.Context, userID int, achievementID string) (bool, error)
	UnlockedAchievementIDs(ctx context.Context, userID int) (map[string]bool, error)
	GrantItem(ctx context.Context, userID int, itemID string) error
}

// Compile-time check: *storage.DB satisfies Store.
var _ Store = (*storage.DB)(nil)

// ErrRateLimited means the user finished workouts too fast.
var ErrRateLimited = errors.New("too many workout finishes, slow down")

// ErrUnknownItem means an item id does not exist in the item catalog.
var ErrUnknownItem = errors.New("unknown item")

// ValidationError carries the consolidated list of invalid sets. The
// session is left active so the user can correct it and finish again.
type ValidationError struct {
	Violations []engine.Violation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("session has %d invalid sets", len(e.Violations))
}

// UnlockEvent is one achievement unlocked by a finished session.
type UnlockEvent struct {
	AchievementID string `json:"achievementId"`
	Name          string `json:"name"`
	ItemID        string `json:"itemId,omitempty"`
	ItemGranted   bool   `json:"itemGranted"`
}

// FinishResult is everything a finished session produced, for the caller
// to display.
type FinishResult struct {
	WorkoutID uuid.UUID             `json:"workoutId"`
	Totals    engine.SessionTotals  `json:"totals"`
	Rewards   engine.Rewards        `json:"rewards"`
	Level     engine.LevelChange    `json:"level"`
	Unlocks   []UnlockEvent         `json:"unlocks,omitempty"`
}

// Service orchestrates the progression engine around storage: session
// lifecycle, the finish-workout pipeline, equipment, and derived views.
type Service struct {
	store    Store
	data     *game.Data
	sessions *Registry
	limiter  Limiter
	log      *slog.Logger
	now      func() time.Time
}

// NewService wires the progression service.
func NewService(store Store, data *game.Data, limiter Limiter, log *slog.Logger) *Service {
	if limiter == nil {
		limiter = Unlimited{}
	}
	return &Service{
		store:    store,
		data:     data,
		sessions: NewRegistry(),
		limiter:  limiter,
		log:      log,
		now:      time.Now,
	}
}

// Data exposes the loaded static game content.
func (s *Service) Data() *game.Data { return s.data }

// StartSession opens a workout session for the user.
func (s *Service) StartSession(userID int) (engine.WorkoutSession, error) {
	return s.sessions.Start(userID)
}

// ActiveSession returns the user's in-progress session.
func (s *Service) ActiveSession(userID int) (engine.WorkoutSession, error) {
	return s.sessions.Get(userID)
}

// AddExercise adds an exercise to the active session. Known exercises take
// their set kind from the catalog; unknown (custom) names use the supplied
// kind, defaulting to standard.
func (s *Service) AddExercise(userID int, name string, kind engine.SetKind) (int, error) {
	if entry, ok := s.data.Catalog.Resolve(name); ok {
		kind = entry.Kind
	} else if !kind.Valid() {
		kind = engine.KindStandard
	}
	return s.sessions.AddExercise(userID, name, kind)
}

// AddSet adds an empty set to an exercise in the active session.
func (s *Service) AddSet(userID, exerciseIndex int) (int, error) {
	return s.sessions.AddSet(userID, exerciseIndex)
}

// UpdateSet records a set's fields, including marking it completed.
func (s *Service) UpdateSet(userID, exerciseIndex, setIndex int, set engine.Set) error {
	return s.sessions.UpdateSet(userID, exerciseIndex, setIndex, set)
}

// SetNotes updates the active session's notes.
func (s *Service) SetNotes(userID int, notes string) error {
	return s.sessions.SetNotes(userID, notes)
}

// CancelSession discards the active session. No rewards, no persistence.
func (s *Service) CancelSession(userID int) error {
	if !s.sessions.Cancel(userID) {
		return ErrNoActiveSession
	}
	return nil
}

// FinishWorkout runs the full pipeline: validate, aggregate, distribute
// rewards, advance the level, persist atomically, then evaluate
// achievements. Ordering follows the recoverability contract: nothing is
// applied in memory or storage until the whole delta persists, so a failed
// finish can simply be retried.
func (s *Service) FinishWorkout(ctx context.Context, userID int) (*FinishResult, error) {
	if !s.limiter.Allow(fmt.Sprintf("finish:%d", userID)) {
		return nil, ErrRateLimited
	}

	session, err := s.sessions.Get(userID)
	if err != nil {
		return nil, err
	}

	if violations := engine.ValidateSession(&session); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	stats, err := s.store.GetUserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading user stats: %w", err)
	}

	equipped, err := s.equippedEngineItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	totals := engine.Aggregate(&session)
	rewards := engine.Distribute(&session, s.data.Catalog, equipped)
	level := engine.ApplyXP(stats.Level, stats.XP, rewards.TotalXP)

	// Take the session out of the registry only now; a persistence failure
	// puts it back so the finish can be retried.
	session, err = s.sessions.finish(userID)
	if err != nil {
		return nil, err
	}

	finishedAt := s.now()
	workout := models.WorkoutRow{
		ID:          session.ID,
		UserID:      userID,
		StartedAt:   session.StartedAt,
		FinishedAt:  finishedAt,
		DurationSec: session.ElapsedSeconds,
		Notes:       session.Notes,
		TotalSets:   totals.TotalSets,
		TotalReps:   totals.TotalReps,
		TotalVolume: totals.TotalVolume,
		XPGained:    rewards.TotalXP,
		GoldGained:  rewards.TotalGold,
	}

	delta := models.StatsDelta{
		XP:            rewards.TotalXP,
		Gold:          rewards.TotalGold,
		NewLevel:      level.NewLevel,
		GroupXP:       make(map[string]int, len(rewards.ByGroup)),
		TotalSets:     totals.TotalSets,
		TotalReps:     totals.TotalReps,
		TotalVolume:   totals.TotalVolume,
		TotalDuration: session.ElapsedSeconds,
	}
	for group, gain := range rewards.ByGroup {
		delta.GroupXP[string(group)] = gain.XP
	}

	if _, err := s.store.PersistFinishedWorkout(ctx, workout, setRows(&session), stats.Version, delta); err != nil {
		s.sessions.restore(session)
		return nil, fmt.Errorf("persisting finished workout: %w", err)
	}

	result := &FinishResult{
		WorkoutID: workout.ID,
		Totals:    totals,
		Rewards:   rewards,
		Level:     level,
	}
	result.Unlocks = s.evaluateAchievements(ctx, userID, statsAfter(stats, delta, level.NewLevel))
	return result, nil
}

// evaluateAchievements runs the unlock rules against the post-session stats
// and applies unlock + item-grant effects. Every failure here is deliberate
// partial-failure tolerance: the finished workout already stands, so
// problems are logged and skipped, never propagated.
func (s *Service) evaluateAchievements(ctx context.Context, userID int, stats engine.Stats) []UnlockEvent {
	unlocked, err := s.store.UnlockedAchievementIDs(ctx, userID)
	if err != nil {
		s.log.Warn("reading unlocked achievements failed", "user", userID, "error", err)
		return nil
	}

	var events []UnlockEvent
	for _, unlock := range engine.Evaluate(stats, s.data.Achievements, unlocked) {
		inserted, err := s.store.InsertUnlock(ctx, userID, unlock.AchievementID)
		if err != nil {
			s.log.Warn("persisting unlock failed", "achievement", unlock.AchievementID, "error", err)
			continue
		}
		if !inserted {
			// Raced with another evaluation; already unlocked.
			continue
		}

		event := UnlockEvent{AchievementID: unlock.AchievementID, ItemID: unlock.ItemID}
		if a, ok := s.achievementByID(unlock.AchievementID); ok {
			event.Name = a.Name
		}
		if unlock.ItemID != "" {
			if err := s.store.GrantItem(ctx, userID, unlock.ItemID); err != nil {
				// The unlock stands even when the grant fails.
				s.log.Warn("item grant failed", "item", unlock.ItemID, "error", err)
			} else {
				event.ItemGranted = true
			}
		}
		events = append(events, event)
	}
	return events
}

func (s *Service) achievementByID(id string) (engine.Achievement, bool) {
	for _, a := range s.data.Achievements {
		if a.ID == id {
			return a, true
		}
	}
	return engine.Achievement{}, false
}

// equippedEngineItems joins the equipment relation with the item catalog.
// Rows referencing items that vanished from the catalog are skipped.
func (s *Service) equippedEngineItems(ctx context.Context, userID int) ([]engine.Item, error) {
	rows, err := s.store.EquippedItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading equipped items: %w", err)
	}
	items := make([]engine.Item, 0, len(rows))
	for _, row := range rows {
		if item, ok := s.data.ItemByID(row.ItemID); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// Equip equips a catalog item for the user, replacing the slot's occupant.
func (s *Service) Equip(ctx context.Context, userID int, itemID string) error {
	item, ok := s.data.ItemByID(itemID)
	if !ok {
		return ErrUnknownItem
	}
	return s.store.EquipItem(ctx, userID, itemID, item.SlotType)
}

// Unequip removes an item from the user's equipment.
func (s *Service) Unequip(ctx context.Context, userID int, itemID string) error {
	return s.store.UnequipItem(ctx, userID, itemID)
}

// GroupRank is one muscle group's rank in the power summary.
type GroupRank struct {
	MuscleGroup string          `json:"muscleGroup"`
	XP          int             `json:"xp"`
	Rank        engine.RankTier `json:"rank"`
}

// PowerSummary is the derived progress view: per-group ranks, the average
// rank, and the total power level. Never stored; recomputed on every read.
type PowerSummary struct {
	Groups      []GroupRank     `json:"groups"`
	AverageRank engine.RankTier `json:"averageRank"`
	PowerLevel  int             `json:"powerLevel"`
}

// Power computes the user's rank and power breakdown.
func (s *Service) Power(ctx context.Context, userID int) (*PowerSummary, error) {
	stats, err := s.store.GetUserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading user stats: %w", err)
	}
	equipped, err := s.equippedEngineItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	groupXP := make(map[engine.MuscleGroup]int, len(stats.GroupXP))
	for g, xp := range stats.GroupXP {
		groupXP[engine.MuscleGroup(g)] = xp
	}

	summary := &PowerSummary{
		AverageRank: s.data.Ranks.AverageRank(groupXP),
		PowerLevel:  s.data.Ranks.PowerLevel(groupXP, equipped),
	}
	for _, g := range engine.MuscleGroups {
		summary.Groups = append(summary.Groups, GroupRank{
			MuscleGroup: string(g),
			XP:          groupXP[g],
			Rank:        s.data.Ranks.RankOf(groupXP[g]),
		})
	}
	return summary, nil
}

// AchievementStatus pairs a catalog achievement with its unlock state.
type AchievementStatus struct {
	engine.Achievement
	Unlocked bool `json:"unlocked"`
}

// Achievements lists all achievements with the user's unlock state.
func (s *Service) Achievements(ctx context.Context, userID int) ([]AchievementStatus, error) {
	unlocked, err := s.store.UnlockedAchievementIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading unlocks: %w", err)
	}
	out := make([]AchievementStatus, 0, len(s.data.Achievements))
	for _, a := range s.data.Achievements {
		out = append(out, AchievementStatus{Achievement: a, Unlocked: unlocked[a.ID]})
	}
	return out, nil
}

// Stats returns the user's stats document.
func (s *Service) Stats(ctx context.Context, userID int) (*models.UserStatsRow, error) {
	return s.store.GetUserStats(ctx, userID)
}

func setRows(session *engine.WorkoutSession) []models.WorkoutSetRow {
	var rows []models.WorkoutSetRow
	n := 0
	for _, ex := range session.Exercises {
		for _, set := range ex.Sets {
			if !set.Completed {
				continue
			}
			n++
			rows = append(rows, models.WorkoutSetRow{
				ID:           set.ID,
				WorkoutID:    session.ID,
				UserID:       session.UserID,
				ExerciseName: ex.Name,
				SetKind:      string(ex.Kind),
				SetNumber:    n,
				Reps:         set.Reps,
				Weight:       set.Weight,
				Duration:     set.Duration,
				Distance:     set.Distance,
			})
		}
	}
	return rows
}

func statsAfter(before *models.UserStatsRow, delta models.StatsDelta, newLevel int) engine.Stats {
	after := engine.Stats{
		Level:         newLevel,
		XP:            before.XP + delta.XP,
		Gold:          before.Gold + delta.Gold,
		TotalWorkouts: before.TotalWorkouts + 1,
		TotalSets:     before.TotalSets + delta.TotalSets,
		TotalReps:     before.TotalReps + delta.TotalReps,
		TotalVolume:   before.TotalVolume + delta.TotalVolume,
		TotalDuration: before.TotalDuration + delta.TotalDuration,
		GroupXP:       make(map[engine.MuscleGroup]int, len(engine.MuscleGroups)),
	}
	for g, xp := range before.GroupXP {
		after.GroupXP[engine.MuscleGroup(g)] = xp
	}
	for g, xp := range delta.GroupXP {
		after.GroupXP[engine.MuscleGroup(g)] += xp
	}
	return after
}
