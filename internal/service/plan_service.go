package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/abhishyantkhare/marathon-trainer/internal/domain"
	"github.com/abhishyantkhare/marathon-trainer/internal/generator"
	"github.com/abhishyantkhare/marathon-trainer/internal/planner"
	"github.com/abhishyantkhare/marathon-trainer/internal/repository"
	"github.com/abhishyantkhare/marathon-trainer/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound      = errors.New("no training plan found")
	ErrProfileIncomplete = errors.New("profile with race date, goal time, and fitness level is required before generating a plan")
	ErrPlanPersistence   = errors.New("failed to persist training plan")
	ErrExportUnavailable = errors.New("plan export is not configured")
)

// --- Service Interface ---
type PlanService interface {
	// GenerateOrReuse produces a training plan for the user. With
	// regenerate=false an existing plan is returned untouched; otherwise a new
	// version is generated (AI first, deterministic fallback on any AI
	// failure) and appended. Callers either get a complete valid plan or an
	// explicit error, never a partial plan and never a delegation failure.
	GenerateOrReuse(ctx context.Context, userID primitive.ObjectID, regenerate bool) (*domain.PlanVersion, error)
	GetLatest(ctx context.Context, userID primitive.ObjectID) (*domain.PlanVersion, error)
	// ExportURL returns a presigned download URL for the latest plan snapshot.
	ExportURL(ctx context.Context, userID primitive.ObjectID) (string, error)
}

// --- Service Implementation ---

// planService coordinates the two generation paths and the plan store.
type planService struct {
	profileRepo repository.ProfileRepository
	planRepo    repository.PlanRepository
	generator   generator.PlanGenerator
	archive     storage.PlanArchive // optional; nil disables snapshots
	now         func() time.Time
}

// NewPlanService creates a new instance of planService. archive may be nil.
func NewPlanService(profileRepo repository.ProfileRepository, planRepo repository.PlanRepository, gen generator.PlanGenerator, archive storage.PlanArchive) PlanService {
	return &planService{
		profileRepo: profileRepo,
		planRepo:    planRepo,
		generator:   gen,
		archive:     archive,
		now:         time.Now,
	}
}

// generationResult tags a plan with the path that produced it. Both variants
// conform to the same schema; the tag exists for storage and logging only.
type generationResult struct {
	plan   domain.TrainingPlan
	source domain.PlanSource
}

// GenerateOrReuse implements the generation state machine:
// load profile -> compute parameters -> delegate (fall back on failure) ->
// validate -> persist -> done. No lock is held across the delegated call, and
// the external generator gets exactly one attempt per request.
func (s *planService) GenerateOrReuse(ctx context.Context, userID primitive.ObjectID, regenerate bool) (*domain.PlanVersion, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileIncomplete
		}
		return nil, err
	}
	if profile.RaceDate.IsZero() || profile.GoalTimeMinutes <= 0 || !profile.FitnessLevel.IsValid() {
		return nil, ErrProfileIncomplete
	}

	// Idempotent short-circuit: an existing plan is reused as-is, with no
	// call to the generator and no new version stored.
	if !regenerate {
		existing, err := s.planRepo.GetLatestByUserID(ctx, userID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	today := s.now().UTC()

	paces, err := planner.DerivePaces(profile.GoalTimeMinutes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileIncomplete, err)
	}
	periodization, err := planner.PlanPeriodization(profile.RaceDate, today, profile.FitnessLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileIncomplete, err)
	}
	goalTime := planner.FormatGoalTime(profile.GoalTimeMinutes)

	result := s.generate(ctx, profile, paces, periodization, goalTime, today)

	planJSON, err := json.Marshal(result.plan)
	if err != nil {
		// The plan schema is plain data; marshalling it cannot realistically fail.
		return nil, fmt.Errorf("%w: %v", ErrPlanPersistence, err)
	}

	version := &domain.PlanVersion{
		UserID:   userID,
		PlanJSON: string(planJSON),
		Source:   result.source,
	}
	versionID, err := s.planRepo.Create(ctx, version)
	if err != nil {
		// A plan that cannot be persisted must not be reported as generated.
		return nil, fmt.Errorf("%w: %v", ErrPlanPersistence, err)
	}
	version.ID = versionID

	s.archiveSnapshot(ctx, version)

	return version, nil
}

// generate runs the delegated path and falls back to the deterministic
// synthesizer on any failure. It always produces a schema-valid plan.
func (s *planService) generate(ctx context.Context, profile *domain.RunnerProfile, paces planner.PaceZones, periodization planner.Periodization, goalTime string, today time.Time) generationResult {
	params := generator.Params{
		RaceDate:        profile.RaceDate,
		Today:           today,
		GoalTimeMinutes: profile.GoalTimeMinutes,
		GoalTime:        goalTime,
		FitnessLevel:    profile.FitnessLevel,
		WeekCount:       periodization.WeekCount,
		PeakWeek:        periodization.PeakWeek,
		Paces:           paces,
		Mileage:         periodization.Mileage,
	}

	raw, err := s.generator.GeneratePlan(ctx, params)
	if err == nil {
		plan, decodeErr := planner.DecodePlan(raw)
		if decodeErr == nil {
			return generationResult{plan: *plan, source: domain.PlanSourceDelegated}
		}
		err = decodeErr
	}

	log.Printf("WARN: plan delegation failed, using deterministic fallback: %v", err)
	plan := planner.SynthesizePlan(periodization, paces, profile.RaceDate, today, goalTime)
	return generationResult{plan: plan, source: domain.PlanSourceSynthesized}
}

// GetLatest returns the user's newest plan version.
func (s *planService) GetLatest(ctx context.Context, userID primitive.ObjectID) (*domain.PlanVersion, error) {
	version, err := s.planRepo.GetLatestByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return version, nil
}

// ExportURL returns a presigned download URL for the latest plan snapshot.
func (s *planService) ExportURL(ctx context.Context, userID primitive.ObjectID) (string, error) {
	if s.archive == nil {
		return "", ErrExportUnavailable
	}
	version, err := s.GetLatest(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.archive.SnapshotDownloadURL(ctx, snapshotKey(version), storage.DefaultPresignedURLExpiry)
}

// archiveSnapshot stores the plan body in the archive, best effort.
func (s *planService) archiveSnapshot(ctx context.Context, version *domain.PlanVersion) {
	if s.archive == nil {
		return
	}
	if err := s.archive.StoreSnapshot(ctx, snapshotKey(version), []byte(version.PlanJSON)); err != nil {
		log.Printf("WARN: failed to archive plan snapshot for user %s: %v", version.UserID.Hex(), err)
	}
}

func snapshotKey(version *domain.PlanVersion) string {
	return fmt.Sprintf("plans/%s/%s.json", version.UserID.Hex(), version.ID.Hex())
}
