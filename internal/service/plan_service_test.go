package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/abhishyantkhare/marathon-trainer/internal/domain"
	"github.com/abhishyantkhare/marathon-trainer/internal/generator"
	"github.com/abhishyantkhare/marathon-trainer/internal/planner"
	"github.com/abhishyantkhare/marathon-trainer/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- In-memory fakes ---

type fakeProfileRepo struct {
	profiles map[primitive.ObjectID]*domain.RunnerProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[primitive.ObjectID]*domain.RunnerProfile)}
}

func (r *fakeProfileRepo) Upsert(ctx context.Context, profile *domain.RunnerProfile) (*domain.RunnerProfile, error) {
	r.profiles[profile.UserID] = profile
	return profile, nil
}

func (r *fakeProfileRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.RunnerProfile, error) {
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return profile, nil
}

type fakePlanRepo struct {
	versions  []*domain.PlanVersion
	createErr error
}

func (r *fakePlanRepo) Create(ctx context.Context, version *domain.PlanVersion) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	stored := *version
	stored.ID = primitive.NewObjectID()
	stored.CreatedAt = time.Now().UTC()
	r.versions = append(r.versions, &stored)
	return stored.ID, nil
}

func (r *fakePlanRepo) GetLatestByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.PlanVersion, error) {
	for i := len(r.versions) - 1; i >= 0; i-- {
		if r.versions[i].UserID == userID {
			return r.versions[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeGenerator struct {
	raw   []byte
	err   error
	calls int
}

func (g *fakeGenerator) GeneratePlan(ctx context.Context, params generator.Params) ([]byte, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.raw, nil
}

type fakeArchive struct {
	objects  map[string][]byte
	storeErr error
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{objects: make(map[string][]byte)}
}

func (a *fakeArchive) StoreSnapshot(ctx context.Context, objectKey string, body []byte) error {
	if a.storeErr != nil {
		return a.storeErr
	}
	a.objects[objectKey] = body
	return nil
}

func (a *fakeArchive) SnapshotDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if _, ok := a.objects[objectKey]; !ok {
		return "", fmt.Errorf("no such object: %s", objectKey)
	}
	return "https://archive.test/" + objectKey, nil
}

// --- Fixtures ---

var testToday = time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)

func validProfile(userID primitive.ObjectID) *domain.RunnerProfile {
	return &domain.RunnerProfile{
		UserID:          userID,
		RaceDate:        testToday.AddDate(0, 0, 140),
		GoalTimeMinutes: 240,
		FitnessLevel:    domain.FitnessIntermediate,
	}
}

// delegatedPlanJSON builds a schema-valid plan body, as a well-behaved
// generator would return it.
func delegatedPlanJSON(t *testing.T, profile *domain.RunnerProfile) []byte {
	t.Helper()
	paces, err := planner.DerivePaces(profile.GoalTimeMinutes)
	if err != nil {
		t.Fatalf("DerivePaces: %v", err)
	}
	p, err := planner.PlanPeriodization(profile.RaceDate, testToday, profile.FitnessLevel)
	if err != nil {
		t.Fatalf("PlanPeriodization: %v", err)
	}
	plan := planner.SynthesizePlan(p, paces, profile.RaceDate, testToday, planner.FormatGoalTime(profile.GoalTimeMinutes))
	data, err := json.Marshal(plan)
	if err != nil {
		t.Fatalf("marshal plan: %v", err)
	}
	return data
}

type planServiceFixture struct {
	svc      *planService
	profiles *fakeProfileRepo
	plans    *fakePlanRepo
	gen      *fakeGenerator
	archive  *fakeArchive
	userID   primitive.ObjectID
}

func newPlanServiceFixture(t *testing.T) *planServiceFixture {
	t.Helper()
	f := &planServiceFixture{
		profiles: newFakeProfileRepo(),
		plans:    &fakePlanRepo{},
		gen:      &fakeGenerator{},
		archive:  newFakeArchive(),
		userID:   primitive.NewObjectID(),
	}
	f.svc = &planService{
		profileRepo: f.profiles,
		planRepo:    f.plans,
		generator:   f.gen,
		archive:     f.archive,
		now:         func() time.Time { return testToday },
	}
	return f
}

func decodeVersion(t *testing.T, version *domain.PlanVersion) *domain.TrainingPlan {
	t.Helper()
	plan, err := planner.DecodePlan([]byte(version.PlanJSON))
	if err != nil {
		t.Fatalf("stored plan failed validation: %v", err)
	}
	return plan
}

// --- Tests ---

func TestGenerateOrReuse_MissingProfile(t *testing.T) {
	f := newPlanServiceFixture(t)

	_, err := f.svc.GenerateOrReuse(context.Background(), f.userID, false)
	if !errors.Is(err, ErrProfileIncomplete) {
		t.Fatalf("error = %v, want ErrProfileIncomplete", err)
	}
	if f.gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", f.gen.calls)
	}
}

func TestGenerateOrReuse_IncompleteProfile(t *testing.T) {
	f := newPlanServiceFixture(t)
	profile := validProfile(f.userID)
	profile.GoalTimeMinutes = 0
	f.profiles.profiles[f.userID] = profile

	_, err := f.svc.GenerateOrReuse(context.Background(), f.userID, false)
	if !errors.Is(err, ErrProfileIncomplete) {
		t.Fatalf("error = %v, want ErrProfileIncomplete", err)
	}
}

func TestGenerateOrReuse_DelegatedSuccess(t *testing.T) {
	f := newPlanServiceFixture(t)
	profile := validProfile(f.userID)
	f.profiles.profiles[f.userID] = profile
	f.gen.raw = delegatedPlanJSON(t, profile)

	version, err := f.svc.GenerateOrReuse(context.Background(), f.userID, false)
	if err != nil {
		t.Fatalf("GenerateOrReuse returned error: %v", err)
	}
	if version.Source != domain.PlanSourceDelegated {
		t.Errorf("source = %q, want %q", version.Source, domain.PlanSourceDelegated)
	}
	if version.ID.IsZero() {
		t.Error("version ID not assigned")
	}

	plan := decodeVersion(t, version)
	if plan.TotalWeeks != 20 {
		t.Errorf("total weeks = %d, want 20", plan.TotalWeeks)
	}
}

func TestGenerateOrReuse_IdempotentReuse(t *testing.T) {
	f := newPlanServiceFixture(t)
	profile := validProfile(f.userID)
	f.profiles.profiles[f.userID] = profile
	f.gen.raw = delegatedPlanJSON(t, profile)

	first, err := f.svc.GenerateOrReuse(context.Background(), f.userID, false)
	if err != nil {
		t.Fatalf("first call returned error: %v", err)
	}
	second, err := f.svc.GenerateOrReuse(context.Background(), f.userID, false)
	if err != nil {
		t.Fatalf("second call returned error: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("second call returned version %s, want reused %s", second.ID.Hex(), first.ID.Hex())
	}
	if f.gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", f.gen.calls)
	}
	if len(f.plans.versions) != 1 {
		t.Errorf("stored %d versions, want 1", len(f.plans.versions))
	}
}

func TestGenerateOrReuse_RegenerateAppendsVersion(t *testing.T) {
	f := newPlanServiceFixture(t)
	profile := validProfile(f.userID)
	f.profiles.profiles[f.userID] = profile
	f.gen.raw = delegatedPlanJSON(t, profile)

	first, err := f.svc.GenerateOrReuse(context.Background(), f.userID, false)
	if err != nil {
		t.Fatalf("first call returned error: %v", err)
	}
	second, err := f.svc.GenerateOrReuse(context.Background(), f.userID, true)
	if err != nil {
		t.Fatalf("regenerate returned error: %v", err)
	}

	if second.ID == first.ID {
		t.Error("regenerate reused the existing version instead of appending")
	}
	if len(f.plans.versions) != 2 {
		t.Fatalf("stored %d versions, want 2", len(f.plans.versions))
	}

	latest, err := f.svc.GetLatest(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("GetLatest returned error: %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("GetLatest returned %s, want newest %s", latest.ID.Hex(), second.ID.Hex())
	}
}

func TestGenerateOrReuse_FallbackOnGeneratorError(t *testing.T) {
	f := newPlanServiceFixture(t)
	f.profiles.profiles[f.userID] = validProfile(f.userID)
	f.gen.err = errors.New("connection timed out")

	version, err := f.svc.GenerateOrReuse(context.Background(), f.userID, false)
	if err != nil {
		t.Fatalf("GenerateOrReuse returned error: %v", err)
	}
	if version.Source != domain.PlanSourceSynthesized {
		t.Errorf("source = %q, want %q", version.Source, domain.PlanSourceSynthesized)
	}

	plan := decodeVersion(t, version)
	if plan.TotalWeeks != 20 {
		t.Errorf("fallback plan has %d weeks, want 20", plan.TotalWeeks)
	}
}

func TestGenerateOrReuse_FallbackOnMalformedPlan(t *testing.T) {
	f := newPlanServiceFixture(t)
	f.profiles.profiles[f.userID] = validProfile(f.userID)
	f.gen.raw = []byte(`{"race_name": "Marathon", "goal_time": "4:00:00"}`)

	version, err := f.svc.GenerateOrReuse(context.Background(), f.userID, false)
	if err != nil {
		t.Fatalf("GenerateOrReuse returned error: %v", err)
	}
	if version.Source != domain.PlanSourceSynthesized {
		t.Errorf("source = %q, want %q", version.Source, domain.PlanSourceSynthesized)
	}
	decodeVersion(t, version)
}

func TestGenerateOrReuse_PersistenceFailure(t *testing.T) {
	f := newPlanServiceFixture(t)
	profile := validProfile(f.userID)
	f.profiles.profiles[f.userID] = profile
	f.gen.raw = delegatedPlanJSON(t, profile)
	f.plans.createErr = errors.New("write concern error")

	_, err := f.svc.GenerateOrReuse(context.Background(), f.userID, false)
	if !errors.Is(err, ErrPlanPersistence) {
		t.Fatalf("error = %v, want ErrPlanPersistence", err)
	}
}

func TestGenerateOrReuse_ArchivesSnapshot(t *testing.T) {
	f := newPlanServiceFixture(t)
	profile := validProfile(f.userID)
	f.profiles.profiles[f.userID] = profile
	f.gen.raw = delegatedPlanJSON(t, profile)

	version, err := f.svc.GenerateOrReuse(context.Background(), f.userID, false)
	if err != nil {
		t.Fatalf("GenerateOrReuse returned error: %v", err)
	}

	key := fmt.Sprintf("plans/%s/%s.json", f.userID.Hex(), version.ID.Hex())
	body, ok := f.archive.objects[key]
	if !ok {
		t.Fatalf("snapshot not stored under %q", key)
	}
	if string(body) != version.PlanJSON {
		t.Error("snapshot body does not match stored plan")
	}
}

func TestGenerateOrReuse_ArchiveFailureIsBestEffort(t *testing.T) {
	f := newPlanServiceFixture(t)
	profile := validProfile(f.userID)
	f.profiles.profiles[f.userID] = profile
	f.gen.raw = delegatedPlanJSON(t, profile)
	f.archive.storeErr = errors.New("bucket unavailable")

	if _, err := f.svc.GenerateOrReuse(context.Background(), f.userID, false); err != nil {
		t.Fatalf("archive failure should not fail generation, got: %v", err)
	}
}

func TestGenerateOrReuse_NoArchiveConfigured(t *testing.T) {
	f := newPlanServiceFixture(t)
	f.svc.archive = nil
	profile := validProfile(f.userID)
	f.profiles.profiles[f.userID] = profile
	f.gen.raw = delegatedPlanJSON(t, profile)

	if _, err := f.svc.GenerateOrReuse(context.Background(), f.userID, false); err != nil {
		t.Fatalf("GenerateOrReuse returned error: %v", err)
	}
}

func TestGetLatest_NotFound(t *testing.T) {
	f := newPlanServiceFixture(t)

	_, err := f.svc.GetLatest(context.Background(), f.userID)
	if !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("error = %v, want ErrPlanNotFound", err)
	}
}

func TestExportURL(t *testing.T) {
	f := newPlanServiceFixture(t)
	profile := validProfile(f.userID)
	f.profiles.profiles[f.userID] = profile
	f.gen.raw = delegatedPlanJSON(t, profile)

	if _, err := f.svc.ExportURL(context.Background(), f.userID); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("error before generation = %v, want ErrPlanNotFound", err)
	}

	version, err := f.svc.GenerateOrReuse(context.Background(), f.userID, false)
	if err != nil {
		t.Fatalf("GenerateOrReuse returned error: %v", err)
	}

	url, err := f.svc.ExportURL(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("ExportURL returned error: %v", err)
	}
	want := fmt.Sprintf("https://archive.test/plans/%s/%s.json", f.userID.Hex(), version.ID.Hex())
	if url != want {
		t.Errorf("url = %q, want %q", url, want)
	}
}

func TestExportURL_NoArchiveConfigured(t *testing.T) {
	f := newPlanServiceFixture(t)
	f.svc.archive = nil

	_, err := f.svc.ExportURL(context.Background(), f.userID)
	if !errors.Is(err, ErrExportUnavailable) {
		t.Fatalf("error = %v, want ErrExportUnavailable", err)
	}
}
