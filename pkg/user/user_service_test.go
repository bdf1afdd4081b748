package user

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"nutriplan/domain"
	"nutriplan/entities"
	"nutriplan/pkg/jwt"
)

type memoryUserRepo struct {
	users map[int64]*entities.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[int64]*entities.User{}}
}

func (r *memoryUserRepo) GetByTelegramID(_ context.Context, telegramID int64) (*entities.User, error) {
	u, ok := r.users[telegramID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memoryUserRepo) SaveBiometrics(_ context.Context, telegramID int64, b domain.Biometrics) (*entities.User, error) {
	u, ok := r.users[telegramID]
	if !ok {
		u = &entities.User{ID: uint(len(r.users) + 1), TelegramID: telegramID}
		r.users[telegramID] = u
	}
	gender, activity, goal := string(b.Gender), string(b.ActivityLevel), string(b.Goal)
	age, weight, height := b.Age, b.Weight, b.Height
	u.Age, u.Gender, u.Weight, u.Height, u.ActivityLevel, u.Goal = &age, &gender, &weight, &height, &activity, &goal
	u.CalorieTarget, u.ProteinTargetGrams, u.FatTargetGrams, u.CarbTargetGrams = nil, nil, nil, nil
	cp := *u
	return &cp, nil
}

func (r *memoryUserRepo) SaveTargets(_ context.Context, telegramID int64, t domain.Targets) error {
	u, ok := r.users[telegramID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	c, p, f, cb := t.Calories, t.ProteinGrams, t.FatGrams, t.CarbGrams
	u.CalorieTarget, u.ProteinTargetGrams, u.FatTargetGrams, u.CarbTargetGrams = &c, &p, &f, &cb
	return nil
}

func (r *memoryUserRepo) ConsumeWeeklyRequest(_ context.Context, telegramID int64, today time.Time, limit int) (*entities.User, error) {
	u, ok := r.users[telegramID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	start, count, err := NextWeeklyWindow(u.WeekWindowStart, u.WeekRequestCount, today, limit)
	if err != nil {
		return nil, err
	}
	u.WeekWindowStart, u.WeekRequestCount = &start, count
	cp := *u
	return &cp, nil
}

func sampleBiometrics() domain.Biometrics {
	return domain.Biometrics{
		Age:           30,
		Gender:        domain.GenderMale,
		Weight:        80,
		Height:        180,
		ActivityLevel: domain.ActivityMedium,
		Goal:          domain.GoalMaintain,
	}
}

func newTestService(repo UserRepository) UserService {
	return NewUserService(repo, jwt.NewJWTService("secret"), validator.New(), nil)
}

func TestCalculateTargetsRequiresCompleteProfile(t *testing.T) {
	svc := newTestService(newMemoryUserRepo())

	if _, err := svc.CalculateTargets(context.Background(), 1); !errors.Is(err, domain.ErrProfileIncomplete) {
		t.Fatalf("expected ErrProfileIncomplete, got %v", err)
	}
}

func TestCalculateTargetsPersists(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	if err := svc.SaveBiometrics(ctx, 7, sampleBiometrics()); err != nil {
		t.Fatalf("SaveBiometrics() error = %v", err)
	}
	targets, err := svc.CalculateTargets(ctx, 7)
	if err != nil {
		t.Fatalf("CalculateTargets() error = %v", err)
	}
	if math.Abs(targets.Calories-2759) > 0.001 {
		t.Fatalf("unexpected calories %.3f", targets.Calories)
	}

	profile, err := svc.GetProfile(ctx, 7)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if profile.Targets == nil || profile.Targets.Calories != targets.Calories {
		t.Fatalf("targets were not persisted: %+v", profile.Targets)
	}
}

func TestSaveBiometricsClearsTargets(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_ = svc.SaveBiometrics(ctx, 7, sampleBiometrics())
	if _, err := svc.CalculateTargets(ctx, 7); err != nil {
		t.Fatalf("CalculateTargets() error = %v", err)
	}

	updated := sampleBiometrics()
	updated.Weight = 75
	if err := svc.SaveBiometrics(ctx, 7, updated); err != nil {
		t.Fatalf("SaveBiometrics() error = %v", err)
	}
	profile, _ := svc.GetProfile(ctx, 7)
	if profile.Targets != nil {
		t.Fatalf("expected targets to be cleared, got %+v", profile.Targets)
	}
}

func TestSaveBiometricsValidatesRanges(t *testing.T) {
	svc := newTestService(newMemoryUserRepo())

	b := sampleBiometrics()
	b.Age = 15
	if err := svc.SaveBiometrics(context.Background(), 1, b); !errors.Is(err, domain.ErrInvalidBiometrics) {
		t.Fatalf("expected ErrInvalidBiometrics, got %v", err)
	}
}

func TestIssueTokenRequiresProfile(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.IssueToken(ctx, 5); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	_ = svc.SaveBiometrics(ctx, 5, sampleBiometrics())
	res, err := svc.IssueToken(ctx, 5)
	if err != nil || res.Token == "" {
		t.Fatalf("IssueToken() = %+v, %v", res, err)
	}
}
