package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"nutriplan/domain"
	"nutriplan/entities"
	"nutriplan/pkg/jwt"
	"nutriplan/pkg/nutrition"
)

type (
	UserService interface {
		GetProfile(ctx context.Context, telegramID int64) (domain.ProfileResponse, error)
		SaveBiometrics(ctx context.Context, telegramID int64, b domain.Biometrics) error
		CalculateTargets(ctx context.Context, telegramID int64) (domain.Targets, error)
		IssueToken(ctx context.Context, telegramID int64) (domain.TokenResponse, error)
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
		validator      *validator.Validate
		logger         *zap.Logger
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService, validator *validator.Validate, logger *zap.Logger) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
		validator:      validator,
		logger:         logger,
	}
}

func (s *userService) GetProfile(ctx context.Context, telegramID int64) (domain.ProfileResponse, error) {
	user, err := s.userRepository.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return domain.ProfileResponse{}, err
	}
	return ToProfileResponse(user), nil
}

func (s *userService) SaveBiometrics(ctx context.Context, telegramID int64, b domain.Biometrics) error {
	if err := s.validator.Struct(b); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidBiometrics, err)
	}
	if _, err := s.userRepository.SaveBiometrics(ctx, telegramID, b); err != nil {
		return err
	}
	s.logger.Info("biometrics saved", zap.Int64("telegram_id", telegramID))
	return nil
}

func (s *userService) CalculateTargets(ctx context.Context, telegramID int64) (domain.Targets, error) {
	user, err := s.userRepository.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return domain.Targets{}, domain.ErrProfileIncomplete
		}
		return domain.Targets{}, err
	}
	b, ok := BiometricsOf(user)
	if !ok {
		return domain.Targets{}, domain.ErrProfileIncomplete
	}

	targets, err := nutrition.ComputeFromBiometrics(b)
	if err != nil {
		return domain.Targets{}, err
	}
	if err := s.userRepository.SaveTargets(ctx, telegramID, targets); err != nil {
		return domain.Targets{}, err
	}
	s.logger.Info("targets calculated",
		zap.Int64("telegram_id", telegramID),
		zap.Float64("calories", targets.Calories),
	)
	return targets, nil
}

func (s *userService) IssueToken(ctx context.Context, telegramID int64) (domain.TokenResponse, error) {
	if _, err := s.userRepository.GetByTelegramID(ctx, telegramID); err != nil {
		return domain.TokenResponse{}, err
	}
	token, expiresAt, err := s.jwtService.GenerateToken(strconv.FormatInt(telegramID, 10))
	if err != nil {
		return domain.TokenResponse{}, err
	}
	return domain.TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// BiometricsOf returns the stored biometrics when all six fields are set.
func BiometricsOf(u *entities.User) (domain.Biometrics, bool) {
	if u == nil || !u.HasBiometrics() {
		return domain.Biometrics{}, false
	}
	return domain.Biometrics{
		Age:           *u.Age,
		Gender:        domain.Gender(*u.Gender),
		Weight:        *u.Weight,
		Height:        *u.Height,
		ActivityLevel: domain.ActivityLevel(*u.ActivityLevel),
		Goal:          domain.Goal(*u.Goal),
	}, true
}

func TargetsOf(u *entities.User) (domain.Targets, bool) {
	if u == nil || !u.HasTargets() {
		return domain.Targets{}, false
	}
	return domain.Targets{
		Calories:     *u.CalorieTarget,
		ProteinGrams: *u.ProteinTargetGrams,
		FatGrams:     *u.FatTargetGrams,
		CarbGrams:    *u.CarbTargetGrams,
	}, true
}

func ToProfileResponse(u *entities.User) domain.ProfileResponse {
	res := domain.ProfileResponse{
		TelegramID:       u.TelegramID,
		WeekWindowStart:  u.WeekWindowStart,
		WeekRequestCount: u.WeekRequestCount,
	}
	if b, ok := BiometricsOf(u); ok {
		res.Biometrics = &b
	}
	if t, ok := TargetsOf(u); ok {
		res.Targets = &t
	}
	return res
}
