package user

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"

	"luna.app/internal/ports"
	"luna.app/pkg/errors"
	"luna.app/pkg/validation"
)

type UseCase struct {
	repo        ports.UserRepository
	invalidator ports.UserDirectoryInvalidator
	queue       ports.EmailQueue
	config      ports.CycleConfigProvider
	clock       ports.Clock
	logger      ports.Logger
}

type UseCaseDependencies struct {
	Repo        ports.UserRepository
	Invalidator ports.UserDirectoryInvalidator
	Queue       ports.EmailQueue
	Config      ports.CycleConfigProvider
	Clock       ports.Clock
	Logger      ports.Logger
}

// RegisterParams describes a new user. Zero averages take the configured defaults.
type RegisterParams struct {
	Name            string
	Email           string
	AvgCycleLength  int
	AvgPeriodLength int
	FCMToken        string
}

// SettingsParams changes profile settings. Nil fields are left untouched;
// an empty FCMToken unregisters the device.
type SettingsParams struct {
	UserID          uint
	Name            *string
	AvgCycleLength  *int
	AvgPeriodLength *int
	FCMToken        *string
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Repo == nil {
		return nil, errors.NewValidationError("user repository is required")
	}
	if deps.Invalidator == nil {
		return nil, errors.NewValidationError("user directory invalidator is required")
	}
	if deps.Queue == nil {
		return nil, errors.NewValidationError("email queue is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Clock == nil {
		return nil, errors.NewValidationError("clock is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	return &UseCase{
		repo:        deps.Repo,
		invalidator: deps.Invalidator,
		queue:       deps.Queue,
		config:      deps.Config,
		clock:       deps.Clock,
		logger:      deps.Logger,
	}, nil
}

func validateLengths(cycleLength, periodLength int) error {
	if !validation.IsInRange(cycleLength, MinCycleLength, MaxCycleLength) {
		return errors.NewValidationError(fmt.Sprintf("avg cycle length must be between %d and %d", MinCycleLength, MaxCycleLength))
	}
	if !validation.IsInRange(periodLength, MinPeriodLength, MaxPeriodLength) {
		return errors.NewValidationError(fmt.Sprintf("avg period length must be between %d and %d", MinPeriodLength, MaxPeriodLength))
	}
	return nil
}

// Register creates a user and queues a welcome email
func (uc *UseCase) Register(ctx context.Context, params RegisterParams) (*User, error) {
	name, ok := validation.TrimAndValidate(params.Name)
	if !ok {
		return nil, errors.NewValidationError("name is required")
	}
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if !validation.IsValidEmail(email) {
		return nil, errors.NewValidationError("invalid email format")
	}

	cfg := uc.config.GetCycleConfig()
	cycleLength := params.AvgCycleLength
	if cycleLength == 0 {
		cycleLength = cfg.DefaultCycleLength
	}
	periodLength := params.AvgPeriodLength
	if periodLength == 0 {
		periodLength = cfg.DefaultPeriodLength
	}
	if err := validateLengths(cycleLength, periodLength); err != nil {
		return nil, err
	}

	existing, err := uc.repo.FindByEmail(ctx, email)
	if err != nil && !errors.IsNotFoundError(err) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return nil, errors.NewAlreadyExistsError("email already registered")
	}

	data := &ports.UserData{
		Name:            name,
		Email:           email,
		AvgCycleLength:  cycleLength,
		AvgPeriodLength: periodLength,
		FCMToken:        strings.TrimSpace(params.FCMToken),
	}
	if err := uc.repo.Save(ctx, data); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	uc.logger.Info("User registered", ports.F("user_id", data.ID))
	uc.enqueueWelcome(ctx, data)

	return fromData(data), nil
}

// Get returns a user profile
func (uc *UseCase) Get(ctx context.Context, id uint) (*User, error) {
	if id == 0 {
		return nil, errors.NewValidationError("user id is required")
	}

	data, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return fromData(data), nil
}

// UpdateSettings changes averages, name or push token and drops the cached profile
func (uc *UseCase) UpdateSettings(ctx context.Context, params SettingsParams) (*User, error) {
	if params.UserID == 0 {
		return nil, errors.NewValidationError("user id is required")
	}

	data, err := uc.repo.FindByID(ctx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", params.UserID, err)
	}

	if params.Name != nil {
		name, ok := validation.TrimAndValidate(*params.Name)
		if !ok {
			return nil, errors.NewValidationError("name cannot be empty")
		}
		data.Name = name
	}
	if params.AvgCycleLength != nil {
		data.AvgCycleLength = *params.AvgCycleLength
	}
	if params.AvgPeriodLength != nil {
		data.AvgPeriodLength = *params.AvgPeriodLength
	}
	if params.FCMToken != nil {
		data.FCMToken = strings.TrimSpace(*params.FCMToken)
	}
	if err := validateLengths(data.AvgCycleLength, data.AvgPeriodLength); err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, data); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if err := uc.invalidator.Invalidate(ctx, data.ID); err != nil {
		uc.logger.Warn("Failed to invalidate cached user", ports.F("user_id", data.ID), ports.F("error", err))
	}

	uc.logger.Info("User settings updated", ports.F("user_id", data.ID))
	return fromData(data), nil
}

// Delete removes the user and all of the user's cycle history
func (uc *UseCase) Delete(ctx context.Context, userID uint) error {
	if userID == 0 {
		return errors.NewValidationError("user id is required")
	}

	if err := uc.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user %d: %w", userID, err)
	}
	if err := uc.invalidator.Invalidate(ctx, userID); err != nil {
		uc.logger.Warn("Failed to invalidate cached user", ports.F("user_id", userID), ports.F("error", err))
	}

	uc.logger.Info("User deleted", ports.F("user_id", userID))
	return nil
}

func (uc *UseCase) enqueueWelcome(ctx context.Context, data *ports.UserData) {
	job := ports.EmailJob{
		ID: uuid.NewString(),
		Params: ports.EmailParams{
			To:      data.Email,
			Subject: "Welcome to Luna",
			Body: fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your account is ready. Log the first day of your next period to start getting predictions.</p>
		<p>We start from a %d-day cycle with a %d-day period and adjust as you log more cycles.</p>`,
				html.EscapeString(data.Name), data.AvgCycleLength, data.AvgPeriodLength),
			IsHTML: true,
		},
		EnqueuedAt: uc.clock.Now(),
	}

	if err := uc.queue.Enqueue(ctx, job); err != nil {
		uc.logger.Error("Failed to enqueue welcome email", ports.F("user_id", data.ID), ports.F("error", err))
	}
}
