package database

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

// UserRepositoryAdapter implements the UserRepository port using GORM
type UserRepositoryAdapter struct {
	db *gorm.DB
}

// NewUserRepositoryAdapter creates a new user repository adapter
func NewUserRepositoryAdapter(db *gorm.DB) ports.UserRepository {
	return &UserRepositoryAdapter{db: db}
}

// Save persists a new user
func (r *UserRepositoryAdapter) Save(ctx context.Context, user *ports.UserData) error {
	if user == nil {
		return errors.NewValidationError("user cannot be nil")
	}

	model := r.dataToModel(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.NewDatabaseError("failed to save user", err)
	}

	user.ID = model.ID
	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

// Update modifies an existing user
func (r *UserRepositoryAdapter) Update(ctx context.Context, user *ports.UserData) error {
	if user == nil {
		return errors.NewValidationError("user cannot be nil")
	}
	if user.ID == 0 {
		return errors.NewValidationError("user ID cannot be zero for update")
	}

	model := r.dataToModel(user)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return errors.NewDatabaseError("failed to update user", err)
	}

	user.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID retrieves a user by ID
func (r *UserRepositoryAdapter) FindByID(ctx context.Context, id uint) (*ports.UserData, error) {
	if id == 0 {
		return nil, errors.NewValidationError("user ID cannot be zero")
	}

	var model UserModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("user not found")
		}
		return nil, errors.NewDatabaseError("failed to find user by ID", err)
	}

	return r.modelToData(&model), nil
}

// FindByEmail retrieves a user by email
func (r *UserRepositoryAdapter) FindByEmail(ctx context.Context, email string) (*ports.UserData, error) {
	if email == "" {
		return nil, errors.NewValidationError("email cannot be empty")
	}

	var model UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("user not found")
		}
		return nil, errors.NewDatabaseError("failed to find user by email", err)
	}

	return r.modelToData(&model), nil
}

// ListWithToken returns every user with a registered push token
func (r *UserRepositoryAdapter) ListWithToken(ctx context.Context) ([]*ports.UserData, error) {
	var models []UserModel
	err := r.db.WithContext(ctx).
		Where("fcm_token IS NOT NULL AND fcm_token <> ''").
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list users with token", err)
	}

	users := make([]*ports.UserData, 0, len(models))
	for i := range models {
		users = append(users, r.modelToData(&models[i]))
	}
	return users, nil
}

// Delete removes a user and everything the user owns in one transaction
func (r *UserRepositoryAdapter) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return errors.NewValidationError("user ID cannot be zero")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cycles := tx.Model(&CycleModel{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("cycle_id IN (?)", cycles).Delete(&PhaseModel{}).Error; err != nil {
			return errors.NewDatabaseError("failed to delete user phases", err)
		}

		owned := []struct {
			model interface{}
			name  string
		}{
			{&PeriodDayModel{}, "period days"},
			{&IrregularityModel{}, "irregularities"},
			{&NotificationModel{}, "notifications"},
			{&CycleModel{}, "cycles"},
		}
		for _, o := range owned {
			if err := tx.Where("user_id = ?", id).Delete(o.model).Error; err != nil {
				return errors.NewDatabaseError("failed to delete user "+o.name, err)
			}
		}

		result := tx.Delete(&UserModel{}, id)
		if result.Error != nil {
			return errors.NewDatabaseError("failed to delete user", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.NewNotFoundError("user not found")
		}
		return nil
	})
}

func (r *UserRepositoryAdapter) dataToModel(data *ports.UserData) *UserModel {
	return &UserModel{
		ID:              data.ID,
		Name:            data.Name,
		Email:           data.Email,
		AvgCycleLength:  data.AvgCycleLength,
		AvgPeriodLength: data.AvgPeriodLength,
		FCMToken:        data.FCMToken,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

func (r *UserRepositoryAdapter) modelToData(model *UserModel) *ports.UserData {
	return &ports.UserData{
		ID:              model.ID,
		Name:            model.Name,
		Email:           model.Email,
		AvgCycleLength:  model.AvgCycleLength,
		AvgPeriodLength: model.AvgPeriodLength,
		FCMToken:        model.FCMToken,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
