package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/cookbook/backend/internal/models"
	"github.com/pageza/cookbook/backend/internal/types"
)

// UserService manages accounts and profiles.
type UserService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewUserService(db *gorm.DB, logger *zap.Logger) *UserService {
	return &UserService{db: db, logger: logger}
}

// Register creates a regular account. The email must not be used by any
// account, including deactivated ones.
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error) {
	req.Email = models.NormalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	verr := validateStruct(req)
	if req.Email != "" {
		if err := s.checkEmailAvailable(ctx, verr, req.Email, uuid.Nil); err != nil {
			return nil, err
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, storageError("create user", err)
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "user", ID: id.String()}
	}
	if err != nil {
		return nil, storageError("load user", err)
	}
	return &user, nil
}

// UpdateProfile applies the fields present in req. A password change needs
// the current password and a matching confirmation.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req *types.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := models.NormalizeEmail(*req.Email)
		req.Email = &email
	}
	for _, name := range []*string{req.FirstName, req.LastName} {
		if name != nil {
			*name = strings.TrimSpace(*name)
		}
	}

	verr := validateStruct(req)
	if req.Email != nil && *req.Email != user.Email {
		if err := s.checkEmailAvailable(ctx, verr, *req.Email, user.ID); err != nil {
			return nil, err
		}
	}
	if req.NewPassword != "" {
		if req.ConfirmPassword == "" {
			verr.Add("confirm_password", msgRequired)
		}
		if !CheckPassword(user.PasswordHash, req.CurrentPassword) {
			verr.Add("current_password", "Current password is incorrect.")
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	columns := map[string]interface{}{}
	if req.Email != nil {
		columns["email"] = *req.Email
	}
	if req.FirstName != nil {
		columns["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		columns["last_name"] = *req.LastName
	}
	if req.NewPassword != "" {
		hash, err := HashPassword(req.NewPassword)
		if err != nil {
			return nil, err
		}
		columns["password_hash"] = hash
	}
	if len(columns) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(columns).Error; err != nil {
			return nil, storageError("update user", err)
		}
	}
	return s.GetByID(ctx, id)
}

// Deactivate soft deletes the account. Its recipes stay listed under
// AnonymousUser.
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return storageError("deactivate user", res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Resource: "user", ID: id.String()}
	}
	s.logger.Info("user deactivated", zap.String("user_id", id.String()))
	return nil
}

// Restore reactivates a soft-deleted account. Admin only.
func (s *UserService) Restore(ctx context.Context, actor types.Identity, id uuid.UUID) (*models.User, error) {
	if !actor.IsAdmin {
		return nil, &PermissionError{Action: "restore users"}
	}
	res := s.db.WithContext(ctx).Unscoped().Model(&models.User{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if res.Error != nil {
		return nil, storageError("restore user", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &NotFoundError{Resource: "deactivated user", ID: id.String()}
	}
	return s.GetByID(ctx, id)
}

// ListWithRecipes returns active users that have at least one active recipe,
// ordered by last then first name.
func (s *UserService) ListWithRecipes(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	withRecipes := s.db.Model(&models.Recipe{}).Select("creator_id").Where("creator_id IS NOT NULL")
	err := s.db.WithContext(ctx).
		Where("id IN (?)", withRecipes).
		Order("last_name").
		Order("first_name").
		Find(&users).Error
	if err != nil {
		return nil, storageError("list users", err)
	}
	return users, nil
}

func (s *UserService) checkEmailAvailable(ctx context.Context, verr *ValidationError, email string, exclude uuid.UUID) error {
	q := s.db.WithContext(ctx).Unscoped().Model(&models.User{}).Where("email = ?", email)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return storageError("check email", err)
	}
	if count > 0 {
		verr.Add("email", "A user with this email already exists.")
	}
	return nil
}
