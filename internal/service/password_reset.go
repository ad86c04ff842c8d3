package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/cookbook/backend/internal/models"
	"github.com/pageza/cookbook/backend/internal/types"
)

const (
	resetTokenBytes  = 32
	resetTokenTTL    = time.Hour
	maxResetsPerHour = 3
)

// ResetRequestedMessage is returned whether or not the email belongs to an account.
const ResetRequestedMessage = "If an account with that email exists, a password reset link has been sent."

// PasswordResetService issues single-use reset tokens and redeems them.
type PasswordResetService struct {
	db          *gorm.DB
	mailer      Mailer
	frontendURL string
	logger      *zap.Logger
	now         func() time.Time
	// dispatch runs email delivery. It defaults to a new goroutine.
	dispatch func(func())
}

func NewPasswordResetService(db *gorm.DB, mailer Mailer, frontendURL string, logger *zap.Logger) *PasswordResetService {
	return &PasswordResetService{
		db:          db,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
		now:         time.Now,
		dispatch:    func(f func()) { go f() },
	}
}

// Request issues a token for an active account and mails it. Unknown emails
// and throttled accounts are not reported to the caller.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return storageError("load user", err)
	}

	now := s.now()
	var recent int64
	err = s.db.WithContext(ctx).Model(&models.PasswordResetToken{}).
		Where("user_id = ? AND created_at > ?", user.ID, now.Add(-time.Hour)).
		Count(&recent).Error
	if err != nil {
		return storageError("count reset tokens", err)
	}
	if recent >= maxResetsPerHour {
		s.logger.Warn("password reset throttled", zap.String("user_id", user.ID.String()))
		return nil
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	record := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(resetTokenTTL),
		CreatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return storageError("create reset token", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)
	s.dispatch(func() {
		if err := s.mailer.SendPasswordReset(&user, resetURL); err != nil {
			s.logger.Error("failed to send password reset email", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	})
	return nil
}

// Confirm sets a new password using an unused, unexpired token.
func (s *PasswordResetService) Confirm(ctx context.Context, req *types.PasswordResetConfirmRequest) error {
	if err := validateStruct(req).Err(); err != nil {
		return err
	}

	invalid := NewValidationError()
	invalid.Add("token", "Invalid or expired token.")

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.PasswordResetToken
		err := tx.Where("token = ?", req.Token).First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid
		}
		if err != nil {
			return storageError("load reset token", err)
		}
		if !record.Usable(s.now()) {
			return invalid
		}

		hash, err := HashPassword(req.NewPassword)
		if err != nil {
			return err
		}
		res := tx.Model(&models.User{}).Where("id = ?", record.UserID).Update("password_hash", hash)
		if res.Error != nil {
			return storageError("update password", res.Error)
		}
		if res.RowsAffected == 0 {
			return invalid
		}
		if err := tx.Model(&record).Update("used", true).Error; err != nil {
			return storageError("mark reset token used", err)
		}
		s.logger.Info("password reset", zap.String("user_id", record.UserID.String()))
		return nil
	})
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
