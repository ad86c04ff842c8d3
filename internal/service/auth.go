package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/cookbook/backend/internal/models"
	"github.com/pageza/cookbook/backend/internal/types"
)

type AuthOptions struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AuthService issues and verifies access and refresh tokens. Refresh tokens
// rotate: every refresh revokes the token it was called with.
type AuthService struct {
	db     *gorm.DB
	store  TokenStore
	logger *zap.Logger
	opts   AuthOptions
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, store TokenStore, logger *zap.Logger, opts AuthOptions) *AuthService {
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 60 * time.Minute
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 24 * time.Hour
	}
	if store == nil {
		store = NewMemoryTokenStore()
	}
	return &AuthService{db: db, store: store, logger: logger, opts: opts, now: time.Now}
}

// Login checks the credentials of an active account and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *types.TokenPair, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, storageError("load user", err)
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.IssueTokens(&user)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	return &user, pair, nil
}

func (s *AuthService) IssueTokens(user *models.User) (*types.TokenPair, error) {
	access, err := s.sign(user.ID, types.AccessToken, s.opts.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user.ID, types.RefreshToken, s.opts.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &types.TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new pair and revokes the old one.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (*types.TokenPair, error) {
	claims, err := s.verify(ctx, refresh, types.RefreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.revoke(ctx, claims); err != nil {
		return nil, err
	}
	return s.IssueTokens(user)
}

// Logout revokes a refresh token owned by actor.
func (s *AuthService) Logout(ctx context.Context, actor types.Identity, refresh string) error {
	claims, err := s.verify(ctx, refresh, types.RefreshToken)
	if err != nil {
		return err
	}
	if claims.UserID != actor.UserID {
		return ErrInvalidToken
	}
	if err := s.revoke(ctx, claims); err != nil {
		return err
	}
	s.logger.Info("user logged out", zap.String("user_id", actor.UserID.String()))
	return nil
}

// Authenticate resolves an access token to the identity of an active user.
func (s *AuthService) Authenticate(ctx context.Context, access string) (*types.Identity, error) {
	claims, err := s.verify(ctx, access, types.AccessToken)
	if err != nil {
		return nil, err
	}
	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return &types.Identity{UserID: user.ID, IsAdmin: user.IsAdmin}, nil
}

func (s *AuthService) sign(userID uuid.UUID, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		TokenType: tokenType,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) verify(ctx context.Context, raw, tokenType string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType || claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	if tokenType == types.RefreshToken {
		revoked, err := s.store.Revoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}
	return claims, nil
}

func (s *AuthService) revoke(ctx context.Context, claims *types.TokenClaims) error {
	// The entry only needs to outlive the token itself.
	return s.store.Revoke(ctx, claims.ID, claims.ExpiresAt.Time.Sub(s.now()))
}

func (s *AuthService) activeUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, storageError("load user", err)
	}
	return &user, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
