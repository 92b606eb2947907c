package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/server/auth"
	"github.com/dmitrijs2005/contactkeeper/internal/server/avatar"
	"github.com/dmitrijs2005/contactkeeper/internal/server/models"
	"github.com/dmitrijs2005/contactkeeper/internal/server/repositories/repomanager"
)

// AvatarUploader stores an avatar image and returns its public URL.
type AvatarUploader interface {
	Upload(ctx context.Context, username string, img avatar.Image) (string, error)
}

// UserService manages profiles of existing users and seeds admin accounts.
type UserService struct {
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	uploader    AvatarUploader
	logger      logging.Logger
}

func NewUserService(m repomanager.RepositoryManager, hasher auth.PasswordHasher, uploader AvatarUploader, logger logging.Logger) *UserService {
	return &UserService{
		repomanager: m,
		hasher:      hasher,
		uploader:    uploader,
		logger:      logger.With("module", "users"),
	}
}

// Me returns the current state of the authenticated user.
func (s *UserService) Me(ctx context.Context, user *models.User) (*models.User, error) {
	fresh, err := s.repomanager.Users(s.repomanager.Conn()).GetByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return fresh, nil
}

// UpdateAvatar uploads img and makes it the avatar of user. Only admins may
// change avatars.
func (s *UserService) UpdateAvatar(ctx context.Context, user *models.User, img avatar.Image) (*models.User, error) {
	if !user.IsAdmin() {
		return nil, common.ErrForbidden
	}
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: avatar storage is not configured", common.ErrorInternal)
	}
	if img.Size <= 0 || img.Size > avatar.MaxSize {
		return nil, fmt.Errorf("%w: avatar must be 1..%d bytes", common.ErrValidation, avatar.MaxSize)
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		return nil, fmt.Errorf("%w: avatar must be an image", common.ErrValidation)
	}

	url, err := s.uploader.Upload(ctx, user.Username, img)
	if err != nil {
		s.logger.Error(ctx, "avatar upload failed", "user_id", user.ID, "error", err)
		return nil, fmt.Errorf("error uploading avatar: %w", err)
	}

	updated, err := s.repomanager.Users(s.repomanager.Conn()).UpdateAvatar(ctx, user.Email, url)
	if err != nil {
		return nil, fmt.Errorf("error updating avatar: %w", err)
	}
	return updated, nil
}

// CreateAdmin creates a confirmed account with the ADMIN role.
func (s *UserService) CreateAdmin(ctx context.Context, in models.NewUser) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.repomanager.Conn()).Create(ctx, &models.User{
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: hash,
		Confirmed:      true,
		Role:           models.RoleAdmin,
		Avatar:         avatar.GravatarURL(in.Email),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "admin created", "user_id", user.ID)
	return user, nil
}
