package service

import (
	"context"
	"strings"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/model"
	"github.com/Kosench/shortlink/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService struct {
	users      repository.UserRepository
	bcryptCost int
	logger     *zap.Logger
}

func NewUserService(users repository.UserRepository, bcryptCost int, logger *zap.Logger) *UserService {
	return &UserService{
		users:      users,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToProfile(), nil
}

// UpdateProfile меняет имя и/или пароль; пустой запрос ничего не меняет
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	changed := false
	if req.Name != nil {
		user.Name = model.StringPtr(strings.TrimSpace(*req.Name))
		changed = true
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return nil, apperrors.NewValidationError("password", "password must be at least 8 characters")
		}
		hash, err := hashPassword(*req.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = &hash
		changed = true
	}

	if changed {
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("user profile updated",
			zap.String("user_id", user.ID.String()),
			zap.Bool("password_changed", req.Password != nil),
		)
	}

	return user.ToProfile(), nil
}

// DeleteAccount удаляет пользователя; ссылки и клики удаляются каскадно
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("user account deleted", zap.String("user_id", userID.String()))
	return nil
}
