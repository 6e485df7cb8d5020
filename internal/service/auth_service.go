package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Kosench/shortlink/internal/auth"
	"github.com/Kosench/shortlink/internal/cache"
	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/metrics"
	"github.com/Kosench/shortlink/internal/model"
	"github.com/Kosench/shortlink/internal/repository"
	"github.com/Kosench/shortlink/internal/utils"
	"go.uber.org/zap"
)

// TokenIssuer - выпуск и проверка пар JWT
type TokenIssuer interface {
	Issue(user *model.User) (*model.TokenPair, error)
	ParseRefresh(token string) (*auth.Claims, error)
}

type AuthOptions struct {
	BcryptCost  int
	LinkByEmail bool
}

type AuthService struct {
	users   repository.UserRepository
	tokens  TokenIssuer
	revoker cache.TokenRevoker
	opts    AuthOptions
	logger  *zap.Logger
	now     func() time.Time

	// хеш-пустышка для сравнения, когда пользователь не найден, чтобы
	// время ответа не выдавало существование логина
	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer, revoker cache.TokenRevoker, opts AuthOptions, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		revoker: revoker,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenPair, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	exists, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if exists {
		metrics.RecordAuth("register", false)
		return nil, apperrors.ErrUserExists
	}

	hash, err := hashPassword(req.Password, s.opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: &hash,
		Name:         model.StringPtr(strings.TrimSpace(req.Name)),
	}
	// Уникальные индексы ловят регистрацию, параллельную проверке выше
	if err := s.users.Create(ctx, user); err != nil {
		metrics.RecordAuth("register", false)
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)
	metrics.RecordAuth("register", true)
	return s.issue(user)
}

// Login возвращает одну и ту же ошибку для неизвестного логина,
// пользователя без пароля и неверного пароля
func (s *AuthService) Login(ctx context.Context, login, password string) (*model.TokenPair, error) {
	user, err := s.users.GetByEmailOrUsername(ctx, strings.TrimSpace(login))
	if err != nil {
		if !apperrors.IsNotFound(err) {
			return nil, err
		}
		checkPassword(s.fallbackHash(), password)
		metrics.RecordAuth("password", false)
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.HasPassword() {
		checkPassword(s.fallbackHash(), password)
		metrics.RecordAuth("password", false)
		return nil, apperrors.ErrInvalidCredentials
	}

	if !checkPassword(*user.PasswordHash, password) {
		metrics.RecordAuth("password", false)
		return nil, apperrors.ErrInvalidCredentials
	}

	metrics.RecordAuth("password", true)
	return s.issue(user)
}

// Refresh обменивает refresh токен на новую пару. Использованный jti
// отзывается атомарно, поэтому повторное предъявление токена отклоняется.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		metrics.RecordAuth("refresh", false)
		return nil, apperrors.ErrInvalidToken
	}

	fresh, err := s.revoker.Revoke(ctx, claims.ID, s.remaining(claims))
	if err != nil {
		return nil, apperrors.NewStorageError("TOKEN_STORE_ERROR", "failed to rotate refresh token", err)
	}
	if !fresh {
		s.logger.Warn("refresh token reuse rejected",
			zap.String("jti", claims.ID),
			zap.String("user_id", claims.Subject),
		)
		metrics.RecordAuth("refresh", false)
		return nil, apperrors.ErrInvalidToken
	}

	userID, _ := claims.UserID()
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			metrics.RecordAuth("refresh", false)
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}

	metrics.RecordAuth("refresh", true)
	return s.issue(user)
}

// Logout отзывает refresh токен, если он валиден. Ошибки не возвращаются:
// выход всегда успешен с точки зрения клиента.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return
	}

	if _, err := s.revoker.Revoke(ctx, claims.ID, s.remaining(claims)); err != nil {
		s.logger.Warn("failed to revoke refresh token on logout",
			zap.String("jti", claims.ID),
			zap.Error(err),
		)
	}
}

// LoginWithOAuth находит или создает пользователя внешней учетной записи и выдает токены
func (s *AuthService) LoginWithOAuth(ctx context.Context, identity *model.OAuthIdentity) (*model.TokenPair, error) {
	user, err := s.ResolveOAuthIdentity(ctx, identity)
	if err != nil {
		metrics.RecordAuth(identity.Provider, false)
		return nil, err
	}

	metrics.RecordAuth(identity.Provider, true)
	return s.issue(user)
}

// ResolveOAuthIdentity сопоставляет внешнюю учетную запись пользователю:
// сначала по паре (provider, provider_id), затем по email, иначе создает нового.
func (s *AuthService) ResolveOAuthIdentity(ctx context.Context, identity *model.OAuthIdentity) (*model.User, error) {
	if identity == nil || strings.TrimSpace(identity.Provider) == "" {
		return nil, apperrors.NewValidationError("provider", "provider is required")
	}
	if strings.TrimSpace(identity.ProviderID) == "" {
		return nil, apperrors.NewValidationError("provider_id", "provider id is required")
	}
	email := normalizeEmail(identity.Email)
	if email == "" {
		return nil, apperrors.NewValidationError("email", "email is required")
	}

	user, err := s.users.GetByProvider(ctx, identity.Provider, identity.ProviderID)
	if err == nil {
		return user, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	user, err = s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return s.linkExisting(ctx, user, identity)
	case !apperrors.IsNotFound(err):
		return nil, err
	}

	return s.createFromIdentity(ctx, identity, email)
}

func (s *AuthService) linkExisting(ctx context.Context, user *model.User, identity *model.OAuthIdentity) (*model.User, error) {
	if !s.opts.LinkByEmail || !identity.EmailVerified {
		return nil, apperrors.NewConflictError("email", "an account with this email already exists")
	}

	user.LinkIdentity(identity.Provider, identity.ProviderID, identity.Picture)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("external identity linked by email",
		zap.String("user_id", user.ID.String()),
		zap.String("provider", identity.Provider),
	)
	return user, nil
}

// createFromIdentity перебирает base, base1, base2... пока username не
// окажется свободным. Проигранная гонка за identity возвращает победителя.
func (s *AuthService) createFromIdentity(ctx context.Context, identity *model.OAuthIdentity, email string) (*model.User, error) {
	base := utils.SlugifyUsername(identity.Name)

	for suffix := 0; ; suffix++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("username allocation aborted: %w", err)
		}

		candidate := base
		if suffix > 0 {
			candidate = base + strconv.Itoa(suffix)
		}

		taken, err := s.users.ExistsByUsername(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		user := &model.User{
			Email:    email,
			Username: candidate,
			Name:     model.StringPtr(strings.TrimSpace(identity.Name)),
		}
		user.LinkIdentity(identity.Provider, identity.ProviderID, identity.Picture)

		err = s.users.Create(ctx, user)
		if err == nil {
			s.logger.Info("user created from external identity",
				zap.String("user_id", user.ID.String()),
				zap.String("provider", identity.Provider),
				zap.String("username", candidate),
			)
			return user, nil
		}
		if !errors.Is(err, apperrors.ErrUserExists) {
			return nil, err
		}

		// Уникальный индекс сработал: выясняем, на чем именно
		if winner, err := s.users.GetByProvider(ctx, identity.Provider, identity.ProviderID); err == nil {
			return winner, nil
		}
		if existing, err := s.users.GetByEmail(ctx, email); err == nil {
			return s.linkExisting(ctx, existing, identity)
		}
	}
}

func (s *AuthService) issue(user *model.User) (*model.TokenPair, error) {
	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return pair, nil
}

func (s *AuthService) remaining(claims *auth.Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return time.Second
	}
	return claims.ExpiresAt.Sub(s.now())
}

func (s *AuthService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		hash, err := hashPassword("shortlink-timing-equalizer", s.opts.BcryptCost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
