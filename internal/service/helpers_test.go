package service

import (
	"context"
	"testing"
	"time"

	"github.com/Kosench/shortlink/internal/auth"
	"github.com/Kosench/shortlink/internal/cache"
	"github.com/Kosench/shortlink/internal/model"
	"github.com/Kosench/shortlink/internal/repository"
	"github.com/Kosench/shortlink/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testBaseURL = "http://localhost:3000"

type fixture struct {
	db        *gorm.DB
	users     repository.UserRepository
	links     repository.LinkRepository
	clicks    repository.ClickRepository
	store     *cache.MemoryStore
	issuer    *auth.JWTIssuer
	linkSvc   *LinkService
	authSvc   *AuthService
	userSvc   *UserService
	analytics *AnalyticsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	logger := zap.NewNop()

	f := &fixture{
		db:     db,
		users:  repository.NewUserRepository(db),
		links:  repository.NewLinkRepository(db),
		clicks: repository.NewClickRepository(db),
		store:  cache.NewMemoryStore(),
		issuer: auth.NewJWTIssuer(auth.Config{
			AccessSecret:  "test-access-secret",
			RefreshSecret: "test-refresh-secret",
			AccessTTL:     time.Minute,
			RefreshTTL:    time.Hour,
			Issuer:        "shortlink-test",
		}),
	}

	f.linkSvc = NewLinkService(f.links, f.clicks, testBaseURL+"/", logger)
	f.authSvc = NewAuthService(f.users, f.issuer, f.store, AuthOptions{BcryptCost: bcrypt.MinCost, LinkByEmail: true}, logger)
	f.userSvc = NewUserService(f.users, bcrypt.MinCost, logger)
	f.analytics = NewAnalyticsService(f.links, f.clicks)
	return f
}

func (f *fixture) createUser(t *testing.T, email, username string) *model.User {
	t.Helper()

	user := &model.User{Email: email, Username: username}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *fixture) countUsers(t *testing.T) int64 {
	t.Helper()

	var count int64
	require.NoError(t, f.db.Model(&model.User{}).Count(&count).Error)
	return count
}
