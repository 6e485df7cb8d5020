package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/model"
	"github.com/Kosench/shortlink/internal/repository"
	"github.com/Kosench/shortlink/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collidingLinkRepository отвечает ErrShortCodeExists на первые N вставок
type collidingLinkRepository struct {
	repository.LinkRepository
	collisions int
	calls      int
}

func (r *collidingLinkRepository) Create(ctx context.Context, link *model.ShortLink) error {
	r.calls++
	if r.collisions < 0 || r.calls <= r.collisions {
		return apperrors.ErrShortCodeExists
	}
	return r.LinkRepository.Create(ctx, link)
}

// failingCounterRepository не может увеличить счетчик кликов
type failingCounterRepository struct {
	repository.LinkRepository
}

func (r *failingCounterRepository) IncrementClickCount(ctx context.Context, id uuid.UUID) error {
	return errors.New("database is read-only")
}

func TestLinkService_AllocateRandom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "jane@example.com", "jane")

	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		link, err := f.linkSvc.Allocate(ctx, "https://example.com/a", "", owner.ID)
		require.NoError(t, err)

		assert.Len(t, link.ShortCode, utils.DefaultShortCodeLength)
		for _, r := range link.ShortCode {
			assert.True(t, utils.IsURLSafe(r), "unexpected rune %q", r)
		}
		assert.NotContains(t, seen, link.ShortCode)
		seen[link.ShortCode] = struct{}{}
	}
}

func TestLinkService_AllocateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "jane@example.com", "jane")

	tests := []struct {
		name       string
		targetURL  string
		customCode string
		field      string
	}{
		{name: "empty URL", targetURL: "", field: "target_url"},
		{name: "no scheme", targetURL: "example.com", field: "target_url"},
		{name: "ftp scheme", targetURL: "ftp://example.com/file", field: "target_url"},
		{name: "no host", targetURL: "https://", field: "target_url"},
		{name: "too long", targetURL: "https://example.com/" + strings.Repeat("a", utils.MaxURLLength), field: "target_url"},
		{name: "short custom code", targetURL: "https://example.com", customCode: "ab", field: "custom_code"},
		{name: "unsafe custom code", targetURL: "https://example.com", customCode: "my code", field: "custom_code"},
		{name: "reserved custom code", targetURL: "https://example.com", customCode: "shorten", field: "custom_code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.linkSvc.Allocate(ctx, tt.targetURL, tt.customCode, owner.ID)
			require.Error(t, err)

			verr := apperrors.GetValidationError(err)
			require.NotNil(t, verr, "expected validation error, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	_, total, err := f.links.ListByOwner(ctx, owner.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total, "failed allocations must not create rows")
}

func TestLinkService_AllocateSanitizesTarget(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "jane@example.com", "jane")

	link, err := f.linkSvc.Allocate(context.Background(), "  https://example.com/path\t\n", "", owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/path", link.TargetURL)
}

func TestLinkService_AllocateCustomCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "jane@example.com", "jane")

	link, err := f.linkSvc.Allocate(ctx, "https://example.com", "my-link", owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "my-link", link.ShortCode)

	_, err = f.linkSvc.Allocate(ctx, "https://other.example.com", "my-link", owner.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))
	assert.ErrorIs(t, err, apperrors.ErrShortCodeExists)
}

func TestLinkService_ConcurrentCustomCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "jane@example.com", "jane")

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.linkSvc.Allocate(ctx, "https://example.com", "contested", owner.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperrors.IsConflictError(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)
}

func TestLinkService_CollisionRetry(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "jane@example.com", "jane")

	repo := &collidingLinkRepository{LinkRepository: f.links, collisions: 3}
	svc := NewLinkService(repo, f.clicks, testBaseURL, f.linkSvc.logger)

	var generated []string
	svc.generate = func() (string, error) {
		code, err := utils.GenerateShortCode()
		generated = append(generated, code)
		return code, err
	}

	link, err := svc.Allocate(context.Background(), "https://example.com", "", owner.ID)
	require.NoError(t, err)

	assert.Equal(t, 4, repo.calls)
	require.Len(t, generated, 4, "a fresh code is generated for every attempt")
	assert.Equal(t, generated[3], link.ShortCode)

	stored, err := f.links.GetByShortCode(context.Background(), link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, link.ID, stored.ID)
}

func TestLinkService_AllocateStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "jane@example.com", "jane")

	repo := &collidingLinkRepository{LinkRepository: f.links, collisions: -1}
	svc := NewLinkService(repo, f.clicks, testBaseURL, f.linkSvc.logger)

	ctx, cancel := context.WithCancel(context.Background())
	svc.generate = func() (string, error) {
		if repo.calls >= 5 {
			cancel()
		}
		return utils.GenerateShortCode()
	}

	_, err := svc.Allocate(ctx, "https://example.com", "", owner.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLinkService_AllocateGeneratorFailure(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "jane@example.com", "jane")

	f.linkSvc.generate = func() (string, error) {
		return "", errors.New("entropy exhausted")
	}

	_, err := f.linkSvc.Allocate(context.Background(), "https://example.com", "", owner.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsStorageError(err))
}

func TestLinkService_AllocateRequiresOwner(t *testing.T) {
	f := newFixture(t)

	_, err := f.linkSvc.Allocate(context.Background(), "https://example.com", "", uuid.Nil)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestLinkService_ResolveAndRecordClick(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "jane@example.com", "jane")

	link, err := f.linkSvc.Allocate(ctx, "https://example.com/a", "", owner.ID)
	require.NoError(t, err)

	resolved, err := f.linkSvc.Resolve(ctx, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", resolved.TargetURL)

	require.NoError(t, f.linkSvc.RecordClick(ctx, resolved.ID, "https://google.com/search?q=x", "Mozilla/5.0"))

	resolved, err = f.linkSvc.Resolve(ctx, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", resolved.TargetURL)
	assert.EqualValues(t, 1, resolved.Clicks)

	var event model.ClickEvent
	require.NoError(t, f.db.Where("short_link_id = ?", link.ID).First(&event).Error)
	require.NotNil(t, event.Referrer)
	assert.Equal(t, "https://google.com/search?q=x", *event.Referrer)
	require.NotNil(t, event.UserAgent)
	assert.Equal(t, "Mozilla/5.0", *event.UserAgent)
}

func TestLinkService_RecordClickNormalizesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "jane@example.com", "jane")

	link, err := f.linkSvc.Allocate(ctx, "https://example.com", "", owner.ID)
	require.NoError(t, err)

	require.NoError(t, f.linkSvc.RecordClick(ctx, link.ID, "", strings.Repeat("x", 1000)))

	var event model.ClickEvent
	require.NoError(t, f.db.Where("short_link_id = ?", link.ID).First(&event).Error)
	assert.Nil(t, event.Referrer, "empty referrer is stored as NULL")
	require.NotNil(t, event.UserAgent)
	assert.Len(t, *event.UserAgent, utils.MaxUserAgentLength)
}

func TestLinkService_RecordClickKeepsValidUTF8(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "jane@example.com", "jane")

	link, err := f.linkSvc.Allocate(ctx, "https://example.com", "", owner.ID)
	require.NoError(t, err)

	userAgent := "a" + strings.Repeat("é", 300)
	require.NoError(t, f.linkSvc.RecordClick(ctx, link.ID, "not a url \xff", userAgent))

	var event model.ClickEvent
	require.NoError(t, f.db.Where("short_link_id = ?", link.ID).First(&event).Error)

	require.NotNil(t, event.UserAgent)
	assert.True(t, utf8.ValidString(*event.UserAgent))
	assert.Equal(t, "a"+strings.Repeat("é", 255), *event.UserAgent)

	require.NotNil(t, event.Referrer)
	assert.Equal(t, "not a url \uFFFD", *event.Referrer, "non-URL referrers are stored raw")
}

func TestLinkService_RecordClickAttemptsBothWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "jane@example.com", "jane")

	link, err := f.linkSvc.Allocate(ctx, "https://example.com", "", owner.ID)
	require.NoError(t, err)

	svc := NewLinkService(&failingCounterRepository{LinkRepository: f.links}, f.clicks, testBaseURL, f.linkSvc.logger)
	err = svc.RecordClick(ctx, link.ID, "", "curl/8.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "increment click count")

	events, err := f.clicks.CountByLink(ctx, link.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, events, "event insert runs even when the counter update fails")
}

func TestLinkService_RecordClickUnknownLink(t *testing.T) {
	f := newFixture(t)

	err := f.linkSvc.RecordClick(context.Background(), uuid.New(), "", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestLinkService_ResolveUnknown(t *testing.T) {
	f := newFixture(t)

	for _, code := range []string{"", "missing1"} {
		_, err := f.linkSvc.Resolve(context.Background(), code)
		assert.True(t, apperrors.IsNotFound(err), "code %q", code)
	}
}

func TestLinkService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "jane@example.com", "jane")
	other := f.createUser(t, "john@example.com", "john")

	for i := 0; i < 15; i++ {
		_, err := f.linkSvc.Allocate(ctx, "https://example.com", "", owner.ID)
		require.NoError(t, err)
	}
	_, err := f.linkSvc.Allocate(ctx, "https://example.com", "", other.ID)
	require.NoError(t, err)

	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
		wantLen   int
		wantPages int
	}{
		{name: "defaults", page: 0, limit: 0, wantPage: 1, wantLimit: 10, wantLen: 10, wantPages: 2},
		{name: "second page", page: 2, limit: 10, wantPage: 2, wantLimit: 10, wantLen: 5, wantPages: 2},
		{name: "limit over max", page: 1, limit: 500, wantPage: 1, wantLimit: 10, wantLen: 10, wantPages: 2},
		{name: "small limit", page: 3, limit: 4, wantPage: 3, wantLimit: 4, wantLen: 4, wantPages: 4},
		{name: "past the end", page: 9, limit: 10, wantPage: 9, wantLimit: 10, wantLen: 0, wantPages: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.linkSvc.List(ctx, owner.ID, tt.page, tt.limit)
			require.NoError(t, err)

			assert.EqualValues(t, 15, resp.Meta.Total)
			assert.Equal(t, tt.wantPage, resp.Meta.Page)
			assert.Equal(t, tt.wantLimit, resp.Meta.Limit)
			assert.Equal(t, tt.wantPages, resp.Meta.Pages)
			assert.Len(t, resp.Data, tt.wantLen)
			assert.NotNil(t, resp.Data)

			for _, item := range resp.Data {
				assert.Equal(t, testBaseURL+"/"+item.ShortCode, item.ShortURL)
			}
		})
	}
}

func TestLinkService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "jane@example.com", "jane")
	intruder := f.createUser(t, "mallory@example.com", "mallory")

	link, err := f.linkSvc.Allocate(ctx, "https://example.com", "", owner.ID)
	require.NoError(t, err)
	require.NoError(t, f.linkSvc.RecordClick(ctx, link.ID, "", "curl/8.0"))

	err = f.linkSvc.Delete(ctx, intruder.ID, link.ID)
	assert.True(t, apperrors.IsNotFound(err), "foreign link must look missing")

	_, err = f.linkSvc.Resolve(ctx, link.ShortCode)
	require.NoError(t, err, "link survives a foreign delete")

	require.NoError(t, f.linkSvc.Delete(ctx, owner.ID, link.ID))

	_, err = f.linkSvc.Resolve(ctx, link.ShortCode)
	assert.True(t, apperrors.IsNotFound(err))

	events, err := f.clicks.CountByLink(ctx, link.ID)
	require.NoError(t, err)
	assert.Zero(t, events)

	err = f.linkSvc.Delete(ctx, owner.ID, link.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestLinkService_Shorten(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "jane@example.com", "jane")

	resp, err := f.linkSvc.Shorten(context.Background(), owner.ID, &model.CreateLinkRequest{
		TargetURL:  "https://example.com/docs",
		CustomCode: "docs",
	})
	require.NoError(t, err)

	assert.Equal(t, "docs", resp.ShortCode)
	assert.Equal(t, testBaseURL+"/docs", resp.ShortURL)
	assert.Equal(t, "https://example.com/docs", resp.TargetURL)
	assert.Zero(t, resp.Clicks)
}
