package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/metrics"
	"github.com/Kosench/shortlink/internal/model"
	"github.com/Kosench/shortlink/internal/repository"
	"github.com/Kosench/shortlink/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type LinkService struct {
	links    repository.LinkRepository
	clicks   repository.ClickRepository
	baseURL  string
	logger   *zap.Logger
	generate func() (string, error)
}

func NewLinkService(links repository.LinkRepository, clicks repository.ClickRepository, baseURL string, logger *zap.Logger) *LinkService {
	return &LinkService{
		links:    links,
		clicks:   clicks,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		logger:   logger,
		generate: utils.GenerateShortCode,
	}
}

func (s *LinkService) Shorten(ctx context.Context, ownerID uuid.UUID, req *model.CreateLinkRequest) (*model.LinkResponse, error) {
	link, err := s.Allocate(ctx, req.TargetURL, req.CustomCode, ownerID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(link), nil
}

// Allocate создает короткую ссылку. Уникальность кода обеспечивает индекс
// в базе: случайный код перегенерируется после каждого конфликта, пока
// вставка не пройдет или не будет отменен контекст.
func (s *LinkService) Allocate(ctx context.Context, targetURL, customCode string, ownerID uuid.UUID) (*model.ShortLink, error) {
	if ownerID == uuid.Nil {
		return nil, apperrors.NewValidationError("user_id", "owner is required")
	}

	target := utils.SanitizeInput(targetURL)
	if err := utils.ValidateURL(target); err != nil {
		return nil, err
	}

	customCode = strings.TrimSpace(customCode)
	if customCode != "" {
		return s.allocateCustom(ctx, target, customCode, ownerID)
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("short code allocation aborted: %w", err)
		}

		code, err := s.generate()
		if err != nil {
			return nil, apperrors.NewStorageError("SHORT_CODE_GENERATION", "failed to generate short code", err)
		}

		link := &model.ShortLink{ShortCode: code, TargetURL: target, UserID: ownerID}
		err = s.links.Create(ctx, link)
		if err == nil {
			metrics.RecordLinkCreated(false)
			return link, nil
		}
		if !errors.Is(err, apperrors.ErrShortCodeExists) {
			return nil, err
		}

		metrics.RecordCodeCollision()
		s.logger.Info("short code collision, regenerating",
			zap.String("code", code),
			zap.Int("attempt", attempt),
		)
	}
}

func (s *LinkService) allocateCustom(ctx context.Context, target, code string, ownerID uuid.UUID) (*model.ShortLink, error) {
	if err := utils.ValidateShortCode(code); err != nil {
		return nil, err
	}

	exists, err := s.links.ExistsByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrShortCodeExists
	}

	// Между проверкой и вставкой код может занять параллельный запрос,
	// тогда Create вернет ErrShortCodeExists от уникального индекса
	link := &model.ShortLink{ShortCode: code, TargetURL: target, UserID: ownerID}
	if err := s.links.Create(ctx, link); err != nil {
		return nil, err
	}

	metrics.RecordLinkCreated(true)
	return link, nil
}

func (s *LinkService) Resolve(ctx context.Context, shortCode string) (*model.ShortLink, error) {
	if shortCode == "" {
		return nil, apperrors.ErrLinkNotFound
	}
	return s.links.GetByShortCode(ctx, shortCode)
}

// RecordClick увеличивает счетчик и пишет событие перехода. Вторая запись
// выполняется даже при ошибке первой, ошибки объединяются.
func (s *LinkService) RecordClick(ctx context.Context, linkID uuid.UUID, referrer, userAgent string) error {
	incErr := s.links.IncrementClickCount(ctx, linkID)
	if incErr != nil {
		incErr = fmt.Errorf("increment click count: %w", incErr)
	}

	event := &model.ClickEvent{
		ShortLinkID: linkID,
		Referrer:    model.StringPtr(utils.CanonicalReferrer(referrer)),
		UserAgent:   model.StringPtr(utils.Truncate(strings.TrimSpace(userAgent), utils.MaxUserAgentLength)),
	}
	createErr := s.clicks.Create(ctx, event)
	if createErr != nil {
		createErr = fmt.Errorf("insert click event: %w", createErr)
	}

	return errors.Join(incErr, createErr)
}

func (s *LinkService) List(ctx context.Context, ownerID uuid.UUID, page, limit int) (*model.LinkListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxPageLimit {
		limit = DefaultPageLimit
	}

	links, total, err := s.links.ListByOwner(ctx, ownerID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	data := make([]model.LinkResponse, 0, len(links))
	for i := range links {
		data = append(data, *s.toResponse(&links[i]))
	}

	return &model.LinkListResponse{
		Data: data,
		Meta: model.PageMeta{
			Total: total,
			Page:  page,
			Limit: limit,
			Pages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}, nil
}

// Delete удаляет ссылку владельца; чужая ссылка неотличима от несуществующей
func (s *LinkService) Delete(ctx context.Context, ownerID, linkID uuid.UUID) error {
	if err := s.links.DeleteByOwner(ctx, linkID, ownerID); err != nil {
		return err
	}

	s.logger.Info("short link deleted",
		zap.String("link_id", linkID.String()),
		zap.String("user_id", ownerID.String()),
	)
	return nil
}

func (s *LinkService) ShortURL(shortCode string) string {
	return fmt.Sprintf("%s/%s", s.baseURL, shortCode)
}

func (s *LinkService) toResponse(link *model.ShortLink) *model.LinkResponse {
	return &model.LinkResponse{
		ID:        link.ID,
		ShortCode: link.ShortCode,
		TargetURL: link.TargetURL,
		ShortURL:  s.ShortURL(link.ShortCode),
		Clicks:    link.Clicks,
		CreatedAt: link.CreatedAt,
	}
}
