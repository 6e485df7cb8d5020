package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Kosench/shortlink/internal/model"
	"github.com/Kosench/shortlink/internal/repository"
	"github.com/google/uuid"
)

const unknownBrowser = "Unknown"

type AnalyticsService struct {
	links  repository.LinkRepository
	clicks repository.ClickRepository
}

func NewAnalyticsService(links repository.LinkRepository, clicks repository.ClickRepository) *AnalyticsService {
	return &AnalyticsService{
		links:  links,
		clicks: clicks,
	}
}

// GetLinkAnalytics собирает статистику по ссылке владельца
func (s *AnalyticsService) GetLinkAnalytics(ctx context.Context, shortCode string, ownerID uuid.UUID) (*model.AnalyticsResponse, error) {
	link, err := s.links.GetByShortCodeAndOwner(ctx, shortCode, ownerID)
	if err != nil {
		return nil, err
	}

	total, err := s.clicks.CountByLink(ctx, link.ID)
	if err != nil {
		return nil, fmt.Errorf("count click events: %w", err)
	}

	byDate, err := s.clicks.CountByDate(ctx, link.ID)
	if err != nil {
		return nil, fmt.Errorf("group clicks by date: %w", err)
	}

	byAgent, err := s.clicks.CountByUserAgent(ctx, link.ID)
	if err != nil {
		return nil, fmt.Errorf("group clicks by user agent: %w", err)
	}

	byReferrer, err := s.clicks.CountByReferrer(ctx, link.ID)
	if err != nil {
		return nil, fmt.Errorf("group clicks by referrer: %w", err)
	}

	return &model.AnalyticsResponse{
		Link: model.LinkSummary{
			ID:        link.ID,
			ShortCode: link.ShortCode,
			TargetURL: link.TargetURL,
			Clicks:    link.Clicks,
			CreatedAt: link.CreatedAt,
		},
		TotalEvents:   total,
		ClicksByDate:  nonNil(byDate),
		BrowserStats:  foldBrowsers(byAgent),
		ReferrerStats: nonNil(byReferrer),
	}, nil
}

// BrowserFamily возвращает продуктовый токен User-Agent до первого '/'
func BrowserFamily(userAgent string) string {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return unknownBrowser
	}
	if idx := strings.IndexByte(userAgent, '/'); idx > 0 {
		return userAgent[:idx]
	}
	return userAgent
}

func foldBrowsers(rows []model.UserAgentCount) []model.BrowserCount {
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[BrowserFamily(row.UserAgent)] += row.Count
	}

	stats := make([]model.BrowserCount, 0, len(counts))
	for browser, count := range counts {
		stats = append(stats, model.BrowserCount{Browser: browser, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Browser < stats[j].Browser
	})
	return stats
}

// nonNil - пустой результат сериализуется как [], а не null
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
