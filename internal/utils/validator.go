package utils

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	apperrors "github.com/Kosench/shortlink/internal/errors"
)

const (
	MaxURLLength        = 2048
	MaxReferrerLength   = 2048
	MaxUserAgentLength  = 512
	MinCustomCodeLength = 3
	MaxCustomCodeLength = 32
	MinUsernameLength   = 3
	fallbackUsername    = "user"
)

// reservedCodes - первые сегменты путей API, которые не могут быть кодами
var reservedCodes = map[string]struct{}{
	"auth":      {},
	"urls":      {},
	"shorten":   {},
	"analytics": {},
	"users":     {},
	"health":    {},
	"info":      {},
	"metrics":   {},
}

func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return apperrors.NewValidationError("target_url", "URL cannot be empty")
	}

	if len(rawURL) > MaxURLLength {
		return apperrors.NewValidationError("target_url", fmt.Sprintf("URL is too long (max %d characters)", MaxURLLength))
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return apperrors.NewValidationError("target_url", fmt.Sprintf("invalid URL format: %v", err))
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return apperrors.NewValidationError("target_url", "URL must start with http:// or https://")
	}

	if parsedURL.Host == "" {
		return apperrors.NewValidationError("target_url", "URL must contain a valid host")
	}

	return nil
}

func ValidateShortCode(code string) error {
	if len(code) < MinCustomCodeLength || len(code) > MaxCustomCodeLength {
		return apperrors.NewValidationError("custom_code",
			fmt.Sprintf("code must be between %d and %d characters", MinCustomCodeLength, MaxCustomCodeLength))
	}

	for _, r := range code {
		if !IsURLSafe(r) {
			return apperrors.NewValidationError("custom_code", "code may contain only letters, digits, '_' and '-'")
		}
	}

	if _, reserved := reservedCodes[strings.ToLower(code)]; reserved {
		return apperrors.NewValidationError("custom_code", "code is reserved")
	}

	return nil
}

func SanitizeInput(input string) string {
	// Удаляем управляющие символы и обрезаем пробелы
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, input)

	return strings.TrimSpace(result)
}

// CanonicalReferrer нормализует Referer: абсолютный URL сериализуется
// обратно, все остальное сохраняется как есть.
func CanonicalReferrer(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Truncate(raw, MaxReferrerLength)
	}

	return Truncate(parsed.String(), MaxReferrerLength)
}

// Truncate заменяет невалидные UTF-8 последовательности и обрезает строку
// до max байт, не разрывая многобайтовый символ.
func Truncate(s string, max int) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// SlugifyUsername строит базу для username из отображаемого имени
func SlugifyUsername(displayName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(displayName) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	slug := b.String()
	if len(slug) < MinUsernameLength {
		return fallbackUsername
	}
	if len(slug) > MaxCustomCodeLength {
		slug = slug[:MaxCustomCodeLength]
	}
	return slug
}
