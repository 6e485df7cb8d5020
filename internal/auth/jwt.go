package auth

import (
	"errors"
	"fmt"
	"time"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID разбирает subject токена
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// JWTIssuer выпускает и проверяет пары access/refresh токенов. Типы токенов
// подписываются разными секретами, поэтому один не принимается вместо другого.
type JWTIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

func NewJWTIssuer(cfg Config) *JWTIssuer {
	return &JWTIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		now:           time.Now,
	}
}

func (i *JWTIssuer) Issue(user *model.User) (*model.TokenPair, error) {
	now := i.now()

	access, _, err := i.sign(user, i.accessSecret, now, i.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, expiresAt, err := i.sign(user, i.refreshSecret, now, i.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshExpiresAt: expiresAt,
	}, nil
}

func (i *JWTIssuer) ParseAccess(tokenString string) (*Claims, error) {
	return i.parse(tokenString, i.accessSecret)
}

func (i *JWTIssuer) ParseRefresh(tokenString string) (*Claims, error) {
	return i.parse(tokenString, i.refreshSecret)
}

func (i *JWTIssuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

func (i *JWTIssuer) sign(user *model.User, secret []byte, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(ttl)
	claims := &Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// parse отклоняет все, что не является валидным HS256 токеном этого
// издателя с непустым subject и jti
func (i *JWTIssuer) parse(tokenString string, secret []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrInvalidToken
	}

	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	if claims.ID == "" {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, errors.New("missing token id"))
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%w: invalid subject", apperrors.ErrInvalidToken)
	}

	return claims, nil
}
