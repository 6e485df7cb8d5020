package handler

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"time"

	"github.com/Kosench/shortlink/internal/cache"
	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/model"
	"github.com/Kosench/shortlink/internal/oauth"
	"github.com/Kosench/shortlink/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OAuthConfig struct {
	StateTTL time.Duration
	// SuccessRedirect - куда отправить браузер с access токеном во фрагменте;
	// пустое значение означает JSON ответ
	SuccessRedirect string
}

type OAuthHandler struct {
	providers *oauth.Registry
	states    cache.StateStore
	auth      AuthService
	cookies   CookieConfig
	cfg       OAuthConfig
	logger    *zap.Logger
}

func NewOAuthHandler(providers *oauth.Registry, states cache.StateStore, auth AuthService, cookies CookieConfig, cfg OAuthConfig, logger *zap.Logger) *OAuthHandler {
	return &OAuthHandler{
		providers: providers,
		states:    states,
		auth:      auth,
		cookies:   cookies,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start сохраняет одноразовый state и отправляет браузер к провайдеру
func (h *OAuthHandler) Start(c *gin.Context) {
	provider, ok := h.providers.Get(c.Param("provider"))
	if !ok {
		handleError(c, h.logger, apperrors.NewNotFoundError("oauth provider"))
		return
	}

	state, err := utils.GenerateState()
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	if err := h.states.SaveState(c.Request.Context(), state, h.cfg.StateTTL); err != nil {
		handleError(c, h.logger, apperrors.NewStorageError("STATE_STORE_ERROR", "failed to start oauth flow", err))
		return
	}

	h.cookies.setState(c, state, h.cfg.StateTTL)
	c.Redirect(http.StatusTemporaryRedirect, provider.AuthCodeURL(state))
}

// Callback принимает код авторизации. State должен совпасть с cookie
// браузера и быть погашен в хранилище, иначе запрос отклоняется.
func (h *OAuthHandler) Callback(c *gin.Context) {
	provider, ok := h.providers.Get(c.Param("provider"))
	if !ok {
		handleError(c, h.logger, apperrors.NewNotFoundError("oauth provider"))
		return
	}

	state := c.Query("state")
	cookieState, _ := c.Cookie(StateCookieName)
	h.cookies.clearState(c)

	if state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(cookieState)) != 1 {
		handleError(c, h.logger, apperrors.ErrInvalidState)
		return
	}

	consumed, err := h.states.ConsumeState(c.Request.Context(), state)
	if err != nil {
		handleError(c, h.logger, apperrors.NewStorageError("STATE_STORE_ERROR", "failed to verify oauth state", err))
		return
	}
	if !consumed {
		handleError(c, h.logger, apperrors.ErrInvalidState)
		return
	}

	if providerErr := c.Query("error"); providerErr != "" {
		h.logger.Info("oauth authorization denied",
			zap.String("provider", provider.Name()),
			zap.String("reason", providerErr),
		)
		handleError(c, h.logger, apperrors.NewAuthError("authorization was denied"))
		return
	}

	code := c.Query("code")
	if code == "" {
		handleError(c, h.logger, apperrors.NewValidationError("code", "authorization code is required"))
		return
	}

	identity, err := provider.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.Warn("oauth code exchange failed",
			zap.String("provider", provider.Name()),
			zap.Error(err),
		)
		handleError(c, h.logger, apperrors.NewAuthError("oauth authentication failed"))
		return
	}

	pair, err := h.auth.LoginWithOAuth(c.Request.Context(), identity)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	h.cookies.setRefresh(c, pair.RefreshToken)

	if h.cfg.SuccessRedirect != "" {
		fragment := url.Values{"access_token": {pair.AccessToken}}
		c.Redirect(http.StatusFound, h.cfg.SuccessRedirect+"#"+fragment.Encode())
		return
	}
	c.JSON(http.StatusOK, model.TokenResponse{AccessToken: pair.AccessToken})
}

// Providers возвращает список включенных провайдеров
func (h *OAuthHandler) Providers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": h.providers.Names()})
}
