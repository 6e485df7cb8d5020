package oauth

import (
	"context"
	"fmt"

	"github.com/Kosench/shortlink/internal/config"
	"github.com/Kosench/shortlink/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	GoogleName        = "google"
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

type googleProfile struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

type Google struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewGoogle(cfg config.OAuthProviderConfig) *Google {
	return &Google{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (g *Google) Name() string {
	return GoogleName
}

func (g *Google) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

func (g *Google) Exchange(ctx context.Context, code string) (*model.OAuthIdentity, error) {
	client, err := exchangeClient(ctx, g.config, code)
	if err != nil {
		return nil, err
	}

	var profile googleProfile
	if err := getJSON(ctx, client, g.userInfoURL, &profile); err != nil {
		return nil, fmt.Errorf("google profile: %w", err)
	}

	return googleIdentity(profile), nil
}

func googleIdentity(p googleProfile) *model.OAuthIdentity {
	return &model.OAuthIdentity{
		Provider:   GoogleName,
		ProviderID: p.Sub,
		Email:      p.Email,
		Name:       p.Name,
		Picture:    p.Picture,

		EmailVerified: p.EmailVerified,
	}
}
