package oauth

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Kosench/shortlink/internal/config"
	"github.com/Kosench/shortlink/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	GitHubName   = "github"
	githubAPIURL = "https://api.github.com"
)

type githubProfile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

type GitHub struct {
	config *oauth2.Config
	apiURL string
}

func NewGitHub(cfg config.OAuthProviderConfig) *GitHub {
	return &GitHub{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiURL: githubAPIURL,
	}
}

func (g *GitHub) Name() string {
	return GitHubName
}

func (g *GitHub) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

func (g *GitHub) Exchange(ctx context.Context, code string) (*model.OAuthIdentity, error) {
	client, err := exchangeClient(ctx, g.config, code)
	if err != nil {
		return nil, err
	}

	var profile githubProfile
	if err := getJSON(ctx, client, g.apiURL+"/user", &profile); err != nil {
		return nil, fmt.Errorf("github profile: %w", err)
	}

	// Публичный email может быть скрыт: берем основной подтвержденный
	if profile.Email == "" {
		var emails []githubEmail
		if err := getJSON(ctx, client, g.apiURL+"/user/emails", &emails); err == nil {
			profile.Email = primaryVerifiedEmail(emails)
		}
	}

	return githubIdentity(profile), nil
}

func githubIdentity(p githubProfile) *model.OAuthIdentity {
	// GitHub показывает в профиле только подтвержденные адреса
	email, verified := p.Email, p.Email != ""
	if email == "" {
		email = p.Login + "@github.com"
	}

	name := p.Name
	if name == "" {
		name = p.Login
	}

	return &model.OAuthIdentity{
		Provider:   GitHubName,
		ProviderID: strconv.FormatInt(p.ID, 10),
		Email:      email,
		Name:       name,
		Picture:    p.AvatarURL,

		EmailVerified: verified,
	}
}

func primaryVerifiedEmail(emails []githubEmail) string {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	return ""
}
