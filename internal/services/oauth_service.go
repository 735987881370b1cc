package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bharthraj1412/nexora/internal/config"
	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/bharthraj1412/nexora/internal/repositories"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	providerGoogle = "google"
)

// GoogleTokens is the provider token response from the code exchange.
type GoogleTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// GoogleUserInfo is the identity payload fetched with a provider token.
type GoogleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleOAuthService exchanges Google authorization codes for a local user.
// One (provider, provider_user_id) pair maps to at most one local user.
type GoogleOAuthService struct {
	users  repositories.UserRepository
	oauth  repositories.OAuthAccountRepository
	client *http.Client
	cfg    *config.OAuthConfig
}

func NewGoogleOAuthService(users repositories.UserRepository, oauth repositories.OAuthAccountRepository, cfg *config.OAuthConfig) *GoogleOAuthService {
	return &GoogleOAuthService{
		users:  users,
		oauth:  oauth,
		client: &http.Client{Timeout: 10 * time.Second},
		cfg:    cfg,
	}
}

// AuthorizationURL builds the Google consent screen URL. state is the CSRF
// token the callback must echo.
func (s *GoogleOAuthService) AuthorizationURL(state string) string {
	params := url.Values{
		"client_id":     {s.cfg.GoogleClientID},
		"redirect_uri":  {s.cfg.GoogleRedirectURI},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"state":         {state},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}
	return googleAuthURL + "?" + params.Encode()
}

// ExchangeCode swaps the authorization code for provider tokens.
func (s *GoogleOAuthService) ExchangeCode(ctx context.Context, code string) (*GoogleTokens, error) {
	form := url.Values{
		"client_id":     {s.cfg.GoogleClientID},
		"client_secret": {s.cfg.GoogleClientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {s.cfg.GoogleRedirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google token exchange failed with status %d", resp.StatusCode)
	}

	var tokens GoogleTokens
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &tokens, nil
}

// FetchUserInfo retrieves the verified identity behind a provider token.
func (s *GoogleOAuthService) FetchUserInfo(ctx context.Context, accessToken string) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo failed with status %d", resp.StatusCode)
	}

	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo response: %w", err)
	}
	if info.Email == "" || info.ID == "" {
		return nil, fmt.Errorf("incomplete userinfo from google")
	}
	return &info, nil
}

// GetOrCreateUser maps the verified external identity to a local user,
// creating an OAuth-only account (no password hash, email pre-verified)
// when none exists, and refreshes the stored provider tokens.
func (s *GoogleOAuthService) GetOrCreateUser(info *GoogleUserInfo, tokens *GoogleTokens) (*models.User, error) {
	account, err := s.oauth.GetByProviderIdentity(providerGoogle, info.ID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		user, err := s.users.GetByID(account.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
		s.storeProviderTokens(account, tokens)
		if err := s.oauth.Update(account); err != nil {
			return nil, err
		}
		return user, nil
	}

	// Link to an existing local account with the same email, or create one.
	user, err := s.users.GetByEmail(info.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		name := info.Name
		if name == "" {
			name = strings.SplitN(info.Email, "@", 2)[0]
		}
		user = &models.User{
			Email:         info.Email,
			EmailVerified: true,
			FullName:      name,
			IsActive:      true,
		}
		if err := s.users.Create(user); err != nil {
			return nil, err
		}
	}

	account = &models.OAuthAccount{
		UserID:         user.ID,
		Provider:       providerGoogle,
		ProviderUserID: info.ID,
	}
	s.storeProviderTokens(account, tokens)
	if err := s.oauth.Create(account); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *GoogleOAuthService) storeProviderTokens(account *models.OAuthAccount, tokens *GoogleTokens) {
	if tokens == nil {
		return
	}
	if tokens.AccessToken != "" {
		account.AccessToken = &tokens.AccessToken
	}
	if tokens.RefreshToken != "" {
		account.RefreshToken = &tokens.RefreshToken
	}
	if tokens.ExpiresIn > 0 {
		exp := time.Now().UTC().Add(time.Duration(tokens.ExpiresIn) * time.Second)
		account.TokenExpiresAt = &exp
	}
}
