// Package google implements the OAuth authorization-code flow against Google.
package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"passport/config"
	"passport/internal/domain/entity"
	"passport/internal/domain/service"

	"github.com/pkg/errors"
)

const (
	googleOAuthURL    = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// OAuthService handles Google OAuth infrastructure operations.
type OAuthService struct {
	clientID     string
	clientSecret string
	redirectURI  string
	scopes       string
	httpClient   *http.Client
}

// NewOAuthService creates a new Google OAuth service.
func NewOAuthService(cfg *config.Config) service.OAuthAuthService {
	return &OAuthService{
		clientID:     cfg.GoogleOAuth.ClientID,
		clientSecret: cfg.GoogleOAuth.ClientSecret,
		redirectURI:  cfg.GoogleOAuth.RedirectURI,
		scopes:       cfg.GoogleOAuth.Scopes,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// BuildAuthorizationURL constructs the Google OAuth authorization URL carrying
// the caller-supplied state parameter.
func (s *OAuthService) BuildAuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("client_id", s.clientID)
	params.Set("redirect_uri", s.redirectURI)
	params.Set("scope", s.scopes)
	params.Set("response_type", "code")
	params.Set("state", state)

	return googleOAuthURL + "?" + params.Encode()
}

// Provider returns the OAuth provider type.
func (s *OAuthService) Provider() entity.ProviderType {
	return entity.ProviderTypeGoogle
}

// ExchangeCode trades an authorization code for Google's view of the user.
func (s *OAuthService) ExchangeCode(ctx context.Context, code string) (*service.OAuthUser, error) {
	accessToken, err := s.exchangeCodeForToken(ctx, code)
	if err != nil {
		return nil, err
	}

	return s.getUserInfo(ctx, accessToken)
}

// exchangeCodeForToken exchanges an authorization code for an access token.
func (s *OAuthService) exchangeCodeForToken(ctx context.Context, code string) (string, error) {
	data := url.Values{}
	data.Set("client_id", s.clientID)
	data.Set("client_secret", s.clientSecret)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", s.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleTokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "failed to create token exchange request")
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to exchange code for token")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return "", errors.Errorf("token exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return "", errors.Wrap(err, "failed to decode token response")
	}

	return tokenResponse.AccessToken, nil
}

// getUserInfo retrieves user information using an access token.
func (s *OAuthService) getUserInfo(ctx context.Context, accessToken string) (*service.OAuthUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create user info request")
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user info")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return nil, errors.Errorf("user info request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var googleUser struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		VerifiedEmail bool   `json:"verified_email"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, errors.Wrap(err, "failed to decode user info response")
	}

	return &service.OAuthUser{
		ID:            googleUser.ID,
		Email:         googleUser.Email,
		Name:          googleUser.Name,
		Provider:      entity.ProviderTypeGoogle,
		Picture:       googleUser.Picture,
		EmailVerified: googleUser.VerifiedEmail,
	}, nil
}
