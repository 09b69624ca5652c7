package indieauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/indienet/indieauth/internal/util"
)

// RefreshToken exchanges a refresh token for a new access token at the
// discovered token endpoint. IndieAuth clients are public, so only the
// client_id identifies the caller.
func (c *Client) RefreshToken(ctx context.Context, tokenEndpoint, clientID, refreshToken string, scopes []string) (*oauth2.Token, error) {
	if tokenEndpoint == "" {
		return nil, errors.New("token endpoint is required")
	}
	if refreshToken == "" {
		return nil, errors.New("refresh token is required")
	}

	conf := &oauth2.Config{
		ClientID: clientID,
		Scopes:   scopes,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	c.logger.Debug("Access token refreshed",
		"token_endpoint", tokenEndpoint,
		"token_prefix", util.SafeTruncate(token.AccessToken, 8))

	return token, nil
}

// RevokeToken revokes an access or refresh token (RFC 7009). Any 2xx
// response counts as success; revocation endpoints return 200 even for
// tokens they never issued.
func (c *Client) RevokeToken(ctx context.Context, revocationEndpoint, token string) error {
	if revocationEndpoint == "" {
		return errors.New("revocation endpoint is required")
	}
	if token == "" {
		return errors.New("token is required")
	}

	form := url.Values{"token": {token}}
	resp, err := c.postForm(ctx, revocationEndpoint, form, "", "")
	if err != nil {
		return fmt.Errorf("token revocation failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("revocation endpoint returned %d", resp.StatusCode)
	}

	c.logger.Debug("Token revoked", "revocation_endpoint", revocationEndpoint)
	return nil
}

// IntrospectToken queries a token's state at the introspection endpoint
// (RFC 7662). Client credentials are optional; when provided they are
// sent as HTTP basic auth.
func (c *Client) IntrospectToken(ctx context.Context, introspectionEndpoint, token, clientID, clientSecret string) (*IntrospectionResponse, error) {
	if introspectionEndpoint == "" {
		return nil, errors.New("introspection endpoint is required")
	}
	if token == "" {
		return nil, errors.New("token is required")
	}

	form := url.Values{"token": {token}}
	resp, err := c.postForm(ctx, introspectionEndpoint, form, clientID, clientSecret)
	if err != nil {
		return nil, fmt.Errorf("token introspection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("introspection endpoint returned %d", resp.StatusCode)
	}

	var introspection IntrospectionResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&introspection); err != nil {
		return nil, fmt.Errorf("failed to decode introspection response: %w", err)
	}

	return &introspection, nil
}

// FetchUserInfo retrieves profile information from the userinfo
// endpoint using a bearer access token.
func (c *Client) FetchUserInfo(ctx context.Context, userinfoEndpoint, accessToken string) (*UserInfo, error) {
	if userinfoEndpoint == "" {
		return nil, errors.New("userinfo endpoint is required")
	}
	if accessToken == "" {
		return nil, errors.New("access token is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userinfoEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("userinfo endpoint returned %d", resp.StatusCode)
	}

	var info UserInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}

	return &info, nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, clientID, clientSecret string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if clientID != "" {
		req.SetBasicAuth(clientID, clientSecret)
	}

	return c.httpClient.Do(req)
}
