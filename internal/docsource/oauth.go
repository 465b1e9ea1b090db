package docsource

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const defaultTokenUrl = "https://oauth2.googleapis.com/token"

type OAuthToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
	TokenType   string `json:"token_type"`
}

type oauthError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type RefreshRequest struct {
	ClientId     string
	ClientSecret string
	RefreshToken string
}

// RefreshAccessToken exchanges a refresh token for a new access token.
func RefreshAccessToken(ctx context.Context, client *resty.Client, tokenUrl string, req RefreshRequest) (OAuthToken, error) {
	var token OAuthToken
	var failure oauthError
	res, err := client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     req.ClientId,
			"client_secret": req.ClientSecret,
			"refresh_token": req.RefreshToken,
			"grant_type":    "refresh_token",
		}).
		SetResult(&token).
		SetError(&failure).
		Post(tokenUrl)
	if err != nil {
		return OAuthToken{}, err
	}
	if res.IsError() {
		return OAuthToken{}, fmt.Errorf("refresh token: %s: %s %s", res.Status(), failure.Error, failure.ErrorDescription)
	}
	if token.AccessToken == "" {
		return OAuthToken{}, fmt.Errorf("refresh token: response has no access token")
	}
	return token, nil
}
