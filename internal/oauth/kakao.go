package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yeoro/twogether/internal/domain"
)

const (
	kakaoAuthorizeURL = "https://kauth.kakao.com/oauth/authorize"
	kakaoTokenURL     = "https://kauth.kakao.com/oauth/token"
	kakaoUserInfoURL  = "https://kapi.kakao.com/v2/user/me"
)

// Kakao implements Provider against Kakao's OAuth2 endpoints.
type Kakao struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// HTTPClient defaults to a client with a 10s timeout.
	HTTPClient *http.Client
}

func (k *Kakao) Platform() string { return domain.PlatformKakao }

func (k *Kakao) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", k.ClientID)
	q.Set("redirect_uri", k.RedirectURI)
	q.Set("response_type", "code")
	q.Set("state", state)
	return kakaoAuthorizeURL + "?" + q.Encode()
}

func (k *Kakao) ExchangeCode(ctx context.Context, code string) (Profile, error) {
	accessToken, err := k.fetchAccessToken(ctx, code)
	if err != nil {
		return Profile{}, err
	}
	return k.fetchProfile(ctx, accessToken)
}

func (k *Kakao) fetchAccessToken(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", k.ClientID)
	form.Set("redirect_uri", k.RedirectURI)
	form.Set("code", code)
	if k.ClientSecret != "" {
		form.Set("client_secret", k.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, kakaoTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := k.doJSON(req, &body); err != nil {
		return "", fmt.Errorf("kakao: token exchange: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("kakao: token exchange returned no access token")
	}
	return body.AccessToken, nil
}

func (k *Kakao) fetchProfile(ctx context.Context, accessToken string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, kakaoUserInfoURL, nil)
	if err != nil {
		return Profile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var body struct {
		ID      int64 `json:"id"`
		Account struct {
			Email   string `json:"email"`
			Profile struct {
				Nickname string `json:"nickname"`
			} `json:"profile"`
		} `json:"kakao_account"`
	}
	if err := k.doJSON(req, &body); err != nil {
		return Profile{}, fmt.Errorf("kakao: user info: %w", err)
	}
	if body.ID == 0 {
		return Profile{}, fmt.Errorf("kakao: user info returned no id")
	}

	return Profile{
		ProviderID: strconv.FormatInt(body.ID, 10),
		Email:      body.Account.Email,
		Name:       body.Account.Profile.Nickname,
	}, nil
}

func (k *Kakao) doJSON(req *http.Request, out any) error {
	client := k.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, snippet)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
