package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sadopc/taskdesk/internal/model"
)

// LoginResult is a successful login: the token pair and the user profile.
type LoginResult struct {
	Access  string
	Refresh string
	User    model.User
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access  string     `json:"access"`
	Refresh string     `json:"refresh"`
	User    userRecord `json:"user"`
}

// Login exchanges credentials for a token pair. Bad credentials come back
// as a *RejectedError carrying the server's detail.
func (c *Client) Login(ctx context.Context, identifier, password string) (LoginResult, error) {
	body, err := c.sendJSON(ctx, http.MethodPost, "/api/auth/login/", nil, loginRequest{
		Username: identifier,
		Password: password,
	})
	if err != nil {
		return LoginResult{}, err
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return LoginResult{}, fmt.Errorf("decode login response: %w", err)
	}
	if resp.Access == "" {
		return LoginResult{}, fmt.Errorf("decode login response: missing access token")
	}
	return LoginResult{
		Access:  resp.Access,
		Refresh: resp.Refresh,
		User:    resp.User.user(),
	}, nil
}

// GuestLogin synthesizes the local-only guest user. It never touches the
// network and never fails.
func (c *Client) GuestLogin(name string) model.User {
	return model.NewGuest(name)
}

// CurrentUser fetches the profile of the authenticated user.
func (c *Client) CurrentUser(ctx context.Context, auth Auth) (model.User, error) {
	body, err := c.sendJSON(ctx, http.MethodGet, "/api/auth/user/", &auth, nil)
	if err != nil {
		return model.User{}, err
	}
	var rec userRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return model.User{}, fmt.Errorf("decode user: %w", err)
	}
	return rec.user(), nil
}
