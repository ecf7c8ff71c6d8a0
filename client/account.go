package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/yyhhenry/sdu--neu-bug/models"
)

// Account returns the stored account, nil when logged out.
func (c *Client) Account() (*models.AccountStorage, error) {
	return c.Storage.Load()
}

func (c *Client) Login(ctx context.Context, req models.LoginReq) (*models.AccountStorage, error) {
	res, err := call[models.LoginRes](ctx, c, request{method: http.MethodPost, path: "/api/login", body: req})
	if err != nil {
		return nil, err
	}
	account := &models.AccountStorage{Username: req.Username, Role: res.Role, Token: res.Token}
	if err := c.Storage.Save(account); err != nil {
		return nil, err
	}
	c.Logger.Infof("Event ID: LOGIN_SUCCESS, Description: Logged in as %s", req.Username)
	return account, nil
}

func (c *Client) Logout() error {
	return c.Storage.Save(nil)
}

// RefreshToken renews the token pair when the access token expires within
// a minute. A rejected refresh logs the account out instead of failing.
func (c *Client) RefreshToken(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	account, err := c.Storage.Load()
	if err != nil || account == nil {
		return err
	}
	if !account.Token.ExpiresWithin(refreshMargin, c.now()) {
		return nil
	}

	pair, err := call[models.TokenPair](ctx, c, request{
		method: http.MethodPost,
		path:   "/api/refresh",
		body:   models.RefreshReq{RefreshToken: account.Token.RefreshToken},
	})
	var apiErr *models.APIError
	if errors.As(err, &apiErr) {
		c.Logger.Warnf("Event ID: TOKEN_REFRESH_REJECTED, Description: %s", apiErr.Msg)
		return c.Storage.Save(nil)
	}
	if err != nil {
		return err
	}
	account.Token = pair
	return c.Storage.Save(account)
}

// AuthHeader refreshes the token when needed and returns the
// Authorization header value, empty when logged out.
func (c *Client) AuthHeader(ctx context.Context) (string, error) {
	if err := c.RefreshToken(ctx); err != nil {
		return "", err
	}
	account, err := c.Storage.Load()
	if err != nil || account == nil {
		return "", err
	}
	return "Bearer " + account.Token.AccessToken, nil
}

// GetUserInfo fetches a user; an empty username means the logged-in user.
func (c *Client) GetUserInfo(ctx context.Context, username string) (models.UserInfo, error) {
	if username == "" {
		account, err := c.Storage.Load()
		if err != nil {
			return models.UserInfo{}, err
		}
		if account == nil {
			return models.UserInfo{}, ErrNotLoggedIn
		}
		username = account.Username
	}
	return call[models.UserInfo](ctx, c, request{method: http.MethodGet, path: pathf("/api/user/%s", username), auth: true})
}

func (c *Client) ChangePassword(ctx context.Context, req models.ChangePasswordReq) (string, error) {
	return c.callMsg(ctx, request{method: http.MethodPost, path: "/api/change-password", body: req, auth: true})
}

func (c *Client) EditUser(ctx context.Context, username string, info models.UserInfo) (string, error) {
	return c.callMsg(ctx, request{method: http.MethodPost, path: pathf("/api/user/%s", username), body: info, auth: true})
}

func (c *Client) SearchUsers(ctx context.Context, req models.SearchUserReq) ([]models.UserInfo, error) {
	res, err := call[models.SearchUserRes](ctx, c, request{method: http.MethodGet, path: "/api/search-user", query: req.Values(), auth: true})
	return res.Users, err
}

func (c *Client) DeleteUser(ctx context.Context, username string) (string, error) {
	return c.callMsg(ctx, request{method: http.MethodDelete, path: pathf("/api/user/%s", username), auth: true})
}

func (c *Client) Register(ctx context.Context, req models.RegisterReq) (string, error) {
	return c.callMsg(ctx, request{method: http.MethodPost, path: "/api/register", body: req, auth: true})
}
