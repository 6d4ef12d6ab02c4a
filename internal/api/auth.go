package api

import "context"

type LoginParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string `json:"token"`
}

func (c *Client) Login(ctx context.Context, p LoginParams) (*LoginResult, error) {
	var out LoginResult
	if err := c.r.Post(ctx, "/auth/login", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
