package petfriends

import (
	"context"
	"net/http"
)

const authKeyHeader = "auth_key"

// GetAPIKey exchanges an email and password for an auth key. A 200 response
// carries the key in Response.Key; bad credentials come back as 403.
func (c *Client) GetAPIKey(ctx context.Context, email, password string) (*Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "api/key", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("email", email)
	req.Header.Set("password", password)
	return c.do(req)
}
