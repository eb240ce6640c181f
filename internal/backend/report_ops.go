package backend

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"storefront-service/internal/session"
)

// DownloadReport streams a generated PDF report from the backend. The caller
// must close the returned body.
func (c *Client) DownloadReport(ctx context.Context, sess *session.Session, name string, params url.Values) (io.ReadCloser, string, error) {
	path := fmt.Sprintf("/reports/%s", url.PathEscape(name))
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return c.stream(ctx, sess, path)
}
