package notify

import (
	"errors"
	"net/url"
)

// redactURLError strips the request URL from *url.Error so secrets in the
// path or query do not reach logs.
func redactURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return &url.Error{Op: ue.Op, URL: "<redacted>", Err: ue.Err}
	}
	return err
}
