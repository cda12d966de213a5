package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// RemoteErrorResponse is the failure body returned by the commerce API:
// {"success": false, "message": "..."}. Some endpoints omit "success".
type RemoteErrorResponse struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError:
//
//   - 401 is always Unauthenticated.
//   - A body carrying a message is a ServerRejection (404 becomes NotFound).
//   - A body without a message is a NetworkFailure, except 404 which stays NotFound.
//
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, call string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.NetworkFailure(fmt.Errorf("%s returned status %d (failed to read body: %w)", call, resp.StatusCode, err))
	}

	var remote RemoteErrorResponse
	structured := json.Unmarshal(bodyBytes, &remote) == nil && strings.TrimSpace(remote.Message) != ""

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		msg := "Protected route, Oauth2 Bearer token not found"
		if structured {
			msg = remote.Message
		}
		return apperrors.Unauthenticated(msg)
	case resp.StatusCode == http.StatusNotFound:
		msg := call + ": nothing found"
		if structured {
			msg = remote.Message
		}
		return &apperrors.AppError{
			Code:    string(apperrors.KindNotFound),
			Message: msg,
			Status:  http.StatusNotFound,
			Err:     apperrors.ErrNotFound,
		}
	case structured:
		return apperrors.ServerRejection(resp.StatusCode, remote.Message)
	default:
		return apperrors.NetworkFailure(fmt.Errorf("%s returned status %d: %s", call, resp.StatusCode, string(bodyBytes)))
	}
}

// IsSuccess reports whether status is a 2xx code.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
