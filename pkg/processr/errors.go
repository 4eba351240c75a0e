package processr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrStreamOpen marks a local file path that could not be opened. The
	// failure is reported before any network traffic occurs.
	ErrStreamOpen = errors.New("stream open error")
	// ErrStreamRead marks an I/O failure while reading an already-open stream.
	ErrStreamRead = errors.New("stream read error")
	// ErrTransport marks a network-level failure (connect, TLS, timeout).
	ErrTransport = errors.New("transport error")
	// ErrLinkUnreachable matches the one API error that triggers the
	// proxy-retry path: the server could not reach a submitted link.
	ErrLinkUnreachable = errors.New("link unreachable")
	// ErrPollLimit is returned when a configured poll ceiling is exhausted
	// while the resource is still pending.
	ErrPollLimit = errors.New("poll attempt limit reached")
)

// linkUnreachableMessage is the exact server message for a link the API could
// not fetch, typically because it lives on a network only the caller can see.
const linkUnreachableMessage = "Unable to handle a link because it could not be reached"

// APIError describes an HTTP response with status >= 400. Message carries the
// server-provided message when the body decodes as JSON, otherwise the raw
// body text. Body retains the original payload for callers that need it.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	message := strings.TrimSpace(e.Message)
	if message == "" {
		return fmt.Sprintf("api error: http %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: http %d: %s", e.StatusCode, message)
}

// Is lets errors.Is(err, ErrLinkUnreachable) detect the retryable 400.
func (e *APIError) Is(target error) bool {
	return target == ErrLinkUnreachable && e.linkUnreachable()
}

func (e *APIError) linkUnreachable() bool {
	return e.StatusCode == http.StatusBadRequest && strings.TrimSpace(e.Message) == linkUnreachableMessage
}

// IsLinkUnreachable reports whether err is the 400 response the server sends
// for a link it could not fetch.
func IsLinkUnreachable(err error) bool {
	return errors.Is(err, ErrLinkUnreachable)
}

// decodeAPIError builds an APIError from an error response body. JSON bodies
// contribute their message field; anything else passes through as plain text.
func decodeAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Body: body}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			apiErr.Message = msg
			return apiErr
		}
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			apiErr.Message = msg
			return apiErr
		}
	}
	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}
