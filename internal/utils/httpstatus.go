package utils

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var ErrHTTPStatus = errors.New("non-ok http status")

// CheckStatus turns a non-2xx response into an ErrHTTPStatus error carrying the body text.
// The body is closed when an ErrHTTPStatus is returned.
func CheckStatus(r *http.Response, err error) (*http.Response, error) {
	if err != nil || StatusOK(r) {
		return r, err
	}
	defer r.Body.Close()
	if body, readErr := io.ReadAll(io.LimitReader(r.Body, 4096)); readErr == nil {
		if s := strings.TrimSpace(string(body)); s != "" {
			return r, fmt.Errorf("%w: %v (%v)", ErrHTTPStatus, r.Status, s)
		}
	}
	return r, fmt.Errorf("%w: %v", ErrHTTPStatus, r.Status)
}

func StatusOK(r *http.Response) bool {
	return 200 <= r.StatusCode && r.StatusCode < 300
}
