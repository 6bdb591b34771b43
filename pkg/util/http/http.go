package http

import (
	"fmt"
	"net/http"
)

// StatusError is returned for any response other than 200 OK.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http response did not indicate OK status code: %d %s", e.Code, e.Status)
}

func isOKStatusCode(resp *http.Response) bool {
	return resp.StatusCode == http.StatusOK
}

func EnsureOKStatusCode(resp *http.Response) error {
	if !isOKStatusCode(resp) {
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	return nil
}
