package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// errorMessage extracts a readable message from an error body. The API answers
// with {"detail": "..."}, or a list of validation issues under "detail";
// other proxies may use {"error": "..."}.
func errorMessage(body []byte) string {
	var apiErr struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) == nil {
		if len(apiErr.Detail) > 0 {
			var s string
			if json.Unmarshal(apiErr.Detail, &s) == nil && s != "" {
				return s
			}
			var issues []struct {
				Msg string `json:"msg"`
			}
			if json.Unmarshal(apiErr.Detail, &issues) == nil && len(issues) > 0 {
				msgs := make([]string, 0, len(issues))
				for _, is := range issues {
					if is.Msg != "" {
						msgs = append(msgs, is.Msg)
					}
				}
				if len(msgs) > 0 {
					return strings.Join(msgs, "; ")
				}
			}
		}
		if apiErr.Error != "" {
			return apiErr.Error
		}
	}
	return strings.TrimSpace(string(body))
}
