package model

import "fmt"

type Error struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

// ErrorWithStatusCode is a non-2xx answer from the generation service.
type ErrorWithStatusCode struct {
	Detail     Error `json:"error"`
	StatusCode int   `json:"status_code"`
}

func (e *ErrorWithStatusCode) Error() string {
	if e.Detail.Message == "" {
		return fmt.Sprintf("generation service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("generation service returned status %d: %s", e.StatusCode, e.Detail.Message)
}
