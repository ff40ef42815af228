package haeksim

import (
	"encoding/json"
	"strings"
)

type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateResponse is the answer to a submission. Older service builds answered
// synchronously with the final path in Response and no task id.
type GenerateResponse struct {
	TaskID   string `json:"task_id,omitempty"`
	Status   string `json:"status,omitempty"`
	Response string `json:"response,omitempty"`
}

type StatusResponse struct {
	TaskID string `json:"task_id,omitempty"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// errorResponse covers FastAPI's {"detail": ...} and the gin style {"error": ...}.
type errorResponse struct {
	Detail  json.RawMessage `json:"detail,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (e *errorResponse) message() string {
	for _, raw := range []json.RawMessage{e.Detail, e.Error} {
		if msg := rawMessage(raw); msg != "" {
			return msg
		}
	}
	return e.Message
}

func rawMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return strings.TrimSpace(string(raw))
}
