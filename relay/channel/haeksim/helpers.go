package haeksim

import (
	"fmt"
	"strings"
)

// NormalizeStatus maps the spellings seen from the service onto the three task states.
// An empty status counts as pending.
func NormalizeStatus(status string) (TaskStatus, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", "pending", "queued", "submitted", "processing":
		return TaskStatusPending, nil
	case "completed", "complete", "succeed", "success":
		return TaskStatusCompleted, nil
	case "failed", "failure", "error":
		return TaskStatusFailed, nil
	}
	return "", fmt.Errorf("unexpected task status %q", status)
}

// quoteEscaper follows mime/multipart's escaping of form field names.
var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
