package config

import (
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/haeksim/noonsongi/common/env"
)

var SystemName = "Haeksim"
var Warning = "Haeksim can make mistakes. Verify important information."
var InputPlaceholder = "Type what you want summarized"

// BaseURL is the generation service every transport call is bound to.
var BaseURL = env.String("BASE_URL", "https://haeksimnoonsongi-production-9a31.up.railway.app/")

// DefaultPollInterval is used whenever POLL_INTERVAL_MS is missing or not positive.
const DefaultPollInterval = 4000 * time.Millisecond

// PollInterval is the period between two status checks of one task.
var PollInterval = positiveDuration(time.Duration(env.Int("POLL_INTERVAL_MS", 4000))*time.Millisecond, DefaultPollInterval)

// RelayTimeout is the per request timeout in seconds, 0 leaves the http client default.
var RelayTimeout = env.Int("RELAY_TIMEOUT", 0)
var RelayProxy = env.String("RELAY_PROXY", "")

// Submission rules. The last client revision required both a prompt and a file.
var RequireAttachment = env.Bool("REQUIRE_ATTACHMENT", true)
var RequirePDF = env.Bool("REQUIRE_PDF", true)
var MaxAttachmentSize = int64(env.Int("MAX_ATTACHMENT_SIZE_MB", 32)) << 20

// Any options with "Secret" in its key won't be logged

var SessionSecret = uuid.New().String()
var SessionTTL = time.Duration(env.Int("SESSION_TTL", 60)) * time.Minute
var MaxSessions = env.Int("MAX_SESSIONS", 1024)

// AllowedOrigins limits cross origin calls to the session API, empty allows any origin.
var AllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

var DebugEnabled = strings.ToLower(os.Getenv("DEBUG")) == "true"

var ServiceName = env.String("SERVICE_NAME", "noonsongi")
var InstanceId = env.String("INSTANCE_ID", hostnameOr("local"))

func hostnameOr(fallback string) string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return fallback
	}
	return name
}

func positiveDuration(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
