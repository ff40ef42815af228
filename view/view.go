package view

import (
	"net/url"
	"path"
	"strings"

	"github.com/haeksim/noonsongi/common/config"
	"github.com/haeksim/noonsongi/model"
)

type Kind string

const (
	ScreenStart        Kind = "start"
	ScreenConversation Kind = "conversation"
)

// Screen is everything a renderer needs to draw one session. It is derived from a
// snapshot and never mutated by the renderers.
type Screen struct {
	Kind Kind `json:"kind"`

	// Draft is the text left in the input box on the start screen.
	Draft string `json:"draft,omitempty"`
	// Question is the submitted prompt shown as the user's bubble.
	Question string `json:"question,omitempty"`
	FileName string `json:"file_name,omitempty"`

	Loading bool   `json:"loading"`
	Result  string `json:"result,omitempty"`
	Alert   string `json:"alert,omitempty"`

	Title       string `json:"title"`
	Placeholder string `json:"placeholder"`
	Warning     string `json:"warning"`
}

// Select decides which screen a session shows. The conversation appears once a payload
// is submitted and stays until the session is reset or the run fails.
func Select(state model.SessionState) Screen {
	screen := Screen{
		Kind:        ScreenStart,
		Alert:       state.Alert,
		Title:       config.SystemName,
		Placeholder: config.InputPlaceholder,
		Warning:     config.Warning,
	}

	if state.Payload == nil && state.Result == "" {
		screen.Draft = state.Prompt
		return screen
	}

	screen.Kind = ScreenConversation
	screen.Question = state.Prompt
	if state.Payload != nil {
		if state.Payload.Prompt != "" {
			screen.Question = state.Payload.Prompt
		}
		if state.Payload.File != nil {
			screen.FileName = state.Payload.File.Name
		}
	}
	if state.Result == "" {
		screen.Loading = true
		return screen
	}
	screen.Result = state.Result
	return screen
}

// Key changes whenever a renderer has to redraw the whole screen rather than patch it.
func (s Screen) Key() string {
	key := string(s.Kind)
	switch {
	case s.Loading:
		key += ":loading"
	case s.Result != "":
		key += ":result"
	}
	if s.Alert != "" {
		key += ":alert"
	}
	return key
}

// ResultURL resolves a result that the service reported relative to its own base URL.
func (s Screen) ResultURL(baseURL string) string {
	if s.Result == "" {
		return ""
	}
	ref, err := url.Parse(s.Result)
	if err != nil || ref.IsAbs() || baseURL == "" {
		return s.Result
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return s.Result
	}
	return base.ResolveReference(ref).String()
}

var videoExts = map[string]bool{".mp4": true, ".webm": true, ".mov": true, ".m4v": true, ".ogv": true}

// IsVideo reports whether the result points at a playable video rather than plain text.
func (s Screen) IsVideo() bool {
	ref, err := url.Parse(s.Result)
	if err != nil {
		return false
	}
	return videoExts[strings.ToLower(path.Ext(ref.Path))]
}
