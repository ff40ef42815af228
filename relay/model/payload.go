package model

import (
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/haeksim/noonsongi/common/config"
)

const MimePDF = "application/pdf"

var (
	ErrEmptyPrompt       = errors.New("prompt is required")
	ErrMissingFile       = errors.New("a file attachment is required")
	ErrInvalidAttachment = errors.New("attachment has no name or no content")
	ErrNotPDF            = errors.New("attachment must be a PDF document")
	ErrFileTooLarge      = errors.New("attachment is too large")
)

var validate = validator.New()

// Attachment is one uploaded file, held in memory for the lifetime of a session.
type Attachment struct {
	Name        string `json:"name" validate:"required"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-" validate:"min=1"`
}

// Payload is what one submission sends to the generation service.
type Payload struct {
	Prompt string      `json:"prompt"`
	File   *Attachment `json:"file,omitempty"`
}

// Rules decide which payloads may be submitted.
type Rules struct {
	RequireFile bool
	RequirePDF  bool
}

func DefaultRules() Rules {
	return Rules{
		RequireFile: config.RequireAttachment,
		RequirePDF:  config.RequirePDF,
	}
}

// NewAttachment sniffs the content type from data rather than trusting the client.
func NewAttachment(name string, data []byte) *Attachment {
	return &Attachment{
		Name:        name,
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}
}

func (a *Attachment) IsPDF() bool {
	if a == nil {
		return false
	}
	return mimetype.Detect(a.Data).Is(MimePDF)
}

func (a *Attachment) Size() int {
	if a == nil {
		return 0
	}
	return len(a.Data)
}

func (p *Payload) HasFile() bool {
	return p != nil && p.File != nil
}

// Validate reports the first rule the payload breaks.
func (p *Payload) Validate(rules Rules) error {
	if p == nil {
		return ErrEmptyPrompt
	}
	if err := validate.Var(strings.TrimSpace(p.Prompt), "required"); err != nil {
		return ErrEmptyPrompt
	}
	if p.File == nil {
		if rules.RequireFile {
			return ErrMissingFile
		}
		return nil
	}
	if err := validate.Struct(p.File); err != nil {
		return ErrInvalidAttachment
	}
	if rules.RequirePDF && !p.File.IsPDF() {
		return ErrNotPDF
	}
	return nil
}

// IsValidationError tells user mistakes apart from transport failures.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyPrompt) ||
		errors.Is(err, ErrMissingFile) ||
		errors.Is(err, ErrInvalidAttachment) ||
		errors.Is(err, ErrNotPDF) ||
		errors.Is(err, ErrFileTooLarge)
}
