package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func TestNewAttachmentSniffsPDF(t *testing.T) {
	att := NewAttachment("lecture.pdf", samplePDF)
	assert.Equal(t, MimePDF, att.ContentType)
	assert.True(t, att.IsPDF())
	assert.Equal(t, len(samplePDF), att.Size())

	txt := NewAttachment("notes.pdf", []byte("just some text"))
	assert.False(t, txt.IsPDF())
}

func TestPayloadValidate(t *testing.T) {
	strict := Rules{RequireFile: true, RequirePDF: true}
	relaxed := Rules{}

	tests := []struct {
		name    string
		payload *Payload
		rules   Rules
		want    error
	}{
		{"nil payload", nil, strict, ErrEmptyPrompt},
		{"empty prompt", &Payload{Prompt: "", File: NewAttachment("a.pdf", samplePDF)}, strict, ErrEmptyPrompt},
		{"blank prompt", &Payload{Prompt: "   \n", File: NewAttachment("a.pdf", samplePDF)}, strict, ErrEmptyPrompt},
		{"missing file", &Payload{Prompt: "summarize"}, strict, ErrMissingFile},
		{"text only relaxed", &Payload{Prompt: "summarize"}, relaxed, nil},
		{"unnamed file", &Payload{Prompt: "summarize", File: &Attachment{Data: samplePDF}}, strict, ErrInvalidAttachment},
		{"empty file", &Payload{Prompt: "summarize", File: &Attachment{Name: "a.pdf"}}, strict, ErrInvalidAttachment},
		{"not a pdf", &Payload{Prompt: "summarize", File: NewAttachment("a.pdf", []byte("hello"))}, strict, ErrNotPDF},
		{"not a pdf relaxed", &Payload{Prompt: "summarize", File: NewAttachment("a.txt", []byte("hello"))}, relaxed, nil},
		{"valid", &Payload{Prompt: "summarize", File: NewAttachment("a.pdf", samplePDF)}, strict, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate(tt.rules)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestErrorWithStatusCode(t *testing.T) {
	err := &ErrorWithStatusCode{StatusCode: 500, Detail: Error{Message: "No output generated"}}
	assert.Equal(t, "generation service returned status 500: No output generated", err.Error())

	bare := &ErrorWithStatusCode{StatusCode: 502}
	assert.Equal(t, "generation service returned status 502", bare.Error())
}
