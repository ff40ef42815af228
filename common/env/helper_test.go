package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"unset", "", 4000},
		{"valid", "250", 250},
		{"garbage", "fast", 4000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NOONSONGI_TEST_INT", tt.value)
			assert.Equal(t, tt.want, Int("NOONSONGI_TEST_INT", 4000))
		})
	}
}

func TestBool(t *testing.T) {
	t.Setenv("NOONSONGI_TEST_BOOL", "TRUE")
	assert.True(t, Bool("NOONSONGI_TEST_BOOL", false))

	t.Setenv("NOONSONGI_TEST_BOOL", "no")
	assert.False(t, Bool("NOONSONGI_TEST_BOOL", true))

	t.Setenv("NOONSONGI_TEST_BOOL", "")
	assert.True(t, Bool("NOONSONGI_TEST_BOOL", true))
}

func TestString(t *testing.T) {
	t.Setenv("NOONSONGI_TEST_STRING", "")
	assert.Equal(t, "fallback", String("NOONSONGI_TEST_STRING", "fallback"))

	t.Setenv("NOONSONGI_TEST_STRING", "http://127.0.0.1:8000/")
	assert.Equal(t, "http://127.0.0.1:8000/", String("NOONSONGI_TEST_STRING", "fallback"))
}
