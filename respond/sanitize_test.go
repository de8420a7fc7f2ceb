package respond

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"strips headings",
			"## Immediate Action\nApply pressure.",
			"Immediate Action\nApply pressure.",
		},
		{
			"unwraps bold and italic",
			"This is **very important** and *urgent*.",
			"This is very important and urgent.",
		},
		{
			"unwraps inline code",
			"Dial `112` now.",
			"Dial 112 now.",
		},
		{
			"normalizes bullets",
			"* first\n• second\n- third",
			"- first\n- second\n- third",
		},
		{
			"collapses blank line runs",
			"one\n\n\n\ntwo",
			"one\n\ntwo",
		},
		{
			"trims whitespace",
			"  steady pressure  ",
			"steady pressure",
		},
		{
			"empty input",
			"",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"## Heading\n**bold** and `code`\n* bullet\n\n\n\nend",
		"plain text without markup",
		"- already\n- clean\n- bullets",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		assert.Equal(t, once, twice, "Sanitize not idempotent for %q", in)
	}
}

func TestSanitize_PreservesNumberedSteps(t *testing.T) {
	in := "Step-by-Step Instructions\n1. Check the airway.\n2. Give back blows."
	out := Sanitize(in)
	assert.True(t, strings.Contains(out, "1. Check the airway."))
	assert.True(t, strings.Contains(out, "2. Give back blows."))
}
