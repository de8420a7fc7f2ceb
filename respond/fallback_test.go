package respond

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackMatchesTopics(t *testing.T) {
	responder := NewFallbackResponder(nil)

	tests := []struct {
		query string
		topic string
	}{
		{"my friend is choking on food", "Choking"},
		{"deep cut bleeding a lot", "Bleeding"},
		{"spilled boiling water burn on hand", "Burns"},
		{"I think my arm has a fracture", "Fractures"},
		{"bitten by a snake on a hike", "Snake Bites"},
		{"child swallowed cleaning product poisoning", "Poisoning"},
		{"feeling nausea after dinner", "Nausea"},
		{"pounding headache all day", "Headaches"},
		{"suddenly dizzy and weak", "Dizziness"},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			response := responder.Respond(tt.query)
			assert.Contains(t, response, tt.topic)
			// Every canned block tells the user when to call for help
			assert.Contains(t, strings.ToUpper(response), "CALL EMERGENCY SERVICES")
		})
	}
}

func TestFallbackFirstMatchWins(t *testing.T) {
	responder := NewFallbackResponder(nil)

	// "choking" precedes "bleeding" in the table
	response := responder.Respond("choking and bleeding at the same time")
	assert.Contains(t, response, "Choking")
	assert.NotContains(t, response, "this may relate to Bleeding")
}

func TestFallbackGenericChecklist(t *testing.T) {
	responder := NewFallbackResponder(nil)

	response := responder.Respond("what is the meaning of life")
	assert.Contains(t, response, "General First Aid Steps")
	assert.Contains(t, response, `"what is the meaning of life"`)
	assert.Contains(t, response, "Call emergency services")
}

func TestFallbackOutputIsSanitized(t *testing.T) {
	responder := NewFallbackResponder(nil)

	response := responder.Respond("nausea")
	assert.Equal(t, response, Sanitize(response))
}
