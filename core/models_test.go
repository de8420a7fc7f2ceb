package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "apply direct pressure to the wound",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "If the person is unresponsive and not breathing normally, start chest compressions immediately and send someone to call emergency services",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("treat minor burns with cool running water")
	id2 := IDFromContent("immobilize the limb before moving the person")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestNormalizeVector(t *testing.T) {
	t.Run("unit length output", func(t *testing.T) {
		v := NormalizeVector([]float32{3, 4})
		if v[0] != 0.6 || v[1] != 0.8 {
			t.Errorf("NormalizeVector() = %v, want [0.6 0.8]", v)
		}
	})

	t.Run("zero vector passes through", func(t *testing.T) {
		v := NormalizeVector([]float32{0, 0, 0})
		for i, val := range v {
			if val != 0 {
				t.Errorf("NormalizeVector() index %d = %f, want 0", i, val)
			}
		}
	})

	t.Run("empty vector", func(t *testing.T) {
		v := NormalizeVector(nil)
		if len(v) != 0 {
			t.Errorf("NormalizeVector(nil) = %v, want empty", v)
		}
	})

	t.Run("does not mutate input", func(t *testing.T) {
		in := []float32{2, 0}
		NormalizeVector(in)
		if in[0] != 2 {
			t.Errorf("NormalizeVector() mutated its input: %v", in)
		}
	})
}
