package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocess(t *testing.T) {
	p := NewProcessor()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "What Should I DO", "what should i do"},
		{"collapses whitespace", "severe   bleeding \t now", "severe bleeding now"},
		{"strips trailing punctuation", "is this an emergency?!?", "is this an emergency"},
		{"keeps internal punctuation", "what? help!", "what? help"},
		{"trims", "  burn  ", "burn"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Preprocess(tt.in))
		})
	}
}

func TestPreprocess_Idempotent(t *testing.T) {
	p := NewProcessor()

	queries := []string{
		"What should I do for severe bleeding?",
		"SOMEONE IS CHOKING!!!",
		"  weird   spacing  everywhere ? ",
		"",
	}

	for _, q := range queries {
		once := p.Preprocess(q)
		twice := p.Preprocess(once)
		assert.Equal(t, once, twice, "Preprocess not idempotent for %q", q)
	}
}

func TestExpand(t *testing.T) {
	p := NewProcessor()

	t.Run("original always first", func(t *testing.T) {
		normalized := p.Preprocess("What should I do for severe bleeding?")
		expanded := p.Expand(normalized, 5)
		require.NotEmpty(t, expanded)
		assert.Equal(t, normalized, expanded[0])
	})

	t.Run("includes hemorrhage variant for bleeding", func(t *testing.T) {
		expanded := p.Expand("what should i do for severe bleeding", 5)
		assert.Contains(t, expanded, "what should i do for severe hemorrhage")
	})

	t.Run("bounded by max expansions", func(t *testing.T) {
		for _, max := range []int{1, 2, 3, 5, 10} {
			expanded := p.Expand("bleeding from a burn while choking", max)
			assert.LessOrEqual(t, len(expanded), max)
		}
	})

	t.Run("no matching terms yields only original", func(t *testing.T) {
		expanded := p.Expand("paper cut on finger", 5)
		// "cut" is a synonym, not a table term, so no expansion applies.
		assert.Equal(t, []string{"paper cut on finger"}, expanded)
	})

	t.Run("no duplicate variants", func(t *testing.T) {
		expanded := p.Expand("bleeding and more bleeding", 5)
		seen := make(map[string]bool)
		for _, q := range expanded {
			assert.False(t, seen[q], "duplicate variant %q", q)
			seen[q] = true
		}
	})
}

func TestExpand_CustomTable(t *testing.T) {
	p := NewProcessor(WithSynonyms([]SynonymEntry{
		{"sting", []string{"bite", "puncture"}},
	}))

	expanded := p.Expand("bee sting on arm", 5)
	assert.Equal(t, []string{
		"bee sting on arm",
		"bee bite on arm",
		"bee puncture on arm",
	}, expanded)
}

func TestKeywords(t *testing.T) {
	p := NewProcessor()

	t.Run("drops stop words and short tokens", func(t *testing.T) {
		keywords := p.Keywords("What should I do for a deep cut on my leg")
		assert.Equal(t, []string{"deep", "cut", "leg"}, keywords)
	})

	t.Run("trims punctuation at token edges", func(t *testing.T) {
		keywords := p.Keywords("How do I stop severe bleeding?")
		assert.Equal(t, []string{"stop", "severe", "bleeding"}, keywords)
	})

	t.Run("drops tokens that are only punctuation", func(t *testing.T) {
		keywords := p.Keywords("choking !!! now ???")
		assert.Equal(t, []string{"choking", "now"}, keywords)
	})

	t.Run("deduplicates preserving order", func(t *testing.T) {
		keywords := p.Keywords("burn burn severe burn")
		assert.Equal(t, []string{"burn", "severe"}, keywords)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, p.Keywords(""))
	})
}

func TestDetectEmergency(t *testing.T) {
	p := NewProcessor()

	tests := []struct {
		query string
		want  bool
	}{
		{"My friend is unconscious on the floor", true},
		{"He is NOT BREATHING", true},
		{"crushing chest pain and sweating", true},
		{"small paper cut on finger", false},
		{"how do I store a first aid kit", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, p.DetectEmergency(tt.query))
		})
	}
}
