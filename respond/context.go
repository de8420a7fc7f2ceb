package respond

import (
	"fmt"
	"strings"

	"github.com/poiesic/firstaid/core"
)

// MaxContextChunks bounds how many ranked candidates feed the prompt.
const MaxContextChunks = 6

// AssembleContext renders the top ranked candidates as labelled context
// blocks for the generator, in rank order, joined by blank lines.
func AssembleContext(ranked []*core.RankedCandidate) string {
	if len(ranked) > MaxContextChunks {
		ranked = ranked[:MaxContextChunks]
	}

	blocks := make([]string, 0, len(ranked))
	for i, rc := range ranked {
		var b strings.Builder
		fmt.Fprintf(&b, "Source %d (%s):\n", i+1, sourceLabel(rc.Chunk.Source))
		fmt.Fprintf(&b, "Title: %s\n", rc.Chunk.Title)
		fmt.Fprintf(&b, "Category: %s\n", rc.Chunk.Category)
		fmt.Fprintf(&b, "Severity: %s\n", rc.Chunk.Severity)
		fmt.Fprintf(&b, "Relevance: %.3f\n", rc.Score)
		fmt.Fprintf(&b, "Method: %s\n", rc.Method)
		b.WriteString(rc.Chunk.Text)
		blocks = append(blocks, b.String())
	}

	return strings.Join(blocks, "\n\n")
}

// sourceLabel truncates a source reference at its first pipe separator.
// Stored sources look like "IFRC 2020 | Chapter 4 | p.112"; only the
// leading publication name belongs in the prompt.
func sourceLabel(source string) string {
	if source == "" {
		return "Unknown"
	}
	label, _, _ := strings.Cut(source, "|")
	return strings.TrimSpace(label)
}
