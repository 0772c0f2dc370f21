package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// rebuild concatenates the lines of the given types back into a text blob.
func rebuild(lines []Line, types ...LineType) string {
	var parts []string
	for _, line := range lines {
		for _, t := range types {
			if line.Type == t {
				parts = append(parts, line.Text)
				break
			}
		}
	}

	return strings.Join(parts, "\n")
}

func TestLines_Reconstruction(t *testing.T) {
	tests := []struct {
		name     string
		original string
		modified string
	}{
		{
			name:     "single line change",
			original: "line1\nline2",
			modified: "line1\nline2-changed",
		},
		{
			name:     "added lines",
			original: "a\nb",
			modified: "a\nx\nb\ny",
		},
		{
			name:     "removed lines",
			original: "a\nx\nb\ny",
			modified: "a\nb",
		},
		{
			name:     "reordered with edits",
			original: "intro\nstep 1\nstep 2\noutro",
			modified: "intro\nstep 2\nstep 1 revised\noutro",
		},
		{
			name:     "original empty",
			original: "",
			modified: "a\nb",
		},
		{
			name:     "modified empty",
			original: "a\nb",
			modified: "",
		},
		{
			name:     "disjoint",
			original: "a\nb\nc",
			modified: "x\ny",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := Lines(tt.original, tt.modified)

			assert.Equal(t, tt.original, rebuild(lines, LineUnchanged, LineRemoved))
			assert.Equal(t, tt.modified, rebuild(lines, LineUnchanged, LineAdded))
		})
	}
}

func TestLines_Identity(t *testing.T) {
	text := "step 1\nstep 2\nstep 3"

	lines := Lines(text, text)

	assert.Len(t, lines, 3)
	for _, line := range lines {
		assert.Equal(t, LineUnchanged, line.Type)
	}
}

func TestLines_OneLineModification(t *testing.T) {
	lines := Lines("keep\nold\nkeep2", "keep\nnew\nkeep2")

	assert.Equal(t, []Line{
		{Type: LineUnchanged, Text: "keep"},
		{Type: LineRemoved, Text: "old"},
		{Type: LineAdded, Text: "new"},
		{Type: LineUnchanged, Text: "keep2"},
	}, lines)
}
