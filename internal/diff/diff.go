// Package diff computes a line-level delta between two text blobs. The
// result is a human-readable change preview; merge logic never depends on it.
package diff

import "strings"

type LineType string

const (
	LineAdded     LineType = "added"
	LineRemoved   LineType = "removed"
	LineUnchanged LineType = "unchanged"
)

// Line is one line of the computed delta.
type Line struct {
	Type LineType `json:"type"`
	Text string   `json:"text"`
}

// Lines aligns the two inputs line by line with a greedy two-cursor pass.
// Concatenating the unchanged and removed lines reproduces original;
// concatenating the unchanged and added lines reproduces modified. The result
// is not guaranteed to be a minimal edit script.
func Lines(original, modified string) []Line {
	oldLines := strings.Split(original, "\n")
	newLines := strings.Split(modified, "\n")

	var result []Line

	i, j := 0, 0
	for i < len(oldLines) && j < len(newLines) {
		switch {
		case oldLines[i] == newLines[j]:
			result = append(result, Line{Type: LineUnchanged, Text: oldLines[i]})
			i++
			j++
		case !contains(newLines[j:], oldLines[i]):
			result = append(result, Line{Type: LineRemoved, Text: oldLines[i]})
			i++
		case !contains(oldLines[i:], newLines[j]):
			result = append(result, Line{Type: LineAdded, Text: newLines[j]})
			j++
		default:
			// both lines reappear later, treat the pair as a one-line edit
			result = append(result, Line{Type: LineRemoved, Text: oldLines[i]})
			result = append(result, Line{Type: LineAdded, Text: newLines[j]})
			i++
			j++
		}
	}

	for ; i < len(oldLines); i++ {
		result = append(result, Line{Type: LineRemoved, Text: oldLines[i]})
	}

	for ; j < len(newLines); j++ {
		result = append(result, Line{Type: LineAdded, Text: newLines[j]})
	}

	return result
}

func contains(lines []string, line string) bool {
	for _, l := range lines {
		if l == line {
			return true
		}
	}

	return false
}
