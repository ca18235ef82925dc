package ui

import "strings"

// ColorDiff styles the lines of a unified diff.
func ColorDiff(unified string) string {
	if unified == "" {
		return ""
	}
	lines := strings.Split(strings.TrimSuffix(unified, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "@@"):
			lines[i] = Muted.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = Added.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = Removed.Render(line)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
