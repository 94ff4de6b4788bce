package cvgen

import (
	"encoding/json"
	"regexp"
	"strings"
)

// bracketed finds the widest [...] span in the content, covering model
// replies that wrap the JSON array in prose or a markdown fence.
var bracketed = regexp.MustCompile(`(?s)\[.*\]`)

// parseList extracts a list of strings from model output.
//
// Three tiers, first success wins:
//  1. The whole content is a JSON array of strings.
//  2. The content contains a bracketed JSON array (prose around it).
//  3. Plain lines: one item per line with bullets, quotes, and trailing
//     punctuation stripped.
//
// All tiers failing yields an empty list, never an error: a malformed
// model reply must not fail the request.
func parseList(content string) []string {
	if items, ok := decodeStringArray([]byte(content)); ok {
		return items
	}

	if match := bracketed.FindString(content); match != "" {
		if items, ok := decodeStringArray([]byte(match)); ok {
			return items
		}
	}

	items := []string{}
	for _, line := range strings.Split(content, "\n") {
		if item := cleanLine(line); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func decodeStringArray(data []byte) ([]string, bool) {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return items, true
}

// cleanLine strips list decoration from a plain-text line. Headings and
// stray array brackets are dropped entirely.
func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "[") || strings.HasPrefix(line, "]") {
		return ""
	}

	for _, bullet := range []string{"-", "*", "•"} {
		if rest, ok := strings.CutPrefix(line, bullet); ok {
			line = rest
			break
		}
	}

	line = strings.Trim(line, ` "',.`)
	return strings.TrimSpace(line)
}
