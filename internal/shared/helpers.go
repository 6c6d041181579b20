package shared

import (
	"regexp"
	"strings"
)

var ansiEscape = regexp.MustCompile(`\x1b(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)

// StripANSI removes ANSI escape sequences from CLI tool output.
func StripANSI(text string) string {
	if text == "" {
		return text
	}
	return ansiEscape.ReplaceAllString(text, "")
}

// ExtractHCLFromMarkdown collects the contents of ```hcl and
// ```terraform fenced blocks from markdown documentation.
func ExtractHCLFromMarkdown(content string) string {
	if content == "" {
		return ""
	}
	var blocks []string
	inBlock := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "```hcl") || strings.HasPrefix(trimmed, "```terraform"):
			inBlock = true
		case trimmed == "```" && inBlock:
			inBlock = false
		case inBlock:
			blocks = append(blocks, line)
		}
	}
	return strings.Join(blocks, "\n")
}
