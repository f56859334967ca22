package llm

import (
	"regexp"
	"strings"
)

var (
	thinkBlockPattern = regexp.MustCompile(`(?is)<think>.*?</think>`)
	metaLeadPattern   = regexp.MustCompile(`(?is)^\s*the user is asking.*?(\n\n|\n-\s|\n\d+\.\s)`)
	fencedJSONPattern = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")
)

// SanitizeReply strips reasoning artifacts from raw model output: <think>
// blocks and a leading "the user is asking..." paragraph up to the first
// blank line or list marker.
func SanitizeReply(text string) string {
	if text == "" {
		return ""
	}

	clean := thinkBlockPattern.ReplaceAllString(text, "")
	clean = strings.TrimSpace(clean)
	if loc := metaLeadPattern.FindStringIndex(clean); loc != nil {
		clean = clean[loc[1]:]
	}
	return strings.TrimSpace(clean)
}

// ExtractJSONBlock locates a JSON object inside model output, preferring a
// fenced code block over a bare first-to-last-brace slice. Returns "" when
// neither is present.
func ExtractJSONBlock(text string) string {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return ""
	}

	if match := fencedJSONPattern.FindStringSubmatch(raw); len(match) > 1 && strings.TrimSpace(match[1]) != "" {
		return strings.TrimSpace(match[1])
	}

	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first != -1 && last > first {
		return strings.TrimSpace(raw[first : last+1])
	}
	return ""
}
