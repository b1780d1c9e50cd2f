package llm

import (
	"regexp"
	"strings"
)

// jsonObjectRe matches the first brace-delimited object in a response,
// non-greedy so trailing commentary is ignored.
var jsonObjectRe = regexp.MustCompile(`(?s)\{.*?\}`)

// ExtractJSON locates the first JSON object embedded in model output.
// Models wrap responses in markdown fences or prose often enough that
// callers should never unmarshal raw completion text directly.
func ExtractJSON(content string) (string, bool) {
	content = cleanMarkdownWrapper(content)
	match := jsonObjectRe.FindString(content)
	if match == "" {
		return "", false
	}
	return match, true
}

// cleanMarkdownWrapper strips markdown code fences from a response.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx >= 0 {
			content = content[idx+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	return strings.TrimSpace(content)
}
