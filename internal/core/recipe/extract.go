package recipe

import (
	"regexp"
	"strings"

	"ai-chef-server/internal/pkg/common"
)

// Markdown code-fence markers with an optional language tag, e.g. ```json.
var fencePattern = regexp.MustCompile("```[a-zA-Z]*")

// cleanModelText strips markdown fences and surrounding whitespace from raw
// model output.
func cleanModelText(text string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
}

// ExtractJSON finds the first JSON object embedded in arbitrary model text.
// It slices from the first '{' to the last '}' (a greedy match, tolerated so
// models may wrap JSON in explanatory prose) and parses that; if the slice
// fails it parses the whole cleaned string. Returns ok=false when no JSON
// object is found — callers must then treat the text as opaque prose.
func ExtractJSON(text string) (map[string]interface{}, bool) {
	cleaned := cleanModelText(text)
	if cleaned == "" {
		return nil, false
	}

	if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start != -1 && end > start {
		var parsed map[string]interface{}
		if err := common.ParseJSON(cleaned[start:end+1], &parsed); err == nil {
			return parsed, true
		}
	}

	var parsed map[string]interface{}
	if err := common.ParseJSON(cleaned, &parsed); err == nil {
		return parsed, true
	}

	return nil, false
}

// extractJSONInto is ExtractJSON for callers that want the object decoded
// straight into a typed structure.
func extractJSONInto(text string, out interface{}) error {
	cleaned := cleanModelText(text)

	if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start != -1 && end > start {
		if err := common.ParseJSON(cleaned[start:end+1], out); err == nil {
			return nil
		}
	}

	return common.ParseJSON(cleaned, out)
}
