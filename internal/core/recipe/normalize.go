// Package recipe contains the AI-response normalization pipeline and the
// chat/transform orchestrators built on it. The normalization layer turns
// free-form model text — which is expected, but never guaranteed, to be a
// JSON recipe object — into a strictly-typed recipe or plain display text.
package recipe

import (
	"strings"

	"ai-chef-server/internal/pkg/common"
)

// PayloadKind classifies normalized model output.
type PayloadKind string

const (
	// PayloadRecipe means the output carried a structured recipe.
	PayloadRecipe PayloadKind = "recipe"
	// PayloadText means the output is plain display text.
	PayloadText PayloadKind = "text"
)

// Payload is the tagged result of normalizing raw model text.
type Payload struct {
	Kind   PayloadKind
	Recipe *common.Recipe
	Text   string
}

// Normalize classifies raw model output as a recipe or plain text. It never
// fails: unparseable input degrades to a text payload with the original
// content untouched. Pure function; persistence is the orchestrator's job.
func Normalize(rawModelText string) Payload {
	parsed, ok := ExtractJSON(rawModelText)
	if !ok {
		return Payload{Kind: PayloadText, Text: rawModelText}
	}

	// Only an explicit is_recipe=true is treated as a recipe. An absent or
	// ambiguous flag is classified conservatively as text.
	if isRecipeFlag(parsed["is_recipe"]) {
		r := &common.Recipe{
			Title:       stringField(parsed, "name"),
			Time:        stringField(parsed, "time"),
			Tags:        CoerceStrings(parsed["tags"]),
			Ingredients: CoerceStrings(parsed["ingredients"]),
			Steps:       CoerceStrings(parsed["steps"]),
		}
		return Payload{Kind: PayloadRecipe, Recipe: r}
	}

	if text := stringField(parsed, "text"); text != "" {
		return Payload{Kind: PayloadText, Text: text}
	}
	if msg := stringField(parsed, "message"); msg != "" {
		return Payload{Kind: PayloadText, Text: msg}
	}
	return Payload{Kind: PayloadText, Text: rawModelText}
}

func isRecipeFlag(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(val, "true")
	default:
		return false
	}
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
