package recipe

import (
	"fmt"
	"strings"

	"ai-chef-server/internal/pkg/common"
)

// chatSystemPrompt is the fixed instruction prepended to every chat turn.
// It pins the recipe-JSON contract the normalizer expects: when answering
// with a recipe the model must return a single JSON object with an explicit
// is_recipe flag and array-shaped tags/ingredients/steps.
const chatSystemPrompt = `You are an AI Chef assistant helping home cooks find and adjust recipes.

When your answer is a recipe, respond with exactly one JSON object and nothing else:
{"is_recipe": true, "name": "Dish name", "time": "30 min", "tags": ["Tag1", "Tag2"], "ingredients": ["Item 1", "Item 2"], "steps": ["Step 1", "Step 2"]}

When your answer is not a recipe, respond with:
{"is_recipe": false, "text": "your reply"}

Rules:
1. tags, ingredients and steps must be JSON arrays of strings
2. Do not wrap the JSON in markdown code fences
3. Return a single JSON object, never multiple
4. Keep the reply text friendly and concise`

// summaryPrompt asks for a short keyword-style chat label.
const summaryPrompt = `Summarize this cooking conversation as a short label of at most five words, like "Quick pasta dinner ideas". Reply with the label only, no quotes and no punctuation at the end.`

// buildTransformPrompt embeds the current recipe plus the requested edits
// into the transformation instruction.
func buildTransformPrompt(r common.Recipe, requestedTags []string, freeText string) string {
	var sb strings.Builder

	sb.WriteString("Transform the following recipe.\n\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", r.Title))
	if r.Time != "" {
		sb.WriteString(fmt.Sprintf("Time: %s\n", r.Time))
	}
	if len(r.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("Tags: %s\n", strings.Join(r.Tags, ", ")))
	}
	sb.WriteString("Ingredients:\n")
	sb.WriteString(common.FormatList(r.Ingredients))
	sb.WriteString("Steps:\n")
	sb.WriteString(common.FormatList(r.Steps))

	sb.WriteString("\nRequested changes:\n")
	if len(requestedTags) > 0 {
		sb.WriteString(fmt.Sprintf("- Make the recipe fit these dietary tags: %s\n", strings.Join(requestedTags, ", ")))
	}
	if freeText != "" {
		sb.WriteString(fmt.Sprintf("- %s\n", freeText))
	}

	sb.WriteString(`
Respond with exactly one JSON object and nothing else:
{"summary": "what changed and why", "swaps": [{"original": "butter", "replacement": "olive oil", "amount_change": "use 20% less"}], "new_recipe": {"title": "New title", "time": "30 min", "tags": ["Tag"], "ingredients": ["Item"], "steps": ["Step"]}}

Rules:
1. tags, ingredients and steps must be JSON arrays of strings
2. new_recipe must be complete, not a diff
3. List every ingredient substitution in swaps
4. Do not wrap the JSON in markdown code fences`)

	return sb.String()
}
