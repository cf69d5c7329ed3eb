package common

import (
	"strings"
	"time"
)

// Message roles as they appear on the wire and in the database.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// RecipeCardContent is the sentinel stored in a message's content field when
// the message carries a structured recipe instead of display text. Kept for
// wire compatibility with existing clients.
const RecipeCardContent = "RECIPE_CARD"

// Recipe is the canonical normalized recipe artifact. It is transient until
// explicitly saved through the persistence gateway.
type Recipe struct {
	Title       string   `json:"title"`
	Time        string   `json:"time,omitempty"`
	Tags        []string `json:"tags"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
}

// Valid reports whether the recipe has the fields required to be savable.
func (r *Recipe) Valid() bool {
	return strings.TrimSpace(r.Title) != "" && len(r.Ingredients) > 0 && len(r.Steps) > 0
}

// SavedRecipe is a durable recipe row. Immutable once created except for
// favorite status and derived fields; edits fork via ParentRecipeID.
type SavedRecipe struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ParentRecipeID string    `json:"parent_recipe_id,omitempty"`
	Title          string    `json:"title"`
	Time           string    `json:"time,omitempty"`
	Tags           []string  `json:"tags"`
	Ingredients    []string  `json:"ingredients"`
	Steps          []string  `json:"steps"`
	IsFavorited    bool      `json:"is_favorited"`
	CreatedAt      time.Time `json:"created_at"`
}

// Canonical returns the transient recipe view of a saved row.
func (r *SavedRecipe) Canonical() Recipe {
	return Recipe{
		Title:       r.Title,
		Time:        r.Time,
		Tags:        r.Tags,
		Ingredients: r.Ingredients,
		Steps:       r.Steps,
	}
}

// Chat is a conversation thread. Summary is derived and safe to regenerate.
type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is one turn in a chat. Recipe is set iff Content equals
// RecipeCardContent. Messages are append-only.
type Message struct {
	ID            string    `json:"id"`
	ChatID        string    `json:"chat_id"`
	UserID        string    `json:"user_id"`
	Role          string    `json:"role"`
	Content       string    `json:"content"`
	Recipe        *Recipe   `json:"recipe,omitempty"`
	SavedRecipeID string    `json:"saved_recipe_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsRecipeCard reports whether the message carries a structured recipe.
func (m *Message) IsRecipeCard() bool {
	return m.Content == RecipeCardContent && m.Recipe != nil
}

// IngredientSwap describes one substitution in a transform proposal.
type IngredientSwap struct {
	Original     string `json:"original"`
	Replacement  string `json:"replacement"`
	AmountChange string `json:"amount_change,omitempty"`
}

// TransformProposal is an ephemeral suggested recipe transformation. It is
// never persisted directly; accepting it forks a new SavedRecipe.
type TransformProposal struct {
	Summary   string           `json:"summary"`
	Swaps     []IngredientSwap `json:"swaps"`
	NewRecipe Recipe           `json:"new_recipe"`
}

// FormatList renders a string slice as a bulleted block for prompts.
func FormatList(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return sb.String()
}
