// Package store defines the persistence gateway for recipes and chats, with
// a Postgres implementation and an in-memory implementation for tests.
package store

import (
	"context"

	"ai-chef-server/internal/pkg/common"
)

// MaxListLimit caps list queries regardless of what the caller asks for.
const MaxListLimit = 100

// DefaultListLimit applies when the caller passes no limit.
const DefaultListLimit = 20

// Gateway is the persistence collaborator consumed by the orchestrators and
// handlers. Implementations assign ids; recipes are immutable once created
// except for favorite status.
type Gateway interface {
	// CreateRecipe persists a recipe for a user. parentRecipeID is empty
	// unless the recipe is a fork of an existing one.
	CreateRecipe(ctx context.Context, userID string, r common.Recipe, parentRecipeID string) (*common.SavedRecipe, error)
	// GetRecipe fetches one recipe. IsFavorited is populated only when
	// userID is non-empty.
	GetRecipe(ctx context.Context, id, userID string) (*common.SavedRecipe, error)
	// ListRecipes returns recipes newest-first, optionally filtered by a
	// search query and owner. limit is clamped to MaxListLimit.
	ListRecipes(ctx context.Context, query, userID string, limit int) ([]common.SavedRecipe, error)

	// Favorite and Unfavorite are idempotent set-membership operations.
	Favorite(ctx context.Context, userID, recipeID string) error
	Unfavorite(ctx context.Context, userID, recipeID string) error
	ListFavorites(ctx context.Context, userID string) ([]common.SavedRecipe, error)

	// RecordCooked upserts on (userID, recipeID); the cooked timestamp is
	// overwritten on repeat.
	RecordCooked(ctx context.Context, userID, recipeID string) error
	// ListRecentlyCooked returns recipes by descending cooked timestamp.
	ListRecentlyCooked(ctx context.Context, userID string, limit int) ([]common.SavedRecipe, error)

	CreateChat(ctx context.Context, userID string) (*common.Chat, error)
	ListChats(ctx context.Context, userID string) ([]common.Chat, error)
	UpdateChatSummary(ctx context.Context, chatID, summary string) error

	// AppendMessage adds one message to a chat. Messages are append-only
	// and totally ordered by append time.
	AppendMessage(ctx context.Context, chatID, userID, role, content string, recipe *common.Recipe) (*common.Message, error)
	ListMessages(ctx context.Context, chatID string) ([]common.Message, error)

	// LinkMessageToSavedRecipe annotates a recipe-card message with the id
	// of the durable recipe it was saved as. Best-effort; callers log and
	// swallow failures.
	LinkMessageToSavedRecipe(ctx context.Context, messageID, savedRecipeID string) error
}

// ClampLimit normalizes a caller-supplied limit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
