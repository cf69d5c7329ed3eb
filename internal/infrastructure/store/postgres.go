package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ai-chef-server/internal/infrastructure/config"
	"ai-chef-server/internal/pkg/common"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Postgres implements Gateway on a Postgres database. Array-shaped recipe
// fields are stored as text[] columns; recipe-card payloads ride along on
// messages as a JSON column so the content field can keep the sentinel.
type Postgres struct {
	db *sql.DB
}

// Compile-time interface check.
var _ Gateway = (*Postgres)(nil)

// OpenPostgres connects to Postgres and verifies the connection.
func OpenPostgres(cfg *config.Config) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	common.LogInfo("connected to postgres")
	return &Postgres{db: db}, nil
}

// NewPostgres wraps an existing connection.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Ping reports whether the database is reachable.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// CreateRecipe inserts a recipe row and returns it with its assigned id.
func (p *Postgres) CreateRecipe(ctx context.Context, userID string, r common.Recipe, parentRecipeID string) (*common.SavedRecipe, error) {
	id := common.GenerateUUID()
	now := time.Now().UTC()

	var parent sql.NullString
	if parentRecipeID != "" {
		parent = sql.NullString{String: parentRecipeID, Valid: true}
	}

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO recipes (id, user_id, parent_recipe_id, title, cook_time, tags, ingredients, steps, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, userID, parent, r.Title, r.Time,
		pq.Array(r.Tags), pq.Array(r.Ingredients), pq.Array(r.Steps), now)
	if err != nil {
		return nil, err
	}

	return &common.SavedRecipe{
		ID:             id,
		UserID:         userID,
		ParentRecipeID: parentRecipeID,
		Title:          r.Title,
		Time:           r.Time,
		Tags:           r.Tags,
		Ingredients:    r.Ingredients,
		Steps:          r.Steps,
		CreatedAt:      now,
	}, nil
}

// GetRecipe fetches one recipe, joining favorite status when userID is set.
func (p *Postgres) GetRecipe(ctx context.Context, id, userID string) (*common.SavedRecipe, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT r.id, r.user_id, COALESCE(r.parent_recipe_id, ''), r.title, r.cook_time,
		        r.tags, r.ingredients, r.steps, r.created_at,
		        CASE WHEN $2 <> '' AND f.recipe_id IS NOT NULL THEN TRUE ELSE FALSE END
		 FROM recipes r
		 LEFT JOIN recipe_favorites f ON f.recipe_id = r.id AND f.user_id = $2
		 WHERE r.id = $1`,
		id, userID)

	rec, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListRecipes returns recipes newest-first, filtered by query and owner.
func (p *Postgres) ListRecipes(ctx context.Context, query, userID string, limit int) ([]common.SavedRecipe, error) {
	limit = ClampLimit(limit)

	rows, err := p.db.QueryContext(ctx,
		`SELECT r.id, r.user_id, COALESCE(r.parent_recipe_id, ''), r.title, r.cook_time,
		        r.tags, r.ingredients, r.steps, r.created_at, FALSE
		 FROM recipes r
		 WHERE ($1 = '' OR r.title ILIKE '%' || $1 || '%' OR EXISTS (
		            SELECT 1 FROM unnest(r.tags) t WHERE t ILIKE '%' || $1 || '%'))
		   AND ($2 = '' OR r.user_id = $2)
		 ORDER BY r.created_at DESC
		 LIMIT $3`,
		query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRecipes(rows)
}

// Favorite adds a recipe to the user's favorites. Idempotent.
func (p *Postgres) Favorite(ctx context.Context, userID, recipeID string) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO recipe_favorites (user_id, recipe_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, recipe_id) DO NOTHING`,
		userID, recipeID, time.Now().UTC())
	return err
}

// Unfavorite removes a recipe from the user's favorites. Idempotent.
func (p *Postgres) Unfavorite(ctx context.Context, userID, recipeID string) error {
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM recipe_favorites WHERE user_id = $1 AND recipe_id = $2`,
		userID, recipeID)
	return err
}

// ListFavorites returns the user's favorited recipes, newest favorite first.
func (p *Postgres) ListFavorites(ctx context.Context, userID string) ([]common.SavedRecipe, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT r.id, r.user_id, COALESCE(r.parent_recipe_id, ''), r.title, r.cook_time,
		        r.tags, r.ingredients, r.steps, r.created_at, TRUE
		 FROM recipes r
		 JOIN recipe_favorites f ON f.recipe_id = r.id
		 WHERE f.user_id = $1
		 ORDER BY f.created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRecipes(rows)
}

// RecordCooked upserts the cooked marker, overwriting the timestamp.
func (p *Postgres) RecordCooked(ctx context.Context, userID, recipeID string) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO recipe_cooked (user_id, recipe_id, cooked_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, recipe_id) DO UPDATE SET cooked_at = EXCLUDED.cooked_at`,
		userID, recipeID, time.Now().UTC())
	return err
}

// ListRecentlyCooked returns recipes by descending cooked timestamp.
func (p *Postgres) ListRecentlyCooked(ctx context.Context, userID string, limit int) ([]common.SavedRecipe, error) {
	limit = ClampLimit(limit)

	rows, err := p.db.QueryContext(ctx,
		`SELECT r.id, r.user_id, COALESCE(r.parent_recipe_id, ''), r.title, r.cook_time,
		        r.tags, r.ingredients, r.steps, r.created_at, FALSE
		 FROM recipes r
		 JOIN recipe_cooked c ON c.recipe_id = r.id
		 WHERE c.user_id = $1
		 ORDER BY c.cooked_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRecipes(rows)
}

// CreateChat inserts a new chat for a user.
func (p *Postgres) CreateChat(ctx context.Context, userID string) (*common.Chat, error) {
	id := common.GenerateUUID()
	now := time.Now().UTC()

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO chats (id, user_id, summary, created_at) VALUES ($1, $2, '', $3)`,
		id, userID, now)
	if err != nil {
		return nil, err
	}

	return &common.Chat{ID: id, UserID: userID, CreatedAt: now}, nil
}

// ListChats returns the user's chats, newest first.
func (p *Postgres) ListChats(ctx context.Context, userID string) ([]common.Chat, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, user_id, summary, created_at FROM chats
		 WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := []common.Chat{}
	for rows.Next() {
		var c common.Chat
		if err := rows.Scan(&c.ID, &c.UserID, &c.Summary, &c.CreatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// UpdateChatSummary overwrites the chat's derived summary. Last writer wins.
func (p *Postgres) UpdateChatSummary(ctx context.Context, chatID, summary string) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE chats SET summary = $2 WHERE id = $1`,
		chatID, summary)
	return err
}

// AppendMessage inserts one message. recipe is serialized to the JSON column
// when present.
func (p *Postgres) AppendMessage(ctx context.Context, chatID, userID, role, content string, recipe *common.Recipe) (*common.Message, error) {
	id := common.GenerateUUID()
	now := time.Now().UTC()

	var recipeJSON sql.NullString
	if recipe != nil {
		js, err := common.ToJSON(recipe)
		if err != nil {
			return nil, err
		}
		recipeJSON = sql.NullString{String: js, Valid: true}
	}

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO messages (id, chat_id, user_id, role, content, recipe, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, chatID, userID, role, content, recipeJSON, now)
	if err != nil {
		return nil, err
	}

	return &common.Message{
		ID:        id,
		ChatID:    chatID,
		UserID:    userID,
		Role:      role,
		Content:   content,
		Recipe:    recipe,
		CreatedAt: now,
	}, nil
}

// ListMessages returns a chat's messages in append order.
func (p *Postgres) ListMessages(ctx context.Context, chatID string) ([]common.Message, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, chat_id, user_id, role, content, COALESCE(recipe::text, ''), COALESCE(saved_recipe_id, ''), created_at
		 FROM messages WHERE chat_id = $1 ORDER BY created_at ASC, id ASC`,
		chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []common.Message{}
	for rows.Next() {
		var m common.Message
		var recipeJSON string
		if err := rows.Scan(&m.ID, &m.ChatID, &m.UserID, &m.Role, &m.Content, &recipeJSON, &m.SavedRecipeID, &m.CreatedAt); err != nil {
			return nil, err
		}
		if recipeJSON != "" {
			var r common.Recipe
			if err := common.ParseJSON(recipeJSON, &r); err != nil {
				common.LogWarn("skipping unreadable recipe payload on message",
					zap.Error(err),
					zap.String("message_id", m.ID),
				)
			} else {
				m.Recipe = &r
			}
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// LinkMessageToSavedRecipe records which durable recipe a message's card was
// saved as.
func (p *Postgres) LinkMessageToSavedRecipe(ctx context.Context, messageID, savedRecipeID string) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE messages SET saved_recipe_id = $2 WHERE id = $1`,
		messageID, savedRecipeID)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecipe(row rowScanner) (*common.SavedRecipe, error) {
	var r common.SavedRecipe
	var tags, ingredients, steps pq.StringArray
	if err := row.Scan(&r.ID, &r.UserID, &r.ParentRecipeID, &r.Title, &r.Time,
		&tags, &ingredients, &steps, &r.CreatedAt, &r.IsFavorited); err != nil {
		return nil, err
	}
	r.Tags = tags
	r.Ingredients = ingredients
	r.Steps = steps
	return &r, nil
}

func collectRecipes(rows *sql.Rows) ([]common.SavedRecipe, error) {
	recipes := []common.SavedRecipe{}
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *rec)
	}
	return recipes, rows.Err()
}
