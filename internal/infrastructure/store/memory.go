package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ai-chef-server/internal/pkg/common"
)

// Memory is an in-memory Gateway used by the test suites.
type Memory struct {
	mu sync.RWMutex

	recipes   map[string]*common.SavedRecipe
	favorites map[string]map[string]time.Time // userID -> recipeID -> favorited at
	cooked    map[string]map[string]time.Time // userID -> recipeID -> last cooked at
	chats     map[string]*common.Chat
	messages  map[string][]common.Message // chatID -> messages in append order

	recipeOrder []string // insertion order, newest appended last
	seq         int64    // tie-breaker for identical timestamps
}

var _ Gateway = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		recipes:   make(map[string]*common.SavedRecipe),
		favorites: make(map[string]map[string]time.Time),
		cooked:    make(map[string]map[string]time.Time),
		chats:     make(map[string]*common.Chat),
		messages:  make(map[string][]common.Message),
	}
}

func (m *Memory) CreateRecipe(_ context.Context, userID string, r common.Recipe, parentRecipeID string) (*common.SavedRecipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := &common.SavedRecipe{
		ID:             common.GenerateUUID(),
		UserID:         userID,
		ParentRecipeID: parentRecipeID,
		Title:          r.Title,
		Time:           r.Time,
		Tags:           append([]string(nil), r.Tags...),
		Ingredients:    append([]string(nil), r.Ingredients...),
		Steps:          append([]string(nil), r.Steps...),
		CreatedAt:      m.now(),
	}
	m.recipes[rec.ID] = rec
	m.recipeOrder = append(m.recipeOrder, rec.ID)
	out := *rec
	return &out, nil
}

func (m *Memory) GetRecipe(_ context.Context, id, userID string) (*common.SavedRecipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.recipes[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *rec
	if userID != "" {
		_, out.IsFavorited = m.favorites[userID][id]
	}
	return &out, nil
}

func (m *Memory) ListRecipes(_ context.Context, query, userID string, limit int) ([]common.SavedRecipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit = ClampLimit(limit)
	out := []common.SavedRecipe{}
	for i := len(m.recipeOrder) - 1; i >= 0 && len(out) < limit; i-- {
		rec := m.recipes[m.recipeOrder[i]]
		if userID != "" && rec.UserID != userID {
			continue
		}
		if !matchesQuery(rec, query) {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (m *Memory) Favorite(_ context.Context, userID, recipeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.recipes[recipeID]; !ok {
		return common.ErrNotFound
	}
	if m.favorites[userID] == nil {
		m.favorites[userID] = make(map[string]time.Time)
	}
	if _, ok := m.favorites[userID][recipeID]; !ok {
		m.favorites[userID][recipeID] = m.now()
	}
	return nil
}

func (m *Memory) Unfavorite(_ context.Context, userID, recipeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.favorites[userID], recipeID)
	return nil
}

func (m *Memory) ListFavorites(_ context.Context, userID string) ([]common.SavedRecipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type entry struct {
		rec *common.SavedRecipe
		at  time.Time
	}
	entries := []entry{}
	for recipeID, at := range m.favorites[userID] {
		if rec, ok := m.recipes[recipeID]; ok {
			entries = append(entries, entry{rec: rec, at: at})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.After(entries[j].at) })

	out := make([]common.SavedRecipe, 0, len(entries))
	for _, e := range entries {
		rec := *e.rec
		rec.IsFavorited = true
		out = append(out, rec)
	}
	return out, nil
}

func (m *Memory) RecordCooked(_ context.Context, userID, recipeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.recipes[recipeID]; !ok {
		return common.ErrNotFound
	}
	if m.cooked[userID] == nil {
		m.cooked[userID] = make(map[string]time.Time)
	}
	m.cooked[userID][recipeID] = m.now()
	return nil
}

func (m *Memory) ListRecentlyCooked(_ context.Context, userID string, limit int) ([]common.SavedRecipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type entry struct {
		rec *common.SavedRecipe
		at  time.Time
	}
	entries := []entry{}
	for recipeID, at := range m.cooked[userID] {
		if rec, ok := m.recipes[recipeID]; ok {
			entries = append(entries, entry{rec: rec, at: at})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.After(entries[j].at) })

	limit = ClampLimit(limit)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]common.SavedRecipe, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e.rec)
	}
	return out, nil
}

func (m *Memory) CreateChat(_ context.Context, userID string) (*common.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := &common.Chat{ID: common.GenerateUUID(), UserID: userID, CreatedAt: m.now()}
	m.chats[c.ID] = c
	out := *c
	return &out, nil
}

func (m *Memory) ListChats(_ context.Context, userID string) ([]common.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []common.Chat{}
	for _, c := range m.chats {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateChatSummary(_ context.Context, chatID, summary string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.chats[chatID]
	if !ok {
		return common.ErrNotFound
	}
	c.Summary = summary
	return nil
}

func (m *Memory) AppendMessage(_ context.Context, chatID, userID, role, content string, recipe *common.Recipe) (*common.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.chats[chatID]; !ok {
		return nil, common.ErrNotFound
	}
	msg := common.Message{
		ID:        common.GenerateUUID(),
		ChatID:    chatID,
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: m.now(),
	}
	if recipe != nil {
		r := *recipe
		msg.Recipe = &r
	}
	m.messages[chatID] = append(m.messages[chatID], msg)
	out := msg
	return &out, nil
}

func (m *Memory) ListMessages(_ context.Context, chatID string) ([]common.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]common.Message{}, m.messages[chatID]...), nil
}

func (m *Memory) LinkMessageToSavedRecipe(_ context.Context, messageID, savedRecipeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for chatID, msgs := range m.messages {
		for i := range msgs {
			if msgs[i].ID == messageID {
				m.messages[chatID][i].SavedRecipeID = savedRecipeID
				return nil
			}
		}
	}
	return common.ErrNotFound
}

// now returns strictly increasing timestamps so ordering by time is total
// even within one clock tick.
func (m *Memory) now() time.Time {
	m.seq++
	return time.Now().UTC().Add(time.Duration(m.seq) * time.Nanosecond)
}

func matchesQuery(rec *common.SavedRecipe, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(rec.Title), q) {
		return true
	}
	for _, tag := range rec.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
