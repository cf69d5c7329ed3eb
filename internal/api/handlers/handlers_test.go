package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"ai-chef-server/internal/core/ai"
	"ai-chef-server/internal/core/recipe"
	"ai-chef-server/internal/infrastructure/store"
	"ai-chef-server/internal/pkg/common"
)

type scriptedCompleter struct {
	texts []string
	err   error
}

func (s *scriptedCompleter) Complete(_ context.Context, _ []ai.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if len(s.texts) == 0 {
		return "", errors.New("no scripted response")
	}
	text := s.texts[0]
	s.texts = s.texts[1:]
	return text, nil
}

func newTestRouter(completer ai.Completer) (*gin.Engine, *store.Memory) {
	gin.SetMode(gin.TestMode)
	gateway := store.NewMemory()
	chatSvc := recipe.NewChatService(completer, gateway, time.Second)
	transformSvc := recipe.NewTransformService(completer, gateway, time.Second)

	router := gin.New()
	chatHandler := NewChatHandler(chatSvc, gateway)
	recipeHandler := NewRecipeHandler(gateway, transformSvc)

	router.POST("/ai/chat", chatHandler.Chat)
	router.GET("/ai/chats", chatHandler.ListChats)
	router.GET("/ai/messages", chatHandler.ListMessages)
	router.POST("/recipes/add", recipeHandler.Add)
	router.GET("/recipes/list", recipeHandler.List)
	router.GET("/recipes/:id", recipeHandler.Get)
	router.POST("/recipes/favorite", recipeHandler.Favorite)
	router.POST("/recipes/transform", recipeHandler.Transform)
	router.POST("/recipes/transform/accept", recipeHandler.TransformAccept)
	return router, gateway
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChatEndpoint(t *testing.T) {
	router, _ := newTestRouter(&scriptedCompleter{texts: []string{
		`{"is_recipe": false, "text": "What do you feel like eating?"}`,
		"Dinner ideas",
	}})

	w := doJSON(t, router, http.MethodPost, "/ai/chat", gin.H{
		"user_id": "u1",
		"message": "dinner ideas",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		ChatID  string          `json:"chat_id"`
		Message *common.Message `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ChatID == "" {
		t.Error("chat_id missing")
	}
	if resp.Message == nil || resp.Message.Content != "What do you feel like eating?" {
		t.Errorf("message = %+v", resp.Message)
	}
}

func TestChatEndpointValidation(t *testing.T) {
	router, _ := newTestRouter(&scriptedCompleter{})

	w := doJSON(t, router, http.MethodPost, "/ai/chat", gin.H{"user_id": "u1", "message": ""})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestChatEndpointCompleterDown(t *testing.T) {
	router, _ := newTestRouter(&scriptedCompleter{err: errors.New("upstream 502")})

	w := doJSON(t, router, http.MethodPost, "/ai/chat", gin.H{"user_id": "u1", "message": "hi"})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	var resp common.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != common.ErrCodeAIService {
		t.Errorf("code = %q, want %q", resp.Code, common.ErrCodeAIService)
	}
}

func TestAddAndGetRecipe(t *testing.T) {
	router, _ := newTestRouter(&scriptedCompleter{})

	w := doJSON(t, router, http.MethodPost, "/recipes/add", gin.H{
		"user_id":     "u1",
		"title":       "Toast",
		"ingredients": []string{"Bread"},
		"steps":       []string{"Toast it"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("add status = %d, body = %s", w.Code, w.Body.String())
	}

	var added struct {
		Recipe common.SavedRecipe `json:"recipe"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &added); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = doJSON(t, router, http.MethodGet, "/recipes/"+added.Recipe.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/recipes/missing-id", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing recipe status = %d, want 404", w.Code)
	}
}

func TestAddRecipeRejectsIncomplete(t *testing.T) {
	router, _ := newTestRouter(&scriptedCompleter{})

	w := doJSON(t, router, http.MethodPost, "/recipes/add", gin.H{
		"user_id": "u1",
		"title":   "Toast",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestTransformIncompleteProposalMapsTo422(t *testing.T) {
	router, gateway := newTestRouter(&scriptedCompleter{texts: []string{
		`{"summary": "tried", "new_recipe": {"name": "Vegan Toast", "ingredients": [], "steps": []}}`,
	}})

	parent, err := gateway.CreateRecipe(context.Background(), "u1", common.Recipe{
		Title: "Toast", Ingredients: []string{"Bread"}, Steps: []string{"Toast it"},
	}, "")
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	w := doJSON(t, router, http.MethodPost, "/recipes/transform", gin.H{
		"user_id":   "u1",
		"recipe_id": parent.ID,
		"tags":      []string{"Vegan"},
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code        string                    `json:"code"`
		RawProposal *common.TransformProposal `json:"raw_proposal"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != common.ErrCodeIncompleteProposal {
		t.Errorf("code = %q, want %q", resp.Code, common.ErrCodeIncompleteProposal)
	}
	if resp.RawProposal == nil {
		t.Error("raw_proposal missing from 422 body")
	}
}

func TestTransformAcceptForks(t *testing.T) {
	router, gateway := newTestRouter(&scriptedCompleter{})

	parent, _ := gateway.CreateRecipe(context.Background(), "u1", common.Recipe{
		Title: "Toast", Ingredients: []string{"Bread"}, Steps: []string{"Toast it"},
	}, "")

	w := doJSON(t, router, http.MethodPost, "/recipes/transform/accept", gin.H{
		"user_id":          "u1",
		"parent_recipe_id": parent.ID,
		"proposal": gin.H{
			"summary": "vegan",
			"new_recipe": gin.H{
				"title":       "Vegan Toast",
				"ingredients": []string{"Vegan bread"},
				"steps":       []string{"Toast it"},
			},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Recipe common.SavedRecipe `json:"recipe"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Recipe.ParentRecipeID != parent.ID {
		t.Errorf("parent_recipe_id = %q, want %q", resp.Recipe.ParentRecipeID, parent.ID)
	}
}
