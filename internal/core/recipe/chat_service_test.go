package recipe

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-chef-server/internal/core/ai"
	"ai-chef-server/internal/infrastructure/store"
	"ai-chef-server/internal/pkg/common"
)

// fakeCompleter replays scripted completion results in order.
type fakeCompleter struct {
	results []completionResult
	calls   [][]ai.Message
}

type completionResult struct {
	text string
	err  error
}

func (f *fakeCompleter) Complete(_ context.Context, messages []ai.Message) (string, error) {
	f.calls = append(f.calls, messages)
	if len(f.results) == 0 {
		return "", errors.New("no scripted result")
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r.text, r.err
}

var _ ai.Completer = (*fakeCompleter)(nil)

const recipeJSON = `{"is_recipe": true, "name": "Garlic Pasta", "time": "20 min",
  "tags": ["Quick"], "ingredients": ["Pasta", "Garlic"], "steps": ["Boil pasta", "Fry garlic"]}`

func newChatFixture(results ...completionResult) (*ChatService, *store.Memory, *fakeCompleter) {
	completer := &fakeCompleter{results: results}
	gateway := store.NewMemory()
	svc := NewChatService(completer, gateway, time.Second)
	return svc, gateway, completer
}

func TestSendMessageCreatesChatImplicitly(t *testing.T) {
	svc, gateway, _ := newChatFixture(
		completionResult{text: recipeJSON},
		completionResult{text: "Garlic pasta dinner"},
	)

	turn, err := svc.SendMessage(context.Background(), "", "user-1", "pasta recipe please")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if turn.ChatID == "" {
		t.Fatal("expected a chat id to be assigned")
	}

	chats, err := gateway.ListChats(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListChats: %v", err)
	}
	if len(chats) != 1 {
		t.Fatalf("chats = %d, want 1", len(chats))
	}
	if chats[0].Summary != "Garlic pasta dinner" {
		t.Errorf("Summary = %q, want %q", chats[0].Summary, "Garlic pasta dinner")
	}
}

func TestSendMessageRecipeCard(t *testing.T) {
	svc, gateway, _ := newChatFixture(
		completionResult{text: recipeJSON},
		completionResult{text: "Pasta"},
	)

	turn, err := svc.SendMessage(context.Background(), "", "user-1", "pasta recipe please")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	assistant := turn.AssistantMessage
	if assistant.Content != common.RecipeCardContent {
		t.Errorf("Content = %q, want %q", assistant.Content, common.RecipeCardContent)
	}
	if assistant.Recipe == nil || assistant.Recipe.Title != "Garlic Pasta" {
		t.Fatalf("Recipe = %+v, want title Garlic Pasta", assistant.Recipe)
	}
	if !assistant.IsRecipeCard() {
		t.Error("expected assistant message to be a recipe card")
	}

	messages, err := gateway.ListMessages(context.Background(), turn.ChatID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}
	if messages[0].Role != common.RoleUser || messages[1].Role != common.RoleAssistant {
		t.Errorf("roles = %q,%q, want user,assistant", messages[0].Role, messages[1].Role)
	}
}

func TestSendMessageTextReply(t *testing.T) {
	svc, _, _ := newChatFixture(
		completionResult{text: `{"is_recipe": false, "text": "What do you have in the fridge?"}`},
		completionResult{text: "Ingredients chat"},
	)

	turn, err := svc.SendMessage(context.Background(), "", "user-1", "cook something")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if turn.AssistantMessage.Content != "What do you have in the fridge?" {
		t.Errorf("Content = %q", turn.AssistantMessage.Content)
	}
	if turn.AssistantMessage.Recipe != nil {
		t.Error("text reply should carry no recipe")
	}
}

func TestSendMessageCompletionFailureKeepsUserMessage(t *testing.T) {
	svc, gateway, _ := newChatFixture(
		completionResult{err: errors.New("upstream 502")},
	)

	chat, err := gateway.CreateChat(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}

	_, err = svc.SendMessage(context.Background(), chat.ID, "user-1", "hello")
	if !common.IsCompletionError(err) {
		t.Fatalf("err = %v, want completion error", err)
	}

	messages, err := gateway.ListMessages(context.Background(), chat.ID)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("messages = %d, want the user message to survive", len(messages))
	}
	if messages[0].Role != common.RoleUser || messages[0].Content != "hello" {
		t.Errorf("surviving message = %+v", messages[0])
	}
}

func TestSendMessageSummaryFailureSwallowed(t *testing.T) {
	svc, gateway, _ := newChatFixture(
		completionResult{text: recipeJSON},
		completionResult{err: errors.New("summary model down")},
	)

	turn, err := svc.SendMessage(context.Background(), "", "user-1", "pasta")
	if err != nil {
		t.Fatalf("SendMessage should succeed despite summary failure: %v", err)
	}

	chats, _ := gateway.ListChats(context.Background(), "user-1")
	if chats[0].Summary != "" {
		t.Errorf("Summary = %q, want unchanged empty", chats[0].Summary)
	}
	if turn.AssistantMessage == nil {
		t.Fatal("expected assistant message")
	}
}

func TestSendMessageValidation(t *testing.T) {
	svc, _, _ := newChatFixture()

	if _, err := svc.SendMessage(context.Background(), "", "user-1", "   "); !common.IsValidationError(err) {
		t.Errorf("blank message: err = %v, want validation error", err)
	}
	if _, err := svc.SendMessage(context.Background(), "", "", "hello"); !common.IsValidationError(err) {
		t.Errorf("blank user: err = %v, want validation error", err)
	}
}

func TestSendMessageTranscriptIncludesHistory(t *testing.T) {
	svc, _, completer := newChatFixture(
		completionResult{text: `{"is_recipe": false, "text": "sure"}`},
		completionResult{text: "chat"},
		completionResult{text: `{"is_recipe": false, "text": "ok"}`},
		completionResult{text: "chat"},
	)

	turn, err := svc.SendMessage(context.Background(), "", "user-1", "first")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if _, err := svc.SendMessage(context.Background(), turn.ChatID, "user-1", "second"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	// Third call is the second turn's completion: system prompt plus the
	// three stored messages.
	transcript := completer.calls[2]
	if len(transcript) != 4 {
		t.Fatalf("transcript = %d messages, want 4", len(transcript))
	}
	if transcript[0].Role != common.RoleSystem {
		t.Errorf("transcript[0].Role = %q, want system", transcript[0].Role)
	}
	if transcript[3].Content != "second" {
		t.Errorf("transcript[3].Content = %q, want %q", transcript[3].Content, "second")
	}
}

func TestSummarizeEmptyChatNoop(t *testing.T) {
	svc, gateway, completer := newChatFixture()

	chat, _ := gateway.CreateChat(context.Background(), "user-1")
	if err := svc.Summarize(context.Background(), chat.ID); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(completer.calls) != 0 {
		t.Errorf("empty chat should not call the model, calls = %d", len(completer.calls))
	}
}
