package recipe

import (
	"context"
	"strings"
	"sync"
	"time"

	"ai-chef-server/internal/core/ai"
	"ai-chef-server/internal/infrastructure/store"
	"ai-chef-server/internal/pkg/common"

	"go.uber.org/zap"
)

// ChatService runs one conversation turn: persist the user message, call the
// completion collaborator with the full history, normalize the response,
// persist the assistant message, and refresh the chat summary.
type ChatService struct {
	aiService ai.Completer
	gateway   store.Gateway
	timeout   time.Duration

	// Turns on the same chat are serialized. Nothing upstream prevents
	// concurrent sends, and interleaved turns would persist messages out
	// of order.
	chatLocks sync.Map
}

// ChatTurn is the result of a completed conversation turn.
type ChatTurn struct {
	ChatID           string          `json:"chat_id"`
	AssistantMessage *common.Message `json:"message"`
}

// NewChatService creates the conversation orchestrator. timeout bounds each
// completion call.
func NewChatService(aiService ai.Completer, gateway store.Gateway, timeout time.Duration) *ChatService {
	return &ChatService{
		aiService: aiService,
		gateway:   gateway,
		timeout:   timeout,
	}
}

// SendMessage processes one user message. A nil chat id (empty string)
// creates a new chat implicitly, so there is no separate create-chat step.
// The user message is persisted before the completion call and is never
// rolled back: a completion failure leaves the user's message in history
// and surfaces a CompletionError.
func (s *ChatService) SendMessage(ctx context.Context, chatID, userID, text string) (*ChatTurn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.NewValidationError("message text is required")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, common.NewValidationError("user id is required")
	}

	if chatID == "" {
		chat, err := s.gateway.CreateChat(ctx, userID)
		if err != nil {
			return nil, common.NewPersistenceError("create chat", err)
		}
		chatID = chat.ID
	}

	lock := s.lockFor(chatID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.gateway.AppendMessage(ctx, chatID, userID, common.RoleUser, text, nil); err != nil {
		return nil, common.NewPersistenceError("append user message", err)
	}

	history, err := s.gateway.ListMessages(ctx, chatID)
	if err != nil {
		return nil, common.NewPersistenceError("list messages", err)
	}

	transcript := make([]ai.Message, 0, len(history)+1)
	transcript = append(transcript, ai.Message{Role: common.RoleSystem, Content: chatSystemPrompt})
	transcript = append(transcript, historyToTranscript(history)...)

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	raw, err := s.aiService.Complete(cctx, transcript)
	if err != nil {
		common.LogError("completion failed for chat turn",
			zap.Error(err),
			zap.String("chat_id", chatID),
		)
		return nil, common.NewCompletionError(err)
	}

	payload := Normalize(raw)

	var assistant *common.Message
	switch payload.Kind {
	case PayloadRecipe:
		assistant, err = s.gateway.AppendMessage(ctx, chatID, userID, common.RoleAssistant, common.RecipeCardContent, payload.Recipe)
	default:
		assistant, err = s.gateway.AppendMessage(ctx, chatID, userID, common.RoleAssistant, payload.Text, nil)
	}
	if err != nil {
		return nil, common.NewPersistenceError("append assistant message", err)
	}

	// Summary regeneration is best-effort; a stale summary is acceptable,
	// a failed turn is not.
	if err := s.Summarize(ctx, chatID); err != nil {
		common.LogWarn("summary regeneration failed",
			zap.Error(err),
			zap.String("chat_id", chatID),
		)
	}

	return &ChatTurn{ChatID: chatID, AssistantMessage: assistant}, nil
}

// Summarize regenerates the chat's short label from the full transcript and
// stores it. On failure the previous summary is left unchanged.
func (s *ChatService) Summarize(ctx context.Context, chatID string) error {
	history, err := s.gateway.ListMessages(ctx, chatID)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return nil
	}

	transcript := append(historyToTranscript(history), ai.Message{
		Role:    common.RoleUser,
		Content: summaryPrompt,
	})

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	summary, err := s.aiService.Complete(cctx, transcript)
	if err != nil {
		return err
	}

	return s.gateway.UpdateChatSummary(ctx, chatID, strings.TrimSpace(summary))
}

func (s *ChatService) lockFor(chatID string) *sync.Mutex {
	lock, _ := s.chatLocks.LoadOrStore(chatID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// historyToTranscript maps stored messages to completion messages. Recipe
// cards are re-serialized to their JSON contract form so the model sees the
// recipe it proposed rather than the sentinel.
func historyToTranscript(history []common.Message) []ai.Message {
	out := make([]ai.Message, 0, len(history))
	for _, m := range history {
		content := m.Content
		if m.IsRecipeCard() {
			if js, err := common.ToJSON(m.Recipe); err == nil {
				content = js
			}
		}
		out = append(out, ai.Message{Role: m.Role, Content: content})
	}
	return out
}
