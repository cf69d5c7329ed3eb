// Package service wraps the completion client with the response cache.
package service

import (
	"context"
	"strings"
	"time"

	"ai-chef-server/internal/core/ai"
	"ai-chef-server/internal/core/ai/cache"
	"ai-chef-server/internal/infrastructure/config"
	"ai-chef-server/internal/pkg/common"

	"go.uber.org/zap"
)

// Service is the completion collaborator used by the orchestrators. It
// forwards to the underlying provider and caches responses keyed by the
// full transcript.
type Service struct {
	config       *config.Config
	provider     ai.Completer
	cacheManager *cache.Manager
}

// Compile-time interface check.
var _ ai.Completer = (*Service)(nil)

// NewService creates a completion service. cacheManager may be nil.
func NewService(cfg *config.Config, provider ai.Completer, cacheManager *cache.Manager) *Service {
	return &Service{
		config:       cfg,
		provider:     provider,
		cacheManager: cacheManager,
	}
}

// Complete returns one completion for the transcript, consulting the cache
// first. Cache failures never fail the request.
func (s *Service) Complete(ctx context.Context, messages []ai.Message) (string, error) {
	key := transcriptKey(messages)

	if s.cacheManager != nil {
		if val, err := s.cacheManager.Get(ctx, key); err == nil && val != "" {
			return val, nil
		}
	}

	start := time.Now()
	content, err := s.provider.Complete(ctx, messages)
	common.LogAICall(time.Since(start), err, "")
	if err != nil {
		return "", err
	}

	if s.cacheManager != nil {
		if err := s.cacheManager.Set(ctx, key, content); err != nil {
			common.LogWarn("failed to cache completion response", zap.Error(err))
		}
	}

	return content, nil
}

// transcriptKey flattens the transcript into a stable cache key. Whitespace
// is collapsed so trivially reformatted prompts share an entry.
func transcriptKey(messages []ai.Message) string {
	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(m.Role)
		sb.WriteString(":")
		sb.WriteString(strings.Join(strings.Fields(m.Content), " "))
		sb.WriteString("\n")
	}
	return sb.String()
}
