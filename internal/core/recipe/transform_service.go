package recipe

import (
	"context"
	"strings"
	"time"

	"ai-chef-server/internal/core/ai"
	"ai-chef-server/internal/infrastructure/store"
	"ai-chef-server/internal/pkg/common"

	"go.uber.org/zap"
)

// TransformService proposes dietary/structural edits to an existing recipe
// and persists accepted proposals as forks of the original.
type TransformService struct {
	aiService ai.Completer
	gateway   store.Gateway
	timeout   time.Duration
}

// NewTransformService creates the transform orchestrator.
func NewTransformService(aiService ai.Completer, gateway store.Gateway, timeout time.Duration) *TransformService {
	return &TransformService{
		aiService: aiService,
		gateway:   gateway,
		timeout:   timeout,
	}
}

// looseProposal tolerates the model's inconsistent array encodings; the
// any-typed fields go through coercion before the proposal is returned.
type looseProposal struct {
	Summary   string `json:"summary"`
	Swaps     []struct {
		Original     string `json:"original"`
		Replacement  string `json:"replacement"`
		AmountChange string `json:"amount_change"`
	} `json:"swaps"`
	NewRecipe struct {
		Title       string      `json:"title"`
		Name        string      `json:"name"`
		Time        string      `json:"time"`
		Tags        interface{} `json:"tags"`
		Ingredients interface{} `json:"ingredients"`
		Steps       interface{} `json:"steps"`
	} `json:"new_recipe"`
}

// Propose asks the model to transform a recipe according to the requested
// tags and/or free-text prompt. The proposal is ephemeral: acceptance is a
// separate explicit step.
func (s *TransformService) Propose(ctx context.Context, r common.Recipe, requestedTags []string, freeText string) (*common.TransformProposal, error) {
	freeText = strings.TrimSpace(freeText)
	if len(requestedTags) == 0 && freeText == "" {
		return nil, common.NewValidationError("at least one requested tag or a prompt is required")
	}

	prompt := buildTransformPrompt(r, requestedTags, freeText)

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	raw, err := s.aiService.Complete(cctx, []ai.Message{{Role: common.RoleUser, Content: prompt}})
	if err != nil {
		return nil, common.NewCompletionError(err)
	}

	var loose looseProposal
	if err := extractJSONInto(raw, &loose); err != nil {
		common.LogWarn("transform response was not parseable JSON",
			zap.Error(err),
			zap.Int("response_length", len(raw)),
		)
		return nil, common.NewIncompleteProposalError("model response was not a proposal object", &common.TransformProposal{Summary: raw})
	}

	title := loose.NewRecipe.Title
	if title == "" {
		title = loose.NewRecipe.Name
	}

	proposal := &common.TransformProposal{
		Summary: loose.Summary,
		NewRecipe: common.Recipe{
			Title:       title,
			Time:        loose.NewRecipe.Time,
			Tags:        CoerceStrings(loose.NewRecipe.Tags),
			Ingredients: CoerceStrings(loose.NewRecipe.Ingredients),
			Steps:       CoerceStrings(loose.NewRecipe.Steps),
		},
	}
	for _, sw := range loose.Swaps {
		proposal.Swaps = append(proposal.Swaps, common.IngredientSwap{
			Original:     sw.Original,
			Replacement:  sw.Replacement,
			AmountChange: sw.AmountChange,
		})
	}

	if reason := proposalGap(&proposal.NewRecipe); reason != "" {
		return nil, common.NewIncompleteProposalError(reason, proposal)
	}

	return proposal, nil
}

// Accept persists a proposal's recipe as a fork of the original. The
// original recipe is never mutated; the fork carries parent_recipe_id.
func (s *TransformService) Accept(ctx context.Context, userID, parentRecipeID string, proposal *common.TransformProposal) (*common.SavedRecipe, error) {
	if proposal == nil {
		return nil, common.NewValidationError("proposal is required")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, common.NewValidationError("user id is required")
	}
	if strings.TrimSpace(parentRecipeID) == "" {
		return nil, common.NewValidationError("parent recipe id is required")
	}
	if reason := proposalGap(&proposal.NewRecipe); reason != "" {
		return nil, common.NewIncompleteProposalError(reason, proposal)
	}

	saved, err := s.gateway.CreateRecipe(ctx, userID, proposal.NewRecipe, parentRecipeID)
	if err != nil {
		return nil, common.NewPersistenceError("create forked recipe", err)
	}
	return saved, nil
}

// proposalGap names the first missing required field, or "" when savable.
func proposalGap(r *common.Recipe) string {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return "new recipe has no title"
	case len(r.Ingredients) == 0:
		return "new recipe has no ingredients"
	case len(r.Steps) == 0:
		return "new recipe has no steps"
	}
	return ""
}
