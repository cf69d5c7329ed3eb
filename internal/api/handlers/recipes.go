package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-chef-server/internal/core/recipe"
	"ai-chef-server/internal/infrastructure/store"
	"ai-chef-server/internal/pkg/common"
)

// RecipeHandler serves the saved-recipe endpoints.
type RecipeHandler struct {
	gateway    store.Gateway
	transforms *recipe.TransformService
}

// NewRecipeHandler creates a recipe handler.
func NewRecipeHandler(gateway store.Gateway, transforms *recipe.TransformService) *RecipeHandler {
	return &RecipeHandler{gateway: gateway, transforms: transforms}
}

type addRecipeRequest struct {
	UserID      string   `json:"user_id"`
	MessageID   string   `json:"message_id"`
	Title       string   `json:"title"`
	Time        string   `json:"time"`
	Tags        []string `json:"tags"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
}

// Add handles POST /recipes/add. When message_id is set the saved recipe is
// linked back to the chat message it came from; link failures are logged and
// swallowed since the save itself succeeded.
func (h *RecipeHandler) Add(c *gin.Context) {
	var req addRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if req.UserID == "" {
		badRequest(c, "user_id is required", nil)
		return
	}
	r := common.Recipe{
		Title:       req.Title,
		Time:        req.Time,
		Tags:        req.Tags,
		Ingredients: req.Ingredients,
		Steps:       req.Steps,
	}
	if !r.Valid() {
		badRequest(c, "title, ingredients and steps are required", nil)
		return
	}

	saved, err := h.gateway.CreateRecipe(c.Request.Context(), req.UserID, r, "")
	if err != nil {
		respondError(c, common.NewPersistenceError("create recipe", err))
		return
	}

	if req.MessageID != "" {
		if err := h.gateway.LinkMessageToSavedRecipe(c.Request.Context(), req.MessageID, saved.ID); err != nil {
			common.LogWarn("failed to link message to saved recipe",
				zap.Error(err),
				zap.String("message_id", req.MessageID),
				zap.String("recipe_id", saved.ID),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{"recipe": saved})
}

// List handles GET /recipes/list?query&user_id&limit.
func (h *RecipeHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	recipes, err := h.gateway.ListRecipes(c.Request.Context(), c.Query("query"), c.Query("user_id"), limit)
	if err != nil {
		respondError(c, common.NewPersistenceError("list recipes", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// Get handles GET /recipes/:id?user_id.
func (h *RecipeHandler) Get(c *gin.Context) {
	rec, err := h.gateway.GetRecipe(c.Request.Context(), c.Param("id"), c.Query("user_id"))
	if err != nil {
		if err == common.ErrNotFound {
			respondError(c, err)
			return
		}
		respondError(c, common.NewPersistenceError("get recipe", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": rec})
}

type favoriteRequest struct {
	UserID   string `json:"user_id"`
	RecipeID string `json:"recipe_id"`
}

func (r *favoriteRequest) validate() error {
	if r.UserID == "" {
		return common.NewValidationError("user_id is required")
	}
	if r.RecipeID == "" {
		return common.NewValidationError("recipe_id is required")
	}
	return nil
}

// Favorite handles POST /recipes/favorite. Idempotent.
func (h *RecipeHandler) Favorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(c, err)
		return
	}
	if err := h.gateway.Favorite(c.Request.Context(), req.UserID, req.RecipeID); err != nil {
		if err == common.ErrNotFound {
			respondError(c, err)
			return
		}
		respondError(c, common.NewPersistenceError("favorite", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": true})
}

// Unfavorite handles DELETE /recipes/favorite. Idempotent.
func (h *RecipeHandler) Unfavorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(c, err)
		return
	}
	if err := h.gateway.Unfavorite(c.Request.Context(), req.UserID, req.RecipeID); err != nil {
		respondError(c, common.NewPersistenceError("unfavorite", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": false})
}

// Favorites handles GET /recipes/favorites?user_id.
func (h *RecipeHandler) Favorites(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		badRequest(c, "user_id is required", nil)
		return
	}
	recipes, err := h.gateway.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		respondError(c, common.NewPersistenceError("list favorites", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// StartCooking handles POST /recipes/start-cooking. Repeat cooks move the
// recipe to the front of the recently-cooked list.
func (h *RecipeHandler) StartCooking(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(c, err)
		return
	}
	if err := h.gateway.RecordCooked(c.Request.Context(), req.UserID, req.RecipeID); err != nil {
		if err == common.ErrNotFound {
			respondError(c, err)
			return
		}
		respondError(c, common.NewPersistenceError("record cooked", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"recorded": true})
}

// RecentlyCooked handles GET /recipes/recently-cooked?user_id&limit.
func (h *RecipeHandler) RecentlyCooked(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		badRequest(c, "user_id is required", nil)
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	recipes, err := h.gateway.ListRecentlyCooked(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, common.NewPersistenceError("list recently cooked", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

type transformRequest struct {
	UserID   string   `json:"user_id"`
	RecipeID string   `json:"recipe_id"`
	Tags     []string `json:"tags"`
	FreeText string   `json:"free_text"`
}

// Transform handles POST /recipes/transform: proposes a modified version of a
// saved recipe. The proposal is returned to the client, not persisted.
func (h *RecipeHandler) Transform(c *gin.Context) {
	var req transformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	if req.RecipeID == "" {
		badRequest(c, "recipe_id is required", nil)
		return
	}

	rec, err := h.gateway.GetRecipe(c.Request.Context(), req.RecipeID, req.UserID)
	if err != nil {
		if err == common.ErrNotFound {
			respondError(c, err)
			return
		}
		respondError(c, common.NewPersistenceError("get recipe", err))
		return
	}

	proposal, err := h.transforms.Propose(c.Request.Context(), rec.Canonical(), req.Tags, req.FreeText)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": proposal})
}

type transformAcceptRequest struct {
	UserID         string                    `json:"user_id"`
	ParentRecipeID string                    `json:"parent_recipe_id"`
	Proposal       *common.TransformProposal `json:"proposal"`
}

// TransformAccept handles POST /recipes/transform/accept: persists an
// accepted proposal as a new recipe forked from the parent. The parent row is
// never modified.
func (h *RecipeHandler) TransformAccept(c *gin.Context) {
	var req transformAcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	saved, err := h.transforms.Accept(c.Request.Context(), req.UserID, req.ParentRecipeID, req.Proposal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": saved})
}

func badRequest(c *gin.Context, message string, err error) {
	resp := common.ErrorResponse{
		Code:    common.ErrCodeInvalidRequest,
		Message: message,
	}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}
