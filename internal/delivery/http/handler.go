package http

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/porespective/backend/internal/domain"
	"github.com/porespective/backend/internal/infrastructure/observability"
	"github.com/porespective/backend/internal/usecase"
)

const (
	serviceName    = "porespective-backend"
	serviceVersion = "1.0.0"

	headerSessionID = "X-Session-Id"
	headerCache     = "X-Cache"
)

// ProductLookup resolves a search query to ingredient data
type ProductLookup interface {
	GetProduct(ctx context.Context, query string) (*usecase.ProductResult, error)
}

// Conversations streams recommendations and follow-up answers
type Conversations interface {
	Recommend(ctx context.Context, req usecase.RecommendRequest) (string, iter.Seq2[string, error], error)
	Chat(ctx context.Context, sessionID, message string) (iter.Seq2[string, error], error)
	Session(sessionID string) (*usecase.SessionSnapshot, error)
}

// Summarizer produces benefit tags for an ingredient list
type Summarizer interface {
	Summarize(ctx context.Context, ingredients []domain.IngredientEntry) ([]string, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	products      ProductLookup
	conversations Conversations
	summaries     Summarizer
	logger        zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(products ProductLookup, conversations Conversations, summaries Summarizer) *Handler {
	return &Handler{
		products:      products,
		conversations: conversations,
		summaries:     summaries,
		logger:        observability.Component("http"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// GetIngredients returns the scraped or cached ingredient list for ?product=
func (h *Handler) GetIngredients(c *gin.Context) {
	// The untrimmed query is the cache key
	query := c.Query("product")
	if strings.TrimSpace(query) == "" {
		h.respondError(c, domain.NewValidationError("Missing product name"))
		return
	}

	result, err := h.products.GetProduct(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if result.CacheHit {
		c.Header(headerCache, "HIT")
	} else {
		c.Header(headerCache, "MISS")
	}
	c.JSON(http.StatusOK, result.Record)
}

// Recommend streams a personalised recommendation for a product
func (h *Handler) Recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.NewValidationError("Invalid request body"))
		return
	}

	if strings.TrimSpace(req.ProductName) == "" {
		h.respondError(c, domain.NewValidationError("Missing product_name"))
		return
	}
	ingredients, err := parseIngredients(req.Ingredients)
	if err != nil {
		h.respondError(c, err)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = c.GetHeader(headerSessionID)
	}

	sessionID, stream, err := h.conversations.Recommend(c.Request.Context(), usecase.RecommendRequest{
		SessionID:   sessionID,
		ProductName: req.ProductName,
		Ingredients: ingredients,
		Profile:     req.UserProfile,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header(headerSessionID, sessionID)
	h.streamEvents(c, sessionID, stream)
}

// Chat streams an answer to a follow-up question within a session
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.NewValidationError("Invalid request body"))
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = c.GetHeader(headerSessionID)
	}

	stream, err := h.conversations.Chat(c.Request.Context(), sessionID, req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header(headerSessionID, sessionID)
	h.streamEvents(c, sessionID, stream)
}

// GetSession returns the recorded exchanges of an existing session
func (h *Handler) GetSession(c *gin.Context) {
	snapshot, err := h.conversations.Session(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":     snapshot.ID,
		"created_at":     snapshot.CreatedAt,
		"exchange_count": len(snapshot.Exchanges),
		"exchanges":      snapshot.Exchanges,
	})
}

// IngredientSummary returns short benefit tags for an ingredient list
func (h *Handler) IngredientSummary(c *gin.Context) {
	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.NewValidationError("Invalid request body"))
		return
	}

	ingredients, err := parseIngredients(req.Ingredients)
	if err != nil {
		h.respondError(c, err)
		return
	}

	tags, err := h.summaries.Summarize(c.Request.Context(), ingredients)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": tags})
}

// respondError writes a JSON error with the status mapped from the error kind
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)

	message := err.Error()
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		message = ve.Message
	}

	event := h.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = h.logger.Error()
	}
	event.Err(err).
		Str("path", c.FullPath()).
		Str("request_id", c.GetString(requestIDKey)).
		Int("status", status).
		Msg("request failed")

	c.JSON(status, gin.H{
		"error":  message,
		"reason": domain.Reason(err),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoProductsFound), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoIngredientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrIngredientTableTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrCompletionService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
