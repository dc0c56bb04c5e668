package usecase

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/porespective/backend/internal/domain"
	"github.com/porespective/backend/internal/infrastructure/observability"
	"github.com/porespective/backend/internal/session"
)

// RecommendRequest is the input for a product recommendation
type RecommendRequest struct {
	SessionID   string // optional; generated when empty
	ProductName string
	Ingredients []domain.IngredientEntry
	Profile     *domain.UserProfile
}

// ConversationService streams recommendations and follow-up answers and keeps per-session memory
type ConversationService struct {
	llm      domain.CompletionClient
	sessions *session.Registry
	idLength int
	logger   zerolog.Logger
}

// NewConversationService creates a conversation service
func NewConversationService(llm domain.CompletionClient, sessions *session.Registry, idLength int) *ConversationService {
	if idLength <= 0 {
		idLength = session.DefaultIDLength
	}
	return &ConversationService{
		llm:      llm,
		sessions: sessions,
		idLength: idLength,
		logger:   observability.Component("conversation"),
	}
}

// Recommend starts a streamed recommendation and returns the session id it is recorded under.
// The exchange is recorded only if the stream is consumed to a successful end.
func (s *ConversationService) Recommend(ctx context.Context, req RecommendRequest) (string, iter.Seq2[string, error], error) {
	if strings.TrimSpace(req.ProductName) == "" {
		return "", nil, domain.NewValidationError("Missing product_name")
	}
	if len(req.Ingredients) == 0 {
		return "", nil, domain.NewValidationError("Missing ingredients")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		id, err := session.GenerateID(s.idLength)
		if err != nil {
			return "", nil, err
		}
		sessionID = id
	}
	conv := s.sessions.GetOrCreate(sessionID)

	input := BuildRecommendationInput(req.ProductName, req.Ingredients, req.Profile)
	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: recommendationSystemPrompt},
		{Role: domain.RoleUser, Content: input},
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Str("product", req.ProductName).
		Int("ingredients", len(req.Ingredients)).
		Msg("recommendation requested")

	return sessionID, s.recorded(conv, input, s.llm.Stream(ctx, messages)), nil
}

// Chat streams an answer to a follow-up message using the session's history as context.
// Unknown session ids start a fresh conversation.
func (s *ConversationService) Chat(ctx context.Context, sessionID, message string) (iter.Seq2[string, error], error) {
	if sessionID == "" {
		return nil, domain.NewValidationError("Missing session_id")
	}
	if strings.TrimSpace(message) == "" {
		return nil, domain.NewValidationError("Missing user message")
	}

	conv := s.sessions.GetOrCreate(sessionID)
	history := conv.History()

	messages := make([]domain.Message, 0, len(history)*2+2)
	messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: followUpSystemPrompt})
	messages = append(messages, domain.ExchangesToMessages(history)...)
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: message})

	s.logger.Info().Str("session_id", sessionID).Int("history", len(history)).Msg("chat message")

	return s.recorded(conv, message, s.llm.Stream(ctx, messages)), nil
}

// recorded forwards fragments and appends the exchange to conv once the stream ends cleanly
func (s *ConversationService) recorded(conv *session.Conversation, input string, stream iter.Seq2[string, error]) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var reply strings.Builder
		for part, err := range stream {
			if err != nil {
				s.logger.Error().Err(err).Str("session_id", conv.ID()).Msg("completion stream failed")
				yield("", err)
				return
			}
			reply.WriteString(part)
			if !yield(part, nil) {
				s.logger.Info().Str("session_id", conv.ID()).Msg("client stopped reading, exchange not recorded")
				return
			}
		}
		conv.Record(input, reply.String())
		s.logger.Debug().Str("session_id", conv.ID()).Int("exchanges", conv.Len()).Msg("exchange recorded")
	}
}

// SessionSnapshot is a read-only copy of a session's memory
type SessionSnapshot struct {
	ID        string
	CreatedAt time.Time
	Exchanges []domain.Exchange
}

// Session returns a copy of an existing session's history without creating or touching it.
// Unknown or evicted ids return domain.ErrSessionNotFound.
func (s *ConversationService) Session(sessionID string) (*SessionSnapshot, error) {
	conv, err := s.sessions.Lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionSnapshot{
		ID:        conv.ID(),
		CreatedAt: conv.CreatedAt(),
		Exchanges: conv.History(),
	}, nil
}
