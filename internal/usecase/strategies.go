package usecase

import (
	"context"
	"fmt"

	"customs-gateway/internal/domain/entity"
	"customs-gateway/internal/domain/repository"
)

// PersonaStrategy answers with one completion under a fixed persona prompt.
type PersonaStrategy struct {
	name      string
	system    string
	completer repository.Completer
}

// NewExpertStrategy answers knowledgeable traders with a concise summary.
func NewExpertStrategy(c repository.Completer) *PersonaStrategy {
	return &PersonaStrategy{name: "expert", system: expertPrompt, completer: c}
}

// NewSelfServiceStrategy walks novice traders through the process.
func NewSelfServiceStrategy(c repository.Completer) *PersonaStrategy {
	return &PersonaStrategy{name: "self_service", system: selfServicePrompt, completer: c}
}

func (s *PersonaStrategy) Respond(ctx context.Context, query string) (string, error) {
	answer, err := s.completer.Complete(ctx, entity.NewConversation(s.system, query))
	if err != nil {
		return "", fmt.Errorf("%s strategy: %w", s.name, err)
	}
	return answer, nil
}
