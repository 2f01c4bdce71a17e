package usecase

import (
	"context"
	"fmt"

	"customs-gateway/internal/domain/entity"
	"customs-gateway/internal/domain/repository"
	"customs-gateway/pkg/logging"
)

type Classifier struct {
	completer repository.Completer
	logger    *logging.Logger
}

func NewClassifier(c repository.Completer, logger *logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &Classifier{completer: c, logger: logger}
}

// Classify returns the trading-expertise category of the query. Labels
// outside the known set are logged and treated as CategoryOther.
func (c *Classifier) Classify(ctx context.Context, query string) (entity.TraderCategory, error) {
	raw, err := c.completer.Complete(ctx, entity.NewConversation(classifierPrompt, query))
	if err != nil {
		return entity.CategoryOther, fmt.Errorf("classification: %w", err)
	}
	category, err := entity.ParseTraderCategory(raw)
	if err != nil {
		c.logger.Warn("classifier returned unrecognised label", "error", err)
	}
	return category, nil
}
