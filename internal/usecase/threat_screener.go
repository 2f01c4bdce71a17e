package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"customs-gateway/internal/domain/entity"
	"customs-gateway/internal/domain/repository"
)

type ThreatScreener struct {
	completer repository.Completer
}

func NewThreatScreener(c repository.Completer) *ThreatScreener {
	return &ThreatScreener{completer: c}
}

// Assess asks the model for a threat verdict. A response that cannot be
// parsed is an error; it never defaults to safe.
func (s *ThreatScreener) Assess(ctx context.Context, query string) (entity.ThreatVerdict, error) {
	raw, err := s.completer.Complete(ctx, entity.NewConversation(threatPrompt, query))
	if err != nil {
		return entity.ThreatVerdict{}, fmt.Errorf("threat screening: %w", err)
	}
	verdict, err := ParseThreatVerdict(raw)
	if err != nil {
		return entity.ThreatVerdict{}, fmt.Errorf("threat screening: %w", err)
	}
	return verdict, nil
}

type screeningEnvelope struct {
	Screening *struct {
		Category *string         `json:"threat_category"`
		Severity json.RawMessage `json:"threat_category_value"`
	} `json:"screening"`
}

// ParseThreatVerdict decodes the screener's JSON answer. Markdown code fences
// are tolerated; anything structurally wrong is ErrMalformedModelOutput.
func ParseThreatVerdict(raw string) (entity.ThreatVerdict, error) {
	var env screeningEnvelope
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &env); err != nil {
		return entity.ThreatVerdict{}, fmt.Errorf("%w: %v", entity.ErrMalformedModelOutput, err)
	}
	if env.Screening == nil || env.Screening.Category == nil {
		return entity.ThreatVerdict{}, fmt.Errorf("%w: missing screening.threat_category in %q", entity.ErrMalformedModelOutput, raw)
	}
	return entity.ThreatVerdict{
		Category: strings.TrimSpace(*env.Screening.Category),
		Severity: severityText(env.Screening.Severity),
	}, nil
}

func severityText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
