package usecase

import (
	"context"
	"fmt"
	"strings"

	"customs-gateway/internal/domain/entity"
	"customs-gateway/internal/domain/repository"
	"customs-gateway/pkg/logging"
)

// Report markers the rule-lookup answers always end with.
const (
	FinalOutcomeMarker        = "Final Outcome"
	FinalRecommendationMarker = "Final Recommendation"
	NoIdeaMarker              = "no-idea"
)

const (
	rejectedOutcomeSection  = "\n\n## " + FinalOutcomeMarker + "\n**Status:** ❌ REJECTED\n**Reason:** The validation report was incomplete, so the declaration cannot be approved."
	noIdeaRecommendation    = "\n\n## " + FinalRecommendationMarker + "\n**Conclusion:** " + NoIdeaMarker
	structuredRetrievalLead = "Retrieve the rules related to "
	plainRetrievalLead      = "Retrieve the general trading rules for "
	statusLabel             = "**STATUS:**"
)

// RuleLookupStrategy serves customs officers. It detects declaration markup,
// extracts the declaration fields when present, retrieves the applicable
// rules and asks for a report grounded in them. Any stage failure aborts.
type RuleLookupStrategy struct {
	completer repository.Completer
	retriever repository.Retriever
	logger    *logging.Logger
}

func NewRuleLookupStrategy(c repository.Completer, r repository.Retriever, logger *logging.Logger) *RuleLookupStrategy {
	if logger == nil {
		logger = logging.Default()
	}
	return &RuleLookupStrategy{completer: c, retriever: r, logger: logger}
}

func (s *RuleLookupStrategy) Respond(ctx context.Context, query string) (string, error) {
	structured, err := s.DetectStructure(ctx, query)
	if err != nil {
		return "", fmt.Errorf("rule lookup: detect structure: %w", err)
	}

	var (
		fields         entity.DeclarationFields
		retrievalQuery string
	)
	if structured {
		fields, err = s.ExtractFields(ctx, query)
		if err != nil {
			return "", fmt.Errorf("rule lookup: extract fields: %w", err)
		}
		retrievalQuery = structuredRetrievalLead + fields.Render()
	} else {
		retrievalQuery = plainRetrievalLead + query
	}

	rules, err := s.retriever.Retrieve(ctx, retrievalQuery)
	if err != nil {
		return "", fmt.Errorf("rule lookup: retrieve: %w", err)
	}
	if strings.TrimSpace(rules) == "" {
		rules = entity.UnknownContext
	}
	s.logger.Debug("rule lookup context retrieved",
		"structured", structured,
		"unknown_context", rules == entity.UnknownContext,
	)

	if structured {
		return s.answerDeclaration(ctx, query, fields, rules)
	}
	return s.answerGuidance(ctx, query, rules)
}

// DetectStructure asks whether the query carries declaration markup. Only an
// exact true/false answer is accepted.
func (s *RuleLookupStrategy) DetectStructure(ctx context.Context, query string) (bool, error) {
	raw, err := s.completer.Complete(ctx, entity.NewConversation(detectStructurePrompt, query))
	if err != nil {
		return false, err
	}
	answer := strings.TrimSpace(raw)
	switch {
	case strings.EqualFold(answer, "true"):
		return true, nil
	case strings.EqualFold(answer, "false"):
		return false, nil
	}
	return false, fmt.Errorf("%w: expected true or false, got %q", entity.ErrMalformedModelOutput, raw)
}

// ExtractFields asks the model for a per-field summary of the declaration.
func (s *RuleLookupStrategy) ExtractFields(ctx context.Context, query string) (entity.DeclarationFields, error) {
	raw, err := s.completer.Complete(ctx, entity.NewConversation(extractFieldsPrompt(declarationMapping()), query))
	if err != nil {
		return nil, err
	}
	return entity.ParseDeclarationSummary(raw), nil
}

func (s *RuleLookupStrategy) answerDeclaration(ctx context.Context, query string, fields entity.DeclarationFields, rules string) (string, error) {
	conv := entity.NewDeclarationConversation(declarationReportPrompt(declarationMapping(), rules), query, fields.Render())
	report, err := s.completer.Complete(ctx, conv)
	if err != nil {
		return "", fmt.Errorf("rule lookup: answer: %w", err)
	}
	if !hasFinalVerdict(report) {
		s.logger.Warn("declaration report missing final verdict, rejecting")
		report += rejectedOutcomeSection
	}
	return report, nil
}

// hasFinalVerdict reports whether the first Status line after the last Final
// Outcome heading carries exactly one of APPROVED or REJECTED.
func hasFinalVerdict(report string) bool {
	i := strings.LastIndex(report, FinalOutcomeMarker)
	if i < 0 {
		return false
	}
	for _, line := range strings.Split(report[i+len(FinalOutcomeMarker):], "\n") {
		line = strings.ToUpper(line)
		if !strings.Contains(line, statusLabel) {
			continue
		}
		// A line naming both outcomes is the template, not a verdict.
		return strings.Contains(line, "APPROVED") != strings.Contains(line, "REJECTED")
	}
	return false
}

func (s *RuleLookupStrategy) answerGuidance(ctx context.Context, query, knowledge string) (string, error) {
	report, err := s.completer.Complete(ctx, entity.NewConversation(guidanceReportPrompt(knowledge), query))
	if err != nil {
		return "", fmt.Errorf("rule lookup: answer: %w", err)
	}
	if !strings.Contains(report, FinalRecommendationMarker) {
		s.logger.Warn("guidance report missing final recommendation")
		report += noIdeaRecommendation
	}
	return report, nil
}

func declarationMapping() string {
	var b strings.Builder
	for _, f := range entity.DeclarationFieldSet {
		fmt.Fprintf(&b, "- <%s> = %s\n", f.Tag, f.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}
