package entity

import (
	"fmt"
	"strings"
)

// TraderCategory is the routing category of a query.
type TraderCategory int

const (
	// CategoryOther covers queries unrelated to import/export.
	CategoryOther TraderCategory = iota
	// CategoryExpertTrader is a knowledgeable trader asking in-depth questions.
	CategoryExpertTrader
	// CategorySelfServiceTrader is a novice asking general how-to questions.
	CategorySelfServiceTrader
	// CategoryOfficer is an authenticated customs officer. Only the officer
	// override produces it.
	CategoryOfficer
)

// Labels the classifier model is asked to answer with.
const (
	LabelExpertTrader      = "Expert Trader"
	LabelSelfServiceTrader = "Self Service Trader"
	LabelOther             = "Other"
)

// String returns the human-readable name of the category.
func (c TraderCategory) String() string {
	switch c {
	case CategoryExpertTrader:
		return LabelExpertTrader
	case CategorySelfServiceTrader:
		return LabelSelfServiceTrader
	case CategoryOfficer:
		return "Customs Officer"
	default:
		return LabelOther
	}
}

// Slug is a stable identifier used in logs and metric labels.
func (c TraderCategory) Slug() string {
	switch c {
	case CategoryExpertTrader:
		return "expert_trader"
	case CategorySelfServiceTrader:
		return "self_service_trader"
	case CategoryOfficer:
		return "customs_officer"
	default:
		return "other"
	}
}

// ParseTraderCategory maps a raw classifier completion onto a category.
// Matching is case-insensitive and ignores surrounding quotes and trailing
// punctuation. Unrecognised labels return CategoryOther together with
// ErrUnknownCategory.
func ParseTraderCategory(raw string) (TraderCategory, error) {
	label := strings.Trim(strings.TrimSpace(raw), "'\"`.*: \n")
	switch {
	case strings.EqualFold(label, LabelExpertTrader):
		return CategoryExpertTrader, nil
	case strings.EqualFold(label, LabelSelfServiceTrader):
		return CategorySelfServiceTrader, nil
	case strings.EqualFold(label, LabelOther):
		return CategoryOther, nil
	}
	return CategoryOther, fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
}
