package entity

import "strings"

// SafeThreatCategory is the only category value treated as safe.
const SafeThreatCategory = "none"

// ThreatVerdict is the screener's judgement for one query. It is never cached.
type ThreatVerdict struct {
	Category string `json:"threat_category"`
	Severity string `json:"threat_category_value"`
}

// IsSafe reports whether the verdict is an exact, case-insensitive "none".
// Empty or unexpected categories are unsafe.
func (v ThreatVerdict) IsSafe() bool {
	return strings.EqualFold(strings.TrimSpace(v.Category), SafeThreatCategory)
}
