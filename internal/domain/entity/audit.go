package entity

import "time"

// AuditRecord is one detected threat. Records are append-only and never
// mutated once written.
type AuditRecord struct {
	Query          string    `json:"query"`
	IPAddress      *string   `json:"ip_address"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	ThreatCategory string    `json:"threat_category"`
	ThreatSeverity string    `json:"threat_category_value"`
	Timestamp      time.Time `json:"timestamp"`
	Actor          string    `json:"actor"`
}

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// AuditFilter narrows audit listings. Zero values match everything.
type AuditFilter struct {
	Category string
	From     time.Time
	To       time.Time
}

// Matches reports whether r passes the filter.
func (f AuditFilter) Matches(r AuditRecord) bool {
	if f.Category != "" && f.Category != r.ThreatCategory {
		return false
	}
	if !f.From.IsZero() && r.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.Timestamp.After(f.To) {
		return false
	}
	return true
}
