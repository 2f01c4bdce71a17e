package usecase

import (
	"context"
	"fmt"
	"time"

	"customs-gateway/internal/domain/entity"
	"customs-gateway/internal/domain/repository"
	"customs-gateway/pkg/logging"
)

// AuditLogger persists threat records and gathers the caller's location for
// them. Location lookups are best-effort; persistence failures are returned
// to the caller, never raised.
type AuditLogger struct {
	sink    repository.AuditSink
	ips     repository.IPResolver // optional
	geo     repository.Geolocator // optional
	timeout time.Duration
	logger  *logging.Logger
}

func NewAuditLogger(sink repository.AuditSink, ips repository.IPResolver, geo repository.Geolocator, timeout time.Duration, logger *logging.Logger) *AuditLogger {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AuditLogger{sink: sink, ips: ips, geo: geo, timeout: timeout, logger: logger}
}

// Locate resolves the caller's IP (the transport-supplied address, else the
// public address) and its coordinates. Either may come back nil.
func (a *AuditLogger) Locate(ctx context.Context, actor entity.ActorContext) (*string, *entity.Coordinates) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	ip := actor.ClientIP
	if ip == "" && a.ips != nil {
		resolved, err := a.ips.PublicIP(ctx)
		if err != nil {
			a.logger.Warn("public ip unavailable for audit record", "error", err)
		} else {
			ip = resolved
		}
	}
	if ip == "" {
		return nil, nil
	}
	if a.geo == nil {
		return &ip, nil
	}

	coords, err := a.geo.Locate(ctx, ip)
	if err != nil {
		a.logger.Warn("geolocation unavailable for audit record", "ip", ip, "error", err)
		return &ip, nil
	}
	return &ip, &coords
}

// Record appends rec to the audit sink.
func (a *AuditLogger) Record(ctx context.Context, rec entity.AuditRecord) error {
	if err := a.sink.Append(ctx, rec); err != nil {
		a.logger.Error("threat audit record not persisted",
			"threat_category", rec.ThreatCategory,
			"actor", rec.Actor,
			"error", err,
		)
		return fmt.Errorf("record threat: %w", err)
	}
	a.logger.Info("threat audit record persisted",
		"threat_category", rec.ThreatCategory,
		"threat_severity", rec.ThreatSeverity,
		"actor", rec.Actor,
	)
	return nil
}

// List returns the stored records matching filter.
func (a *AuditLogger) List(ctx context.Context, filter entity.AuditFilter) ([]entity.AuditRecord, error) {
	return a.sink.List(ctx, filter)
}
