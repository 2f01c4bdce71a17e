package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"customs-gateway/internal/domain/entity"
	"customs-gateway/internal/domain/repository"
	"customs-gateway/internal/observability"
	"customs-gateway/pkg/logging"
)

// Fixed responses returned without consulting a strategy.
const (
	RefusalUnrelated = "query not related to import and export"
	RefusalUnlawful  = "query not related to legal import and export for Singapore"
	ApologyMessage   = "Sorry, we are unable to answer your query right now. Please try again later."
)

// Strategies groups the response strategies the router dispatches to.
type Strategies struct {
	Expert      repository.Strategy
	SelfService repository.Strategy
	RuleLookup  repository.Strategy
}

// Router classifies and screens each query, then dispatches it to a
// strategy, a refusal or the threat audit path.
type Router struct {
	classifier *Classifier
	screener   *ThreatScreener
	strategies Strategies
	audit      *AuditLogger
	metrics    *observability.RouterMetrics
	logger     *logging.Logger
	now        func() time.Time
}

func NewRouter(classifier *Classifier, screener *ThreatScreener, strategies Strategies, audit *AuditLogger, metrics *observability.RouterMetrics, logger *logging.Logger) *Router {
	if logger == nil {
		logger = logging.Default()
	}
	return &Router{
		classifier: classifier,
		screener:   screener,
		strategies: strategies,
		audit:      audit,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Route answers query on behalf of actor.
//
// Transient completion or retrieval failures are turned into ApologyMessage.
// The only error returned for a non-empty query is a malformed threat
// verdict, which aborts the request rather than guess that it is safe.
func (r *Router) Route(ctx context.Context, query string, actor entity.ActorContext) (string, error) {
	start := r.now()
	if strings.TrimSpace(query) == "" {
		return "", entity.ErrInvalidRequest
	}

	var (
		wg        sync.WaitGroup
		category  entity.TraderCategory
		classErr  error
		verdict   entity.ThreatVerdict
		screenErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		category, classErr = r.classifier.Classify(ctx, query)
	}()
	go func() {
		defer wg.Done()
		verdict, screenErr = r.screener.Assess(ctx, query)
	}()
	wg.Wait()

	if actor.IsAuthenticatedOfficer {
		category = entity.CategoryOfficer
		classErr = nil
	}
	log := r.logger.With("actor", actor.Name(), "category", category.Slug())

	if screenErr != nil {
		if errors.Is(screenErr, entity.ErrMalformedModelOutput) {
			log.Error("threat verdict unreadable, aborting", "error", screenErr)
			r.observe(category, "malformed_verdict", start)
			return "", screenErr
		}
		if category != entity.CategoryOfficer {
			log.Error("threat screening failed", "error", screenErr)
			r.observe(category, "unavailable", start)
			return ApologyMessage, nil
		}
		log.Warn("threat screening failed, serving officer without screening", "error", screenErr)
		return r.dispatch(ctx, log, query, category, start)
	}

	if !verdict.IsSafe() {
		r.recordThreat(ctx, log, query, actor, verdict)
		if category == entity.CategoryOfficer {
			return r.dispatch(ctx, log, query, category, start)
		}
		r.observe(category, "refused_threat", start)
		return RefusalUnlawful, nil
	}

	if classErr != nil {
		log.Error("classification failed", "error", classErr)
		r.observe(category, "unavailable", start)
		return ApologyMessage, nil
	}
	return r.dispatch(ctx, log, query, category, start)
}

func (r *Router) dispatch(ctx context.Context, log *logging.Logger, query string, category entity.TraderCategory, start time.Time) (string, error) {
	var strategy repository.Strategy
	switch category {
	case entity.CategoryOfficer:
		strategy = r.strategies.RuleLookup
	case entity.CategoryExpertTrader:
		strategy = r.strategies.Expert
	case entity.CategorySelfServiceTrader:
		strategy = r.strategies.SelfService
	default:
		r.observe(category, "refused_unrelated", start)
		return RefusalUnrelated, nil
	}

	answer, err := strategy.Respond(ctx, query)
	if err != nil {
		log.Error("strategy failed", "error", err)
		r.observe(category, "unavailable", start)
		return ApologyMessage, nil
	}
	r.observe(category, "answered", start)
	return answer, nil
}

// recordThreat builds the audit record and hands it to the audit logger.
// Neither the location lookup nor persistence can fail the request.
func (r *Router) recordThreat(ctx context.Context, log *logging.Logger, query string, actor entity.ActorContext, verdict entity.ThreatVerdict) {
	r.metrics.ObserveThreat(actor.IsAuthenticatedOfficer)
	log.Warn("threat detected",
		"threat_category", verdict.Category,
		"threat_severity", verdict.Severity,
	)
	if r.audit == nil {
		return
	}

	ip, coords := r.audit.Locate(ctx, actor)
	rec := entity.AuditRecord{
		Query:          query,
		IPAddress:      ip,
		ThreatCategory: verdict.Category,
		ThreatSeverity: verdict.Severity,
		Timestamp:      r.now().UTC(),
		Actor:          actor.Name(),
	}
	if coords != nil {
		rec.Latitude = &coords.Latitude
		rec.Longitude = &coords.Longitude
	}
	if err := r.audit.Record(ctx, rec); err != nil {
		r.metrics.ObserveAuditFailure()
	}
}

func (r *Router) observe(category entity.TraderCategory, outcome string, start time.Time) {
	r.metrics.ObserveRoute(category.Slug(), outcome, r.now().Sub(start).Seconds())
}
