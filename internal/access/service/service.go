// Package service implements the access core: identity resolution, ban
// checking, the per-pair entry/exit state machine and the transition engine
// that commits ledger events. Handlers stay thin; everything that decides
// whether a person may pass a gate lives here.
package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"garita/internal/access/metrics"
	"garita/internal/access/models"
	"garita/internal/audit"
	regmodels "garita/internal/registry/models"
	id "garita/pkg/domain"
)

// VisitorStore persists canonical visitor records.
type VisitorStore interface {
	Create(ctx context.Context, v *models.Visitor) error
	Update(ctx context.Context, v *models.Visitor) error
	FindByID(ctx context.Context, visitorID id.VisitorID) (*models.Visitor, error)
	FindByDocument(ctx context.Context, doc id.Document) (*models.Visitor, error)
}

// BanStore reads the ban intervals for a (visitor, facility) pair.
type BanStore interface {
	ListForPair(ctx context.Context, visitorID id.VisitorID, facilityID id.FacilityID) ([]*models.Ban, error)
}

// EventStore is the access-event ledger. Append must revalidate the pair's
// alternation atomically with the insert and reject violations with a wrapped
// sentinel.ErrConflict.
type EventStore interface {
	Append(ctx context.Context, ev *models.AccessEvent) error
	LastEvent(ctx context.Context, visitorID id.VisitorID, facilityID id.FacilityID) (*models.AccessEvent, error)
	GetByID(ctx context.Context, eventID id.EventID) (*models.AccessEvent, error)
	UpdateDocumentation(ctx context.Context, eventID id.EventID, comment string, photos []string) error
	List(ctx context.Context, filter models.EventFilter) ([]*models.AccessEvent, error)
}

// Registry resolves facility and sector references owned by the registry
// module. The core only needs existence, ownership and the sector policy flag.
type Registry interface {
	GetFacility(ctx context.Context, facilityID id.FacilityID) (*regmodels.Facility, error)
	GetSectorInFacility(ctx context.Context, facilityID id.FacilityID, sectorID id.SectorID) (*regmodels.Sector, error)
	GetSector(ctx context.Context, sectorID id.SectorID) (*regmodels.Sector, error)
}

// PresenceCache is the optional non-authoritative inside/outside cache. Get's
// second return is false on miss or cache trouble; the ledger stays ground
// truth and legality checks never consult the cache.
type PresenceCache interface {
	Get(ctx context.Context, visitorID id.VisitorID, facilityID id.FacilityID) (inside bool, ok bool)
	Set(ctx context.Context, visitorID id.VisitorID, facilityID id.FacilityID, inside bool) error
}

// AuditRecorder receives audit events without blocking the request path.
type AuditRecorder interface {
	Record(event audit.Event)
}

// Deps wires the service. Presence, Auditor and Metrics may be nil.
type Deps struct {
	Visitors       VisitorStore
	Bans           BanStore
	Events         EventStore
	Registry       Registry
	Presence       PresenceCache
	Auditor        AuditRecorder
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	ImportMaxBatch int
}

type Service struct {
	visitors       VisitorStore
	bans           BanStore
	events         EventStore
	registry       Registry
	presence       PresenceCache
	auditor        AuditRecorder
	metrics        *metrics.Metrics
	logger         *slog.Logger
	tracer         trace.Tracer
	importMaxBatch int
}

func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBatch := deps.ImportMaxBatch
	if maxBatch <= 0 {
		maxBatch = 500
	}
	return &Service{
		visitors:       deps.Visitors,
		bans:           deps.Bans,
		events:         deps.Events,
		registry:       deps.Registry,
		presence:       deps.Presence,
		auditor:        deps.Auditor,
		metrics:        deps.Metrics,
		logger:         logger,
		tracer:         otel.Tracer("garita/access"),
		importMaxBatch: maxBatch,
	}
}

func (s *Service) record(event audit.Event) {
	if s.auditor != nil {
		s.auditor.Record(event)
	}
}

func (s *Service) cachePresence(ctx context.Context, visitorID id.VisitorID, facilityID id.FacilityID, inside bool) {
	if s.presence == nil {
		return
	}
	if err := s.presence.Set(ctx, visitorID, facilityID, inside); err != nil {
		s.logger.Warn("presence cache update failed",
			"visitor_id", visitorID.String(),
			"facility_id", facilityID.String(),
			"error", err,
		)
	}
}
