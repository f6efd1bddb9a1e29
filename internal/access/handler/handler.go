// Package handler binds the access core to HTTP. Handlers decode, call the
// service and encode; every decision about legality stays in the service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"garita/internal/access/models"
	"garita/internal/access/service"
	"garita/internal/platform/metrics"
	"garita/internal/platform/middleware"
	id "garita/pkg/domain"
	dErrors "garita/pkg/domain-errors"
	"garita/pkg/platform/httputil"
	"garita/pkg/requestcontext"
)

// Service is the access-core surface the transport needs.
type Service interface {
	RegisterEntry(ctx context.Context, actor requestcontext.Actor, req models.EntryRequest) (*models.AccessEvent, error)
	RegisterExit(ctx context.Context, actor requestcontext.Actor, req models.ExitRequest) (*models.AccessEvent, error)
	ListEvents(ctx context.Context, actor requestcontext.Actor, filter models.EventFilter) ([]*models.AccessEvent, error)
	FindVisitorByDocument(ctx context.Context, actor requestcontext.Actor, doc id.Document) (*service.VisitorLookup, error)
	LatestEventByDocument(ctx context.Context, actor requestcontext.Actor, doc id.Document) (*service.EventLookup, error)
	OverrideEvent(ctx context.Context, actor requestcontext.Actor, eventID id.EventID, override models.EventOverride) (*models.AccessEvent, error)
	ResolveOrCreate(ctx context.Context, q models.IdentityQuery) (*models.Visitor, bool, error)
	ImportVisitors(ctx context.Context, actor requestcontext.Actor, batch models.ImportBatch) (*models.ImportResult, error)
}

type Handler struct {
	access         Service
	logger         *slog.Logger
	metrics        *metrics.Metrics
	validator      middleware.TokenValidator
	adminTokenHash string
}

func New(access Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator, adminTokenHash string) *Handler {
	return &Handler{
		access:         access,
		logger:         logger,
		metrics:        m,
		validator:      validator,
		adminTokenHash: adminTokenHash,
	}
}

// Register mounts the access routes.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Latency(h.metrics))
	router.Use(middleware.Device)
	router.Use(middleware.RequireAuth(h.validator, h.logger))

	router.Post("/accesos/ingreso", h.handleRegisterEntry)
	router.Post("/accesos/salida", h.handleRegisterExit)
	router.Get("/accesos", h.handleListEvents)
	router.Get("/accesos/ultimo/{documento}", h.handleLatestEvent)
	router.Get("/visitas/documento/{documento}", h.handleFindVisitor)
	router.Post("/visitas", h.handleRegisterVisitor)
	router.Get("/me", h.handleMe)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdminToken(h.adminTokenHash, h.logger))
		admin.With(middleware.RequireCapability(id.CapOverrideEvent, h.logger)).
			Patch("/accesos/{id}", h.handleOverrideEvent)
		admin.With(middleware.RequireCapability(id.CapBulkImport, h.logger)).
			Post("/visitas/importar", h.handleImportVisitors)
	})

	r.Mount("/", router)
}

func (h *Handler) handleRegisterEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requestcontext.ActorFrom(ctx)
	if !ok {
		h.missingActor(w, r)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	identity, err := req.identity()
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid visita_id"))
		return
	}
	var sectorID id.SectorID
	if req.SectorID != "" {
		sectorID, err = id.ParseSectorID(req.SectorID)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid sector_id"))
			return
		}
	}

	ev, err := h.access.RegisterEntry(ctx, actor, models.EntryRequest{
		Identity: identity,
		SectorID: sectorID,
		Comment:  req.Comment,
	})
	if err != nil {
		h.writeServiceError(w, r, "register entry", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toEventResponse(ev))
}

func (h *Handler) handleRegisterExit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requestcontext.ActorFrom(ctx)
	if !ok {
		h.missingActor(w, r)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	identity, err := req.identity()
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid visita_id"))
		return
	}
	var sectorID id.SectorID
	if req.SectorID != "" {
		sectorID, err = id.ParseSectorID(req.SectorID)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid sector_id"))
			return
		}
	}

	ev, err := h.access.RegisterExit(ctx, actor, models.ExitRequest{
		Identity:  identity,
		SectorID:  sectorID,
		Comment:   req.Comment,
		PhotoURLs: req.PhotoURLs,
	})
	if err != nil {
		h.writeServiceError(w, r, "register exit", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toEventResponse(ev))
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requestcontext.ActorFrom(ctx)
	if !ok {
		h.missingActor(w, r)
		return
	}

	filter := models.EventFilter{Kind: models.EventKind(r.URL.Query().Get("tipo"))}
	if raw := r.URL.Query().Get("visita_id"); raw != "" {
		visitorID, err := id.ParseVisitorID(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid visita_id"))
			return
		}
		filter.VisitorID = visitorID
	}
	if raw := r.URL.Query().Get("instalacion_id"); raw != "" {
		facilityID, err := id.ParseFacilityID(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid instalacion_id"))
			return
		}
		filter.FacilityID = facilityID
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid limit"))
			return
		}
		filter.Limit = limit
	}

	events, err := h.access.ListEvents(ctx, actor, filter)
	if err != nil {
		h.writeServiceError(w, r, "list events", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"accesos": toEventResponses(events)})
}

func (h *Handler) handleLatestEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requestcontext.ActorFrom(ctx)
	if !ok {
		h.missingActor(w, r)
		return
	}

	doc := id.NewDocument(chi.URLParam(r, "documento"), r.URL.Query().Get("extranjero") == "true")
	lookup, err := h.access.LatestEventByDocument(ctx, actor, doc)
	if err != nil {
		h.writeServiceError(w, r, "latest event by document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, eventLookupResponse{
		Event:                 toEventResponse(lookup.Event),
		RequiresDocumentation: lookup.RequiresDocumentation,
		MayExit:               lookup.MayExit,
	})
}

func (h *Handler) handleFindVisitor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requestcontext.ActorFrom(ctx)
	if !ok {
		h.missingActor(w, r)
		return
	}

	doc := id.NewDocument(chi.URLParam(r, "documento"), r.URL.Query().Get("extranjero") == "true")
	lookup, err := h.access.FindVisitorByDocument(ctx, actor, doc)
	if err != nil {
		h.writeServiceError(w, r, "find visitor by document", err)
		return
	}

	// A banned visitor is still returned, with a 403 envelope, so the guard
	// sees who they are refusing.
	status := http.StatusOK
	if lookup.Banned {
		status = http.StatusForbidden
	}
	httputil.WriteJSON(w, status, toVisitorLookupResponse(lookup))
}

func (h *Handler) handleRegisterVisitor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerVisitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	visitor, created, err := h.access.ResolveOrCreate(ctx, models.IdentityQuery{
		Document:    req.document(),
		Name:        req.Name,
		Surname:     req.Surname,
		CompanyName: req.CompanyName,
		Plate:       req.Plate,
	})
	if err != nil {
		h.writeServiceError(w, r, "register visitor", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, registerVisitorResponse{
		Visitor: toVisitorResponse(visitor),
		Created: created,
	})
}

func (h *Handler) handleOverrideEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requestcontext.ActorFrom(ctx)
	if !ok {
		h.missingActor(w, r)
		return
	}

	eventID, err := id.ParseEventID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid event id"))
		return
	}
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	ev, err := h.access.OverrideEvent(ctx, actor, eventID, models.EventOverride{
		Comment:   req.Comment,
		PhotoURLs: req.PhotoURLs,
	})
	if err != nil {
		h.writeServiceError(w, r, "override event", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEventResponse(ev))
}

func (h *Handler) handleImportVisitors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requestcontext.ActorFrom(ctx)
	if !ok {
		h.missingActor(w, r)
		return
	}

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	batch := models.ImportBatch{Items: make([]models.ImportItem, 0, len(req.Items))}
	if req.GuardID != "" {
		guardID, err := id.ParseGuardID(req.GuardID)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid guardia_id"))
			return
		}
		batch.GuardID = guardID
	}
	if req.FacilityID != "" {
		facilityID, err := id.ParseFacilityID(req.FacilityID)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid instalacion_id"))
			return
		}
		batch.FacilityID = facilityID
	}
	for _, item := range req.Items {
		batch.Items = append(batch.Items, models.ImportItem{
			Document:    item.document(),
			Name:        item.Name,
			Surname:     item.Surname,
			CompanyName: item.CompanyName,
			Plate:       item.Plate,
		})
	}

	result, err := h.access.ImportVisitors(ctx, actor, batch)
	if err != nil {
		h.writeServiceError(w, r, "import visitors", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestcontext.ActorFrom(r.Context())
	if !ok {
		h.missingActor(w, r)
		return
	}
	resp := meResponse{
		GuardID:  actor.GuardID.String(),
		Username: actor.Username,
		Role:     string(actor.Role),
	}
	if !actor.CompanyID.IsNil() {
		resp.CompanyID = actor.CompanyID.String()
	}
	if !actor.FacilityID.IsNil() {
		resp.FacilityID = actor.FacilityID.String()
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) missingActor(w http.ResponseWriter, r *http.Request) {
	h.logger.ErrorContext(r.Context(), "actor missing from context despite auth middleware",
		"request_id", middleware.GetRequestID(r),
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	if dErrors.Is(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, op+" failed",
			"request_id", middleware.GetRequestID(r),
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, op+" refused",
			"request_id", middleware.GetRequestID(r),
			"reason", dErrors.ReasonOf(err),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
