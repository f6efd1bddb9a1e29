// Package handler exposes the registry CRUD endpoints, all gated on the
// manage-registry capability.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"garita/internal/platform/metrics"
	"garita/internal/platform/middleware"
	"garita/internal/registry/models"
	id "garita/pkg/domain"
	dErrors "garita/pkg/domain-errors"
	"garita/pkg/platform/httputil"
)

type Service interface {
	CreateCompany(ctx context.Context, name, taxID, email, phone string) (*models.Company, error)
	CreateFacility(ctx context.Context, companyID id.CompanyID, name, address string) (*models.Facility, error)
	CreateSector(ctx context.Context, facilityID id.FacilityID, name string, requiresDocs bool) (*models.Sector, error)
	ListCompanies(ctx context.Context) ([]*models.Company, error)
	ListSectors(ctx context.Context, facilityID id.FacilityID) ([]*models.Sector, error)
}

type Handler struct {
	registry  Service
	logger    *slog.Logger
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

func New(registry Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{registry: registry, logger: logger, metrics: m, validator: validator}
}

func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(15 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Latency(h.metrics))
	router.Use(middleware.RequireAuth(h.validator, h.logger))
	router.Use(middleware.RequireCapability(id.CapManageRegistry, h.logger))

	router.Post("/empresas", h.handleCreateCompany)
	router.Get("/empresas", h.handleListCompanies)
	router.Post("/instalaciones", h.handleCreateFacility)
	router.Post("/sectores", h.handleCreateSector)
	router.Get("/instalaciones/{id}/sectores", h.handleListSectors)

	r.Mount("/registro", router)
}

type companyRequest struct {
	Name  string `json:"nombre"`
	TaxID string `json:"rut_empresa,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"telefono,omitempty"`
}

type companyResponse struct {
	ID    string `json:"id"`
	Name  string `json:"nombre"`
	TaxID string `json:"rut_empresa,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"telefono,omitempty"`
}

func toCompanyResponse(c *models.Company) companyResponse {
	return companyResponse{
		ID:    c.ID.String(),
		Name:  c.Name,
		TaxID: c.TaxID,
		Email: c.Email,
		Phone: c.Phone,
	}
}

type facilityRequest struct {
	CompanyID string `json:"empresa_id"`
	Name      string `json:"nombre"`
	Address   string `json:"direccion,omitempty"`
}

type sectorRequest struct {
	FacilityID   string `json:"instalacion_id"`
	Name         string `json:"nombre"`
	RequiresDocs bool   `json:"requiere_documentacion_escolta,omitempty"`
}

type sectorResponse struct {
	ID           string `json:"id"`
	FacilityID   string `json:"instalacion_id"`
	Name         string `json:"nombre"`
	RequiresDocs bool   `json:"requiere_documentacion_escolta"`
}

func toSectorResponse(sec *models.Sector) sectorResponse {
	return sectorResponse{
		ID:           sec.ID.String(),
		FacilityID:   sec.FacilityID.String(),
		Name:         sec.Name,
		RequiresDocs: sec.RequiresEscortDocumentation,
	}
}

func (h *Handler) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	company, err := h.registry.CreateCompany(r.Context(), req.Name, req.TaxID, req.Email, req.Phone)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toCompanyResponse(company))
}

func (h *Handler) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.registry.ListCompanies(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]companyResponse, 0, len(companies))
	for _, c := range companies {
		out = append(out, toCompanyResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"empresas": out})
}

func (h *Handler) handleCreateFacility(w http.ResponseWriter, r *http.Request) {
	var req facilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	companyID, err := id.ParseCompanyID(req.CompanyID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid empresa_id"))
		return
	}
	facility, err := h.registry.CreateFacility(r.Context(), companyID, req.Name, req.Address)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{
		"id":         facility.ID.String(),
		"empresa_id": facility.CompanyID.String(),
		"nombre":     facility.Name,
		"direccion":  facility.Address,
	})
}

func (h *Handler) handleCreateSector(w http.ResponseWriter, r *http.Request) {
	var req sectorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	facilityID, err := id.ParseFacilityID(req.FacilityID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid instalacion_id"))
		return
	}
	sector, err := h.registry.CreateSector(r.Context(), facilityID, req.Name, req.RequiresDocs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toSectorResponse(sector))
}

func (h *Handler) handleListSectors(w http.ResponseWriter, r *http.Request) {
	facilityID, err := id.ParseFacilityID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid instalacion_id"))
		return
	}
	sectors, err := h.registry.ListSectors(r.Context(), facilityID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]sectorResponse, 0, len(sectors))
	for _, sec := range sectors {
		out = append(out, toSectorResponse(sec))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"sectores": out})
}
