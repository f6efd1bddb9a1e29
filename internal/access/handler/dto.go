package handler

import (
	"time"

	"garita/internal/access/models"
	"garita/internal/access/service"
	id "garita/pkg/domain"
)

// transitionRequest is the wire shape shared by entry and exit. The facility
// is never part of the payload; the caller's token scope decides it.
type transitionRequest struct {
	VisitorID   string   `json:"visita_id,omitempty"`
	NationalID  string   `json:"rut,omitempty"`
	ForeignID   string   `json:"documento_extranjero,omitempty"`
	IsForeign   bool     `json:"es_extranjero,omitempty"`
	Name        string   `json:"nombre,omitempty"`
	Surname     string   `json:"apellido,omitempty"`
	CompanyName string   `json:"empresa,omitempty"`
	Plate       string   `json:"patente,omitempty"`
	SectorID    string   `json:"sector_id"`
	Comment     string   `json:"comentario,omitempty"`
	PhotoURLs   []string `json:"fotos,omitempty"`
}

func (r transitionRequest) identity() (models.IdentityQuery, error) {
	q := models.IdentityQuery{
		Name:        r.Name,
		Surname:     r.Surname,
		CompanyName: r.CompanyName,
		Plate:       r.Plate,
	}
	if r.VisitorID != "" {
		visitorID, err := id.ParseVisitorID(r.VisitorID)
		if err != nil {
			return q, err
		}
		q.VisitorID = visitorID
		return q, nil
	}
	value := r.NationalID
	if r.IsForeign {
		value = r.ForeignID
	}
	q.Document = id.NewDocument(value, r.IsForeign)
	return q, nil
}

type eventResponse struct {
	ID         string    `json:"id"`
	VisitorID  string    `json:"visita_id"`
	FacilityID string    `json:"instalacion_id"`
	SectorID   string    `json:"sector_id"`
	CompanyID  string    `json:"empresa_id"`
	GuardID    string    `json:"guardia_id"`
	Kind       string    `json:"tipo"`
	OccurredAt time.Time `json:"fecha"`
	Comment    string    `json:"comentario,omitempty"`
	PhotoURLs  []string  `json:"fotos,omitempty"`
}

func toEventResponse(ev *models.AccessEvent) eventResponse {
	return eventResponse{
		ID:         ev.ID.String(),
		VisitorID:  ev.VisitorID.String(),
		FacilityID: ev.FacilityID.String(),
		SectorID:   ev.SectorID.String(),
		CompanyID:  ev.CompanyID.String(),
		GuardID:    ev.GuardID.String(),
		Kind:       string(ev.Kind),
		OccurredAt: ev.OccurredAt,
		Comment:    ev.Comment,
		PhotoURLs:  ev.PhotoURLs,
	}
}

func toEventResponses(events []*models.AccessEvent) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, toEventResponse(ev))
	}
	return out
}

type visitorResponse struct {
	ID          string `json:"id"`
	NationalID  string `json:"rut,omitempty"`
	ForeignID   string `json:"documento_extranjero,omitempty"`
	IsForeign   bool   `json:"es_extranjero"`
	Name        string `json:"nombre"`
	Surname     string `json:"apellido,omitempty"`
	CompanyName string `json:"empresa,omitempty"`
	Plate       string `json:"patente,omitempty"`
	Status      string `json:"estado"`
}

func toVisitorResponse(v *models.Visitor) visitorResponse {
	return visitorResponse{
		ID:          v.ID.String(),
		NationalID:  v.NationalID,
		ForeignID:   v.ForeignID,
		IsForeign:   v.IsForeign,
		Name:        v.Name,
		Surname:     v.Surname,
		CompanyName: v.CompanyName,
		Plate:       v.Plate,
		Status:      string(v.Status),
	}
}

type visitorLookupResponse struct {
	Visitor visitorResponse `json:"visita"`
	Banned  bool            `json:"prohibido"`
	Inside  bool            `json:"adentro"`
}

func toVisitorLookupResponse(l *service.VisitorLookup) visitorLookupResponse {
	return visitorLookupResponse{
		Visitor: toVisitorResponse(l.Visitor),
		Banned:  l.Banned,
		Inside:  l.Inside,
	}
}

type eventLookupResponse struct {
	Event                 eventResponse `json:"acceso"`
	RequiresDocumentation bool          `json:"requiere_documentacion"`
	MayExit               bool          `json:"puede_salir"`
}

type overrideRequest struct {
	Comment   *string   `json:"comentario"`
	PhotoURLs *[]string `json:"fotos"`
}

type registerVisitorRequest struct {
	NationalID  string `json:"rut,omitempty"`
	ForeignID   string `json:"documento_extranjero,omitempty"`
	IsForeign   bool   `json:"es_extranjero,omitempty"`
	Name        string `json:"nombre,omitempty"`
	Surname     string `json:"apellido,omitempty"`
	CompanyName string `json:"empresa,omitempty"`
	Plate       string `json:"patente,omitempty"`
}

// document picks the identifying document. The foreign flag is inferred when
// only the foreign document is present, so callers may omit es_extranjero.
func (r registerVisitorRequest) document() id.Document {
	foreign := r.IsForeign
	if !foreign && r.NationalID == "" && r.ForeignID != "" {
		foreign = true
	}
	value := r.NationalID
	if foreign {
		value = r.ForeignID
	}
	return id.NewDocument(value, foreign)
}

type registerVisitorResponse struct {
	Visitor visitorResponse `json:"visita"`
	Created bool            `json:"creada"`
}

type importRequest struct {
	GuardID    string                   `json:"guardia_id,omitempty"`
	FacilityID string                   `json:"instalacion_id,omitempty"`
	Items      []registerVisitorRequest `json:"visitas"`
}

type meResponse struct {
	GuardID    string `json:"guardia_id"`
	Username   string `json:"username,omitempty"`
	Role       string `json:"rol"`
	CompanyID  string `json:"empresa_id,omitempty"`
	FacilityID string `json:"instalacion_id,omitempty"`
}
