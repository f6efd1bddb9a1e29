package models

import (
	id "garita/pkg/domain"
	dErrors "garita/pkg/domain-errors"
)

// IdentityQuery identifies a visitor either by internal id or by document.
// A non-nil VisitorID wins; otherwise Document must carry a value. The
// enrichment fields are backfill candidates, ignored for lookup.
type IdentityQuery struct {
	VisitorID   id.VisitorID
	Document    id.Document
	Name        string
	Surname     string
	CompanyName string
	Plate       string
}

// ByID reports whether the query addresses a visitor by internal id.
func (q IdentityQuery) ByID() bool { return !q.VisitorID.IsNil() }

// Validate enforces that at least one identifier is present.
func (q IdentityQuery) Validate() error {
	if !q.ByID() && q.Document.IsZero() {
		return dErrors.NewReason(dErrors.CodeValidation, "identidad_requerida",
			"visita_id or a document value is required")
	}
	return nil
}

// EntryRequest asks the transition engine to register an entry. The facility
// comes from the acting guard's scope, never from the payload.
type EntryRequest struct {
	Identity IdentityQuery
	SectorID id.SectorID
	Comment  string
}

// ExitRequest asks the transition engine to register an exit.
type ExitRequest struct {
	Identity  IdentityQuery
	SectorID  id.SectorID
	Comment   string
	PhotoURLs []string
}

// EventFilter narrows the access-event list endpoint.
type EventFilter struct {
	VisitorID  id.VisitorID
	FacilityID id.FacilityID
	CompanyID  id.CompanyID
	Kind       EventKind
	Limit      int
}

// EventOverride corrects documentation fields of a committed event. Kind,
// timestamp and references are immutable so the alternation invariant can
// never be broken retroactively.
type EventOverride struct {
	Comment   *string
	PhotoURLs *[]string
}

// IsZero reports whether the override changes nothing.
func (o EventOverride) IsZero() bool { return o.Comment == nil && o.PhotoURLs == nil }

// ImportItem is one visitor row in a bulk import.
type ImportItem struct {
	Document    id.Document
	Name        string
	Surname     string
	CompanyName string
	Plate       string
}

// ImportBatch carries the whole import plus its explicit acting context;
// nothing about the batch is inferred from ambient state.
type ImportBatch struct {
	GuardID    id.GuardID
	FacilityID id.FacilityID
	Items      []ImportItem
}

// ImportItemError records one failed row without aborting the batch.
type ImportItemError struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Created int               `json:"created"`
	Updated int               `json:"updated"`
	Errors  []ImportItemError `json:"errors,omitempty"`
}
