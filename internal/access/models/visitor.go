package models

import (
	"time"

	id "garita/pkg/domain"
)

// VisitorStatus is informational only; access legality is decided by the
// event ledger and the ban table, never by this field.
type VisitorStatus string

const (
	VisitorStatusActive   VisitorStatus = "activo"
	VisitorStatusResident VisitorStatus = "residente"
	VisitorStatusBanned   VisitorStatus = "prohibido"
)

// PlaceholderName fills the required display name when a visitor is created
// from a request that didn't carry one.
const PlaceholderName = "Sin nombre"

// Visitor is the canonical identity record for a person or vehicle. Exactly
// one of NationalID/ForeignID is populated, scoped by IsForeign.
type Visitor struct {
	ID          id.VisitorID
	NationalID  string
	ForeignID   string
	IsForeign   bool
	Name        string
	Surname     string
	CompanyName string
	Plate       string
	Status      VisitorStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Document returns the populated document, tagged with its origin.
func (v *Visitor) Document() id.Document {
	if v.IsForeign {
		return id.Document{Value: v.ForeignID, Foreign: true}
	}
	return id.Document{Value: v.NationalID, Foreign: false}
}

// Backfill fills empty fields from the supplied values and reports whether
// anything changed. First write wins: populated fields are never overwritten.
func (v *Visitor) Backfill(name, surname, companyName, plate string) bool {
	changed := false
	if name != "" && (v.Name == "" || v.Name == PlaceholderName) {
		v.Name = name
		changed = true
	}
	if surname != "" && v.Surname == "" {
		v.Surname = surname
		changed = true
	}
	if companyName != "" && v.CompanyName == "" {
		v.CompanyName = companyName
		changed = true
	}
	if plate != "" && v.Plate == "" {
		v.Plate = plate
		changed = true
	}
	return changed
}
