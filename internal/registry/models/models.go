// Package models holds the registry entities: companies, their facilities and
// the sectors inside each facility. The access core treats these as opaque
// references plus one policy flag on Sector.
package models

import (
	"time"

	id "garita/pkg/domain"
)

type Company struct {
	ID        id.CompanyID
	Name      string
	TaxID     string
	Email     string
	Phone     string
	CreatedAt time.Time
}

type Facility struct {
	ID        id.FacilityID
	CompanyID id.CompanyID
	Name      string
	Address   string
}

// Sector is a sub-area of a facility. RequiresEscortDocumentation forces a
// non-empty comment and at least one photo on every exit registered there.
type Sector struct {
	ID                          id.SectorID
	FacilityID                  id.FacilityID
	Name                        string
	RequiresEscortDocumentation bool
}
