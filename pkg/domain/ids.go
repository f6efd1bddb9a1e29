// Package domain holds the typed identifiers and small value types shared by
// every layer. Wrapping uuid.UUID per entity keeps ids from being swapped at
// call sites (a VisitorID can never be passed where a FacilityID is expected).
package domain

import "github.com/google/uuid"

type (
	VisitorID  uuid.UUID
	FacilityID uuid.UUID
	SectorID   uuid.UUID
	CompanyID  uuid.UUID
	GuardID    uuid.UUID
	EventID    uuid.UUID
	BanID      uuid.UUID
)

func NewVisitorID() VisitorID   { return VisitorID(uuid.New()) }
func NewFacilityID() FacilityID { return FacilityID(uuid.New()) }
func NewSectorID() SectorID     { return SectorID(uuid.New()) }
func NewCompanyID() CompanyID   { return CompanyID(uuid.New()) }
func NewGuardID() GuardID       { return GuardID(uuid.New()) }
func NewEventID() EventID       { return EventID(uuid.New()) }
func NewBanID() BanID           { return BanID(uuid.New()) }

func (id VisitorID) String() string  { return uuid.UUID(id).String() }
func (id FacilityID) String() string { return uuid.UUID(id).String() }
func (id SectorID) String() string   { return uuid.UUID(id).String() }
func (id CompanyID) String() string  { return uuid.UUID(id).String() }
func (id GuardID) String() string    { return uuid.UUID(id).String() }
func (id EventID) String() string    { return uuid.UUID(id).String() }
func (id BanID) String() string      { return uuid.UUID(id).String() }

func (id VisitorID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id FacilityID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SectorID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id CompanyID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id GuardID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id BanID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

// Parse helpers enforce UUID shape at trust boundaries; direct casting
// bypasses validation and belongs only in stores scanning trusted rows.

func ParseVisitorID(s string) (VisitorID, error) {
	u, err := uuid.Parse(s)
	return VisitorID(u), err
}

func ParseFacilityID(s string) (FacilityID, error) {
	u, err := uuid.Parse(s)
	return FacilityID(u), err
}

func ParseSectorID(s string) (SectorID, error) {
	u, err := uuid.Parse(s)
	return SectorID(u), err
}

func ParseCompanyID(s string) (CompanyID, error) {
	u, err := uuid.Parse(s)
	return CompanyID(u), err
}

func ParseGuardID(s string) (GuardID, error) {
	u, err := uuid.Parse(s)
	return GuardID(u), err
}

func ParseEventID(s string) (EventID, error) {
	u, err := uuid.Parse(s)
	return EventID(u), err
}
