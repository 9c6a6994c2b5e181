package domain

import "time"

// UnitType is the administrative level of an organizational unit.
type UnitType string

const (
	UnitTypeVoivodeship  UnitType = "voivodeship"
	UnitTypeCounty       UnitType = "county"
	UnitTypeMunicipality UnitType = "municipality"
	UnitTypeInstitution  UnitType = "institution"
)

// Valid reports whether t is a known unit type.
func (t UnitType) Valid() bool {
	switch t {
	case UnitTypeVoivodeship, UnitTypeCounty, UnitTypeMunicipality, UnitTypeInstitution:
		return true
	}
	return false
}

// OrganizationalUnit is a node in the organizational hierarchy. Root units have no parent.
type OrganizationalUnit struct {
	UnitID    string    `json:"unitID" db:"unit_id"`
	Name      string    `json:"name" db:"name"`
	Type      UnitType  `json:"type" db:"unit_type"`
	ParentID  *string   `json:"parentID,omitempty" db:"parent_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// IsRoot reports whether the unit sits at the top of the hierarchy.
func (u OrganizationalUnit) IsRoot() bool {
	return u.ParentID == nil || *u.ParentID == ""
}
