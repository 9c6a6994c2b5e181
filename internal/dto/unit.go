package dto

import (
	"time"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
)

// --- Organizational Unit DTOs ---

// CreateUnitRequest defines data for creating a new organizational unit.
type CreateUnitRequest struct {
	Name     string          `json:"name" binding:"required,notblank"`
	Type     domain.UnitType `json:"type" binding:"required,oneof=voivodeship county municipality institution"`
	ParentID *string         `json:"parentID"`
}

// UnitResponse defines data returned for a unit.
type UnitResponse struct {
	UnitID    string          `json:"unitID"`
	Name      string          `json:"name"`
	Type      domain.UnitType `json:"type"`
	ParentID  *string         `json:"parentID,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ToUnitResponse converts domain.OrganizationalUnit to DTO.
func ToUnitResponse(u *domain.OrganizationalUnit) UnitResponse {
	return UnitResponse{
		UnitID:    u.UnitID,
		Name:      u.Name,
		Type:      u.Type,
		ParentID:  u.ParentID,
		CreatedAt: u.CreatedAt,
	}
}

// ListUnitsResponse wraps a list of units.
type ListUnitsResponse struct {
	Units []UnitResponse `json:"units"`
}

// ToListUnitsResponse converts a slice of domain.OrganizationalUnit to DTO.
func ToListUnitsResponse(units []domain.OrganizationalUnit) ListUnitsResponse {
	list := make([]UnitResponse, len(units))
	for i := range units {
		list[i] = ToUnitResponse(&units[i])
	}
	return ListUnitsResponse{Units: list}
}
