package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role name constants. The GM+ tier (everything except LOCATION_STAFF) may
// approve and reject transfer requests; membership is decided by the
// workflow package's single predicate, never by ad-hoc string comparison.
const (
	RoleOwner          = "OWNER"
	RoleGeneralManager = "GENERAL_MANAGER"
	RoleCEO            = "CEO"
	RoleFounder        = "FOUNDER"
	RoleAdmin          = "ADMIN"
	RoleLocationStaff  = "LOCATION_STAFF"
	RoleCarrier        = "CARRIER"
)

// User represents an authenticated actor of the transfer workflow. Staff
// users are pinned to one location; GM+ users have no location assignment.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	DisplayName  string         `gorm:"type:varchar(255);not null" json:"display_name"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone        string         `gorm:"type:varchar(20)" json:"phone"`
	Role         string         `gorm:"type:varchar(50);not null" json:"role"`
	LocationType LocationType   `gorm:"type:varchar(20)" json:"location_type,omitempty"`
	LocationID   *uuid.UUID     `gorm:"type:uuid;index" json:"location_id,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Actor is the identity context of one service call, materialized from the
// verified token by the middleware and threaded explicitly into every
// operation. No component reads identity from ambient state.
type Actor struct {
	ID           uuid.UUID
	Name         string
	Role         string
	LocationType LocationType
	LocationID   uuid.UUID
}

// StaffAt reports whether the actor is location staff assigned to the given
// endpoint.
func (a Actor) StaffAt(loc TransferLocation) bool {
	return a.LocationID != uuid.Nil && a.LocationType == loc.Type && a.LocationID == loc.ID
}
