package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateTransfer   = "CREATE_TRANSFER"
	ActionApproveTransfer  = "APPROVE_TRANSFER"
	ActionRejectTransfer   = "REJECT_TRANSFER"
	ActionCancelTransfer   = "CANCEL_TRANSFER"
	ActionMarkReady        = "MARK_READY"
	ActionStartDelivery    = "START_DELIVERY"
	ActionMarkDelivered    = "MARK_DELIVERED"
	ActionConfirmReceipt   = "CONFIRM_RECEIPT"
	ActionCompleteTransfer = "COMPLETE_TRANSFER"
)

// AuditLog tracks who did what, and when, for every committed transition
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"` // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
