package model

import (
	"time"

	"github.com/google/uuid"
)

// StockMovementType enum constants
const (
	MovementReleaseReserved = "RELEASE_RESERVED" // frees approved units reserved at the source
	MovementCredit          = "CREDIT"           // credits intact received units at the destination
)

// StockMovement is the ledger record written by the stock-ledger collaborator
// when a receipt is reconciled. The workflow core only computes the delta;
// applying it to actual product stock is the inventory system's concern.
type StockMovement struct {
	ID           uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TransferID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"transfer_id"`
	ProductID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id"`
	MovementType string       `gorm:"type:varchar(20);not null" json:"movement_type"` // RELEASE_RESERVED, CREDIT
	LocationType LocationType `gorm:"type:varchar(20);not null" json:"location_type"`
	LocationID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"location_id"`
	Quantity     int          `gorm:"type:int;not null" json:"quantity"`
	CreatedAt    time.Time    `json:"created_at"`
}
