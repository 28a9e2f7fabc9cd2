package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferStatus is the lifecycle state of a transfer request.
type TransferStatus string

const (
	TransferPending           TransferStatus = "PENDING"
	TransferApproved          TransferStatus = "APPROVED"
	TransferReady             TransferStatus = "READY"
	TransferInTransit         TransferStatus = "IN_TRANSIT"
	TransferDelivered         TransferStatus = "DELIVERED"
	TransferReceived          TransferStatus = "RECEIVED"
	TransferPartiallyReceived TransferStatus = "PARTIALLY_RECEIVED"
	TransferCompleted         TransferStatus = "COMPLETED"
	TransferRejected          TransferStatus = "REJECTED"
	TransferCancelled         TransferStatus = "CANCELLED"

	// TransferUnknown marks a status string this build does not recognize.
	// Unknown is surfaced to callers instead of being swallowed, so schema
	// drift between backend versions is detectable.
	TransferUnknown TransferStatus = "UNKNOWN"
)

var knownStatuses = map[TransferStatus]bool{
	TransferPending:           true,
	TransferApproved:          true,
	TransferReady:             true,
	TransferInTransit:         true,
	TransferDelivered:         true,
	TransferReceived:          true,
	TransferPartiallyReceived: true,
	TransferCompleted:         true,
	TransferRejected:          true,
	TransferCancelled:         true,
}

// ParseTransferStatus normalizes a raw status string from storage or the wire.
// Unrecognized values decode to TransferUnknown rather than failing.
func ParseTransferStatus(raw string) TransferStatus {
	s := TransferStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if knownStatuses[s] {
		return s
	}
	return TransferUnknown
}

// IsTerminal reports whether the status admits no further transitions.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferCompleted || s == TransferRejected || s == TransferCancelled
}

// TransferPriority constants — informational only, never gates a transition.
type TransferPriority string

const (
	PriorityHigh   TransferPriority = "HIGH"
	PriorityMedium TransferPriority = "MEDIUM"
	PriorityLow    TransferPriority = "LOW"
)

// ParseTransferPriority normalizes a raw priority; unrecognized values fall
// back to MEDIUM.
func ParseTransferPriority(raw string) TransferPriority {
	switch TransferPriority(strings.ToUpper(strings.TrimSpace(raw))) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// KnownTransferPriority reports whether raw names one of the three priorities,
// for callers that must reject unrecognized input instead of defaulting.
func KnownTransferPriority(raw string) bool {
	switch TransferPriority(strings.ToUpper(strings.TrimSpace(raw))) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// LocationType distinguishes the two kinds of transfer endpoints.
type LocationType string

const (
	LocationStore     LocationType = "STORE"
	LocationWarehouse LocationType = "WAREHOUSE"
)

// TransferEvent names a lifecycle transition. Each event appears at most once
// in a transfer's timeline.
type TransferEvent string

const (
	EventCreated       TransferEvent = "CREATED"
	EventApproved      TransferEvent = "APPROVED"
	EventRejected      TransferEvent = "REJECTED"
	EventCancelled     TransferEvent = "CANCELLED"
	EventMarkedReady   TransferEvent = "MARKED_READY"
	EventDeliveryStart TransferEvent = "DELIVERY_STARTED"
	EventDelivered     TransferEvent = "DELIVERED"
	EventReceived      TransferEvent = "RECEIPT_CONFIRMED"
	EventCompleted     TransferEvent = "COMPLETED"
)

// TransferLocation is the canonical endpoint shape. Legacy payloads spell the
// name field three different ways; reconciliation happens once at the DTO
// boundary, never here.
type TransferLocation struct {
	Type    LocationType `gorm:"type:varchar(20);not null" json:"type"`
	ID      uuid.UUID    `gorm:"type:uuid;not null" json:"id"`
	Name    string       `gorm:"type:varchar(255);not null" json:"name"`
	Address string       `gorm:"type:varchar(255)" json:"address,omitempty"`
}

// Equal compares endpoints by type and id.
func (l TransferLocation) Equal(other TransferLocation) bool {
	return l.Type == other.Type && l.ID == other.ID
}

// Carrier is the party transporting goods during IN_TRANSIT. Set by the
// approve transition; Name must be present before delivery starts.
type Carrier struct {
	Name    string `gorm:"type:varchar(255)" json:"name"`
	Phone   string `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Vehicle string `gorm:"type:varchar(100)" json:"vehicle,omitempty"`
}

// TransferRequest is the aggregate root of the inter-location transfer
// workflow. Mutated exclusively through the service; every transition bumps
// Version so concurrent writers lose deterministically.
type TransferRequest struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	FromLocation TransferLocation `gorm:"embedded;embeddedPrefix:from_" json:"from_location"`
	ToLocation   TransferLocation `gorm:"embedded;embeddedPrefix:to_" json:"to_location"`

	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	SKU         string          `gorm:"type:varchar(100);not null" json:"sku"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`

	RequestedQuantity int  `gorm:"type:int;not null" json:"requested_quantity"`
	ApprovedQuantity  *int `gorm:"type:int" json:"approved_quantity"`
	ReceivedQuantity  *int `gorm:"type:int" json:"received_quantity"`
	DamagedQuantity   *int `gorm:"type:int" json:"damaged_quantity"`

	Status   TransferStatus   `gorm:"type:varchar(30);not null;default:'PENDING';index" json:"status"`
	Priority TransferPriority `gorm:"type:varchar(10);not null;default:'MEDIUM'" json:"priority"`
	Reason   string           `gorm:"type:text;not null" json:"reason"`

	RequestedBy     uuid.UUID `gorm:"type:uuid;not null;index" json:"requested_by"`
	RequestedByName string    `gorm:"type:varchar(255)" json:"requested_by_name"`

	Carrier             Carrier    `gorm:"embedded;embeddedPrefix:carrier_" json:"carrier"`
	PackedBy            string     `gorm:"type:varchar(255)" json:"packed_by,omitempty"`
	ReceiverName        string     `gorm:"type:varchar(255)" json:"receiver_name,omitempty"`
	EstimatedDeliveryAt *time.Time `json:"estimated_delivery_at,omitempty"`

	RejectionReason    string `gorm:"type:text" json:"rejection_reason,omitempty"`
	CancellationReason string `gorm:"type:text" json:"cancellation_reason,omitempty"`
	ApprovalNotes      string `gorm:"type:text" json:"approval_notes,omitempty"`
	ReceiptNotes       string `gorm:"type:text" json:"receipt_notes,omitempty"`

	Version int `gorm:"type:int;not null;default:1" json:"version"`

	Timeline []TimelineEntry `gorm:"foreignKey:TransferID" json:"timeline,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TimelineEntry is one append-only audit record of a lifecycle event. The
// unique index on (transfer_id, event) backs the at-most-once invariant.
type TimelineEntry struct {
	ID         uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TransferID uuid.UUID     `gorm:"type:uuid;not null;index;uniqueIndex:idx_timeline_transfer_event" json:"transfer_id"`
	Event      TransferEvent `gorm:"type:varchar(30);not null;uniqueIndex:idx_timeline_transfer_event" json:"event"`
	ActorID    uuid.UUID     `gorm:"type:uuid;not null" json:"actor_id"`
	ActorName  string        `gorm:"type:varchar(255)" json:"actor_name"`
	Note       string        `gorm:"type:text" json:"note,omitempty"`
	CreatedAt  time.Time     `gorm:"index" json:"created_at"`
}
