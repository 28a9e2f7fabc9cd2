package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferSummary aggregates transfer counts and value totals for the
// summary endpoint.
type TransferSummary struct {
	TotalTransfers int64                      `json:"total_transfers"`
	OpenTransfers  int64                      `json:"open_transfers"` // not yet in a terminal state
	ByStatus       map[TransferStatus]int64   `json:"by_status"`
	ByPriority     map[TransferPriority]int64 `json:"by_priority"`
	RequestedValue decimal.Decimal            `json:"requested_value"`  // requested qty x unit price, open transfers
	InTransitValue decimal.Decimal            `json:"in_transit_value"` // approved qty x unit price, IN_TRANSIT/DELIVERED
	ReceivedValue  decimal.Decimal            `json:"received_value"`   // intact received qty x unit price
	DamagedValue   decimal.Decimal            `json:"damaged_value"`
	DamagedUnits   int64                      `json:"damaged_units"`
	TimeRangeStart time.Time                  `json:"time_range_start"`
	TimeRangeEnd   time.Time                  `json:"time_range_end"`
}
