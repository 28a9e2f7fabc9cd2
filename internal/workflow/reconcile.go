package workflow

import (
	"fmt"

	"transferhub/internal/model"
	"transferhub/pkg/apperr"
)

// StockDelta describes the inventory effect of a reconciled receipt. The
// workflow never touches stock itself; the delta is handed to the ledger
// collaborator after the transition commits.
type StockDelta struct {
	ReleaseReservedAtSource  int // approved units to unreserve at the source
	CreditStockAtDestination int // intact units to credit at the destination
}

// ValidateApproval checks the approved quantity against the requested one.
func ValidateApproval(requested, approved int) error {
	if approved <= 0 {
		return &apperr.QuantityExceededError{
			Field:   "approved_quantity",
			Message: "must be a positive integer",
		}
	}
	if approved > requested {
		return &apperr.QuantityExceededError{
			Field:   "approved_quantity",
			Message: fmt.Sprintf("%d exceeds requested quantity %d", approved, requested),
		}
	}
	return nil
}

// ReconcileReceipt validates the received/damaged pair against the approved
// quantity and derives the destination status plus the stock delta to apply
// externally. RECEIVED only when every approved unit arrived intact.
func ReconcileReceipt(t model.TransferRequest, received, damaged int) (model.TransferStatus, StockDelta, error) {
	if t.ApprovedQuantity == nil {
		return "", StockDelta{}, &apperr.QuantityExceededError{
			Field:   "approved_quantity",
			Message: "transfer has no approved quantity to reconcile against",
		}
	}
	approved := *t.ApprovedQuantity

	if received <= 0 {
		return "", StockDelta{}, &apperr.QuantityExceededError{
			Field:   "received_quantity",
			Message: "must be a positive integer",
		}
	}
	if received > approved {
		return "", StockDelta{}, &apperr.QuantityExceededError{
			Field:   "received_quantity",
			Message: fmt.Sprintf("%d exceeds approved quantity %d", received, approved),
		}
	}
	if damaged < 0 {
		return "", StockDelta{}, &apperr.QuantityExceededError{
			Field:   "damaged_quantity",
			Message: "must not be negative",
		}
	}
	if damaged > received {
		return "", StockDelta{}, &apperr.QuantityExceededError{
			Field:   "damaged_quantity",
			Message: fmt.Sprintf("%d exceeds received quantity %d", damaged, received),
		}
	}

	status := model.TransferPartiallyReceived
	if received == approved && damaged == 0 {
		status = model.TransferReceived
	}

	delta := StockDelta{
		ReleaseReservedAtSource:  approved,
		CreditStockAtDestination: received - damaged,
	}
	return status, delta, nil
}
