package workflow

import (
	"errors"
	"testing"

	"transferhub/internal/model"
	"transferhub/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateApproval(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		approved  int
		wantField string
	}{
		{"full approval", 10, 10, ""},
		{"partial approval", 10, 8, ""},
		{"single unit", 10, 1, ""},
		{"zero approved", 10, 0, "approved_quantity"},
		{"negative approved", 10, -2, "approved_quantity"},
		{"over-approval", 10, 12, "approved_quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateApproval(tt.requested, tt.approved)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var qtyErr *apperr.QuantityExceededError
			require.True(t, errors.As(err, &qtyErr))
			assert.Equal(t, tt.wantField, qtyErr.Field)
		})
	}
}

func approvedTransfer(approved int) model.TransferRequest {
	transfer := testTransfer()
	transfer.Status = model.TransferDelivered
	transfer.RequestedQuantity = 10
	transfer.ApprovedQuantity = &approved
	return transfer
}

func TestReconcileReceipt(t *testing.T) {
	tests := []struct {
		name       string
		approved   int
		received   int
		damaged    int
		wantStatus model.TransferStatus
		wantField  string
	}{
		{"full intact receipt", 8, 8, 0, model.TransferReceived, ""},
		{"short receipt", 8, 6, 0, model.TransferPartiallyReceived, ""},
		{"full receipt with damage", 8, 8, 1, model.TransferPartiallyReceived, ""},
		{"short receipt with damage", 8, 6, 1, model.TransferPartiallyReceived, ""},
		{"everything damaged", 8, 8, 8, model.TransferPartiallyReceived, ""},
		{"zero received", 8, 0, 0, "", "received_quantity"},
		{"negative received", 8, -1, 0, "", "received_quantity"},
		{"over-receipt", 8, 9, 0, "", "received_quantity"},
		{"negative damaged", 8, 8, -1, "", "damaged_quantity"},
		{"damaged exceeds received", 8, 6, 7, "", "damaged_quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, delta, err := ReconcileReceipt(approvedTransfer(tt.approved), tt.received, tt.damaged)

			if tt.wantField != "" {
				var qtyErr *apperr.QuantityExceededError
				require.True(t, errors.As(err, &qtyErr))
				assert.Equal(t, tt.wantField, qtyErr.Field)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.approved, delta.ReleaseReservedAtSource)
			assert.Equal(t, tt.received-tt.damaged, delta.CreditStockAtDestination)
		})
	}
}

func TestReconcileReceiptWithoutApproval(t *testing.T) {
	transfer := testTransfer()
	transfer.ApprovedQuantity = nil

	_, _, err := ReconcileReceipt(transfer, 5, 0)
	var qtyErr *apperr.QuantityExceededError
	require.True(t, errors.As(err, &qtyErr))
	assert.Equal(t, "approved_quantity", qtyErr.Field)
}
