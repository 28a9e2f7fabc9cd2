package workflow

import (
	"errors"
	"testing"

	"transferhub/internal/model"
	"transferhub/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	warehouseID = uuid.MustParse("0b4c71a3-5b7f-4a83-9c3a-1f2d6f0a9e01")
	storeID     = uuid.MustParse("3f9d2c48-8e1a-4f6b-b0d7-62c54d9a7e02")
)

func testTransfer() model.TransferRequest {
	return model.TransferRequest{
		ID: uuid.New(),
		FromLocation: model.TransferLocation{
			Type: model.LocationWarehouse,
			ID:   warehouseID,
			Name: "Central Warehouse",
		},
		ToLocation: model.TransferLocation{
			Type: model.LocationStore,
			ID:   storeID,
			Name: "Downtown Store",
		},
		Status:      model.TransferPending,
		RequestedBy: uuid.MustParse("7a1e9d55-40c2-4f28-9a61-9f8a3d2b6c03"),
		Carrier:     model.Carrier{Name: "Acme Logistics"},
	}
}

func gmActor() model.Actor {
	return model.Actor{ID: uuid.New(), Name: "Grace", Role: "General_Manager"}
}

func fromStaff() model.Actor {
	return model.Actor{
		ID: uuid.New(), Name: "Wally", Role: model.RoleLocationStaff,
		LocationType: model.LocationWarehouse, LocationID: warehouseID,
	}
}

func toStaff() model.Actor {
	return model.Actor{
		ID: uuid.New(), Name: "Sia", Role: model.RoleLocationStaff,
		LocationType: model.LocationStore, LocationID: storeID,
	}
}

func TestIsGMPlus(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"OWNER", true},
		{"owner", true},
		{"GENERAL_MANAGER", true},
		{"General_Manager", true},
		{"general_manager", true},
		{" ceo ", true},
		{"FOUNDER", true},
		{"Admin", true},
		{"LOCATION_STAFF", false},
		{"CARRIER", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGMPlus(tt.role))
		})
	}
}

func TestCheckPermissionMatrix(t *testing.T) {
	transfer := testTransfer()
	requester := model.Actor{ID: transfer.RequestedBy, Name: "Rita", Role: model.RoleLocationStaff}
	carrier := model.Actor{ID: uuid.New(), Name: "acme logistics", Role: model.RoleCarrier}
	stranger := model.Actor{ID: uuid.New(), Name: "Sam", Role: model.RoleLocationStaff}

	tests := []struct {
		name    string
		actor   model.Actor
		event   model.TransferEvent
		allowed bool
	}{
		{"gm approves", gmActor(), model.EventApproved, true},
		{"staff may not approve", fromStaff(), model.EventApproved, false},
		{"gm rejects", gmActor(), model.EventRejected, true},
		{"requester cancels", requester, model.EventCancelled, true},
		{"non-requester may not cancel", gmActor(), model.EventCancelled, false},
		{"source staff marks ready", fromStaff(), model.EventMarkedReady, true},
		{"destination staff may not mark ready", toStaff(), model.EventMarkedReady, false},
		{"source staff starts delivery", fromStaff(), model.EventDeliveryStart, true},
		{"source staff marks delivered", fromStaff(), model.EventDelivered, true},
		{"assigned carrier marks delivered", carrier, model.EventDelivered, true},
		{"stranger may not mark delivered", stranger, model.EventDelivered, false},
		{"destination staff receives", toStaff(), model.EventReceived, true},
		{"source staff may not receive", fromStaff(), model.EventReceived, false},
		{"destination staff completes", toStaff(), model.EventCompleted, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPermission(tt.actor, transfer, tt.event)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				var permErr *apperr.PermissionDeniedError
				require.True(t, errors.As(err, &permErr))
				assert.Equal(t, string(tt.event), permErr.Action)
			}
		})
	}
}

func TestUnassignedCarrierMayNotDeliver(t *testing.T) {
	transfer := testTransfer()
	other := model.Actor{ID: uuid.New(), Name: "Speedy Trans", Role: model.RoleCarrier}
	assert.Error(t, CheckPermission(other, transfer, model.EventDelivered))
}

func TestCanPredicatesIncludeState(t *testing.T) {
	transfer := testTransfer()
	gm := gmActor()
	requester := model.Actor{ID: transfer.RequestedBy, Role: model.RoleLocationStaff}

	assert.True(t, CanApprove(gm, transfer))
	assert.True(t, CanReject(gm, transfer))
	assert.True(t, CanCancel(requester, transfer))
	assert.False(t, CanMarkReady(fromStaff(), transfer), "transfer still pending")

	transfer.Status = model.TransferApproved
	assert.False(t, CanApprove(gm, transfer))
	assert.False(t, CanCancel(requester, transfer))
	assert.True(t, CanMarkReady(fromStaff(), transfer))

	transfer.Status = model.TransferReady
	assert.True(t, CanStartDelivery(fromStaff(), transfer))

	transfer.Status = model.TransferInTransit
	assert.True(t, CanMarkDelivered(fromStaff(), transfer))

	transfer.Status = model.TransferDelivered
	assert.True(t, CanReceive(toStaff(), transfer))
	assert.False(t, CanReceive(fromStaff(), transfer))
}
