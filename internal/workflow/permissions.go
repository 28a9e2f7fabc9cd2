package workflow

import (
	"strings"

	"transferhub/internal/model"
	"transferhub/pkg/apperr"
)

var gmPlusRoles = map[string]bool{
	model.RoleOwner:          true,
	model.RoleGeneralManager: true,
	model.RoleCEO:            true,
	model.RoleFounder:        true,
	model.RoleAdmin:          true,
}

// IsGMPlus is the single source of truth for the approval-capable role tier.
// Role names compare case-insensitively.
func IsGMPlus(role string) bool {
	return gmPlusRoles[strings.ToUpper(strings.TrimSpace(role))]
}

// isAssignedCarrier matches a carrier-role actor against the carrier assigned
// at approval time.
func isAssignedCarrier(actor model.Actor, t model.TransferRequest) bool {
	return strings.EqualFold(actor.Role, model.RoleCarrier) &&
		t.Carrier.Name != "" &&
		strings.EqualFold(actor.Name, t.Carrier.Name)
}

// actorMayPerform evaluates the actor-capability dimension of an event: who
// the actor is, not what state the transfer is in. State legality is the
// state machine's job; keeping the two apart is what gives the fixed error
// precedence (PermissionDenied before InvalidTransition).
func actorMayPerform(actor model.Actor, t model.TransferRequest, event model.TransferEvent) bool {
	switch event {
	case model.EventApproved, model.EventRejected:
		return IsGMPlus(actor.Role)
	case model.EventCancelled:
		return actor.ID == t.RequestedBy
	case model.EventMarkedReady, model.EventDeliveryStart:
		return actor.StaffAt(t.FromLocation)
	case model.EventDelivered:
		return actor.StaffAt(t.FromLocation) || isAssignedCarrier(actor, t)
	case model.EventReceived:
		return actor.StaffAt(t.ToLocation)
	case model.EventCompleted:
		// system-driven follow-up of a receipt the actor already performed
		return actor.StaffAt(t.ToLocation)
	}
	return false
}

// CheckPermission returns a PermissionDeniedError when the actor may not
// perform event on the transfer, regardless of its current status.
func CheckPermission(actor model.Actor, t model.TransferRequest, event model.TransferEvent) error {
	if !actorMayPerform(actor, t, event) {
		return &apperr.PermissionDeniedError{Action: string(event), Role: actor.Role}
	}
	return nil
}

// The Can predicates below combine actor capability with state legality.
// They exist for capability listings (e.g. which buttons a client shows),
// not for the service pipeline, which checks the two dimensions separately.

func CanApprove(actor model.Actor, t model.TransferRequest) bool {
	return IsGMPlus(actor.Role) && t.Status == model.TransferPending
}

func CanReject(actor model.Actor, t model.TransferRequest) bool {
	return IsGMPlus(actor.Role) && t.Status == model.TransferPending
}

func CanCancel(actor model.Actor, t model.TransferRequest) bool {
	return actor.ID == t.RequestedBy && t.Status == model.TransferPending
}

func CanMarkReady(actor model.Actor, t model.TransferRequest) bool {
	return actor.StaffAt(t.FromLocation) && t.Status == model.TransferApproved
}

func CanStartDelivery(actor model.Actor, t model.TransferRequest) bool {
	return actor.StaffAt(t.FromLocation) && t.Status == model.TransferReady
}

func CanMarkDelivered(actor model.Actor, t model.TransferRequest) bool {
	return (actor.StaffAt(t.FromLocation) || isAssignedCarrier(actor, t)) &&
		t.Status == model.TransferInTransit
}

func CanReceive(actor model.Actor, t model.TransferRequest) bool {
	return actor.StaffAt(t.ToLocation) && t.Status == model.TransferDelivered
}
