package workflow

import (
	"transferhub/internal/model"
	"transferhub/pkg/apperr"
)

// rule lists the statuses an event may fire from. COMPLETED, REJECTED and
// CANCELLED appear in no rule's from-set, which is what makes them terminal.
type rule struct {
	from map[model.TransferStatus]bool
}

var table = map[model.TransferEvent]rule{
	model.EventApproved:      {from: statuses(model.TransferPending)},
	model.EventRejected:      {from: statuses(model.TransferPending)},
	model.EventCancelled:     {from: statuses(model.TransferPending)},
	model.EventMarkedReady:   {from: statuses(model.TransferApproved)},
	model.EventDeliveryStart: {from: statuses(model.TransferReady)},
	model.EventDelivered:     {from: statuses(model.TransferInTransit)},
	model.EventReceived:      {from: statuses(model.TransferDelivered)},
	model.EventCompleted:     {from: statuses(model.TransferReceived, model.TransferPartiallyReceived)},
}

// destinations holds the fixed target status per event. EventReceived is
// absent: its destination (RECEIVED vs PARTIALLY_RECEIVED) is derived from
// the reconciled quantities, never supplied by the caller.
var destinations = map[model.TransferEvent]model.TransferStatus{
	model.EventApproved:      model.TransferApproved,
	model.EventRejected:      model.TransferRejected,
	model.EventCancelled:     model.TransferCancelled,
	model.EventMarkedReady:   model.TransferReady,
	model.EventDeliveryStart: model.TransferInTransit,
	model.EventDelivered:     model.TransferDelivered,
	model.EventCompleted:     model.TransferCompleted,
}

func statuses(ss ...model.TransferStatus) map[model.TransferStatus]bool {
	m := make(map[model.TransferStatus]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}

// CanTransition reports whether event may fire from status. Re-submitting an
// already-applied event fails here like any other illegal source status, so
// transitions are not idempotent by event type.
func CanTransition(status model.TransferStatus, event model.TransferEvent) bool {
	r, ok := table[event]
	return ok && r.from[status]
}

// CheckTransition returns an InvalidTransitionError when event is not legal
// from status.
func CheckTransition(status model.TransferStatus, event model.TransferEvent) error {
	if !CanTransition(status, event) {
		return &apperr.InvalidTransitionError{Event: string(event), Status: string(status)}
	}
	return nil
}

// Target returns the fixed destination status for event, or false for
// EventReceived whose destination is quantity-derived.
func Target(event model.TransferEvent) (model.TransferStatus, bool) {
	s, ok := destinations[event]
	return s, ok
}
