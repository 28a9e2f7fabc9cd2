package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"transferhub/internal/model"
	"transferhub/internal/repository"
	"transferhub/internal/workflow"
	"transferhub/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

// LocationDTO accepts the inconsistent legacy spellings of an endpoint's
// display name. Reconciliation to the canonical TransferLocation happens
// here, once, and nowhere else.
type LocationDTO struct {
	Type          string `json:"type" binding:"required,oneof=STORE WAREHOUSE"`
	ID            string `json:"id" binding:"required"`
	Name          string `json:"name"`
	StoreName     string `json:"store_name"`
	WarehouseName string `json:"warehouse_name"`
	Address       string `json:"address"`
}

func (d LocationDTO) canonical() (model.TransferLocation, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return model.TransferLocation{}, &apperr.ValidationError{Field: "location.id", Message: "must be a valid uuid"}
	}
	name := d.Name
	if name == "" {
		name = d.WarehouseName
	}
	if name == "" {
		name = d.StoreName
	}
	if name == "" {
		return model.TransferLocation{}, &apperr.ValidationError{Field: "location.name", Message: "is required"}
	}
	return model.TransferLocation{
		Type:    model.LocationType(d.Type),
		ID:      id,
		Name:    name,
		Address: d.Address,
	}, nil
}

type CreateTransferDTO struct {
	FromLocation      LocationDTO `json:"from_location" binding:"required"`
	ToLocation        LocationDTO `json:"to_location" binding:"required"`
	ProductID         string      `json:"product_id" binding:"required"`
	SKU               string      `json:"sku" binding:"required"`
	ProductName       string      `json:"product_name" binding:"required"`
	UnitPrice         string      `json:"unit_price"`
	RequestedQuantity int         `json:"requested_quantity"`
	Priority          string      `json:"priority"`
	Reason            string      `json:"reason"`
}

type CarrierDTO struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Vehicle string `json:"vehicle"`
}

type ApproveTransferDTO struct {
	ApprovedQuantity int        `json:"approved_quantity"`
	Carrier          CarrierDTO `json:"carrier"`
	Notes            string     `json:"notes"`
}

type RejectTransferDTO struct {
	Reason string `json:"reason"`
}

type CancelTransferDTO struct {
	Reason string `json:"reason"`
}

type MarkReadyDTO struct {
	PackedBy string `json:"packed_by"`
}

type StartDeliveryDTO struct {
	EstimatedDeliveryAt *time.Time `json:"estimated_delivery_at"`
}

type ConfirmReceiptDTO struct {
	ReceivedQuantity int    `json:"received_quantity"`
	DamagedQuantity  int    `json:"damaged_quantity"`
	ReceiverName     string `json:"receiver_name"`
	Notes            string `json:"notes"`
}

// Notifier receives post-commit lifecycle notifications. Delivery is best
// effort and never blocks or fails a transition.
type Notifier interface {
	Publish(message []byte)
}

// --- Interface ---

type TransferService interface {
	Create(ctx context.Context, actor model.Actor, req CreateTransferDTO) (*model.TransferRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*model.TransferRequest, error)
	List(ctx context.Context, filter repository.TransferFilter) ([]model.TransferRequest, int64, error)
	Summary(ctx context.Context, filter repository.SummaryFilter) (model.TransferSummary, error)

	ApproveAndSend(ctx context.Context, actor model.Actor, id uuid.UUID, req ApproveTransferDTO) (*model.TransferRequest, error)
	Reject(ctx context.Context, actor model.Actor, id uuid.UUID, req RejectTransferDTO) (*model.TransferRequest, error)
	Cancel(ctx context.Context, actor model.Actor, id uuid.UUID, req CancelTransferDTO) (*model.TransferRequest, error)
	MarkReady(ctx context.Context, actor model.Actor, id uuid.UUID, req MarkReadyDTO) (*model.TransferRequest, error)
	StartDelivery(ctx context.Context, actor model.Actor, id uuid.UUID, req StartDeliveryDTO) (*model.TransferRequest, error)
	MarkDelivered(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransferRequest, error)
	ConfirmReceipt(ctx context.Context, actor model.Actor, id uuid.UUID, req ConfirmReceiptDTO) (*model.TransferRequest, error)
	Complete(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransferRequest, error)
}

type transferService struct {
	transfers repository.TransferRepository
	movements repository.StockMovementRepository
	audits    repository.AuditRepository
	txManager repository.TransactionManager
	notifier  Notifier
	now       func() time.Time
}

func NewTransferService(
	transfers repository.TransferRepository,
	movements repository.StockMovementRepository,
	audits repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) TransferService {
	return &transferService{
		transfers: transfers,
		movements: movements,
		audits:    audits,
		txManager: txManager,
		notifier:  notifier,
		now:       time.Now,
	}
}

// --- Implementation ---

func (s *transferService) Create(ctx context.Context, actor model.Actor, req CreateTransferDTO) (*model.TransferRequest, error) {
	from, err := req.FromLocation.canonical()
	if err != nil {
		return nil, err
	}
	to, err := req.ToLocation.canonical()
	if err != nil {
		return nil, err
	}
	if from.Equal(to) {
		return nil, &apperr.ValidationError{Field: "to_location", Message: "must differ from from_location"}
	}
	if req.RequestedQuantity <= 0 {
		return nil, &apperr.ValidationError{Field: "requested_quantity", Message: "must be a positive integer"}
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, &apperr.ValidationError{Field: "reason", Message: "is required"}
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, &apperr.ValidationError{Field: "product_id", Message: "must be a valid uuid"}
	}
	unitPrice := decimal.Zero
	if req.UnitPrice != "" {
		unitPrice, err = decimal.NewFromString(req.UnitPrice)
		if err != nil || unitPrice.IsNegative() {
			return nil, &apperr.ValidationError{Field: "unit_price", Message: "must be a non-negative decimal"}
		}
	}

	transfer := &model.TransferRequest{
		FromLocation:      from,
		ToLocation:        to,
		ProductID:         productID,
		SKU:               req.SKU,
		ProductName:       req.ProductName,
		UnitPrice:         unitPrice,
		RequestedQuantity: req.RequestedQuantity,
		Status:            model.TransferPending,
		Priority:          model.ParseTransferPriority(req.Priority),
		Reason:            req.Reason,
		RequestedBy:       actor.ID,
		RequestedByName:   actor.Name,
		Version:           1,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.transfers.Create(txCtx, transfer); createErr != nil {
			return createErr
		}
		if tlErr := s.appendTimeline(txCtx, transfer.ID, model.EventCreated, actor, req.Reason); tlErr != nil {
			return tlErr
		}
		return s.audit(txCtx, actor, model.ActionCreateTransfer, transfer, map[string]interface{}{
			"sku":                req.SKU,
			"requested_quantity": req.RequestedQuantity,
			"from":               from.Name,
			"to":                 to.Name,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notify(model.EventCreated, transfer, actor)
	return transfer, nil
}

func (s *transferService) Get(ctx context.Context, id uuid.UUID) (*model.TransferRequest, error) {
	return s.transfers.FindByID(ctx, id)
}

func (s *transferService) List(ctx context.Context, filter repository.TransferFilter) ([]model.TransferRequest, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.transfers.List(ctx, filter)
}

func (s *transferService) Summary(ctx context.Context, filter repository.SummaryFilter) (model.TransferSummary, error) {
	if filter.End.IsZero() {
		filter.End = s.now()
	}
	if filter.Start.IsZero() {
		filter.Start = filter.End.AddDate(0, -1, 0)
	}
	return s.transfers.Summarize(ctx, filter)
}

func (s *transferService) ApproveAndSend(ctx context.Context, actor model.Actor, id uuid.UUID, req ApproveTransferDTO) (*model.TransferRequest, error) {
	return s.transition(ctx, actor, id, model.EventApproved, model.ActionApproveTransfer, req.Notes,
		func(t *model.TransferRequest) error {
			if err := workflow.ValidateApproval(t.RequestedQuantity, req.ApprovedQuantity); err != nil {
				return err
			}
			if strings.TrimSpace(req.Carrier.Name) == "" {
				return &apperr.ValidationError{Field: "carrier.name", Message: "is required"}
			}
			approved := req.ApprovedQuantity
			t.ApprovedQuantity = &approved
			t.Carrier = model.Carrier{
				Name:    req.Carrier.Name,
				Phone:   req.Carrier.Phone,
				Vehicle: req.Carrier.Vehicle,
			}
			t.ApprovalNotes = req.Notes
			return nil
		})
}

func (s *transferService) Reject(ctx context.Context, actor model.Actor, id uuid.UUID, req RejectTransferDTO) (*model.TransferRequest, error) {
	return s.transition(ctx, actor, id, model.EventRejected, model.ActionRejectTransfer, req.Reason,
		func(t *model.TransferRequest) error {
			if len(strings.TrimSpace(req.Reason)) < 10 {
				return &apperr.ValidationError{Field: "reason", Message: "must be at least 10 characters"}
			}
			t.RejectionReason = req.Reason
			return nil
		})
}

func (s *transferService) Cancel(ctx context.Context, actor model.Actor, id uuid.UUID, req CancelTransferDTO) (*model.TransferRequest, error) {
	return s.transition(ctx, actor, id, model.EventCancelled, model.ActionCancelTransfer, req.Reason,
		func(t *model.TransferRequest) error {
			if strings.TrimSpace(req.Reason) == "" {
				return &apperr.ValidationError{Field: "reason", Message: "is required"}
			}
			t.CancellationReason = req.Reason
			return nil
		})
}

func (s *transferService) MarkReady(ctx context.Context, actor model.Actor, id uuid.UUID, req MarkReadyDTO) (*model.TransferRequest, error) {
	return s.transition(ctx, actor, id, model.EventMarkedReady, model.ActionMarkReady, "",
		func(t *model.TransferRequest) error {
			if strings.TrimSpace(req.PackedBy) == "" {
				return &apperr.ValidationError{Field: "packed_by", Message: "is required"}
			}
			t.PackedBy = req.PackedBy
			return nil
		})
}

func (s *transferService) StartDelivery(ctx context.Context, actor model.Actor, id uuid.UUID, req StartDeliveryDTO) (*model.TransferRequest, error) {
	return s.transition(ctx, actor, id, model.EventDeliveryStart, model.ActionStartDelivery, "",
		func(t *model.TransferRequest) error {
			if t.Carrier.Name == "" {
				return &apperr.ValidationError{Field: "carrier.name", Message: "must be assigned before delivery starts"}
			}
			t.EstimatedDeliveryAt = req.EstimatedDeliveryAt
			return nil
		})
}

func (s *transferService) MarkDelivered(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransferRequest, error) {
	return s.transition(ctx, actor, id, model.EventDelivered, model.ActionMarkDelivered, "",
		func(t *model.TransferRequest) error { return nil })
}

func (s *transferService) ConfirmReceipt(ctx context.Context, actor model.Actor, id uuid.UUID, req ConfirmReceiptDTO) (*model.TransferRequest, error) {
	var delta workflow.StockDelta
	received, err := s.transition(ctx, actor, id, model.EventReceived, model.ActionConfirmReceipt, req.Notes,
		func(t *model.TransferRequest) error {
			if strings.TrimSpace(req.ReceiverName) == "" {
				return &apperr.ValidationError{Field: "receiver_name", Message: "is required"}
			}
			status, d, reconcileErr := workflow.ReconcileReceipt(*t, req.ReceivedQuantity, req.DamagedQuantity)
			if reconcileErr != nil {
				return reconcileErr
			}
			receivedQty := req.ReceivedQuantity
			damagedQty := req.DamagedQuantity
			t.ReceivedQuantity = &receivedQty
			t.DamagedQuantity = &damagedQty
			t.ReceiverName = req.ReceiverName
			t.ReceiptNotes = req.Notes
			t.Status = status
			delta = d
			return nil
		})
	if err != nil {
		return nil, err
	}

	// Post-commit collaborators: the stock ledger applies the delta, then the
	// system-driven COMPLETE fires. A failure here leaves the transfer in its
	// receipt state; the complete operation is retryable on its own.
	if ledgerErr := s.applyStockDelta(ctx, received, delta); ledgerErr != nil {
		log.Printf("stock ledger apply failed for transfer %s: %v", received.ID, ledgerErr)
		return received, nil
	}
	if _, completeErr := s.Complete(ctx, actor, received.ID); completeErr != nil {
		log.Printf("auto-complete failed for transfer %s: %v", received.ID, completeErr)
	}
	return received, nil
}

func (s *transferService) Complete(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.TransferRequest, error) {
	return s.transition(ctx, actor, id, model.EventCompleted, model.ActionCompleteTransfer, "",
		func(t *model.TransferRequest) error { return nil })
}

// transition runs the shared contract of every mutating operation: load,
// permission, structural legality, payload checks via mutate, then the
// version-guarded write with its timeline entry and audit row, all in one
// transaction. Error precedence is fixed by the call order.
func (s *transferService) transition(
	ctx context.Context,
	actor model.Actor,
	id uuid.UUID,
	event model.TransferEvent,
	action string,
	note string,
	mutate func(t *model.TransferRequest) error,
) (*model.TransferRequest, error) {
	var updated *model.TransferRequest

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		t, err := s.transfers.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := workflow.CheckPermission(actor, *t, event); err != nil {
			return err
		}
		if err := workflow.CheckTransition(t.Status, event); err != nil {
			return err
		}
		if err := mutate(t); err != nil {
			return err
		}

		if target, fixed := workflow.Target(event); fixed {
			t.Status = target
		}

		fromVersion := t.Version
		t.Version = fromVersion + 1
		t.UpdatedAt = s.now()

		if err := s.transfers.UpdateVersioned(txCtx, t, fromVersion); err != nil {
			return err
		}
		if err := s.appendTimeline(txCtx, t.ID, event, actor, note); err != nil {
			return err
		}
		if err := s.audit(txCtx, actor, action, t, map[string]interface{}{
			"event":  string(event),
			"status": string(t.Status),
		}); err != nil {
			return err
		}

		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(event, updated, actor)
	return updated, nil
}

// --- Helpers ---

func (s *transferService) appendTimeline(ctx context.Context, transferID uuid.UUID, event model.TransferEvent, actor model.Actor, note string) error {
	return s.transfers.AppendTimeline(ctx, &model.TimelineEntry{
		TransferID: transferID,
		Event:      event,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Note:       note,
		CreatedAt:  s.now(),
	})
}

func (s *transferService) audit(ctx context.Context, actor model.Actor, action string, t *model.TransferRequest, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	actorID := actor.ID
	return s.audits.Log(ctx, &model.AuditLog{
		UserID:     &actorID,
		Action:     action,
		EntityID:   t.ID.String(),
		EntityName: t.SKU,
		Details:    string(payload),
	})
}

func (s *transferService) applyStockDelta(ctx context.Context, t *model.TransferRequest, delta workflow.StockDelta) error {
	release := &model.StockMovement{
		TransferID:   t.ID,
		ProductID:    t.ProductID,
		MovementType: model.MovementReleaseReserved,
		LocationType: t.FromLocation.Type,
		LocationID:   t.FromLocation.ID,
		Quantity:     delta.ReleaseReservedAtSource,
	}
	if err := s.movements.Create(ctx, release); err != nil {
		return err
	}
	credit := &model.StockMovement{
		TransferID:   t.ID,
		ProductID:    t.ProductID,
		MovementType: model.MovementCredit,
		LocationType: t.ToLocation.Type,
		LocationID:   t.ToLocation.ID,
		Quantity:     delta.CreditStockAtDestination,
	}
	return s.movements.Create(ctx, credit)
}

func (s *transferService) notify(event model.TransferEvent, t *model.TransferRequest, actor model.Actor) {
	if s.notifier == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"type":        "transfer_update",
		"event":       string(event),
		"transfer_id": t.ID.String(),
		"status":      string(t.Status),
		"actor":       actor.Name,
	})
	if err != nil {
		return
	}
	s.notifier.Publish(payload)
}
