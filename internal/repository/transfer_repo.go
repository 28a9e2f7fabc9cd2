package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"transferhub/internal/model"
	"transferhub/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransferFilter narrows list queries. LocationID matches either endpoint.
type TransferFilter struct {
	Status     model.TransferStatus
	Priority   model.TransferPriority
	LocationID uuid.UUID
	Page       int
	Limit      int
}

// SummaryFilter bounds the summary aggregation.
type SummaryFilter struct {
	Start      time.Time
	End        time.Time
	LocationID uuid.UUID
}

type TransferRepository interface {
	Create(ctx context.Context, t *model.TransferRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TransferRequest, error)
	List(ctx context.Context, filter TransferFilter) ([]model.TransferRequest, int64, error)
	// UpdateVersioned persists t conditioned on the row still carrying
	// fromVersion; a stale write returns apperr.ErrConflictVersion.
	UpdateVersioned(ctx context.Context, t *model.TransferRequest, fromVersion int) error
	AppendTimeline(ctx context.Context, entry *model.TimelineEntry) error
	Summarize(ctx context.Context, filter SummaryFilter) (model.TransferSummary, error)
}

type transferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) TransferRepository {
	return &transferRepository{db: db}
}

func (r *transferRepository) Create(ctx context.Context, t *model.TransferRequest) error {
	return GetDB(ctx, r.db).Create(t).Error
}

func (r *transferRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TransferRequest, error) {
	var t model.TransferRequest
	err := GetDB(ctx, r.db).
		Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&t, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load transfer request: %w", err)
	}
	return &t, nil
}

func (r *transferRepository) List(ctx context.Context, filter TransferFilter) ([]model.TransferRequest, int64, error) {
	db := GetDB(ctx, r.db)

	base := db.Model(&model.TransferRequest{})
	base = applyTransferFilter(base, filter)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transfer requests: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	var transfers []model.TransferRequest
	fetch := applyTransferFilter(db.Model(&model.TransferRequest{}), filter)
	if err := fetch.
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&transfers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transfer requests: %w", err)
	}

	return transfers, total, nil
}

func applyTransferFilter(q *gorm.DB, filter TransferFilter) *gorm.DB {
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.LocationID != uuid.Nil {
		q = q.Where("from_id = ? OR to_id = ?", filter.LocationID, filter.LocationID)
	}
	return q
}

func (r *transferRepository) UpdateVersioned(ctx context.Context, t *model.TransferRequest, fromVersion int) error {
	res := GetDB(ctx, r.db).
		Model(&model.TransferRequest{}).
		Where("id = ? AND version = ?", t.ID, fromVersion).
		Select("*").
		Omit("id", "created_at", "Timeline").
		Updates(t)
	if res.Error != nil {
		return fmt.Errorf("failed to update transfer request: %w", res.Error)
	}
	// The caller loaded this row moments ago, so zero rows means the version
	// moved underneath us, not a missing record.
	if res.RowsAffected == 0 {
		return apperr.ErrConflictVersion
	}
	return nil
}

func (r *transferRepository) AppendTimeline(ctx context.Context, entry *model.TimelineEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *transferRepository) Summarize(ctx context.Context, filter SummaryFilter) (model.TransferSummary, error) {
	db := GetDB(ctx, r.db)
	summary := model.TransferSummary{
		ByStatus:       make(map[model.TransferStatus]int64),
		ByPriority:     make(map[model.TransferPriority]int64),
		TimeRangeStart: filter.Start,
		TimeRangeEnd:   filter.End,
	}

	scoped := func() *gorm.DB {
		q := db.Model(&model.TransferRequest{}).
			Where("created_at >= ? AND created_at <= ?", filter.Start, filter.End)
		if filter.LocationID != uuid.Nil {
			q = q.Where("from_id = ? OR to_id = ?", filter.LocationID, filter.LocationID)
		}
		return q
	}

	var statusRows []struct {
		Status model.TransferStatus
		Count  int64
	}
	if err := scoped().Select("status, count(*) as count").Group("status").Scan(&statusRows).Error; err != nil {
		return summary, fmt.Errorf("failed to aggregate by status: %w", err)
	}
	for _, row := range statusRows {
		summary.ByStatus[row.Status] = row.Count
		summary.TotalTransfers += row.Count
		if !row.Status.IsTerminal() {
			summary.OpenTransfers += row.Count
		}
	}

	var priorityRows []struct {
		Priority model.TransferPriority
		Count    int64
	}
	if err := scoped().Select("priority, count(*) as count").Group("priority").Scan(&priorityRows).Error; err != nil {
		return summary, fmt.Errorf("failed to aggregate by priority: %w", err)
	}
	for _, row := range priorityRows {
		summary.ByPriority[row.Priority] = row.Count
	}

	var values struct {
		RequestedValue decimal.NullDecimal
		InTransitValue decimal.NullDecimal
		ReceivedValue  decimal.NullDecimal
		DamagedValue   decimal.NullDecimal
		DamagedUnits   int64
	}
	err := scoped().Select(`
		SUM(CASE WHEN status NOT IN ('COMPLETED','REJECTED','CANCELLED') THEN requested_quantity * unit_price ELSE 0 END) AS requested_value,
		SUM(CASE WHEN status IN ('IN_TRANSIT','DELIVERED') THEN approved_quantity * unit_price ELSE 0 END) AS in_transit_value,
		SUM(CASE WHEN received_quantity IS NOT NULL THEN (received_quantity - COALESCE(damaged_quantity, 0)) * unit_price ELSE 0 END) AS received_value,
		SUM(COALESCE(damaged_quantity, 0) * unit_price) AS damaged_value,
		COALESCE(SUM(COALESCE(damaged_quantity, 0)), 0) AS damaged_units`).
		Scan(&values).Error
	if err != nil {
		return summary, fmt.Errorf("failed to aggregate values: %w", err)
	}
	summary.RequestedValue = values.RequestedValue.Decimal
	summary.InTransitValue = values.InTransitValue.Decimal
	summary.ReceivedValue = values.ReceivedValue.Decimal
	summary.DamagedValue = values.DamagedValue.Decimal
	summary.DamagedUnits = values.DamagedUnits

	return summary, nil
}
