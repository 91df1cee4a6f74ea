package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

const uniqueViolation = "23505"

// ErrTimelineRewrite is returned when an update carries fewer events than are stored.
var ErrTimelineRewrite = errors.New("timeline events cannot be removed")

// Repository persists orders and their timeline in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// OrderRecord maps the order aggregate to the orders table.
type OrderRecord struct {
	ID              string          `gorm:"primaryKey;column:id;size:64"`
	OrderNumber     string          `gorm:"column:order_number;size:64;uniqueIndex:idx_orders_order_number"`
	CustomerID      string          `gorm:"column:customer_id;size:64;index:idx_orders_customer"`
	Status          string          `gorm:"column:status;type:varchar(32);index:idx_orders_status"`
	PaymentStatus   string          `gorm:"column:payment_status;type:varchar(32)"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2)"`
	Currency        string          `gorm:"column:currency;size:3"`
	DecisionRemarks string          `gorm:"column:decision_remarks"`
	DecidedByID     *string         `gorm:"column:decided_by_id;size:64"`
	DecidedByRole   *string         `gorm:"column:decided_by_role;size:16"`
	DecidedAt       *time.Time      `gorm:"column:decided_at"`
	Version         int64           `gorm:"column:version;not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;index;autoCreateTime:false"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (OrderRecord) TableName() string { return "orders" }

// TimelineEventRecord is one append-only timeline row. Seq is the event's position in the order's timeline.
type TimelineEventRecord struct {
	ID            int64     `gorm:"primaryKey;autoIncrement;column:id"`
	OrderID       string    `gorm:"column:order_id;size:64;uniqueIndex:idx_order_timeline_seq"`
	Seq           int       `gorm:"column:seq;uniqueIndex:idx_order_timeline_seq"`
	Status        string    `gorm:"column:status;type:varchar(32)"`
	Note          string    `gorm:"column:note"`
	Timestamp     time.Time `gorm:"column:occurred_at"`
	UpdatedByID   *string   `gorm:"column:updated_by_id;size:64"`
	UpdatedByRole *string   `gorm:"column:updated_by_role;size:16"`
}

func (TimelineEventRecord) TableName() string { return "order_timeline_events" }

// Create inserts the order and its opening events in one transaction.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(order)
	events := toEventRecords(order.ID, order.Timeline, 0)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return translateCreateError(err)
		}
		if len(events) == 0 {
			return nil
		}
		return tx.Create(&events).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, order.ID)
}

// GetByID fetches an order with its full timeline.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record OrderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	timelines, err := r.loadTimelines(ctx, []string{record.ID})
	if err != nil {
		return nil, err
	}
	return record.toDomain(timelines[record.ID]), nil
}

// List returns matching orders, newest first.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&OrderRecord{})
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		query = query.Where("status = ANY(?)", pq.Array(statuses))
	}
	var records []OrderRecord
	if err := query.Order("created_at DESC").Order("order_number DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(records))
	for i := range records {
		ids = append(ids, records[i].ID)
	}
	timelines, err := r.loadTimelines(ctx, ids)
	if err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain(timelines[records[i].ID]))
	}
	return orders, nil
}

// Update writes the order only if the row still holds the expected status and version,
// then appends the timeline events the row does not have yet.
func (r *Repository) Update(ctx context.Context, order *domain.Order, expected ports.Precondition) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&OrderRecord{}).
			Where("id = ? AND status = ? AND version = ?", order.ID, string(expected.Status), expected.Version).
			Updates(map[string]any{
				"status":           record.Status,
				"payment_status":   record.PaymentStatus,
				"decision_remarks": record.DecisionRemarks,
				"decided_by_id":    record.DecidedByID,
				"decided_by_role":  record.DecidedByRole,
				"decided_at":       record.DecidedAt,
				"version":          record.Version,
				"updated_at":       record.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			var count int64
			if err := tx.Model(&OrderRecord{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ports.ErrNotFound
			}
			return ports.ErrConflict
		}
		var stored int64
		if err := tx.Model(&TimelineEventRecord{}).Where("order_id = ?", order.ID).Count(&stored).Error; err != nil {
			return err
		}
		if int(stored) > len(order.Timeline) {
			return ErrTimelineRewrite
		}
		events := toEventRecords(order.ID, order.Timeline[stored:], int(stored))
		if len(events) == 0 {
			return nil
		}
		return tx.Create(&events).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, order.ID)
}

func (r *Repository) loadTimelines(ctx context.Context, orderIDs []string) (map[string][]TimelineEventRecord, error) {
	timelines := make(map[string][]TimelineEventRecord, len(orderIDs))
	if len(orderIDs) == 0 {
		return timelines, nil
	}
	var events []TimelineEventRecord
	if err := r.db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Order("order_id").Order("seq").
		Find(&events).Error; err != nil {
		return nil, err
	}
	for _, event := range events {
		timelines[event.OrderID] = append(timelines[event.OrderID], event)
	}
	return timelines, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func translateCreateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "order_number") {
			return ports.ErrDuplicateOrderNumber
		}
		return ports.ErrConflict
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ports.ErrDuplicateOrderNumber
	}
	return err
}

func toRecord(order *domain.Order) OrderRecord {
	rec := OrderRecord{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerID:    order.CustomerID,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		TotalAmount:   order.TotalAmount,
		Currency:      order.Currency,
		Version:       order.Version,
		CreatedAt:     order.CreatedAt.UTC(),
		UpdatedAt:     order.UpdatedAt.UTC(),
	}
	if d := order.Decision; d != nil {
		id, role := d.DecidedBy.ID, string(d.DecidedBy.Role)
		at := d.DecidedAt.UTC()
		rec.DecisionRemarks = d.Remarks
		rec.DecidedByID = &id
		rec.DecidedByRole = &role
		rec.DecidedAt = &at
	}
	return rec
}

func toEventRecords(orderID string, events []domain.Event, offset int) []TimelineEventRecord {
	records := make([]TimelineEventRecord, 0, len(events))
	for i, event := range events {
		rec := TimelineEventRecord{
			OrderID:   orderID,
			Seq:       offset + i,
			Status:    string(event.Status),
			Note:      event.Note,
			Timestamp: event.Timestamp.UTC(),
		}
		if by := event.UpdatedBy; by != nil {
			id, role := by.ID, string(by.Role)
			rec.UpdatedByID = &id
			rec.UpdatedByRole = &role
		}
		records = append(records, rec)
	}
	return records
}

func (r OrderRecord) toDomain(events []TimelineEventRecord) *domain.Order {
	order := &domain.Order{
		ID:            r.ID,
		OrderNumber:   r.OrderNumber,
		CustomerID:    r.CustomerID,
		Status:        domain.Status(r.Status),
		PaymentStatus: domain.PaymentStatus(r.PaymentStatus),
		TotalAmount:   r.TotalAmount,
		Currency:      r.Currency,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
		Timeline:      make([]domain.Event, 0, len(events)),
	}
	if r.DecidedByID != nil && r.DecidedAt != nil {
		decision := &domain.Decision{
			Remarks:   r.DecisionRemarks,
			DecidedBy: domain.Actor{ID: *r.DecidedByID},
			DecidedAt: r.DecidedAt.UTC(),
		}
		if r.DecidedByRole != nil {
			decision.DecidedBy.Role = domain.Role(*r.DecidedByRole)
		}
		order.Decision = decision
	}
	for _, event := range events {
		e := domain.Event{
			Status:    domain.Status(event.Status),
			Note:      event.Note,
			Timestamp: event.Timestamp.UTC(),
		}
		if event.UpdatedByID != nil {
			by := domain.Actor{ID: *event.UpdatedByID}
			if event.UpdatedByRole != nil {
				by.Role = domain.Role(*event.UpdatedByRole)
			}
			e.UpdatedBy = &by
		}
		order.Timeline = append(order.Timeline, e)
	}
	return order
}
