package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/ticket"
	"github.com/pos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTicketRepository implements ticket.TicketRepository using GORM
type GormTicketRepository struct {
	db   *gorm.DB
	opts []ticket.Option
}

// NewGormTicketRepository creates a new GormTicketRepository. The options
// are applied to every ticket it loads (rounding policy, clock).
func NewGormTicketRepository(db *gorm.DB, opts ...ticket.Option) *GormTicketRepository {
	return &GormTicketRepository{db: db, opts: opts}
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func (r *GormTicketRepository) withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Lines", byPosition).
		Preload("Discounts", byPosition).
		Preload("Services", byPosition).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("date, id") }).
		Preload("PaidItems", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

// FindByID finds a ticket by its ID
func (r *GormTicketRepository) FindByID(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error) {
	var model models.TicketModel
	if err := r.withChildren(r.db.WithContext(ctx)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(r.opts...), nil
}

// FindOpen lists unpaid tickets page by page
func (r *GormTicketRepository) FindOpen(ctx context.Context, filter shared.Filter) ([]*ticket.Ticket, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.TicketModel{}).Where("is_paid = ?", false)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.TicketModel
	query := r.withChildren(r.db.WithContext(ctx)).
		Where("is_paid = ?", false).
		Order(orderClause(filter.OrderBy, filter.OrderDir, TicketSortFields, "created_at"))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	tickets := make([]*ticket.Ticket, len(rows))
	for i := range rows {
		tickets[i] = rows[i].ToDomain(r.opts...)
	}
	return tickets, total, nil
}

// Save inserts a new ticket or updates a stored one with optimistic locking.
// On update the stored version must equal t.Version; the version is then
// incremented. Lines no longer on the ticket are deleted, discounts, services
// and paid items are replaced, and payments are appended.
//
// Only submitted lines are marked persisted after a save. A line stays "new"
// for the merge engine until it has been sent to the kitchen.
func (r *GormTicketRepository) Save(ctx context.Context, t *ticket.Ticket) error {
	removed := t.PopRemovedLines()
	model := models.TicketModelFromDomain(t)
	newVersion := t.Version

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.TicketModel
		err := tx.Select("id", "version").Where("id = ?", t.ID).Take(&current).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if current.Version != t.Version {
				return shared.ErrConcurrencyConflict
			}
			newVersion = t.Version + 1
			result := tx.Model(&models.TicketModel{}).
				Where("id = ? AND version = ?", t.ID, t.Version).
				Updates(map[string]any{
					"ticket_number":     model.TicketNumber,
					"department_id":     model.DepartmentID,
					"location_name":     model.LocationName,
					"account_id":        model.AccountID,
					"account_name":      model.AccountName,
					"note":              model.Note,
					"is_paid":           model.IsPaid,
					"locked":            model.Locked,
					"total_amount":      model.TotalAmount,
					"remaining_amount":  model.RemainingAmount,
					"last_order_date":   model.LastOrderDate,
					"last_payment_date": model.LastPaymentDate,
					"print_job_data":    model.PrintJobData,
					"tag_data":          model.TagData,
					"version":           newVersion,
					"updated_at":        model.UpdatedAt,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.ErrConcurrencyConflict
			}
		}

		return r.saveChildren(tx, t.ID, model, removed)
	})
	if err != nil {
		return err
	}

	t.Version = newVersion
	for _, l := range t.Lines {
		if l.WasSubmitted() {
			l.MarkPersisted()
		}
	}
	return nil
}

func (r *GormTicketRepository) saveChildren(tx *gorm.DB, ticketID uuid.UUID, model *models.TicketModel, removed []*ticket.LineItem) error {
	var removedIDs []uuid.UUID
	for _, l := range removed {
		if l.IsPersisted() {
			removedIDs = append(removedIDs, l.ID)
		}
	}
	if len(removedIDs) > 0 {
		if err := tx.Where("ticket_id = ? AND id IN ?", ticketID, removedIDs).
			Delete(&models.LineItemModel{}).Error; err != nil {
			return err
		}
	}
	if len(model.Lines) > 0 {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model.Lines).Error; err != nil {
			return err
		}
	}

	// Unsubmitted lines are not tracked as persisted, so rows of those that
	// were removed or absorbed by a merge are swept here.
	keep := make([]uuid.UUID, len(model.Lines))
	for i := range model.Lines {
		keep[i] = model.Lines[i].ID
	}
	sweep := tx.Where("ticket_id = ?", ticketID)
	if len(keep) > 0 {
		sweep = sweep.Where("id NOT IN ?", keep)
	}
	if err := sweep.Delete(&models.LineItemModel{}).Error; err != nil {
		return err
	}

	if err := tx.Where("ticket_id = ?", ticketID).Delete(&models.DiscountModel{}).Error; err != nil {
		return err
	}
	if len(model.Discounts) > 0 {
		if err := tx.Create(&model.Discounts).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("ticket_id = ?", ticketID).Delete(&models.ServiceEntryModel{}).Error; err != nil {
		return err
	}
	if len(model.Services) > 0 {
		if err := tx.Create(&model.Services).Error; err != nil {
			return err
		}
	}

	if len(model.Payments) > 0 {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Payments).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("ticket_id = ?", ticketID).Delete(&models.PaidItemModel{}).Error; err != nil {
		return err
	}
	if len(model.PaidItems) > 0 {
		if err := tx.Create(&model.PaidItems).Error; err != nil {
			return err
		}
	}
	return nil
}
