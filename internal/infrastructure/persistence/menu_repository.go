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

// ErrMenuItemNotFound is returned when the catalog has no such menu item
var ErrMenuItemNotFound = shared.NewDomainError("MENU_ITEM_NOT_FOUND", "Menu item not found")

// GormMenuCatalog implements ticket.MenuCatalog using GORM
type GormMenuCatalog struct {
	db *gorm.DB
}

// NewGormMenuCatalog creates a new GormMenuCatalog
func NewGormMenuCatalog(db *gorm.DB) *GormMenuCatalog {
	return &GormMenuCatalog{db: db}
}

// GetMenuItem loads a menu item with its portions and tax template
func (r *GormMenuCatalog) GetMenuItem(ctx context.Context, id uuid.UUID) (*ticket.MenuItem, error) {
	var model models.MenuItemModel
	if err := r.db.WithContext(ctx).
		Preload("Portions", byPosition).
		Preload("TaxTemplate").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByGroup lists menu items of a group code ordered by name. An empty
// group lists the whole menu.
func (r *GormMenuCatalog) ListByGroup(ctx context.Context, groupCode string) ([]*ticket.MenuItem, error) {
	query := r.db.WithContext(ctx).
		Preload("Portions", byPosition).
		Preload("TaxTemplate").
		Order(orderClause("name", "asc", MenuItemSortFields, "name"))
	if groupCode != "" {
		query = query.Where("group_code = ?", groupCode)
	}

	var rows []models.MenuItemModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]*ticket.MenuItem, len(rows))
	for i := range rows {
		items[i] = rows[i].ToDomain()
	}
	return items, nil
}

// Save creates or replaces a menu item, its portions and its tax template
func (r *GormMenuCatalog) Save(ctx context.Context, item *ticket.MenuItem) error {
	model := models.MenuItemModelFromDomain(item)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if model.TaxTemplate != nil {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(model.TaxTemplate).Error; err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "group_code", "tax_template_id", "properties", "updated_at"}),
		}).Create(model).Error; err != nil {
			return err
		}
		if err := tx.Where("menu_item_id = ?", item.ID).Delete(&models.MenuPortionModel{}).Error; err != nil {
			return err
		}
		if len(model.Portions) > 0 {
			return tx.Create(&model.Portions).Error
		}
		return nil
	})
}
