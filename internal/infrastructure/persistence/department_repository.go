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

// GormDepartmentRepository implements ticket.DepartmentRepository using GORM
type GormDepartmentRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormDepartmentRepository creates a new GormDepartmentRepository
func NewGormDepartmentRepository(db *gorm.DB, clock shared.Clock) *GormDepartmentRepository {
	if clock == nil {
		clock = shared.SystemClock()
	}
	return &GormDepartmentRepository{db: db, clock: clock}
}

// FindByID finds a department by its ID
func (r *GormDepartmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ticket.Department, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByName finds a department by its unique name
func (r *GormDepartmentRepository) FindByName(ctx context.Context, name string) (*ticket.Department, error) {
	return r.findOne(ctx, "name = ?", name)
}

func (r *GormDepartmentRepository) findOne(ctx context.Context, query string, arg any) (*ticket.Department, error) {
	var model models.DepartmentModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or replaces a department. A department without an ID gets one.
func (r *GormDepartmentRepository) Save(ctx context.Context, d *ticket.Department) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	var model models.DepartmentModel
	model.FromDomain(d)
	now := r.clock.Now()
	model.CreatedAt = now
	model.UpdatedAt = now

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "ticket_numerator", "order_numerator", "price_tag", "service_templates", "updated_at"}),
	}).Create(&model).Error
}
