package persistence

import (
	"context"

	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNumeratorRepository implements ticket.NumeratorRepository using GORM.
// Each numerator is one row; Next upserts it in a single statement.
type GormNumeratorRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormNumeratorRepository creates a new GormNumeratorRepository
func NewGormNumeratorRepository(db *gorm.DB, clock shared.Clock) *GormNumeratorRepository {
	if clock == nil {
		clock = shared.SystemClock()
	}
	return &GormNumeratorRepository{db: db, clock: clock}
}

// Next increments the named numerator and returns the new value. Unknown
// numerators start at 1.
func (r *GormNumeratorRepository) Next(ctx context.Context, name string) (int, error) {
	if name == "" {
		return 0, shared.NewDomainError("INVALID_NUMERATOR", "Numerator name cannot be empty")
	}

	var next int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.NumeratorModel{Name: name, Number: 1, UpdatedAt: r.clock.Now()}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]any{
				"number":     gorm.Expr("numerators.number + 1"),
				"updated_at": row.UpdatedAt,
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		return tx.Model(&models.NumeratorModel{}).
			Where("name = ?", name).
			Select("number").
			Scan(&next).Error
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// Current returns the last value handed out, or 0 for an unknown numerator
func (r *GormNumeratorRepository) Current(ctx context.Context, name string) (int, error) {
	var rows []models.NumeratorModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).Limit(1).Find(&rows).Error; err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Number, nil
}
