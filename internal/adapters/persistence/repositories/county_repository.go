package repositories

import (
	"context"

	"helacredit/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// countyRepository implements CountyRepository interface
type countyRepository struct {
	db *gorm.DB
}

// NewCountyRepository creates a new county repository
func NewCountyRepository(db *gorm.DB) CountyRepository {
	return &countyRepository{db: db}
}

// GetByID gets a county by ID
func (r *countyRepository) GetByID(ctx context.Context, id uint) (*models.County, error) {
	var county models.County
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&county).Error
	if err != nil {
		return nil, err
	}
	return &county, nil
}

// GetByCode gets a county by code
func (r *countyRepository) GetByCode(ctx context.Context, code string) (*models.County, error) {
	var county models.County
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&county).Error
	if err != nil {
		return nil, err
	}
	return &county, nil
}

// List lists all counties ordered by code
func (r *countyRepository) List(ctx context.Context) ([]*models.County, error) {
	var counties []*models.County
	err := r.db.WithContext(ctx).Order("code ASC").Find(&counties).Error
	return counties, err
}

// Exists checks if a county exists
func (r *countyRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.County{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
