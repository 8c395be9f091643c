package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/orderlink/backend/internal/domain/privacy"
	"github.com/orderlink/backend/internal/infrastructure/persistence/models"
)

// GormCustomerRequestRepository implements privacy.Repository using GORM
type GormCustomerRequestRepository struct {
	db *gorm.DB
}

// NewGormCustomerRequestRepository creates a new GormCustomerRequestRepository
func NewGormCustomerRequestRepository(db *gorm.DB) *GormCustomerRequestRepository {
	return &GormCustomerRequestRepository{db: db}
}

// Save persists a data request
func (r *GormCustomerRequestRepository) Save(ctx context.Context, request *privacy.CustomerDataRequest) error {
	var model models.CustomerDataRequestModel
	if err := model.FromDomain(request); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindByShop lists the data requests recorded for a shop
func (r *GormCustomerRequestRepository) FindByShop(ctx context.Context, shop string) ([]privacy.CustomerDataRequest, error) {
	var rows []models.CustomerDataRequestModel
	if err := r.db.WithContext(ctx).
		Where("shop = ?", shop).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	requests := make([]privacy.CustomerDataRequest, 0, len(rows))
	for i := range rows {
		requests = append(requests, *rows[i].ToDomain())
	}
	return requests, nil
}

// DeleteByShop removes every data request recorded for a shop
func (r *GormCustomerRequestRepository) DeleteByShop(ctx context.Context, shop string) error {
	return r.db.WithContext(ctx).
		Delete(&models.CustomerDataRequestModel{}, "shop = ?", shop).Error
}
