package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderlink/backend/internal/domain/merchant"
	"github.com/orderlink/backend/internal/domain/shared"
	"github.com/orderlink/backend/internal/infrastructure/persistence/models"
)

// GormMerchantRepository implements merchant.Repository using GORM
type GormMerchantRepository struct {
	db *gorm.DB
}

// NewGormMerchantRepository creates a new GormMerchantRepository
func NewGormMerchantRepository(db *gorm.DB) *GormMerchantRepository {
	return &GormMerchantRepository{db: db}
}

// FindByID finds a merchant by its ID
func (r *GormMerchantRepository) FindByID(ctx context.Context, id uuid.UUID) (*merchant.Merchant, error) {
	var model models.MerchantModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByShop finds a merchant by its storefront shop domain
func (r *GormMerchantRepository) FindByShop(ctx context.Context, shop string) (*merchant.Merchant, error) {
	var model models.MerchantModel
	if err := r.db.WithContext(ctx).First(&model, "shop = ?", shop).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySourceURL finds the merchant that has the marketplace store
// connected as a source
func (r *GormMerchantRepository) FindBySourceURL(ctx context.Context, marketplaceURL string) (*merchant.Merchant, error) {
	clause, arg := sourcePredicate(r.db.Dialector.Name(), marketplaceURL)
	var model models.MerchantModel
	if err := r.db.WithContext(ctx).
		Where(clause, arg).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CountBySourceURLExcludingShop counts other merchants claiming the store
func (r *GormMerchantRepository) CountBySourceURLExcludingShop(ctx context.Context, marketplaceURL, shop string) (int64, error) {
	clause, arg := sourcePredicate(r.db.Dialector.Name(), marketplaceURL)
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.MerchantModel{}).
		Where(clause, arg).
		Where("shop <> ?", shop).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists the whole aggregate, last writer wins
func (r *GormMerchantRepository) Save(ctx context.Context, m *merchant.Merchant) error {
	var model models.MerchantModel
	if err := model.FromDomain(m); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete removes the merchant record
func (r *GormMerchantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.MerchantModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// sourcePredicate builds the WHERE clause matching merchants whose sources
// column contains the marketplace URL. Postgres gets jsonb containment,
// anything else falls back to json_each so sqlite can run the same query.
func sourcePredicate(dialect, marketplaceURL string) (string, any) {
	if dialect == "postgres" {
		return "sources @> ?", sourceContainment(marketplaceURL)
	}
	return "EXISTS (SELECT 1 FROM json_each(sources) WHERE json_extract(value, '$.marketplace_url') = ?)", marketplaceURL
}

func sourceContainment(marketplaceURL string) string {
	return fmt.Sprintf(`[{"marketplace_url":%q}]`, marketplaceURL)
}
