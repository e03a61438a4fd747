package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type CheckoutGormRepository struct {
	db *gorm.DB
}

func NewCheckoutGormRepository(db *gorm.DB) *CheckoutGormRepository {
	return &CheckoutGormRepository{db: db}
}

func (r *CheckoutGormRepository) Create(ctx context.Context, s model.CheckoutSession) error {
	return r.db.WithContext(ctx).Create(&s).Error
}

func (r *CheckoutGormRepository) FindByID(ctx context.Context, id string) (model.CheckoutSession, error) {
	var s model.CheckoutSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CheckoutSession{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CheckoutSession{}, err
	}
	return s, nil
}

func (r *CheckoutGormRepository) Save(ctx context.Context, s model.CheckoutSession) error {
	return r.db.WithContext(ctx).Save(&s).Error
}

// UpdateIfGeneration はトランザクション内で世代を照合してから適用する。
func (r *CheckoutGormRepository) UpdateIfGeneration(ctx context.Context, id string, generation int64, apply func(*model.CheckoutSession)) (bool, error) {
	applied := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s model.CheckoutSession
		err := tx.Where("id = ?", id).First(&s).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repo.ErrNotFound
		}
		if err != nil {
			return err
		}

		//郵便番号が変わっていたら何もしない
		if s.PostalGeneration != generation {
			return nil
		}

		apply(&s)
		if err := tx.Save(&s).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})

	return applied, err
}

func (r *CheckoutGormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.CheckoutSession{}).Error
}
