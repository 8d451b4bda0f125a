package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Engarr/Windmill-backend/internal/models"
)

type CartRepo struct {
	DB *gorm.DB
}

func (r *CartRepo) Items(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&items).Error
	return items, err
}

// Add increments the quantity of an existing line or inserts a new one.
func (r *CartRepo) Add(ctx context.Context, userID, productID, quantity uint) (*models.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	var item models.CartItem
	tx := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item)
	if tx.Error == nil {
		item.Quantity += quantity
		if err := r.DB.WithContext(ctx).Save(&item).Error; err != nil {
			return nil, err
		}
		return &item, nil
	}
	if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return nil, tx.Error
	}

	item = models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := r.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Increase bumps an existing line by one.
func (r *CartRepo) Increase(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	item.Quantity++
	if err := r.DB.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Decrease lowers a line by one; the last unit removes the row and a nil
// item is returned.
func (r *CartRepo) Decrease(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if item.Quantity > 1 {
		item.Quantity--
		if err := r.DB.WithContext(ctx).Save(&item).Error; err != nil {
			return nil, err
		}
		return &item, nil
	}
	if err := r.DB.WithContext(ctx).Delete(&item).Error; err != nil {
		return nil, err
	}
	return nil, nil
}

func (r *CartRepo) Remove(ctx context.Context, userID, productID uint) error {
	tx := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CartRepo) Clear(ctx context.Context, tx *gorm.DB, userID uint) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

type WishlistRepo struct {
	DB *gorm.DB
}

func (r *WishlistRepo) Items(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&items).Error
	return items, err
}

// Add is idempotent: wishing for the same product twice keeps one row.
func (r *WishlistRepo) Add(ctx context.Context, userID, productID uint) error {
	item := models.WishlistItem{UserID: userID, ProductID: productID}
	tx := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		FirstOrCreate(&item)
	return tx.Error
}

func (r *WishlistRepo) Remove(ctx context.Context, userID, productID uint) error {
	tx := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
