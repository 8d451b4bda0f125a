package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Engarr/Windmill-backend/internal/logging"
	"github.com/Engarr/Windmill-backend/internal/models"
)

var ErrCodeInvalid = errors.New("reset code invalid or expired")

// ResetRepo is the reset-token store adapter. Expiry is enforced at read
// time; Sweep removes stale rows in the background.
type ResetRepo struct {
	DB *gorm.DB
}

func (r *ResetRepo) Create(ctx context.Context, userID uint, code string, ttl time.Duration) error {
	token := models.ResetToken{
		Code:      code,
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl).Unix(),
	}
	return r.DB.WithContext(ctx).Create(&token).Error
}

// FindByCode returns the token matching code, or ErrCodeInvalid when the
// code is unknown or past its expiry. An expired row is deleted on sight.
func (r *ResetRepo) FindByCode(ctx context.Context, code string) (*models.ResetToken, error) {
	var token models.ResetToken
	err := r.DB.WithContext(ctx).Where("code = ?", code).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeInvalid
		}
		return nil, err
	}
	if token.ExpiresAt < time.Now().Unix() {
		if err := r.DB.WithContext(ctx).Delete(&token).Error; err != nil {
			logging.FromContext(ctx).Warn("could not delete expired reset code", "error", err)
		}
		return nil, ErrCodeInvalid
	}
	return &token, nil
}

// DeleteByUser invalidates every outstanding code for a user. Called after
// a successful password reset so no issued code survives consumption.
func (r *ResetRepo) DeleteByUser(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.ResetToken{}).Error
}

// Sweep drops every expired token and returns how many were removed.
func (r *ResetRepo) Sweep(ctx context.Context) (int64, error) {
	tx := r.DB.WithContext(ctx).
		Where("expires_at < ?", time.Now().Unix()).
		Delete(&models.ResetToken{})
	return tx.RowsAffected, tx.Error
}
